package surgery

// Surgery states as the hospital API reports them.
const (
	StatusScheduled  = "programada"
	StatusInProgress = "en_curso"
	StatusDone       = "realizada"
	StatusSuspended  = "suspendida"
)

// Surgery is a scheduled surgical intervention.
type Surgery struct {
	ID                   int64  `json:"id_cirugia"`
	PatientID            int64  `json:"id_paciente"`
	PatientName          string `json:"paciente,omitempty"`
	SurgeonID            int64  `json:"id_cirujano"`
	SurgeonName          string `json:"cirujano,omitempty"`
	Room                 string `json:"sala"`
	Date                 string `json:"fecha"`
	StartTime            string `json:"hora_inicio"`
	Status               string `json:"estado"`
	DiagnosisCode        string `json:"codigo_cie"`
	DiagnosisDescription string `json:"diagnostico"`
	SuspendReason        string `json:"motivo_suspension,omitempty"`
}

// ScheduleInput is the payload for programming a surgery. The diagnosis
// pair is the target of the CIE-10 autocomplete binding on the scheduling
// form.
type ScheduleInput struct {
	PatientID            int64  `json:"id_paciente"`
	SurgeonID            int64  `json:"id_cirujano"`
	Room                 string `json:"sala"`
	Date                 string `json:"fecha"`
	StartTime            string `json:"hora_inicio"`
	DiagnosisCode        string `json:"codigo_cie"`
	DiagnosisDescription string `json:"diagnostico"`
}
