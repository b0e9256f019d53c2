package hospitalization

// Hospitalization states as the hospital API reports them.
const (
	StatusActive     = "hospitalizado"
	StatusDischarged = "alta"
)

// Hospitalization is an inpatient stay.
type Hospitalization struct {
	ID                   int64  `json:"id_hospitalizacion"`
	PatientID            int64  `json:"id_paciente"`
	PatientName          string `json:"paciente,omitempty"`
	BedID                int64  `json:"id_cama"`
	BedCode              string `json:"codigo_cama,omitempty"`
	AdmissionDate        string `json:"fecha_ingreso"`
	DischargeDate        string `json:"fecha_alta,omitempty"`
	Status               string `json:"estado"`
	DiagnosisCode        string `json:"codigo_cie"`
	DiagnosisDescription string `json:"diagnostico"`
}

// AdmitInput is the payload for admitting a patient. The diagnosis pair is
// the target of the CIE-10 autocomplete binding on the admission form.
type AdmitInput struct {
	PatientID            int64  `json:"id_paciente"`
	BedID                int64  `json:"id_cama"`
	AdmissionDate        string `json:"fecha_ingreso"`
	DiagnosisCode        string `json:"codigo_cie"`
	DiagnosisDescription string `json:"diagnostico"`
}
