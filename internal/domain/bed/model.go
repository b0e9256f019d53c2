package bed

// Bed states as the hospital API reports them.
const (
	StatusFree        = "disponible"
	StatusOccupied    = "ocupada"
	StatusMaintenance = "mantenimiento"
)

// Bed is a hospital bed within a service area.
type Bed struct {
	ID              int64  `json:"id_cama"`
	Code            string `json:"codigo_cama"`
	Area            string `json:"area"`
	Status          string `json:"estado"`
	EstablishmentID int64  `json:"id_establecimiento"`
	PatientID       int64  `json:"id_paciente,omitempty"`
	PatientName     string `json:"paciente,omitempty"`
}
