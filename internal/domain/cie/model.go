package cie

// Code is one CIE-10 catalog entry as the hospital API returns it.
type Code struct {
	CodigoCie string `json:"codigoCie"`
	NombreCie string `json:"nombreCie"`
}

// Search modes accepted by GET /buscarDatosCie.
const (
	ModeDiagnosis = "diagnostico"
	ModeProcedure = "procedimiento"
)
