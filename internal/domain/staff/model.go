package staff

// Member is a hospital staff member.
type Member struct {
	ID              int64  `json:"id_personal"`
	DocumentNumber  string `json:"numero_documento"`
	FirstNames      string `json:"nombres"`
	LastNames       string `json:"apellidos"`
	Role            string `json:"cargo"`
	Specialty       string `json:"especialidad,omitempty"`
	CollegiateCode  string `json:"colegiatura,omitempty"`
	EstablishmentID int64  `json:"id_establecimiento"`
}

// RegisterInput is the payload for registering a staff member.
type RegisterInput struct {
	DocumentNumber  string `json:"numero_documento"`
	FirstNames      string `json:"nombres"`
	LastNames       string `json:"apellidos"`
	Role            string `json:"cargo"`
	Specialty       string `json:"especialidad,omitempty"`
	CollegiateCode  string `json:"colegiatura,omitempty"`
	EstablishmentID int64  `json:"id_establecimiento"`
}
