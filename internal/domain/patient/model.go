package patient

// Patient is a registered patient record.
type Patient struct {
	ID             int64  `json:"id_paciente"`
	DocumentType   string `json:"tipo_documento"`
	DocumentNumber string `json:"numero_documento"`
	FirstNames     string `json:"nombres"`
	LastNames      string `json:"apellidos"`
	BirthDate      string `json:"fecha_nacimiento"`
	Sex            string `json:"sexo"`
	Phone          string `json:"telefono,omitempty"`
	Address        string `json:"direccion,omitempty"`
	InsuranceType  string `json:"tipo_seguro,omitempty"`
}

// RegisterInput is the payload for registering a new patient.
type RegisterInput struct {
	DocumentType   string `json:"tipo_documento"`
	DocumentNumber string `json:"numero_documento"`
	FirstNames     string `json:"nombres"`
	LastNames      string `json:"apellidos"`
	BirthDate      string `json:"fecha_nacimiento"`
	Sex            string `json:"sexo"`
	Phone          string `json:"telefono,omitempty"`
	Address        string `json:"direccion,omitempty"`
	InsuranceType  string `json:"tipo_seguro,omitempty"`
}

// UpdateInput is the payload for updating patient contact data. Only set
// fields are sent.
type UpdateInput struct {
	Phone         *string `json:"telefono,omitempty"`
	Address       *string `json:"direccion,omitempty"`
	InsuranceType *string `json:"tipo_seguro,omitempty"`
}
