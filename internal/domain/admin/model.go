package admin

// User is an application user account, managed by administrators.
type User struct {
	ID              int64  `json:"id_usuario"`
	Username        string `json:"usuario"`
	FullName        string `json:"nombres_personal"`
	UserTypeID      string `json:"id_tipo_usuario"`
	EstablishmentID int64  `json:"id_establecimiento"`
	Active          bool   `json:"activo"`
}

// CreateInput is the payload for creating a user account.
type CreateInput struct {
	Username        string `json:"usuario"`
	Password        string `json:"contrasena"`
	FullName        string `json:"nombres_personal"`
	UserTypeID      string `json:"id_tipo_usuario"`
	EstablishmentID int64  `json:"id_establecimiento"`
}

// UpdateInput is the payload for updating a user account. Only set fields
// are sent.
type UpdateInput struct {
	FullName   *string `json:"nombres_personal,omitempty"`
	UserTypeID *string `json:"id_tipo_usuario,omitempty"`
	Active     *bool   `json:"activo,omitempty"`
}
