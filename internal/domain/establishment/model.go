package establishment

// Establishment is a hospital site the user can be attached to.
type Establishment struct {
	ID       int64  `json:"id_establecimiento"`
	Name     string `json:"establecimiento"`
	Category string `json:"categoria,omitempty"`
	District string `json:"distrito,omitempty"`
}
