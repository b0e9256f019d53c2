// Package session holds the authenticated-user context shared by every part
// of the client: the bearer token plus the profile attributes captured at
// login. Storage is a flat key/value slot behind the Store interface so the
// gateway can be exercised against an in-memory store in tests while the CLI
// persists the session between invocations.
package session

// Canonical storage keys. The names mirror the hospital API's login response
// fields so a persisted session file reads the same as the wire payload.
const (
	KeyToken           = "token"
	KeyStaffName       = "nombres_personal"
	KeyEstablishmentID = "id_establecimiento"
	KeyEstablishment   = "establecimiento"
	KeyUserTypeID      = "id_tipo_usuario"
	KeyLastActivity    = "lastActivity"
	KeyRenewInProgress = "renovacionEnCurso"
)

// AdminUserTypeID is the role identifier that grants administrative access.
const AdminUserTypeID = "1"

// Store is the client-side session slot. A session exists iff KeyToken is
// set; Clear removes every key at once so no partial authenticated state can
// be left behind.
type Store interface {
	Get(key string) string
	Set(key, value string)
	Delete(key string)
	Clear()
}

// Profile is a read-only view of the session's user attributes.
type Profile struct {
	StaffName         string
	EstablishmentID   string
	EstablishmentName string
	UserTypeID        string
}

// LoadProfile reads the profile attributes out of a store.
func LoadProfile(s Store) Profile {
	return Profile{
		StaffName:         s.Get(KeyStaffName),
		EstablishmentID:   s.Get(KeyEstablishmentID),
		EstablishmentName: s.Get(KeyEstablishment),
		UserTypeID:        s.Get(KeyUserTypeID),
	}
}

// IsAdmin reports whether the session belongs to an administrator.
func (p Profile) IsAdmin() bool {
	return p.UserTypeID == AdminUserTypeID
}

// Authenticated reports whether a session currently exists in the store.
func Authenticated(s Store) bool {
	return s.Get(KeyToken) != ""
}
