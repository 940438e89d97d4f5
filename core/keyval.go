package core

// Durable keystore keys. The keystore is a mirror of store state, never the
// source of truth once the network is reachable: it is read once at bootstrap
// and re-written on every relevant state change.
const (
	KeyAccessToken          = "accessToken"
	KeyUser                 = "user"
	KeySelectedAcademicYear = "selectedAcademicYear"
	KeyAcademicYearID       = "academicYearId"
)

// Keystore is any service that can persist small JSON-serialized values
// across app restarts.
type Keystore interface {
	// Get reads the value stored under key into v.
	// A missing or corrupt value yields ok=false, not an error.
	Get(key string, v interface{}) (ok bool, err error)
	// Set serializes v and writes it under key, synchronously.
	Set(key string, v interface{}) error
	Delete(key string) error
}
