package uid

import "github.com/google/uuid"

// New generates a new random (v4) identifier.
func New() string {
	return uuid.New().String()
}

// IsValid checks if a string is a valid UUID.
func IsValid(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// FileName returns a fresh identifier with the given extension appended,
// e.g. FileName(".jpg").
func FileName(ext string) string {
	return New() + ext
}
