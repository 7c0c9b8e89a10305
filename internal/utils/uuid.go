package utils

import "github.com/google/uuid"

// IsUUID reports whether s parses as a UUID in any accepted textual form.
func IsUUID(s string) bool {
	_, err := uuid.Parse(s)

	return err == nil
}
