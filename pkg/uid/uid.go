package uid

import "github.com/google/uuid"

// New generates a random request identifier.
func New() string {
	return uuid.NewString()
}

// OrNew returns id in canonical form when it parses as a UUID, otherwise a
// fresh identifier. Client-supplied ids are never echoed verbatim.
func OrNew(id string) string {
	if id == "" {
		return New()
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return New()
	}
	return parsed.String()
}
