// Package licensekey generates opaque license key strings. The generator is
// the uniqueness collaborator: keys are random enough that the database
// unique index is the only check, and an index violation is reported to the
// caller as a creation failure rather than retried.
package licensekey

import (
	"encoding/base32"
	"fmt"

	"github.com/google/uuid"
)

// keyAlphabet avoids characters customers confuse when typing keys by hand.
const keyAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// Generator produces opaque printable license key strings.
type Generator interface {
	Generate() (string, error)
}

// UUIDGenerator derives keys from random UUIDs.
type UUIDGenerator struct{}

// NewGenerator returns the default key generator.
func NewGenerator() Generator {
	return UUIDGenerator{}
}

// Generate returns a key of the form EA-XXXXX-XXXXX-XXXXX-XXXXX.
func (UUIDGenerator) Generate() (string, error) {
	id, errRandom := uuid.NewRandom()
	if errRandom != nil {
		return "", fmt.Errorf("licensekey: %w", errRandom)
	}
	enc := base32.NewEncoding(keyAlphabet).WithPadding(base32.NoPadding)
	raw := enc.EncodeToString(id[:])[:20]
	return fmt.Sprintf("EA-%s-%s-%s-%s", raw[0:5], raw[5:10], raw[10:15], raw[15:20]), nil
}
