package host

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// newInstanceID returns a ULID used as the wazero module name.
func newInstanceID(now time.Time) (string, error) {
	if now.IsZero() {
		now = time.Now().UTC()
	}

	id, err := ulid.New(ulid.Timestamp(now), rand.Reader)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
