package cache

import (
	"crypto/md5"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidIdentifier is returned when a resource identifier cannot be
// turned into a cache key.
var ErrInvalidIdentifier = errors.New("invalid resource identifier")

// DeriveKey maps a resource identifier to its cache key: the MD5 digest of
// the identifier rendered as 32 lowercase hex characters. The mapping is
// deterministic and depends on nothing but the identifier itself, so the
// same URL always lands on the same cache file across processes and
// restarts. MD5 is fine here; the key only needs a low accidental-collision
// rate, not cryptographic strength.
func DeriveKey(identifier string) (string, error) {
	if strings.TrimSpace(identifier) == "" {
		return "", fmt.Errorf("%w: empty identifier", ErrInvalidIdentifier)
	}
	sum := md5.Sum([]byte(identifier))
	return fmt.Sprintf("%x", sum), nil
}
