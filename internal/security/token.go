package security

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

// CryptoString generates an opaque random token suitable for verification
// and password-reset links.
func CryptoString() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

// DateAddDaysFromNow returns the timestamp the given number of days from now.
func DateAddDaysFromNow(days int) time.Time {
	return time.Now().Add(time.Duration(days) * 24 * time.Hour)
}
