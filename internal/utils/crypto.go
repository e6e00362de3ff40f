// internal/utils/crypto.go
package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"
	"time"
)

const licenseKeyCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateLicenseKey produces a 16-character key from [A-Z0-9], formatted
// as four hyphen-separated groups of four, e.g. AB12-CD34-EF56-GH78.
func GenerateLicenseKey() (string, error) {
	b := make([]byte, 0, 19)

	for i := 0; i < 16; i++ {
		if i > 0 && i%4 == 0 {
			b = append(b, '-')
		}
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(licenseKeyCharset))))
		if err != nil {
			return "", err
		}
		b = append(b, licenseKeyCharset[n.Int64()])
	}

	return string(b), nil
}

// GenerateTransactionID mints the synthetic payment reference used when no
// real gateway is configured.
func GenerateTransactionID() string {
	return fmt.Sprintf("txn_%d", time.Now().UnixNano())
}

func GenerateRandomString(length int) (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, length)

	for i := range b {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		b[i] = charset[n.Int64()]
	}

	return string(b), nil
}

func HashString(input string) string {
	hasher := sha256.New()
	hasher.Write([]byte(input))
	return hex.EncodeToString(hasher.Sum(nil))
}
