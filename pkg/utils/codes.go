package utils

import (
	"crypto/rand"
	"math/big"
	"regexp"
)

const couponAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Indian mobile numbers: ten digits starting with 6-9
var phonePattern = regexp.MustCompile(`^[6-9]\d{9}$`)

// IsValidPhone reports whether phone is a ten digit Indian mobile number
func IsValidPhone(phone string) bool {
	return phonePattern.MatchString(phone)
}

// GenerateCouponCode returns an uppercase alphanumeric code of the given length
func GenerateCouponCode(length int) (string, error) {
	return randomString(couponAlphabet, length)
}

// GenerateOTP returns a numeric one-time code of the given length
func GenerateOTP(length int) (string, error) {
	return randomString("0123456789", length)
}

func randomString(alphabet string, length int) (string, error) {
	max := big.NewInt(int64(len(alphabet)))
	b := make([]byte, length)
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = alphabet[n.Int64()]
	}
	return string(b), nil
}
