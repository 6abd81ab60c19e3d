package security

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
)

// GenerateToken returns n random bytes hex-encoded.
func GenerateToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// SignSHA512 returns the hex HMAC-SHA512 of body under secret.
func SignSHA512(body []byte, secret string) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySHA512Signature checks a hex HMAC-SHA512 signature in constant time.
func VerifySHA512Signature(body []byte, secret, signature string) bool {
	if secret == "" || signature == "" {
		return false
	}
	expected := SignSHA512(body, secret)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// ConstantTimeEqual compares two shared secrets.
func ConstantTimeEqual(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// SanitizeHeaders removes sensitive headers
func SanitizeHeaders(headers http.Header) http.Header {
	sensitiveHeaders := []string{
		"Authorization",
		"Cookie",
		"Set-Cookie",
		"X-Paystack-Signature",
		"Verif-Hash",
	}

	for _, header := range sensitiveHeaders {
		headers.Del(header)
	}
	return headers
}
