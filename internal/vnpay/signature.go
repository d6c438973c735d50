package vnpay

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
)

// SignatureProvider signs and verifies the canonical parameter string with
// the merchant hash secret.
type SignatureProvider interface {
	Sign(data string) string
	Verify(data, signature string) bool
}

type hmacSigner struct {
	secret []byte
}

func NewSignatureProvider(secret string) SignatureProvider {
	return &hmacSigner{secret: []byte(secret)}
}

// Sign computes HMAC-SHA512 over data and renders it as lowercase hex.
func (s *hmacSigner) Sign(data string) string {
	mac := hmac.New(sha512.New, s.secret)
	mac.Write([]byte(data))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify recomputes the digest and compares in constant time. Malformed hex
// fails outright; hex case is normalized by decoding, nothing else is.
func (s *hmacSigner) Verify(data, signature string) bool {
	got, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}
	mac := hmac.New(sha512.New, s.secret)
	mac.Write([]byte(data))
	return hmac.Equal(got, mac.Sum(nil))
}
