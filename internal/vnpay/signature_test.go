package vnpay

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RFC 4231 test case 1 for HMAC-SHA-512.
func TestSignKnownVector(t *testing.T) {
	key := string(bytes.Repeat([]byte{0x0b}, 20))
	signer := NewSignatureProvider(key)

	got := signer.Sign("Hi There")
	want := "87aa7cdea5ef619d4ff0b4241a1d6cb02379f4e2ce4ec2787ad0b30545e17cde" +
		"daa833b7d6b8a702038b274eaea3f4e4be9d914eeb61f1702e696c203a126854"
	assert.Equal(t, want, got)
}

func TestSignVerifyRoundTrip(t *testing.T) {
	signer := NewSignatureProvider("DEMO_SECRET")

	for _, data := range []string{
		"",
		"vnp_Amount=15000000&vnp_Command=pay",
		"vnp_OrderInfo=thanh%20toan&vnp_TxnRef=17561234567890001234",
	} {
		sig := signer.Sign(data)
		assert.True(t, signer.Verify(data, sig), "data %q", data)
	}
}

func TestVerifyRejectsTamperedData(t *testing.T) {
	signer := NewSignatureProvider("DEMO_SECRET")
	data := "vnp_Amount=15000000&vnp_TxnRef=1756000000001"
	sig := signer.Sign(data)

	// Flip every single character of the payload in turn.
	for i := 0; i < len(data); i++ {
		mutated := []byte(data)
		mutated[i] ^= 0x01
		assert.False(t, signer.Verify(string(mutated), sig), "mutation at %d went undetected", i)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	data := "vnp_Amount=15000000"
	sig := NewSignatureProvider("SECRET_A").Sign(data)

	assert.False(t, NewSignatureProvider("SECRET_B").Verify(data, sig))
}

func TestVerifyHexNormalization(t *testing.T) {
	signer := NewSignatureProvider("DEMO_SECRET")
	data := "vnp_Amount=100"
	sig := signer.Sign(data)

	// Uppercase hex decodes to the same digest.
	assert.True(t, signer.Verify(data, strings.ToUpper(sig)))
	// Truncation is never accepted.
	assert.False(t, signer.Verify(data, sig[:len(sig)-2]))
	// Garbage is not hex.
	assert.False(t, signer.Verify(data, "zz"+sig[2:]))
}

func TestSignIsLowercaseHex128(t *testing.T) {
	signer := NewSignatureProvider("DEMO_SECRET")
	sig := signer.Sign("anything")

	require.Len(t, sig, 128) // 512-bit digest
	assert.Equal(t, strings.ToLower(sig), sig)
}
