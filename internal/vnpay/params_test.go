package vnpay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignDataSortsKeysAndDropsEmpty(t *testing.T) {
	p := Params{
		{Name: "vnp_TxnRef", Value: "123"},
		{Name: "vnp_Amount", Value: "5000000"},
		{Name: "vnp_BankCode", Value: ""}, // empty -> dropped
		{Name: "vnp_Command", Value: "pay"},
	}

	data, err := p.SignData()
	require.NoError(t, err)
	assert.Equal(t, "vnp_Amount=5000000&vnp_Command=pay&vnp_TxnRef=123", data)
}

func TestSignDataEscapesSpacesAsPercent20(t *testing.T) {
	p := Params{{Name: "vnp_OrderInfo", Value: "thanh toan khoa hoc"}}

	data, err := p.SignData()
	require.NoError(t, err)
	assert.Equal(t, "vnp_OrderInfo=thanh%20toan%20khoa%20hoc", data)
	assert.NotContains(t, data, "+")
}

func TestSignDataEscapesReservedCharacters(t *testing.T) {
	p := Params{{Name: "vnp_ReturnUrl", Value: "http://localhost:8080/return?courseId=abc&x=1"}}

	data, err := p.SignData()
	require.NoError(t, err)
	assert.Equal(t, "vnp_ReturnUrl=http%3A%2F%2Flocalhost%3A8080%2Freturn%3FcourseId%3Dabc%26x%3D1", data)
}

func TestSignDataDeterministic(t *testing.T) {
	a := Params{
		{Name: "vnp_B", Value: "2"},
		{Name: "vnp_A", Value: "1"},
	}
	b := Params{
		{Name: "vnp_A", Value: "1"},
		{Name: "vnp_B", Value: "2"},
	}

	da, err := a.SignData()
	require.NoError(t, err)
	db, err := b.SignData()
	require.NoError(t, err)
	assert.Equal(t, da, db, "insertion order must not leak into the canonical string")
}

func TestSignDataRejectsInvalidUTF8(t *testing.T) {
	p := Params{{Name: "vnp_OrderInfo", Value: string([]byte{0xff, 0xfe})}}

	_, err := p.SignData()
	assert.ErrorIs(t, err, ErrEncoding)
}

func TestParamsSetOverwrites(t *testing.T) {
	p := Params{}
	p = p.Set("vnp_Amount", "100")
	p = p.Set("vnp_Amount", "200")

	assert.Equal(t, "200", p.Get("vnp_Amount"))
	assert.Len(t, p, 1)
}
