package vnpay

import (
	"errors"
	"net/url"
	"sort"
	"strings"
	"unicode/utf8"
)

var ErrEncoding = errors.New("vnpay: parameter value is not encodable")

// Param is one (name, value) pair of the gateway protocol. The signed set is
// an explicit []Param so that signed vs appended fields are separated by
// construction, not by convention.
type Param struct {
	Name  string
	Value string
}

type Params []Param

func (p Params) Set(name, value string) Params {
	for i := range p {
		if p[i].Name == name {
			p[i].Value = value
			return p
		}
	}
	return append(p, Param{Name: name, Value: value})
}

func (p Params) Get(name string) string {
	for i := range p {
		if p[i].Name == name {
			return p[i].Value
		}
	}
	return ""
}

// SignData builds the canonical byte string that is both the signing input
// and the verification input. Entries with empty values are dropped, the rest
// are sorted by key (byte-wise ascending) and emitted as
// urlEncode(key)=urlEncode(value) joined with "&".
// Phải bit-identical giữa chiều build và chiều verify.
func (p Params) SignData() (string, error) {
	kept := make(Params, 0, len(p))
	for _, e := range p {
		if e.Value == "" {
			continue
		}
		if !utf8.ValidString(e.Name) || !utf8.ValidString(e.Value) {
			return "", ErrEncoding
		}
		kept = append(kept, e)
	}
	sort.Slice(kept, func(i, j int) bool { return kept[i].Name < kept[j].Name })

	var b strings.Builder
	for i, e := range kept {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(encode(e.Name))
		b.WriteByte('=')
		b.WriteString(encode(e.Value))
	}
	return b.String(), nil
}

// encode is query-style percent-encoding with space as %20, not "+".
func encode(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
