package crypto

import (
	"fmt"
	"unicode/utf16"

	"pixelguard/pkg/platform/sentinel"
)

// DefaultXORPassword is used when NewXOR gets an empty password.
const DefaultXORPassword = "123456"

// XOR scrambles text with a repeating password. It works on UTF-16 units so
// output matches other tooling reading the same files; binary payloads are
// not supported.
type XOR struct {
	key []uint16
}

func NewXOR(password string) XOR {
	if password == "" {
		password = DefaultXORPassword
	}
	return XOR{key: utf16.Encode([]rune(password))}
}

func (x XOR) EncodeString(plain string) (string, error) {
	return x.apply(plain), nil
}

func (x XOR) DecodeString(encoded string) (string, error) {
	return x.apply(encoded), nil
}

func (XOR) Encode([]byte) ([]byte, error) {
	return nil, fmt.Errorf("xor binary payloads: %w", sentinel.ErrUnsupportedOperation)
}

func (XOR) Decode([]byte) ([]byte, error) {
	return nil, fmt.Errorf("xor binary payloads: %w", sentinel.ErrUnsupportedOperation)
}

func (x XOR) apply(s string) string {
	units := utf16.Encode([]rune(s))
	for i := range units {
		units[i] ^= x.key[i%len(x.key)]
	}
	return string(utf16.Decode(units))
}
