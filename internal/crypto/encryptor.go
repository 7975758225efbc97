// Package crypto provides the pluggable encryptors used when persisting
// protected data. Hash-based encryptors are one-way.
package crypto

import (
	"encoding/base64"
	"fmt"

	"pixelguard/pkg/platform/sentinel"
)

// Encryptor transforms text and binary payloads. String forms are safe to
// store in text files and preference stores.
type Encryptor interface {
	EncodeString(plain string) (string, error)
	DecodeString(encoded string) (string, error)
	Encode(plain []byte) ([]byte, error)
	Decode(encoded []byte) ([]byte, error)
}

// Name identifies an encryptor in configuration.
type Name string

const (
	NameNone   Name = "none"
	NameXOR    Name = "xor"
	NameAES    Name = "aes"
	NameDES    Name = "des"
	NameBase64 Name = "base64"
	NameSHA1   Name = "sha1"
	NameXXHash Name = "xxhash"
)

// ByName builds a password-based or keyless encryptor from configuration.
// RSA needs a key pair and is built with NewRSA instead. NameNone and ""
// return nil.
func ByName(name Name, password string) (Encryptor, error) {
	switch name {
	case "", NameNone:
		return nil, nil
	case NameXOR:
		return NewXOR(password), nil
	case NameAES:
		return NewAES(password), nil
	case NameDES:
		return NewDES(password)
	case NameBase64:
		return Base64{}, nil
	case NameSHA1:
		return SHA1{}, nil
	case NameXXHash:
		return XXHash{}, nil
	default:
		return nil, fmt.Errorf("encryptor %q: %w", name, sentinel.ErrUnsupportedOperation)
	}
}

// Base64 only encodes; it hides nothing from a determined reader.
type Base64 struct{}

func (Base64) EncodeString(plain string) (string, error) {
	return base64.StdEncoding.EncodeToString([]byte(plain)), nil
}

func (Base64) DecodeString(encoded string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("decode base64: %w", err)
	}
	return string(raw), nil
}

func (Base64) Encode(plain []byte) ([]byte, error) {
	out := make([]byte, base64.StdEncoding.EncodedLen(len(plain)))
	base64.StdEncoding.Encode(out, plain)
	return out, nil
}

func (Base64) Decode(encoded []byte) ([]byte, error) {
	out := make([]byte, base64.StdEncoding.DecodedLen(len(encoded)))
	n, err := base64.StdEncoding.Decode(out, encoded)
	if err != nil {
		return nil, fmt.Errorf("decode base64: %w", err)
	}
	return out[:n], nil
}

// sealString runs a binary encryptor and base64-encodes the result.
func sealString(enc func([]byte) ([]byte, error), plain string) (string, error) {
	out, err := enc([]byte(plain))
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(out), nil
}

// openString reverses sealString.
func openString(dec func([]byte) ([]byte, error), encoded string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("decode base64: %w", err)
	}
	out, err := dec(raw)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
