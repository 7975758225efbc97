package crypto

import (
	"crypto/cipher"
	"crypto/des"
	"errors"
	"fmt"

	"pixelguard/pkg/platform/sentinel"
)

// DefaultDESPassword is used when NewDES gets an empty password.
const DefaultDESPassword = "ABCDEFGH"

// DES encrypts with DES-CBC using the 8-byte password as both key and IV.
// It exists to read data written by older clients; prefer AES.
type DES struct {
	block cipher.Block
	iv    []byte
}

func NewDES(password string) (DES, error) {
	if password == "" {
		password = DefaultDESPassword
	}
	if len(password) != des.BlockSize {
		return DES{}, errors.Join(sentinel.ErrConfigurationMissing,
			fmt.Errorf("des password must be %d bytes, got %d", des.BlockSize, len(password)))
	}
	block, err := des.NewCipher([]byte(password))
	if err != nil {
		return DES{}, fmt.Errorf("des cipher: %w", err)
	}
	return DES{block: block, iv: []byte(password)}, nil
}

func (d DES) EncodeString(plain string) (string, error) {
	return sealString(d.Encode, plain)
}

func (d DES) DecodeString(encoded string) (string, error) {
	return openString(d.Decode, encoded)
}

func (d DES) Encode(plain []byte) ([]byte, error) {
	padded := pkcs7Pad(plain, des.BlockSize)
	out := make([]byte, len(padded))
	cipher.NewCBCEncrypter(d.block, d.iv).CryptBlocks(out, padded)
	return out, nil
}

func (d DES) Decode(encoded []byte) ([]byte, error) {
	if len(encoded) == 0 || len(encoded)%des.BlockSize != 0 {
		return nil, fmt.Errorf("des payload not block aligned")
	}
	plain := make([]byte, len(encoded))
	cipher.NewCBCDecrypter(d.block, d.iv).CryptBlocks(plain, encoded)
	out, err := pkcs7Unpad(plain, des.BlockSize)
	if err != nil {
		return nil, fmt.Errorf("des decrypt: %w", err)
	}
	return out, nil
}
