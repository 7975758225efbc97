package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha1"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// DefaultAESPassword is used when NewAES gets an empty password.
	DefaultAESPassword = "AESPassword"

	aesSaltSize   = 32
	aesKeySize    = 32
	aesIterations = 1000
)

// AES encrypts with AES-256-CBC and PKCS#7 padding. A fresh salt and IV
// are generated per message; output is salt || iv || ciphertext.
type AES struct {
	password []byte
}

func NewAES(password string) AES {
	if password == "" {
		password = DefaultAESPassword
	}
	return AES{password: []byte(password)}
}

func (a AES) EncodeString(plain string) (string, error) {
	return sealString(a.Encode, plain)
}

func (a AES) DecodeString(encoded string) (string, error) {
	return openString(a.Decode, encoded)
}

func (a AES) Encode(plain []byte) ([]byte, error) {
	header := make([]byte, aesSaltSize+aes.BlockSize)
	if _, err := rand.Read(header); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	salt, iv := header[:aesSaltSize], header[aesSaltSize:]

	block, err := aes.NewCipher(a.key(salt))
	if err != nil {
		return nil, fmt.Errorf("aes cipher: %w", err)
	}
	padded := pkcs7Pad(plain, aes.BlockSize)
	out := make([]byte, len(header)+len(padded))
	copy(out, header)
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out[len(header):], padded)
	return out, nil
}

func (a AES) Decode(encoded []byte) ([]byte, error) {
	headerSize := aesSaltSize + aes.BlockSize
	if len(encoded) < headerSize+aes.BlockSize {
		return nil, fmt.Errorf("aes payload too short: %d bytes", len(encoded))
	}
	salt, iv, body := encoded[:aesSaltSize], encoded[aesSaltSize:headerSize], encoded[headerSize:]
	if len(body)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("aes payload not block aligned")
	}

	block, err := aes.NewCipher(a.key(salt))
	if err != nil {
		return nil, fmt.Errorf("aes cipher: %w", err)
	}
	plain := make([]byte, len(body))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plain, body)
	out, err := pkcs7Unpad(plain, aes.BlockSize)
	if err != nil {
		return nil, fmt.Errorf("aes decrypt: %w", err)
	}
	return out, nil
}

func (a AES) key(salt []byte) []byte {
	return pbkdf2.Key(a.password, salt, aesIterations, aesKeySize, sha1.New)
}
