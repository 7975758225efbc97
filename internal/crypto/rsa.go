package crypto

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"

	"pixelguard/pkg/platform/sentinel"
)

// RSA encrypts with RSA-OAEP (SHA-256). Encoding needs the public key and
// decoding the private key; either may be absent.
type RSA struct {
	public  *rsa.PublicKey
	private *rsa.PrivateKey
}

// NewRSA parses PEM encoded keys. At least one is required.
func NewRSA(publicPEM, privatePEM string) (RSA, error) {
	var r RSA
	if publicPEM == "" && privatePEM == "" {
		return r, fmt.Errorf("rsa keys: %w", sentinel.ErrConfigurationMissing)
	}
	if privatePEM != "" {
		block, _ := pem.Decode([]byte(privatePEM))
		if block == nil {
			return r, errors.New("rsa private key: no PEM block")
		}
		key, err := x509.ParsePKCS1PrivateKey(block.Bytes)
		if err != nil {
			return r, fmt.Errorf("rsa private key: %w", err)
		}
		r.private = key
		r.public = &key.PublicKey
	}
	if publicPEM != "" {
		block, _ := pem.Decode([]byte(publicPEM))
		if block == nil {
			return r, errors.New("rsa public key: no PEM block")
		}
		key, err := x509.ParsePKCS1PublicKey(block.Bytes)
		if err != nil {
			return r, fmt.Errorf("rsa public key: %w", err)
		}
		r.public = key
	}
	return r, nil
}

// GenerateRSAKeyPair returns PEM encoded public and private keys.
func GenerateRSAKeyPair(bits int) (publicPEM, privatePEM string, err error) {
	key, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return "", "", fmt.Errorf("generate rsa key: %w", err)
	}
	pub := pem.EncodeToMemory(&pem.Block{Type: "RSA PUBLIC KEY", Bytes: x509.MarshalPKCS1PublicKey(&key.PublicKey)})
	priv := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)})
	return string(pub), string(priv), nil
}

func (r RSA) EncodeString(plain string) (string, error) {
	return sealString(r.Encode, plain)
}

func (r RSA) DecodeString(encoded string) (string, error) {
	return openString(r.Decode, encoded)
}

func (r RSA) Encode(plain []byte) ([]byte, error) {
	if r.public == nil {
		return nil, fmt.Errorf("rsa public key: %w", sentinel.ErrConfigurationMissing)
	}
	out, err := rsa.EncryptOAEP(sha256.New(), rand.Reader, r.public, plain, nil)
	if err != nil {
		return nil, fmt.Errorf("rsa encrypt: %w", err)
	}
	return out, nil
}

func (r RSA) Decode(encoded []byte) ([]byte, error) {
	if r.private == nil {
		return nil, fmt.Errorf("rsa private key: %w", sentinel.ErrConfigurationMissing)
	}
	out, err := rsa.DecryptOAEP(sha256.New(), nil, r.private, encoded, nil)
	if err != nil {
		return nil, fmt.Errorf("rsa decrypt: %w", err)
	}
	return out, nil
}
