// Package persist saves and loads small option blobs. Each Serializer binds
// one destination (a file or a preference key) and one encoding, and may
// route the encoded form through a crypto.Encryptor.
package persist

import (
	"bytes"
	"context"
	"encoding/gob"
	"encoding/json"
	"encoding/xml"
	"fmt"

	"pixelguard/internal/crypto"
	"pixelguard/pkg/platform/sentinel"
)

// Serializer saves and restores a value. Load returns sentinel.ErrNotFound
// when nothing has been saved yet.
type Serializer interface {
	Save(ctx context.Context, v any) error
	Load(ctx context.Context, v any) error
	Delete(ctx context.Context) error
}

// Format selects the encoding used by a Serializer.
type Format string

const (
	FormatJSON Format = "json"
	FormatXML  Format = "xml"
	FormatGob  Format = "gob"
)

// textual formats are encrypted through EncodeString so the stored form
// stays printable.
func (f Format) textual() bool { return f != FormatGob }

func (f Format) marshal(v any) ([]byte, error) {
	switch f {
	case FormatJSON:
		return json.Marshal(v)
	case FormatXML:
		return xml.Marshal(v)
	case FormatGob:
		var buf bytes.Buffer
		if err := gob.NewEncoder(&buf).Encode(v); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("format %q: %w", f, sentinel.ErrUnsupportedOperation)
	}
}

func (f Format) unmarshal(data []byte, v any) error {
	switch f {
	case FormatJSON:
		return json.Unmarshal(data, v)
	case FormatXML:
		return xml.Unmarshal(data, v)
	case FormatGob:
		return gob.NewDecoder(bytes.NewReader(data)).Decode(v)
	default:
		return fmt.Errorf("format %q: %w", f, sentinel.ErrUnsupportedOperation)
	}
}

// Option configures a serializer.
type Option func(*codec)

// WithEncryptor protects the stored form. A nil encryptor stores plain data.
func WithEncryptor(enc crypto.Encryptor) Option {
	return func(c *codec) {
		c.enc = enc
	}
}

// codec is the shared encode and encrypt pipeline.
type codec struct {
	format Format
	enc    crypto.Encryptor
}

func newCodec(format Format, opts []Option) codec {
	c := codec{format: format}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

func (c codec) encode(v any) ([]byte, error) {
	data, err := c.format.marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", c.format, err)
	}
	if c.enc == nil {
		return data, nil
	}
	if c.format.textual() {
		s, err := c.enc.EncodeString(string(data))
		if err != nil {
			return nil, fmt.Errorf("encrypt: %w", err)
		}
		return []byte(s), nil
	}
	out, err := c.enc.Encode(data)
	if err != nil {
		return nil, fmt.Errorf("encrypt: %w", err)
	}
	return out, nil
}

func (c codec) decode(data []byte, v any) error {
	if c.enc != nil {
		if c.format.textual() {
			s, err := c.enc.DecodeString(string(data))
			if err != nil {
				return fmt.Errorf("decrypt: %w", err)
			}
			data = []byte(s)
		} else {
			raw, err := c.enc.Decode(data)
			if err != nil {
				return fmt.Errorf("decrypt: %w", err)
			}
			data = raw
		}
	}
	if err := c.format.unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", c.format, err)
	}
	return nil
}
