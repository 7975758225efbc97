package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pixelguard/pkg/platform/sentinel"
)

func reversible(t *testing.T) map[string]Encryptor {
	t.Helper()
	des, err := NewDES("")
	require.NoError(t, err)
	pub, priv, err := GenerateRSAKeyPair(1024)
	require.NoError(t, err)
	rsa, err := NewRSA(pub, priv)
	require.NoError(t, err)

	return map[string]Encryptor{
		"aes":    NewAES(""),
		"des":    des,
		"rsa":    rsa,
		"base64": Base64{},
	}
}

func TestRoundTrip(t *testing.T) {
	inputs := []string{"", "hello", "ünïcødé ✓", "{\"level\":3,\"name\":\"player\"}"}

	for name, enc := range reversible(t) {
		t.Run(name, func(t *testing.T) {
			for _, in := range inputs {
				s, err := enc.EncodeString(in)
				require.NoError(t, err)
				if in != "" {
					assert.NotEqual(t, in, s)
				}
				out, err := enc.DecodeString(s)
				require.NoError(t, err)
				assert.Equal(t, in, out)

				b, err := enc.Encode([]byte(in))
				require.NoError(t, err)
				raw, err := enc.Decode(b)
				require.NoError(t, err)
				assert.Equal(t, in, string(raw))
			}
		})
	}
}

func TestXOR(t *testing.T) {
	x := NewXOR("")

	t.Run("strings round trip", func(t *testing.T) {
		enc, err := x.EncodeString("score=100")
		require.NoError(t, err)
		assert.NotEqual(t, "score=100", enc)
		dec, err := x.DecodeString(enc)
		require.NoError(t, err)
		assert.Equal(t, "score=100", dec)
	})

	t.Run("key repeats over long input", func(t *testing.T) {
		enc, _ := NewXOR("a").EncodeString("aaaa")
		assert.Equal(t, "\x00\x00\x00\x00", enc)
	})

	t.Run("binary payloads are unsupported", func(t *testing.T) {
		_, err := x.Encode([]byte("x"))
		assert.ErrorIs(t, err, sentinel.ErrUnsupportedOperation)
		_, err = x.Decode([]byte("x"))
		assert.ErrorIs(t, err, sentinel.ErrUnsupportedOperation)
	})
}

func TestAES(t *testing.T) {
	t.Run("salt and iv differ per message", func(t *testing.T) {
		a := NewAES("secret")
		first, err := a.Encode([]byte("same"))
		require.NoError(t, err)
		second, err := a.Encode([]byte("same"))
		require.NoError(t, err)
		assert.NotEqual(t, first, second)
		assert.Len(t, first, aesSaltSize+16+16)
	})

	t.Run("wrong password does not decode", func(t *testing.T) {
		enc, err := NewAES("right").EncodeString("payload")
		require.NoError(t, err)
		out, err := NewAES("wrong").DecodeString(enc)
		if err == nil {
			assert.NotEqual(t, "payload", out)
		}
	})

	t.Run("short payload is rejected", func(t *testing.T) {
		_, err := NewAES("").Decode(make([]byte, 10))
		assert.Error(t, err)
	})
}

func TestDES(t *testing.T) {
	t.Run("password must be one block", func(t *testing.T) {
		_, err := NewDES("short")
		assert.ErrorIs(t, err, sentinel.ErrConfigurationMissing)
	})

	t.Run("output is deterministic", func(t *testing.T) {
		d, err := NewDES("12345678")
		require.NoError(t, err)
		a, _ := d.EncodeString("value")
		b, _ := d.EncodeString("value")
		assert.Equal(t, a, b)
	})
}

func TestRSA(t *testing.T) {
	pub, priv, err := GenerateRSAKeyPair(1024)
	require.NoError(t, err)

	t.Run("public key only encodes", func(t *testing.T) {
		enc, err := NewRSA(pub, "")
		require.NoError(t, err)
		sealed, err := enc.EncodeString("hi")
		require.NoError(t, err)

		_, err = enc.DecodeString(sealed)
		assert.ErrorIs(t, err, sentinel.ErrConfigurationMissing)

		dec, err := NewRSA("", priv)
		require.NoError(t, err)
		out, err := dec.DecodeString(sealed)
		require.NoError(t, err)
		assert.Equal(t, "hi", out)
	})

	t.Run("keys are required", func(t *testing.T) {
		_, err := NewRSA("", "")
		assert.ErrorIs(t, err, sentinel.ErrConfigurationMissing)
	})

	t.Run("garbage pem is rejected", func(t *testing.T) {
		_, err := NewRSA("not a key", "")
		assert.Error(t, err)
	})
}

func TestHashes(t *testing.T) {
	t.Run("sha1 is uppercase hex", func(t *testing.T) {
		out, err := SHA1{}.EncodeString("abc")
		require.NoError(t, err)
		assert.Equal(t, "A9993E364706816ABA3E25717850C26C9CD0D89D", out)

		raw, err := SHA1{}.Encode([]byte("abc"))
		require.NoError(t, err)
		assert.Len(t, raw, 20)
	})

	t.Run("xxhash is decimal", func(t *testing.T) {
		out, err := XXHash{}.EncodeString("")
		require.NoError(t, err)
		assert.Equal(t, "17241709254077376921", out)

		raw, err := XXHash{}.Encode(nil)
		require.NoError(t, err)
		assert.Equal(t, []byte{0xef, 0x46, 0xdb, 0x37, 0x51, 0xd8, 0xe9, 0x99}, raw)
	})

	for name, h := range map[string]Encryptor{"sha1": SHA1{}, "xxhash": XXHash{}} {
		t.Run(name+" cannot decode", func(t *testing.T) {
			_, err := h.DecodeString("x")
			assert.ErrorIs(t, err, sentinel.ErrUnsupportedOperation)
			_, err = h.Decode([]byte("x"))
			assert.ErrorIs(t, err, sentinel.ErrUnsupportedOperation)
		})
	}
}

func TestByName(t *testing.T) {
	for _, name := range []Name{NameXOR, NameAES, NameDES, NameBase64, NameSHA1, NameXXHash} {
		enc, err := ByName(name, "")
		require.NoError(t, err, name)
		assert.NotNil(t, enc, name)
	}

	enc, err := ByName(NameNone, "")
	require.NoError(t, err)
	assert.Nil(t, enc)

	_, err = ByName("rot13", "")
	assert.ErrorIs(t, err, sentinel.ErrUnsupportedOperation)
}

func TestPKCS7(t *testing.T) {
	padded := pkcs7Pad([]byte("abc"), 8)
	assert.Equal(t, []byte("abc\x05\x05\x05\x05\x05"), padded)

	out, err := pkcs7Unpad(padded, 8)
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), out)

	_, err = pkcs7Unpad([]byte("abcdefg\x09"), 8)
	assert.ErrorIs(t, err, errBadPadding)
}
