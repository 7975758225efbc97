package crypto

import (
	"crypto/sha1"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"

	"pixelguard/pkg/platform/sentinel"
)

var errHashDecode = fmt.Errorf("hash digests cannot be decoded: %w", sentinel.ErrUnsupportedOperation)

// SHA1 produces a digest; the string form is uppercase hex.
type SHA1 struct{}

func (SHA1) EncodeString(plain string) (string, error) {
	sum := sha1.Sum([]byte(plain))
	return strings.ToUpper(hex.EncodeToString(sum[:])), nil
}

func (SHA1) DecodeString(string) (string, error) { return "", errHashDecode }

func (SHA1) Encode(plain []byte) ([]byte, error) {
	sum := sha1.Sum(plain)
	return sum[:], nil
}

func (SHA1) Decode([]byte) ([]byte, error) { return nil, errHashDecode }

// XXHash produces a 64-bit xxHash digest; the string form is decimal and
// the binary form big-endian.
type XXHash struct{}

func (XXHash) EncodeString(plain string) (string, error) {
	return strconv.FormatUint(xxhash.Sum64String(plain), 10), nil
}

func (XXHash) DecodeString(string) (string, error) { return "", errHashDecode }

func (XXHash) Encode(plain []byte) ([]byte, error) {
	return binary.BigEndian.AppendUint64(nil, xxhash.Sum64(plain)), nil
}

func (XXHash) Decode([]byte) ([]byte, error) { return nil, errHashDecode }
