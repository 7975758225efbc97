package integrity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHash(t *testing.T) {
	token := []byte{0xb7, 0x7a, 0x5c, 0x56, 0x19, 0x34, 0xe0, 0x89}

	tests := []struct {
		name   string
		module string
		token  []byte
		want   int32
	}{
		{name: "empty identity", module: "", want: 0},
		{name: "single char", module: "a", want: -902917054},
		{name: "name only", module: "UnityEngine", want: 1758243997},
		{name: "name with token", module: "mscorlib", token: token, want: -2046915800},
		{name: "short token is ignored", module: "UnityEngine", token: token[:4], want: 1758243997},
		{name: "token beyond eight bytes is ignored", module: "mscorlib", token: append(append([]byte(nil), token...), 0xff), want: -2046915800},
		{name: "hashes utf-16 units", module: "é", want: 2102098517},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Hash(tt.module, tt.token))
		})
	}
}

func TestIdentity(t *testing.T) {
	assert.Equal(t, "mod0102030405060708", Identity("mod", []byte{1, 2, 3, 4, 5, 6, 7, 8}))
	assert.Equal(t, "mod", Identity("mod", nil))
}
