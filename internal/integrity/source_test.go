package integrity

import (
	"context"
	"encoding/base64"
	"errors"
	"runtime/debug"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pixelguard/pkg/domain"
	"pixelguard/pkg/platform/sentinel"
)

type staticSource struct {
	mods []domain.CodeModule
	err  error
}

func (s staticSource) Modules(context.Context) ([]domain.CodeModule, error) {
	return s.mods, s.err
}

func TestBuildInfoSource(t *testing.T) {
	digest := []byte("0123456789abcdefghijklmnopqrstuv")
	sum := "h1:" + base64.StdEncoding.EncodeToString(digest)

	src := BuildInfoSource{read: func() (*debug.BuildInfo, bool) {
		return &debug.BuildInfo{
			Path: "pixelguard/cmd/guardd",
			Main: debug.Module{Path: "pixelguard"},
			Deps: []*debug.Module{
				{Path: "github.com/google/uuid", Version: "v1.6.0", Sum: sum},
				{
					Path:    "github.com/lib/pq",
					Version: "v1.10.9",
					Sum:     "h1:ignored",
					Replace: &debug.Module{Path: "../pq", Version: "(devel)"},
				},
			},
		}, true
	}}

	got, err := src.Modules(context.Background())
	require.NoError(t, err)

	want := []domain.CodeModule{
		{Name: "pixelguard", Path: "pixelguard/cmd/guardd"},
		{Name: "github.com/google/uuid", Token: digest[:8], Path: "github.com/google/uuid@v1.6.0"},
		{Name: "github.com/lib/pq", Path: "../pq@(devel)"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("modules mismatch (-want +got):\n%s", diff)
	}

	t.Run("binary without build info is unsupported", func(t *testing.T) {
		_, err := BuildInfoSource{read: func() (*debug.BuildInfo, bool) { return nil, false }}.Modules(context.Background())
		require.ErrorIs(t, err, sentinel.ErrPlatformUnsupported)
	})
}

func TestParseMaps(t *testing.T) {
	maps := strings.Join([]string{
		"55d0c0a00000-55d0c0a21000 r--p 00000000 08:01 1048 /usr/bin/game",
		"7f1c2a000000-7f1c2a022000 r--p 00000000 08:01 2051 /usr/lib/x86_64-linux-gnu/libc.so.6",
		"7f1c2a022000-7f1c2a19a000 r-xp 00022000 08:01 2051 /usr/lib/x86_64-linux-gnu/libc.so.6",
		"7f1c2b000000-7f1c2b004000 r-xp 00000000 08:01 3001 /opt/game/plugins/libinject.so",
		"7f1c2c000000-7f1c2c021000 rw-p 00000000 00:00 0 [heap]",
		"7ffd1a000000-7ffd1a021000 rw-p 00000000 00:00 0",
		"7f1c2d000000-7f1c2d001000 r--p 00000000 08:01 4001 /opt/my game/libspace.so",
	}, "\n")

	got, err := parseMaps(strings.NewReader(maps))
	require.NoError(t, err)

	want := []domain.CodeModule{
		{Name: "libc.so.6", Path: "/usr/lib/x86_64-linux-gnu/libc.so.6"},
		{Name: "libinject.so", Path: "/opt/game/plugins/libinject.so"},
		{Name: "libspace.so", Path: "/opt/my game/libspace.so"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("modules mismatch (-want +got):\n%s", diff)
	}
}

func TestMultiSource(t *testing.T) {
	a := staticSource{mods: []domain.CodeModule{{Name: "a"}}}
	b := staticSource{mods: []domain.CodeModule{{Name: "b"}}}
	unsupported := staticSource{err: sentinel.ErrPlatformUnsupported}

	t.Run("concatenates members in order", func(t *testing.T) {
		got, err := MultiSource{a, unsupported, b}.Modules(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []domain.CodeModule{{Name: "a"}, {Name: "b"}}, got)
	})

	t.Run("unsupported only when every member is", func(t *testing.T) {
		_, err := MultiSource{unsupported, unsupported}.Modules(context.Background())
		require.ErrorIs(t, err, sentinel.ErrPlatformUnsupported)
	})

	t.Run("other errors abort", func(t *testing.T) {
		boom := errors.New("boom")
		_, err := MultiSource{a, staticSource{err: boom}}.Modules(context.Background())
		require.ErrorIs(t, err, boom)
	})
}
