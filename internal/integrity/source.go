package integrity

import (
	"context"
	"encoding/base64"
	"debug/buildinfo"
	"errors"
	"runtime/debug"
	"strings"

	"pixelguard/pkg/domain"
	"pixelguard/pkg/platform/sentinel"
)

// Source enumerates the code modules currently loaded into the process.
// Sources that cannot work on the running platform return
// sentinel.ErrPlatformUnsupported.
type Source interface {
	Modules(ctx context.Context) ([]domain.CodeModule, error)
}

// BuildInfoSource lists the Go modules linked into the binary. The token is
// the leading bytes of the module's go.sum digest, so a dependency swapped
// for a patched copy hashes differently.
type BuildInfoSource struct {
	read func() (*debug.BuildInfo, bool)
}

// NewBuildInfoSource reads the running binary's build information.
func NewBuildInfoSource() BuildInfoSource {
	return BuildInfoSource{read: debug.ReadBuildInfo}
}

// NewBinarySource reads the build information embedded in the Go binary at
// path. Whitelist tooling uses it to list the modules of a release build.
func NewBinarySource(path string) BuildInfoSource {
	return BuildInfoSource{read: func() (*debug.BuildInfo, bool) {
		info, err := buildinfo.ReadFile(path)
		return info, err == nil
	}}
}

func (s BuildInfoSource) Modules(context.Context) ([]domain.CodeModule, error) {
	read := s.read
	if read == nil {
		read = debug.ReadBuildInfo
	}
	info, ok := read()
	if !ok {
		return nil, errors.Join(sentinel.ErrPlatformUnsupported, errors.New("binary built without module support"))
	}

	var mods []domain.CodeModule
	if info.Main.Path != "" {
		mods = append(mods, domain.CodeModule{Name: info.Main.Path, Token: sumToken(info.Main.Sum), Path: info.Path})
	}
	for _, dep := range info.Deps {
		resolved := dep
		if dep.Replace != nil {
			resolved = dep.Replace
		}
		mods = append(mods, domain.CodeModule{
			Name:  dep.Path,
			Token: sumToken(resolved.Sum),
			Path:  resolved.Path + "@" + resolved.Version,
		})
	}
	return mods, nil
}

// sumToken decodes an "h1:" go.sum hash. Other forms yield no token.
func sumToken(sum string) []byte {
	encoded, ok := strings.CutPrefix(sum, "h1:")
	if !ok {
		return nil
	}
	digest, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil || len(digest) < tokenSize {
		return nil
	}
	return digest[:tokenSize]
}

// MultiSource concatenates several sources. Unsupported members are
// skipped; the result is unsupported only when every member is.
type MultiSource []Source

func (m MultiSource) Modules(ctx context.Context) ([]domain.CodeModule, error) {
	var (
		mods      []domain.CodeModule
		supported bool
	)
	for _, src := range m {
		got, err := src.Modules(ctx)
		if errors.Is(err, sentinel.ErrPlatformUnsupported) {
			continue
		}
		if err != nil {
			return nil, err
		}
		supported = true
		mods = append(mods, got...)
	}
	if !supported {
		return nil, sentinel.ErrPlatformUnsupported
	}
	return mods, nil
}

// DefaultSource combines Go module build info with shared objects mapped
// into the process.
func DefaultSource() Source {
	return MultiSource{NewBuildInfoSource(), ProcMapsSource{}}
}
