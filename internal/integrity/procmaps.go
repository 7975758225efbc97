package integrity

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"pixelguard/pkg/domain"
)

// ProcMapsSource lists shared objects mapped into the process. Only Linux
// exposes the maps file; elsewhere it reports sentinel.ErrPlatformUnsupported.
type ProcMapsSource struct {
	// Path defaults to /proc/self/maps.
	Path string
}

const defaultMapsPath = "/proc/self/maps"

// parseMaps extracts unique shared object paths from maps-formatted input.
func parseMaps(r io.Reader) ([]domain.CodeModule, error) {
	var (
		mods []domain.CodeModule
		seen = make(map[string]struct{})
	)
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 6 {
			continue
		}
		path := strings.Join(fields[5:], " ")
		if !isSharedObject(path) {
			continue
		}
		if _, dup := seen[path]; dup {
			continue
		}
		seen[path] = struct{}{}
		mods = append(mods, domain.CodeModule{Name: filepath.Base(path), Path: path})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan maps: %w", err)
	}
	return mods, nil
}

func isSharedObject(path string) bool {
	if !strings.HasPrefix(path, "/") {
		return false
	}
	base := filepath.Base(path)
	return strings.HasSuffix(base, ".so") || strings.Contains(base, ".so.")
}
