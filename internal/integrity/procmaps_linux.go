//go:build linux

package integrity

import (
	"context"
	"fmt"
	"os"

	"pixelguard/pkg/domain"
)

func (s ProcMapsSource) Modules(context.Context) ([]domain.CodeModule, error) {
	path := s.Path
	if path == "" {
		path = defaultMapsPath
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return parseMaps(f)
}
