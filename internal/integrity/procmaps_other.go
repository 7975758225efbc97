//go:build !linux

package integrity

import (
	"context"

	"pixelguard/pkg/domain"
	"pixelguard/pkg/platform/sentinel"
)

func (ProcMapsSource) Modules(context.Context) ([]domain.CodeModule, error) {
	return nil, sentinel.ErrPlatformUnsupported
}
