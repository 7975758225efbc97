package domain

import (
	"fmt"

	"pixelguard/pkg/platform/sentinel"
)

// ModuleKind identifies a protection module inside the guard registry.
// Invariant: at most one module of each kind is tracked by a registry.
//
// Usage: construct via ParseModuleKind when the value comes from configuration;
// modules declare their own kind as a constant.
type ModuleKind string

// Built-in module kinds.
const (
	ModuleSecuredMemory ModuleKind = "secured_memory"
	ModuleIntegrity     ModuleKind = "integrity"
	ModuleSpeedhack     ModuleKind = "speedhack"
	ModuleSecuredTime   ModuleKind = "secured_time"
	ModuleTeleport      ModuleKind = "teleport"
	ModulePrivacy       ModuleKind = "privacy_accepter"
	ModuleTerms         ModuleKind = "terms_accepter"
)

var builtinModuleKinds = map[ModuleKind]bool{
	ModuleSecuredMemory: true,
	ModuleIntegrity:     true,
	ModuleSpeedhack:     true,
	ModuleSecuredTime:   true,
	ModuleTeleport:      true,
	ModulePrivacy:       true,
	ModuleTerms:         true,
}

// ParseModuleKind validates a module kind read from external input.
// Host-defined kinds are allowed as long as they are non-empty.
func ParseModuleKind(s string) (ModuleKind, error) {
	if s == "" {
		return "", fmt.Errorf("module kind cannot be empty: %w", sentinel.ErrConfigurationMissing)
	}
	return ModuleKind(s), nil
}

// IsBuiltin reports whether the kind is one shipped with the toolkit.
func (k ModuleKind) IsBuiltin() bool {
	return builtinModuleKinds[k]
}

// IsNil returns true if the kind is empty.
func (k ModuleKind) IsNil() bool {
	return k == ""
}

func (k ModuleKind) String() string {
	return string(k)
}

// CodeModule identifies a unit of code loaded into the process: a Go module
// dependency, a shared object, or a plugin.
type CodeModule struct {
	Name string
	// Token is signing or checksum material identifying the exact build.
	// Empty when the loader has none.
	Token []byte
	// Path is informational only and does not take part in hashing.
	Path string
}
