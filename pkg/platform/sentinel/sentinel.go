package sentinel

import "errors"

// Sentinel errors shared across the toolkit. Packages return these (optionally
// wrapped) so hosts can classify failures with errors.Is.
//
// Setup-time failures:
// - ErrConfigurationMissing: required resource, key, path or store not provided
// - ErrPlatformUnsupported: the runtime cannot provide what a module needs
//
// Caller contract violations:
// - ErrUnsupportedOperation: operation not defined for this value, e.g. decoding a digest
//
// Infrastructure facts:
// - ErrNotFound: entity does not exist in store
// - ErrInvalidState: entity in wrong state for requested operation
// - ErrUnavailable: service or resource temporarily unavailable
//
// ErrTamperDetected is only used to annotate log records and archive rows;
// tamper findings travel over the warning bus, never as returned errors.
var (
	ErrConfigurationMissing = errors.New("configuration missing")
	ErrPlatformUnsupported  = errors.New("platform unsupported")
	ErrUnsupportedOperation = errors.New("unsupported operation")
	ErrTamperDetected       = errors.New("tamper detected")
	ErrNotFound             = errors.New("not found")
	ErrInvalidState         = errors.New("invalid state")
	ErrUnavailable          = errors.New("unavailable")
)
