package warning

import (
	"time"

	"github.com/google/uuid"

	"pixelguard/pkg/attrs"
	"pixelguard/pkg/domain"
)

// Severity routes warnings in downstream sinks.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// severityByCode is the single source of truth for default severities.
var severityByCode = map[domain.WarningCode]Severity{
	domain.WarningMemoryTamper:      SeverityCritical,
	domain.WarningInjectionDetected: SeverityCritical,
	domain.WarningSpeedhackDetected: SeverityCritical,
	domain.WarningTeleportDetected:  SeverityWarning,
	domain.WarningTimeChanged:       SeverityWarning,
}

// SeverityFor returns the default severity for a code.
func SeverityFor(code domain.WarningCode) Severity {
	if s, ok := severityByCode[code]; ok {
		return s
	}
	return SeverityInfo
}

// Warning is one detection delivered to subscribers. Detection is
// observational: a warning never carries an error and never asks the
// subscriber to do anything.
type Warning struct {
	ID        uuid.UUID
	Code      domain.WarningCode
	Message   string
	Source    domain.ModuleKind
	Severity  Severity
	Timestamp time.Time
	// Attrs carries detector specific context (target id, module name, ...).
	Attrs map[string]string
}

// New builds a warning with the default message and severity for code.
func New(code domain.WarningCode, source domain.ModuleKind) Warning {
	return Warning{
		Code:     code,
		Message:  code.DefaultMessage(),
		Source:   source,
		Severity: SeverityFor(code),
	}
}

// WithMessage returns a copy of w with a custom message.
func (w Warning) WithMessage(msg string) Warning {
	w.Message = msg
	return w
}

// WithAttr returns a copy of w with one extra attribute.
func (w Warning) WithAttr(key, value string) Warning {
	attrs := make(map[string]string, len(w.Attrs)+1)
	for k, v := range w.Attrs {
		attrs[k] = v
	}
	attrs[key] = value
	w.Attrs = attrs
	return w
}

// LogArgs flattens the warning into slog key/value pairs.
func (w Warning) LogArgs() []any {
	args := []any{
		"warning_id", w.ID.String(),
		"code", string(w.Code),
		"source", string(w.Source),
		"severity", string(w.Severity),
	}
	return append(args, attrs.FromMap(w.Attrs)...)
}
