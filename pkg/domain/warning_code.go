package domain

import "fmt"

// WarningCode classifies a security warning emitted on the warning bus.
type WarningCode string

// Warning codes shared by every detector.
const (
	WarningMemoryTamper      WarningCode = "MEMORY_TAMPER"
	WarningInjectionDetected WarningCode = "INJECTION_DETECTED"
	WarningSpeedhackDetected WarningCode = "SPEEDHACK_DETECTED"
	WarningTeleportDetected  WarningCode = "TELEPORT_DETECTED"
	WarningTimeChanged       WarningCode = "TIMECHANGE_DETECTED"
)

// validWarningCodes is the single source of truth for valid warning codes.
var validWarningCodes = map[WarningCode]bool{
	WarningMemoryTamper:      true,
	WarningInjectionDetected: true,
	WarningSpeedhackDetected: true,
	WarningTeleportDetected:  true,
	WarningTimeChanged:       true,
}

// ParseWarningCode constructs a WarningCode from external input, e.g. a
// filter query parameter on the diagnostics endpoint.
func ParseWarningCode(s string) (WarningCode, error) {
	c := WarningCode(s)
	if !c.IsValid() {
		return "", fmt.Errorf("unknown warning code: %q", s)
	}
	return c, nil
}

// IsValid checks if the code is one of the supported enum values.
func (c WarningCode) IsValid() bool {
	return validWarningCodes[c]
}

// DefaultMessage returns the human readable text used when a detector does not
// provide its own message.
func (c WarningCode) DefaultMessage() string {
	switch c {
	case WarningMemoryTamper:
		return "Memory hacking detected: a protected value was modified outside the application."
	case WarningInjectionDetected:
		return "Code injection detected: an unknown module was loaded into the process."
	case WarningSpeedhackDetected:
		return "Speed hack detected: game clock is running faster or slower than the system clock."
	case WarningTeleportDetected:
		return "Teleport detected: an object moved further than allowed."
	case WarningTimeChanged:
		return "Time change detected: system time was changed while the application was running."
	default:
		return string(c)
	}
}

func (c WarningCode) String() string {
	return string(c)
}

// TeleportMessage formats the teleport warning text for a target and its limit.
func TeleportMessage(targetID string, maxDistancePerSecond float64) string {
	return fmt.Sprintf("Teleport detected: %q moved more than %.2f units per second.", targetID, maxDistancePerSecond)
}
