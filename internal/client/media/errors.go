package media

import (
	"errors"
	"fmt"

	"github.com/dkeye/viewing/internal/domain"
)

// Device error names as reported by capture runtimes.
const (
	NotAllowedError       = "NotAllowedError"
	PermissionDeniedError = "PermissionDeniedError"
	NotReadableError      = "NotReadableError"
	TrackStartError       = "TrackStartError"
	NotFoundError         = "NotFoundError"
	DevicesNotFoundError  = "DevicesNotFoundError"
	OverconstrainedError  = "OverconstrainedError"
	SecurityError         = "SecurityError"
)

// DeviceError is a capture failure tagged with its device error name.
type DeviceError struct {
	Name string
	Err  error
}

func (e *DeviceError) Error() string {
	if e.Err == nil {
		return e.Name
	}
	return fmt.Sprintf("%s: %v", e.Name, e.Err)
}

func (e *DeviceError) Unwrap() error { return e.Err }

type FailureKind int

const (
	Unknown FailureKind = iota
	PermissionDenied
	DeviceNotReadable
	DeviceNotFound
	SecurityRestricted
)

func (k FailureKind) String() string {
	switch k {
	case PermissionDenied:
		return "PermissionDenied"
	case DeviceNotReadable:
		return "DeviceNotReadable"
	case DeviceNotFound:
		return "DeviceNotFound"
	case SecurityRestricted:
		return "SecurityRestricted"
	default:
		return "Unknown"
	}
}

// Err returns the domain error a failure kind surfaces as.
func (k FailureKind) Err() error {
	switch k {
	case PermissionDenied:
		return domain.ErrMediaPermissionDenied
	case SecurityRestricted:
		return domain.ErrMediaSecurityRestricted
	default:
		return domain.ErrMediaDeviceUnavailable
	}
}

// Message is the user-facing text for a failure kind.
func (k FailureKind) Message() string {
	switch k {
	case PermissionDenied:
		return "Camera and microphone access was denied. Allow access in your browser settings to share media."
	case DeviceNotReadable:
		return "Your camera or microphone is already in use by another application."
	case DeviceNotFound:
		return "No camera or microphone was found."
	case SecurityRestricted:
		return "Media access is blocked on this connection. Use a secure connection to share media."
	default:
		return "Could not access your camera or microphone."
	}
}

// Classify maps a capture error onto a failure kind by its device error name.
func Classify(err error) FailureKind {
	var de *DeviceError
	if !errors.As(err, &de) {
		return Unknown
	}
	switch de.Name {
	case NotAllowedError, PermissionDeniedError:
		return PermissionDenied
	case NotReadableError, TrackStartError:
		return DeviceNotReadable
	case NotFoundError, DevicesNotFoundError, OverconstrainedError:
		return DeviceNotFound
	case SecurityError:
		return SecurityRestricted
	default:
		return Unknown
	}
}

// AcquisitionError is the terminal outcome after every rung failed.
type AcquisitionError struct {
	Kind FailureKind
	Err  error
}

func (e *AcquisitionError) Error() string {
	return fmt.Sprintf("media acquisition failed (%s): %v", e.Kind, e.Err)
}

func (e *AcquisitionError) Unwrap() []error {
	return []error{e.Kind.Err(), e.Err}
}
