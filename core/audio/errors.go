package audio

import "fmt"

// CaptureFailure classifies why the input device could not be acquired. Raw
// backend errors are not self-explanatory to end users, so every failure is
// mapped to a distinct, actionable message.
type CaptureFailure int

const (
	CaptureFailureUnknown CaptureFailure = iota
	CaptureFailurePermissionDenied
	CaptureFailureNoDevice
	CaptureFailureDeviceBusy
	CaptureFailureUnsatisfiable
	CaptureFailureBackendUnavailable
)

type CaptureError struct {
	Reason CaptureFailure
	Err    error
}

func (e *CaptureError) Error() string {
	switch e.Reason {
	case CaptureFailurePermissionDenied:
		return "microphone access was blocked, allow mic permission and try again"
	case CaptureFailureNoDevice:
		return "no microphone was found, connect a mic and try again"
	case CaptureFailureDeviceBusy:
		return "your microphone is in use by another app, close it and try again"
	case CaptureFailureUnsatisfiable:
		return "could not start the microphone with the requested settings, try switching devices"
	case CaptureFailureBackendUnavailable:
		return "the audio system is unavailable on this host"
	}

	if e.Err != nil {
		return fmt.Sprintf("failed to start microphone capture: %v", e.Err)
	}
	return "failed to start microphone capture"
}

func (e *CaptureError) Unwrap() error { return e.Err }

func NewCaptureError(reason CaptureFailure, err error) *CaptureError {
	return &CaptureError{Reason: reason, Err: err}
}
