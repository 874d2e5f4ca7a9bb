package events

const (
	KindRemoteError Kind = "session.error"
	KindUnknown     Kind = "session.unknown"
)

// RemoteError carries an error frame sent by the remote service. It is a
// protocol-level report, not a transport failure; the session stays up.
type RemoteError struct {
	Base
	Message string
}

func NewRemoteError(message string) RemoteError {
	return RemoteError{Base: NewBase(KindRemoteError), Message: message}
}

// Unknown wraps an unrecognized frame type. Forward compatibility: these are
// logged and ignored, never fatal.
type Unknown struct {
	Base
	Type string
}

func NewUnknown(frameType string) Unknown {
	return Unknown{Base: NewBase(KindUnknown), Type: frameType}
}
