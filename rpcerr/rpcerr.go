// Package rpcerr defines the numeric error taxonomy shared by every layer
// of the fabric — transport, wire protocol, dispatcher, multiplexer, and
// coordination layer all report failures through this one type so callers
// can switch on Code instead of parsing strings.
package rpcerr

// Code is a stable, numeric error classification. Zero always means success.
type Code int32

const (
	OK              Code = 0
	InvalidParam    Code = 1 // precondition violation by the caller
	NoMemory        Code = 2 // allocation failure
	ServiceNotFound Code = 3 // no handler registered for name
	Timeout         Code = 4 // deadline elapsed
	RateLimited     Code = 5 // client in-flight ceiling reached
	NotConnected    Code = 6 // send on closed/unconnected transport
	AlreadyExists   Code = 7 // duplicate registration, duplicate inproc listen
	Cancelled       Code = 8 // completion cancelled by caller or teardown
	Protocol        Code = 9 // decode failure or framing violation
	Err             Code = 10 // generic, otherwise-unclassified
)

func (c Code) String() string {
	switch c {
	case OK:
		return "OK"
	case InvalidParam:
		return "INVALID_PARAM"
	case NoMemory:
		return "NO_MEMORY"
	case ServiceNotFound:
		return "SERVICE_NOT_FOUND"
	case Timeout:
		return "TIMEOUT"
	case RateLimited:
		return "RATE_LIMITED"
	case NotConnected:
		return "NOT_CONNECTED"
	case AlreadyExists:
		return "ALREADY_EXISTS"
	case Cancelled:
		return "CANCELLED"
	case Protocol:
		return "PROTOCOL"
	default:
		return "ERROR"
	}
}

// Error wraps a Code with a human-readable message. It is the error type
// the transport, client and coordination operations return; the codec
// package and server.RegisterService's reflection checks return plain errors.
type Error struct {
	Code Code
	Msg  string
}

func New(code Code, msg string) *Error {
	return &Error{Code: code, Msg: msg}
}

// Wrap classifies an arbitrary error under code, preserving its message.
func Wrap(code Code, err error) *Error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Msg: err.Error()}
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return e.Code.String()
	}
	return e.Code.String() + ": " + e.Msg
}

// Is lets errors.Is match two *Error values purely by Code, the way callers
// actually want to compare them.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}
