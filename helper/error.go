package helper

// Error wraps a failed operation with the underlying cause.
type Error struct {
	Operation string
	Err       error
}

// NewError creates a new Error for the given operation.
// The returned error unwraps to err, so errors.Is and errors.As keep working.
func NewError(operation string, err error) error {
	return &Error{
		Operation: operation,
		Err:       err,
	}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Operation
	}
	return e.Operation + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}
