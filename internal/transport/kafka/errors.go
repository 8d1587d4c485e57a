package kafka

// PermanentError is a permanent error.
type PermanentError struct {
	Err error
}

func (e PermanentError) Error() string {
	if e.Err == nil {
		return "permanent error"
	}
	return e.Err.Error()
}

func (e PermanentError) Unwrap() error { return e.Err }

// Permanent marks err so the consumer skips the message instead of retrying it.
func Permanent(err error) error {
	return PermanentError{Err: err}
}
