package minutes

import "fmt"

// ParseError is returned when the model's reply is still not valid minutes
// JSON after the corrective follow-up.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse minutes response: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ServiceError wraps a language model call that failed outright.
type ServiceError struct {
	Err error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("minutes model call failed: %v", e.Err)
}

func (e *ServiceError) Unwrap() error { return e.Err }
