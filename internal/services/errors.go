package services

import "errors"

var ErrBadCreds = errors.New("invalid email or password")

// ValidationError reports a request that failed structural checks before
// anything was written.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "invalid request: " + e.Msg
	}
	return "invalid request: " + e.Field + " " + e.Msg
}

func invalid(field, msg string) error { return &ValidationError{Field: field, Msg: msg} }
