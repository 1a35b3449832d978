package core

import "fmt"

type Unit struct{}

// CommandError carries an HTTP status code through the mediator pipeline
// alongside the underlying error. Unwrap exposes the payload when it is an
// error so callers can match sentinel errors with errors.Is.
type CommandError struct {
	Payload    interface{}
	StatusCode int
	Reason     *string
}

func NewCommandError(statusCode int, payload interface{}, reason ...string) CommandError {
	e := CommandError{
		StatusCode: statusCode,
		Payload:    payload,
	}

	if len(reason) > 0 {
		e.Reason = &reason[0]
	}

	return e
}

func (r CommandError) Error() string {
	var values struct {
		Payload    interface{}
		StatusCode int
		Reason     string
	}

	values.Payload = r.Payload
	values.StatusCode = r.StatusCode

	if r.Reason != nil {
		values.Reason = *r.Reason
	}

	return fmt.Sprintf("%+v", values)
}

func (r CommandError) Unwrap() error {
	if err, ok := r.Payload.(error); ok {
		return err
	}
	return nil
}
