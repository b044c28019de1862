package probe

import "errors"

var (
	// ErrUnhealthy is returned when /healthz does not answer 200.
	ErrUnhealthy = errors.New("dashboard unhealthy")
	// ErrLoginRejected is returned when the credentials are refused.
	ErrLoginRejected = errors.New("login rejected")
	// ErrUnexpectedStatus wraps any other non-success response.
	ErrUnexpectedStatus = errors.New("unexpected status")
	// ErrSessionSurvived is returned when the view is still served after logout.
	ErrSessionSurvived = errors.New("session still valid after logout")
	// ErrViolations is returned when the cascade checks fail.
	ErrViolations = errors.New("cascade violations")
)
