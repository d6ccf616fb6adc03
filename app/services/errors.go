package services

import "fmt"

// TokenExchangeError is returned when the identity provider rejects an
// authorization code. Status is 0 when no HTTP response was received.
type TokenExchangeError struct {
	Status int
	Err    error
}

func (e *TokenExchangeError) Error() string {
	return fmt.Sprintf("token exchange failed (status %d): %v", e.Status, e.Err)
}

func (e *TokenExchangeError) Unwrap() error { return e.Err }

// UserInfoError is returned when the user-info endpoint answers non-2xx.
type UserInfoError struct {
	Status int
	Err    error
}

func (e *UserInfoError) Error() string {
	return fmt.Sprintf("failed to fetch user info (status %d): %v", e.Status, e.Err)
}

func (e *UserInfoError) Unwrap() error { return e.Err }

// UnexpectedStatusError is returned by the store-link lookup for any status
// other than 200 and 400.
type UnexpectedStatusError struct {
	Status int
}

func (e *UnexpectedStatusError) Error() string {
	return fmt.Sprintf("unexpected status code: %d", e.Status)
}

// LinkRejectedError is returned when a manually entered store ID is refused.
// Message is the upstream response text shown to the operator.
type LinkRejectedError struct {
	Status  int
	Message string
}

func (e *LinkRejectedError) Error() string {
	return fmt.Sprintf("store link rejected (status %d): %s", e.Status, e.Message)
}
