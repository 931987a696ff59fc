package authflow

import "errors"

var (
	// ErrNotReady is returned when the orchestrator is missing a dependency.
	ErrNotReady = errors.New("orchestrator not initialized")
	// ErrAttemptInFlight rejects a second submission while one is in flight.
	ErrAttemptInFlight = errors.New("submission already in flight")
	// ErrInvalidCredentials covers a rejected email/password pair.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrEmailNotVerified means the account exists but is unverified.
	ErrEmailNotVerified = errors.New("email not verified")
	// ErrEmailAlreadyRegistered means sign-up hit an existing account.
	ErrEmailAlreadyRegistered = errors.New("email already registered")
	// ErrRateLimited covers backend throttling and active local cooldowns.
	ErrRateLimited = errors.New("rate limited")
	// ErrNetworkTimeout means the bounded wait elapsed; the backend may have
	// succeeded anyway.
	ErrNetworkTimeout = errors.New("network timeout")
	// ErrUnknownEmail means a reset was requested for a nonexistent account.
	ErrUnknownEmail = errors.New("unknown email")
	// ErrServiceUnavailable covers transport-level collaborator failures.
	ErrServiceUnavailable = errors.New("service unavailable")
	// ErrValidationFormat covers purely local format failures that never
	// reach the remote layer.
	ErrValidationFormat = errors.New("validation format error")
	// ErrPasswordPolicy rejects a sign-up password below the strength floor.
	ErrPasswordPolicy = errors.New("password policy violation")
	// ErrResetEmailUnconfirmed rejects a reset submission before the
	// debounced existence check has confirmed the address.
	ErrResetEmailUnconfirmed = errors.New("reset email existence not confirmed")
	// ErrUnclassified wraps collaborator failures no kind matched.
	ErrUnclassified = errors.New("unclassified auth error")
)
