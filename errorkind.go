package authflow

import (
	"context"
	"errors"
	"strings"
)

// ErrorKind is the closed classification of failure causes used to select
// user-facing remediation text. Remote errors classify by inspecting the
// collaborator's message payload; local errors classify directly.
type ErrorKind uint8

const (
	ErrorKindUnclassified ErrorKind = iota
	ErrorKindInvalidCredentials
	ErrorKindEmailNotVerified
	ErrorKindEmailAlreadyRegistered
	ErrorKindRateLimited
	ErrorKindNetworkTimeout
	ErrorKindUnknownEmail
	ErrorKindServiceUnavailable
	ErrorKindValidationFormat
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorKindInvalidCredentials:
		return "invalid_credentials"
	case ErrorKindEmailNotVerified:
		return "email_not_verified"
	case ErrorKindEmailAlreadyRegistered:
		return "email_already_registered"
	case ErrorKindRateLimited:
		return "rate_limited"
	case ErrorKindNetworkTimeout:
		return "network_timeout"
	case ErrorKindUnknownEmail:
		return "unknown_email"
	case ErrorKindServiceUnavailable:
		return "service_unavailable"
	case ErrorKindValidationFormat:
		return "validation_format"
	default:
		return "unclassified"
	}
}

// Sentinel returns the package error corresponding to the kind, so callers
// can branch with errors.Is.
func (k ErrorKind) Sentinel() error {
	switch k {
	case ErrorKindInvalidCredentials:
		return ErrInvalidCredentials
	case ErrorKindEmailNotVerified:
		return ErrEmailNotVerified
	case ErrorKindEmailAlreadyRegistered:
		return ErrEmailAlreadyRegistered
	case ErrorKindRateLimited:
		return ErrRateLimited
	case ErrorKindNetworkTimeout:
		return ErrNetworkTimeout
	case ErrorKindUnknownEmail:
		return ErrUnknownEmail
	case ErrorKindServiceUnavailable:
		return ErrServiceUnavailable
	case ErrorKindValidationFormat:
		return ErrValidationFormat
	default:
		return ErrUnclassified
	}
}

// ClassifyServiceError maps a collaborator failure to an ErrorKind. The
// payload contract is {error: {message}, rateLimited?}: the flag wins, then
// message content matching, then timeout detection. Unmatched errors land on
// ErrorKindUnclassified and keep the raw message for display.
func ClassifyServiceError(err error) ErrorKind {
	if err == nil {
		return ErrorKindUnclassified
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorKindNetworkTimeout
	}

	var svcErr *ServiceError
	if !errors.As(err, &svcErr) {
		return ErrorKindServiceUnavailable
	}
	if svcErr.RateLimited {
		return ErrorKindRateLimited
	}

	msg := strings.ToLower(svcErr.Message)
	switch {
	case strings.Contains(msg, "invalid login credentials"),
		strings.Contains(msg, "invalid credentials"),
		strings.Contains(msg, "invalid email or password"):
		return ErrorKindInvalidCredentials
	case strings.Contains(msg, "not confirmed"),
		strings.Contains(msg, "not verified"):
		return ErrorKindEmailNotVerified
	case strings.Contains(msg, "already registered"),
		strings.Contains(msg, "already exists"),
		strings.Contains(msg, "already in use"):
		return ErrorKindEmailAlreadyRegistered
	case strings.Contains(msg, "rate limit"),
		strings.Contains(msg, "too many requests"),
		strings.Contains(msg, "too many attempts"):
		return ErrorKindRateLimited
	case strings.Contains(msg, "user not found"),
		strings.Contains(msg, "no user found"),
		strings.Contains(msg, "no account"):
		return ErrorKindUnknownEmail
	case strings.Contains(msg, "timeout"),
		strings.Contains(msg, "timed out"):
		return ErrorKindNetworkTimeout
	case strings.Contains(msg, "service unavailable"),
		strings.Contains(msg, "connection refused"),
		strings.Contains(msg, "network"):
		return ErrorKindServiceUnavailable
	default:
		return ErrorKindUnclassified
	}
}

// remediationText is the per-kind guidance copy attached to ErrorInfo.
//
// Enumeration-safety policy: sign-up availability is only hinted client-side
// and its error copy never confirms existence beyond what the backend already
// reveals, while password reset deliberately confirms non-existence so the
// user can be offered account creation instead. Keep both halves here so the
// policy can be flipped in one place.
func remediationText(kind ErrorKind) string {
	switch kind {
	case ErrorKindInvalidCredentials:
		return "Check your email and password and try again."
	case ErrorKindEmailNotVerified:
		return "Verify your email to continue. We can resend the verification link."
	case ErrorKindEmailAlreadyRegistered:
		return "This email is already registered. Try signing in or resetting your password."
	case ErrorKindRateLimited:
		return "Too many attempts. Wait for the cooldown to finish before trying again."
	case ErrorKindNetworkTimeout:
		return "The request timed out but may still have gone through. Check your email, or try signing in before retrying."
	case ErrorKindUnknownEmail:
		return "No account exists for this email. You can create one instead."
	case ErrorKindServiceUnavailable:
		return "The service is temporarily unreachable. Try again in a moment."
	case ErrorKindValidationFormat:
		return "Fix the highlighted fields before submitting."
	default:
		return "Something went wrong. Try again, and contact support if it keeps happening."
	}
}

// newErrorInfo builds the displayable error for a classified failure,
// preserving the raw message as the unclassified fallback.
func newErrorInfo(kind ErrorKind, err error, email string) *ErrorInfo {
	info := &ErrorInfo{
		Kind:        kind,
		Remediation: remediationText(kind),
	}
	if err != nil {
		info.Message = err.Error()
	}
	if kind == ErrorKindEmailNotVerified {
		info.Email = email
	}
	return info
}
