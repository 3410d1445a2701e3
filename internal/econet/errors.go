package econet

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"syscall"
)

// ErrorType represents the category of error that occurred
type ErrorType int

const (
	// ErrTypeNetwork indicates a network-level error (connection reset, unreachable host, etc.)
	ErrTypeNetwork ErrorType = iota
	// ErrTypeAuth indicates the controller rejected the credentials (HTTP 401)
	ErrTypeAuth
	// ErrTypeHTTP indicates an HTTP-level error (non-200 status code)
	ErrTypeHTTP
	// ErrTypeParse indicates a malformed or non-object JSON payload
	ErrTypeParse
	// ErrTypeData indicates a registry payload or key was missing after a fetch
	ErrTypeData
	// ErrTypeValidation indicates a value outside the parameter's limits
	ErrTypeValidation
	// ErrTypeTimeout indicates a request attempt timed out
	ErrTypeTimeout
	// ErrTypeConnectionRefused indicates the controller refused the connection
	ErrTypeConnectionRefused
	// ErrTypeDNS indicates a DNS resolution failure
	ErrTypeDNS
)

// String returns a human-readable name for the error type
func (et ErrorType) String() string {
	switch et {
	case ErrTypeNetwork:
		return "Network Error"
	case ErrTypeAuth:
		return "Authentication Error"
	case ErrTypeHTTP:
		return "HTTP Error"
	case ErrTypeParse:
		return "Parse Error"
	case ErrTypeData:
		return "Data Error"
	case ErrTypeValidation:
		return "Validation Error"
	case ErrTypeTimeout:
		return "Timeout"
	case ErrTypeConnectionRefused:
		return "Connection Refused"
	case ErrTypeDNS:
		return "DNS Error"
	default:
		return fmt.Sprintf("ErrorType(%d)", et)
	}
}

// DeviceError represents an error that occurred while talking to the controller
type DeviceError struct {
	Type       ErrorType // Category of error
	Message    string    // Human-readable error message
	StatusCode int       // HTTP status code (if applicable)
	Err        error     // Underlying error (if any)
	Host       string    // Controller host (for context)
	Retryable  bool      // Whether the transport may retry this attempt
}

// Error implements the error interface
func (e *DeviceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error for error chain inspection
func (e *DeviceError) Unwrap() error {
	return e.Err
}

// ClassifyNetworkError analyzes a request error and returns a typed DeviceError.
// Only timeouts are retryable: the controller either answers within the
// per-attempt budget or the failure is reported to the caller as-is.
func ClassifyNetworkError(err error, host string) *DeviceError {
	if err == nil {
		return nil
	}

	if os.IsTimeout(err) || errors.Is(err, context.DeadlineExceeded) {
		return &DeviceError{
			Type:      ErrTypeTimeout,
			Message:   "Request timed out",
			Err:       err,
			Host:      host,
			Retryable: true,
		}
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return &DeviceError{
			Type:    ErrTypeDNS,
			Message: fmt.Sprintf("DNS resolution failed for %s", dnsErr.Name),
			Err:     err,
			Host:    host,
		}
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if errors.Is(opErr.Err, syscall.ECONNREFUSED) {
			return &DeviceError{
				Type:    ErrTypeConnectionRefused,
				Message: "Controller refused connection",
				Err:     err,
				Host:    host,
			}
		}
		if errors.Is(opErr.Err, syscall.EHOSTUNREACH) {
			return &DeviceError{
				Type:    ErrTypeNetwork,
				Message: "Host unreachable",
				Err:     err,
				Host:    host,
			}
		}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil {
		return ClassifyNetworkError(urlErr.Err, host)
	}

	return &DeviceError{
		Type:    ErrTypeNetwork,
		Message: "Network error occurred",
		Err:     err,
		Host:    host,
	}
}

// NewNetworkError creates a network-level error with automatic classification
func NewNetworkError(message string, err error) *DeviceError {
	classified := ClassifyNetworkError(err, "")
	if classified != nil {
		classified.Message = message
		return classified
	}
	return &DeviceError{
		Type:    ErrTypeNetwork,
		Message: message,
		Err:     err,
	}
}

// NewAuthError creates an authentication error
func NewAuthError(message string) *DeviceError {
	return &DeviceError{
		Type:       ErrTypeAuth,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

// NewHTTPError creates an HTTP-level error
func NewHTTPError(statusCode int, message string) *DeviceError {
	return &DeviceError{
		Type:       ErrTypeHTTP,
		Message:    message,
		StatusCode: statusCode,
	}
}

// NewParseError creates a parsing error
func NewParseError(message string, err error) *DeviceError {
	return &DeviceError{
		Type:    ErrTypeParse,
		Message: message,
		Err:     err,
	}
}

// NewDataError creates a data error for a missing payload or key
func NewDataError(message string) *DeviceError {
	return &DeviceError{
		Type:    ErrTypeData,
		Message: message,
	}
}

// NewValidationError creates a validation error
func NewValidationError(message string) *DeviceError {
	return &DeviceError{
		Type:    ErrTypeValidation,
		Message: message,
	}
}

func hasType(err error, types ...ErrorType) bool {
	var devErr *DeviceError
	if !errors.As(err, &devErr) {
		return false
	}
	for _, t := range types {
		if devErr.Type == t {
			return true
		}
	}
	return false
}

// IsNetworkError checks if an error is a network error (including timeout, connection refused, DNS)
func IsNetworkError(err error) bool {
	return hasType(err, ErrTypeNetwork, ErrTypeTimeout, ErrTypeConnectionRefused, ErrTypeDNS)
}

// IsTimeoutError checks if an error is a request timeout
func IsTimeoutError(err error) bool {
	return hasType(err, ErrTypeTimeout)
}

// IsAuthError checks if an error is an authentication error
func IsAuthError(err error) bool {
	return hasType(err, ErrTypeAuth)
}

// IsDataError checks if an error is a data error
func IsDataError(err error) bool {
	return hasType(err, ErrTypeData)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return hasType(err, ErrTypeValidation)
}

// IsRetryable checks if an error should be retried
func IsRetryable(err error) bool {
	var devErr *DeviceError
	if errors.As(err, &devErr) {
		return devErr.Retryable
	}
	return false
}

// GetTroubleshootingHint returns user-friendly troubleshooting advice for an error
func GetTroubleshootingHint(err error) []string {
	var devErr *DeviceError
	if !errors.As(err, &devErr) {
		return nil
	}

	switch devErr.Type {
	case ErrTypeAuth:
		return []string{
			"The controller rejected the username or password.",
			"Check the credentials configured on the ecoNET-300 module",
			"Pass --password or set ECONET_PASSWORD",
		}
	case ErrTypeData:
		return []string{
			"The controller answered but the payload was incomplete.",
			"The module may still be booting, try again in a minute",
			"Older firmwares may not expose every registry",
		}
	case ErrTypeTimeout, ErrTypeNetwork, ErrTypeConnectionRefused:
		return []string{
			"The controller could not be reached.",
			"Check that the ecoNET-300 module is powered and on the network",
			"Verify the host with: ping " + strings.TrimPrefix(strings.TrimPrefix(devErr.Host, "http://"), "https://"),
		}
	case ErrTypeDNS:
		return []string{
			"Could not resolve the controller hostname.",
			"Use the IP address instead of the hostname",
		}
	case ErrTypeValidation:
		return []string{
			"The value is outside the limits reported by the controller.",
			"Run 'econet-cfg limits <param>' to see the permitted range",
		}
	default:
		return nil
	}
}

// GetShortErrorMessage returns a concise, user-friendly error message
func GetShortErrorMessage(err error) string {
	var devErr *DeviceError
	if !errors.As(err, &devErr) {
		return err.Error()
	}

	switch devErr.Type {
	case ErrTypeTimeout:
		return "Controller not responding (timeout)"
	case ErrTypeConnectionRefused:
		return "Controller refused connection"
	case ErrTypeDNS:
		return "Cannot resolve controller hostname"
	case ErrTypeAuth:
		return "Authentication failed - check credentials"
	case ErrTypeNetwork:
		return "Network error - check connection"
	case ErrTypeHTTP:
		return fmt.Sprintf("Controller error (HTTP %d)", devErr.StatusCode)
	case ErrTypeParse:
		return "Failed to parse controller response"
	default:
		return devErr.Message
	}
}
