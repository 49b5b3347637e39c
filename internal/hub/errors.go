package hub

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"syscall"
)

// Error types for Videohub protocol operations

// ErrorType represents the category of error that occurred
type ErrorType int

const (
	// ErrTypeConnect indicates the TCP connection could not be established
	ErrTypeConnect ErrorType = iota
	// ErrTypeSend indicates a command could not be written to the socket
	ErrTypeSend
	// ErrTypeReceive indicates a hard read failure (not an idle timeout)
	ErrTypeReceive
	// ErrTypeTimeout indicates the dial or an operation timed out
	ErrTypeTimeout
	// ErrTypeConnectionRefused indicates the hub refused the connection
	ErrTypeConnectionRefused
	// ErrTypeDNS indicates a DNS resolution failure
	ErrTypeDNS
	// ErrTypeParse indicates a record could not be parsed in strict mode
	ErrTypeParse
	// ErrTypeValidation indicates an invalid target or argument
	ErrTypeValidation
	// ErrTypePrecondition indicates an operation was requested before its inputs exist
	ErrTypePrecondition
	// ErrTypeUnknown indicates an unknown or unexpected error
	ErrTypeUnknown
)

// NetworkErrorSubtype provides more specific network error classification
type NetworkErrorSubtype int

const (
	NetworkErrorGeneral NetworkErrorSubtype = iota
	NetworkErrorTimeout
	NetworkErrorConnectionRefused
	NetworkErrorConnectionReset
	NetworkErrorDNS
	NetworkErrorHostUnreachable
	NetworkErrorNetworkUnreachable
)

// String returns a human-readable name for the error type
func (et ErrorType) String() string {
	switch et {
	case ErrTypeConnect:
		return "Connect Error"
	case ErrTypeSend:
		return "Send Error"
	case ErrTypeReceive:
		return "Receive Error"
	case ErrTypeTimeout:
		return "Timeout"
	case ErrTypeConnectionRefused:
		return "Connection Refused"
	case ErrTypeDNS:
		return "DNS Error"
	case ErrTypeParse:
		return "Parse Error"
	case ErrTypeValidation:
		return "Validation Error"
	case ErrTypePrecondition:
		return "Precondition"
	case ErrTypeUnknown:
		return "Unknown Error"
	default:
		return fmt.Sprintf("ErrorType(%d)", et)
	}
}

// DeviceError represents an error that occurred while talking to a hub
type DeviceError struct {
	Type           ErrorType           // Category of error
	Message        string              // Human-readable error message
	Err            error               // Underlying error (if any)
	NetworkSubtype NetworkErrorSubtype // More specific network error type
	Address        string              // host:port of the hub (for context)
	Output         int                 // Output index for per-route send failures, -1 otherwise
	Retryable      bool                // Whether the operation may succeed if repeated
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

// errnoClasses maps socket errnos seen when dialing a hub to an error class
var errnoClasses = []struct {
	errno   syscall.Errno
	typ     ErrorType
	subtype NetworkErrorSubtype
	message string
}{
	{syscall.ECONNREFUSED, ErrTypeConnectionRefused, NetworkErrorConnectionRefused, "Hub refused connection"},
	{syscall.ECONNRESET, ErrTypeConnect, NetworkErrorConnectionReset, "Connection reset by hub"},
	{syscall.EPIPE, ErrTypeConnect, NetworkErrorConnectionReset, "Connection reset by hub"},
	{syscall.EHOSTUNREACH, ErrTypeConnect, NetworkErrorHostUnreachable, "Host unreachable"},
	{syscall.ENETUNREACH, ErrTypeConnect, NetworkErrorNetworkUnreachable, "Network unreachable"},
}

// ClassifyNetworkError maps a dial error to a specific error type.
// Anything not recognised becomes a generic ErrTypeConnect.
func ClassifyNetworkError(err error, address string) *DeviceError {
	if err == nil {
		return nil
	}

	e := &DeviceError{
		Type:           ErrTypeConnect,
		Message:        "Network error occurred",
		Err:            err,
		NetworkSubtype: NetworkErrorGeneral,
		Address:        address,
		Output:         -1,
		Retryable:      true,
	}

	var dnsErr *net.DNSError
	switch {
	case os.IsTimeout(err):
		e.Type, e.NetworkSubtype, e.Message = ErrTypeTimeout, NetworkErrorTimeout, "Connection timed out"
	case errors.As(err, &dnsErr):
		e.Type, e.NetworkSubtype = ErrTypeDNS, NetworkErrorDNS
		e.Message = "DNS resolution failed for " + dnsErr.Name
		e.Retryable = false
	default:
		for _, c := range errnoClasses {
			if errors.Is(err, c.errno) {
				e.Type, e.NetworkSubtype, e.Message = c.typ, c.subtype, c.message
				break
			}
		}
	}
	return e
}

// NewConnectError creates a connection error with automatic classification
func NewConnectError(address string, err error) *DeviceError {
	classified := ClassifyNetworkError(err, address)
	if classified != nil {
		classified.Message = fmt.Sprintf("cannot connect to %s: %s", address, strings.ToLower(classified.Message))
		return classified
	}
	return &DeviceError{
		Type:      ErrTypeConnect,
		Message:   fmt.Sprintf("cannot connect to %s", address),
		Address:   address,
		Output:    -1,
		Retryable: true,
	}
}

// NewSendError creates a send error. output is -1 for non-route commands.
func NewSendError(message string, output int, err error) *DeviceError {
	return &DeviceError{
		Type:      ErrTypeSend,
		Message:   message,
		Err:       err,
		Output:    output,
		Retryable: true,
	}
}

// NewReceiveError creates a hard receive error
func NewReceiveError(message string, err error) *DeviceError {
	return &DeviceError{
		Type:      ErrTypeReceive,
		Message:   message,
		Err:       err,
		Output:    -1,
		Retryable: true,
	}
}

// NewParseError creates a parsing error
func NewParseError(message string, err error) *DeviceError {
	return &DeviceError{
		Type:    ErrTypeParse,
		Message: message,
		Err:     err,
		Output:  -1,
	}
}

// NewValidationError creates a validation error
func NewValidationError(message string) *DeviceError {
	return &DeviceError{
		Type:    ErrTypeValidation,
		Message: message,
		Output:  -1,
	}
}

// NewPreconditionError reports an operation that was requested out of order
// (compare before read, save with nothing fetched, and so on).
func NewPreconditionError(message string) *DeviceError {
	return &DeviceError{
		Type:    ErrTypePrecondition,
		Message: message,
		Output:  -1,
	}
}

func asDeviceError(err error) (*DeviceError, bool) {
	var devErr *DeviceError
	if errors.As(err, &devErr) {
		return devErr, true
	}
	return nil, false
}

// IsConnectError checks if an error happened while establishing the connection
// (including timeout, connection refused and DNS).
func IsConnectError(err error) bool {
	if devErr, ok := asDeviceError(err); ok {
		return devErr.Type == ErrTypeConnect ||
			devErr.Type == ErrTypeTimeout ||
			devErr.Type == ErrTypeConnectionRefused ||
			devErr.Type == ErrTypeDNS
	}
	return false
}

// IsSendError checks if an error is a send error
func IsSendError(err error) bool {
	if devErr, ok := asDeviceError(err); ok {
		return devErr.Type == ErrTypeSend
	}
	return false
}

// IsReceiveError checks if an error is a hard receive error
func IsReceiveError(err error) bool {
	if devErr, ok := asDeviceError(err); ok {
		return devErr.Type == ErrTypeReceive
	}
	return false
}

// IsParseError checks if an error is a parse error
func IsParseError(err error) bool {
	if devErr, ok := asDeviceError(err); ok {
		return devErr.Type == ErrTypeParse
	}
	return false
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	if devErr, ok := asDeviceError(err); ok {
		return devErr.Type == ErrTypeValidation
	}
	return false
}

// IsPreconditionError checks if an error is a precondition violation
func IsPreconditionError(err error) bool {
	if devErr, ok := asDeviceError(err); ok {
		return devErr.Type == ErrTypePrecondition
	}
	return false
}

// IsRetryable checks if an error may succeed when the operation is repeated
func IsRetryable(err error) bool {
	if devErr, ok := asDeviceError(err); ok {
		return devErr.Retryable
	}
	return false
}

// isIdle reports whether a read error just means the wait window expired or
// the hub closed its side. Both end a reply; neither is a failure.
func isIdle(err error) bool {
	if errors.Is(err, io.EOF) || os.IsTimeout(err) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// GetTroubleshootingHint returns user-friendly troubleshooting advice for an error
func GetTroubleshootingHint(err error) string {
	devErr, ok := asDeviceError(err)
	if !ok {
		return "An unexpected error occurred. Please try again."
	}

	switch devErr.Type {
	case ErrTypeTimeout:
		return strings.Join([]string{
			"The hub did not accept the connection in time.",
			"Troubleshooting:",
			"  • Check that the hub is powered on and cabled to the network",
			"  • Verify the IP address on the hub's front panel or setup utility",
			"  • Make sure this computer is on the same subnet as the hub",
		}, "\n")

	case ErrTypeConnectionRefused:
		return strings.Join([]string{
			"The hub refused the connection.",
			"Troubleshooting:",
			"  • Verify the port number (default is 9990)",
			"  • Another control application may be holding the hub's only session",
			"  • Power-cycle the hub if the control port stopped listening",
		}, "\n")

	case ErrTypeDNS:
		return strings.Join([]string{
			"Could not resolve the hub hostname.",
			"Troubleshooting:",
			"  • Use the IP address instead of a hostname",
			"  • Check your network DNS settings",
		}, "\n")

	case ErrTypeConnect:
		hint := []string{"Network communication failed."}

		switch devErr.NetworkSubtype {
		case NetworkErrorHostUnreachable:
			addr := devErr.Address
			if host, _, splitErr := net.SplitHostPort(addr); splitErr == nil {
				addr = host
			}
			hint = append(hint, "The hub is not reachable on the network.",
				"Troubleshooting:",
				"  • Verify the hub IP address is correct",
				"  • Try pinging the hub: ping "+addr)

		case NetworkErrorNetworkUnreachable:
			hint = append(hint, "Your computer cannot reach the hub's network.",
				"Troubleshooting:",
				"  • Check your network adapter settings",
				"  • Add a route or address on the hub's subnet")

		default:
			hint = append(hint, "Troubleshooting:",
				"  • Check your network connection",
				"  • Verify the hub is powered on")
		}

		return strings.Join(hint, "\n")

	case ErrTypeSend, ErrTypeReceive:
		return strings.Join([]string{
			"The connection dropped while talking to the hub.",
			"Troubleshooting:",
			"  • Run the operation again",
			"  • Check cabling and switch ports between this computer and the hub",
		}, "\n")

	case ErrTypeParse:
		return strings.Join([]string{
			"The hub sent a record that could not be parsed.",
			"Strict parsing is enabled; disable it to skip malformed records.",
		}, "\n")

	case ErrTypeValidation:
		return "The values are invalid. Check the error message for details."

	case ErrTypePrecondition:
		return "Read the hub and load a preset first."

	default:
		return "An error occurred. Please check the error message for details."
	}
}

// GetShortErrorMessage returns a concise, user-friendly error message
func GetShortErrorMessage(err error) string {
	devErr, ok := asDeviceError(err)
	if !ok {
		return err.Error()
	}

	switch devErr.Type {
	case ErrTypeTimeout:
		return "Hub not responding (timeout)"
	case ErrTypeConnectionRefused:
		return "Hub refused connection - check the port"
	case ErrTypeDNS:
		return "Cannot resolve hub hostname"
	case ErrTypeConnect:
		switch devErr.NetworkSubtype {
		case NetworkErrorHostUnreachable:
			return "Hub unreachable - check network connection"
		case NetworkErrorNetworkUnreachable:
			return "Network unreachable - check network settings"
		case NetworkErrorConnectionReset:
			return "Connection reset by hub"
		default:
			return "Network error - check connection"
		}
	case ErrTypeSend:
		if devErr.Output >= 0 {
			return fmt.Sprintf("Failed to send route for output %d", devErr.Output+1)
		}
		return "Failed to send command to hub"
	case ErrTypeReceive:
		return "Failed to read reply from hub"
	case ErrTypeParse:
		return "Failed to parse hub reply"
	default:
		return devErr.Message
	}
}
