package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Registry errors
const (
	// ErrCodeInvalidName indicates an operation or binding name is not an identifier.
	ErrCodeInvalidName ErrorCode = "INVALID_NAME"
	// ErrCodeReservedName indicates a name collides with internal bookkeeping keys.
	ErrCodeReservedName ErrorCode = "RESERVED_NAME"
	// ErrCodeNilOperation indicates a registry entry has no function.
	ErrCodeNilOperation ErrorCode = "NIL_OPERATION"
	// ErrCodeNameConflict indicates a binding name is a registered operation.
	ErrCodeNameConflict ErrorCode = "NAME_CONFLICT"
)

// Protocol errors
const (
	// ErrCodePendingOpen indicates a binding was opened while another was pending.
	ErrCodePendingOpen ErrorCode = "PENDING_OPEN"
	// ErrCodeNilResult indicates an operation or sequence produced a nil Result.
	ErrCodeNilResult ErrorCode = "NIL_RESULT"
	// ErrCodePanic indicates a sequence or operation panicked.
	ErrCodePanic ErrorCode = "PANIC"
	// ErrCodeStepLimit indicates a run exceeded its configured step budget.
	ErrCodeStepLimit ErrorCode = "STEP_LIMIT"
)

// Runtime errors
const (
	// ErrCodeCancelled indicates the run context was cancelled between steps.
	ErrCodeCancelled ErrorCode = "CANCELLED"
	// ErrCodeInvalidConfig indicates configuration failed validation.
	ErrCodeInvalidConfig ErrorCode = "INVALID_CONFIG"
)

var protocolCodes = map[ErrorCode]bool{
	ErrCodePendingOpen:  true,
	ErrCodeNilResult:    true,
	ErrCodePanic:        true,
	ErrCodeStepLimit:    true,
	ErrCodeInvalidName:  true,
	ErrCodeReservedName: true,
	ErrCodeNameConflict: true,
}

// IsProtocolCode reports whether code describes a sequence that broke the
// Result protocol or misused a stack while running, as opposed to a
// configuration or cancellation problem.
func IsProtocolCode(code ErrorCode) bool {
	return protocolCodes[code]
}
