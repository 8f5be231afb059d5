package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound      ErrCode = "NOT_FOUND"
	ErrTestNotFound  ErrCode = "TEST_NOT_FOUND"
	ErrNoResult      ErrCode = "NO_RESULT"
	ErrStateNotFound ErrCode = "STATE_NOT_FOUND"

	// ─── Test lifecycle ────────────────────────────────────────────────
	ErrNoQuestions      ErrCode = "NO_QUESTIONS"
	ErrTestNotStarted   ErrCode = "TEST_NOT_STARTED"
	ErrSubmitInFlight   ErrCode = "SUBMIT_IN_FLIGHT"
	ErrAlreadySubmitted ErrCode = "ALREADY_SUBMITTED"
	ErrInvalidFilter    ErrCode = "INVALID_FILTER"

	// ─── Upload ────────────────────────────────────────────────────────
	ErrFileRequired    ErrCode = "FILE_REQUIRED"
	ErrUnsupportedFile ErrCode = "UNSUPPORTED_FILE_TYPE"
	ErrFileTooLarge    ErrCode = "FILE_TOO_LARGE"

	// ─── Upstream / features ───────────────────────────────────────────
	ErrEvaluationFailed    ErrCode = "EVALUATION_FAILED"
	ErrCompanyModeDisabled ErrCode = "COMPANY_MODE_DISABLED"
	ErrCompanyRequired     ErrCode = "COMPANY_REQUIRED"
	ErrReportUnavailable   ErrCode = "REPORT_UNAVAILABLE"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid identifier format."
	case ErrInvalidPayload:
		return "Invalid request payload."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Resource not found."
	case ErrTestNotFound:
		return "Test session not found."
	case ErrNoResult:
		return "No result data available."
	case ErrStateNotFound:
		return "No saved session state for this test."

	// ─── Test lifecycle ────────────────────────────────────────────────
	case ErrNoQuestions:
		return "No questions found in the uploaded document."
	case ErrTestNotStarted:
		return "This test has not been started yet."
	case ErrSubmitInFlight:
		return "A submission for this test is already in progress."
	case ErrAlreadySubmitted:
		return "This test has already been submitted."
	case ErrInvalidFilter:
		return "Unknown review filter. Use all, incorrect or bookmarked."

	// ─── Upload ────────────────────────────────────────────────────────
	case ErrFileRequired:
		return "A file upload is required."
	case ErrUnsupportedFile:
		return "Only PDF files are supported."
	case ErrFileTooLarge:
		return "File size exceeds the upload limit."

	// ─── Upstream / features ───────────────────────────────────────────
	case ErrEvaluationFailed:
		return "The evaluation service could not be reached. Please try again."
	case ErrCompanyModeDisabled:
		return "Company-based assessments are disabled on this server."
	case ErrCompanyRequired:
		return "Company name is required."
	case ErrReportUnavailable:
		return "The PDF report could not be generated."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}
