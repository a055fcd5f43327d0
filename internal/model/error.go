package model

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Standard error codes for API responses
const (
	ErrCodeNoImage           = "NO_IMAGE"
	ErrCodeInvalidMealType   = "INVALID_MEAL_TYPE"
	ErrCodeMalformedAnalysis = "MALFORMED_ANALYSIS"
	ErrCodeDuplicateMeal     = "DUPLICATE_MEAL"
	ErrCodeInternalError     = "INTERNAL_ERROR"
)

// DomainError carries a stable code alongside a human-readable message
// so handlers can map business failures to status codes.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNoImage         = NewDomainError(ErrCodeNoImage, "No image provided")
	ErrInvalidMealType = NewDomainError(ErrCodeInvalidMealType, "Invalid mealType. Must be: breakfast, snack, lunch, dinner, or other")
	ErrDuplicateMeal   = NewDomainError(ErrCodeDuplicateMeal, "A meal with this ID already exists")
)
