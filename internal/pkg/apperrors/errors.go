package apperrors

import "errors"

// Common errors
var (
	// Resource errors
	ErrResourceNotFound      = errors.New("resource not found")
	ErrResourceAlreadyExists = errors.New("resource already exists")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")
)

// Catalog errors
var (
	ErrCourseNotFound       = errors.New("course not found")
	ErrProgramNotFound      = errors.New("program not found")
	ErrMinorNotFound        = errors.New("minor not found")
	ErrCourseAlreadyExists  = errors.New("course already exists")
	ErrProgramAlreadyExists = errors.New("program already exists")
	ErrMinorAlreadyExists   = errors.New("minor already exists")
)

// Planning errors. Each one ends a planning run without a plan.
var (
	ErrCategoryUnderSupply     = errors.New("candidate pool cannot supply the required credits")
	ErrPrerequisiteUnreachable = errors.New("required course has no reachable prerequisite path")
	ErrModelInfeasible         = errors.New("no plan satisfies the constraints")
	ErrModelUnknown            = errors.New("solver stopped without a result")
)

// NewBadRequestError creates a new custom error for bad request with a message
func NewBadRequestError(message string) error {
	return &CustomError{
		Err:     ErrBadRequest,
		Message: message,
	}
}

// NewNotFoundError wraps a specific not-found sentinel so it also matches
// ErrResourceNotFound.
func NewNotFoundError(err error, message string) error {
	return &CustomError{
		Err:     errors.Join(err, ErrResourceNotFound),
		Message: message,
	}
}

// NewAlreadyExistsError wraps a specific duplicate sentinel so it also
// matches ErrResourceAlreadyExists.
func NewAlreadyExistsError(err error, message string) error {
	return &CustomError{
		Err:     errors.Join(err, ErrResourceAlreadyExists),
		Message: message,
	}
}

// Is returns whether err matches target or any of the errors in errList
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}

	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}

	return false
}

// Details returns the details of the first CustomError in err's chain.
func Details(err error) map[string]interface{} {
	var ce *CustomError
	if errors.As(err, &ce) {
		return ce.Details
	}
	return nil
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
	Code    string
	Details map[string]interface{}
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewCustomError creates a CustomError with underlying error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}

// WithCode adds an error code
func (e *CustomError) WithCode(code string) *CustomError {
	e.Code = code
	return e
}
