package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/yigit/degreeplan/internal/app/models/dto"
	"github.com/yigit/degreeplan/internal/pkg/apperrors"
)

// apiError pairs a sentinel with its HTTP status and error code.
type apiError struct {
	target  error
	status  int
	code    dto.ErrorCode
	message string
}

// apiErrors is checked in order; the first match wins.
var apiErrors = []apiError{
	{apperrors.ErrValidationFailed, http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Validation failed"},
	{apperrors.ErrBadRequest, http.StatusBadRequest, dto.ErrorCodeBadRequest, "Bad request"},
	{apperrors.ErrResourceNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Resource not found"},
	{apperrors.ErrResourceAlreadyExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Resource already exists"},
	{apperrors.ErrCategoryUnderSupply, http.StatusUnprocessableEntity, dto.ErrorCodeCategoryUnderSupply, "Not enough courses to meet the credit requirements"},
	{apperrors.ErrPrerequisiteUnreachable, http.StatusUnprocessableEntity, dto.ErrorCodePrerequisiteUnreachable, "A required course cannot meet its prerequisites"},
	{apperrors.ErrModelInfeasible, http.StatusUnprocessableEntity, dto.ErrorCodePlanInfeasible, "No plan satisfies the constraints"},
	{apperrors.ErrModelUnknown, http.StatusGatewayTimeout, dto.ErrorCodePlanUnknown, "Planning ran out of time"},
}

// aliases are sentinels that share a response with the key sentinel.
var aliases = map[error][]error{
	apperrors.ErrResourceNotFound: {apperrors.ErrCourseNotFound, apperrors.ErrProgramNotFound, apperrors.ErrMinorNotFound},
}

// HandleAPIError writes the JSON error response for err.
func HandleAPIError(c *gin.Context, err error) {
	for _, ae := range apiErrors {
		if !apperrors.Is(err, ae.target, aliases[ae.target]...) {
			continue
		}
		detail := dto.NewErrorDetail(ae.code, ae.message).WithDetails(errorDetails(err))
		if ae.status == http.StatusGatewayTimeout {
			detail = detail.WithSeverity(dto.ErrorSeverityWarning)
		}
		c.JSON(ae.status, dto.APIResponse{Error: detail, Timestamp: time.Now()})
		return
	}

	log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Unhandled API error")
	c.JSON(http.StatusInternalServerError, dto.APIResponse{
		Error:     dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error"),
		Timestamp: time.Now(),
	})
}

// errorDetails exposes the message and details of a CustomError.
func errorDetails(err error) map[string]interface{} {
	out := map[string]interface{}{"reason": err.Error()}
	for k, v := range apperrors.Details(err) {
		out[k] = v
	}
	return out
}
