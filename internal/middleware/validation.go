package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/degreeplan/internal/app/models/dto"
	"github.com/yigit/degreeplan/internal/pkg/validation"
)

// BindJSON decodes the request body into obj and validates it against its
// `validate` tags. On failure it writes a 400 response, aborts the request
// and returns false.
func BindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid request format").
			WithDetails(err.Error())
		c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return false
	}

	if problems := validation.Struct(obj); len(problems) > 0 {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, problems[0].Message).
			WithField(problems[0].Field).
			WithDetails(problems)
		c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return false
	}
	return true
}
