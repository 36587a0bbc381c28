package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/ModularHallway100/harmony-backend/internal/pkg/errors"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}

// StatusForKind maps an error kind to its HTTP status.
func StatusForKind(kind apperrors.Kind) int {
	switch kind {
	case apperrors.KindNotFound:
		return http.StatusNotFound
	case apperrors.KindConstraintViolation, apperrors.KindDuplicateKey:
		return http.StatusConflict
	case apperrors.KindInvalidArgument, apperrors.KindInvalidKeyFormat:
		return http.StatusBadRequest
	case apperrors.KindRateLimited:
		return http.StatusTooManyRequests
	case apperrors.KindConfiguration, apperrors.KindConnectivity:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// RespondServiceError writes err in the error envelope with a status
// derived from its kind. Internal errors are not echoed to the client.
func RespondServiceError(c *gin.Context, err error) {
	kind := apperrors.KindOf(err)
	status := StatusForKind(kind)
	_ = c.Error(err)
	if status == http.StatusInternalServerError {
		c.JSON(status, ErrorEnvelope{Error: APIError{Message: "internal server error", Code: string(apperrors.KindInternal)}})
		return
	}
	RespondError(c, status, string(kind), err)
}

func RespondNotFound(c *gin.Context, what string) {
	c.JSON(http.StatusNotFound, ErrorEnvelope{Error: APIError{Message: what + " not found", Code: string(apperrors.KindNotFound)}})
}
