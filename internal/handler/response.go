package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/hospital-dashboard/internal/service/rbac"
	apperrors "github.com/jwalitptl/hospital-dashboard/pkg/errors"
)

type Response struct {
	Status   string      `json:"status"`
	Message  string      `json:"message,omitempty"`
	Kind     string      `json:"kind,omitempty"`
	Redirect string      `json:"redirect,omitempty"`
	Data     interface{} `json:"data,omitempty"`
}

func NewSuccessResponse(data interface{}) *Response {
	return &Response{
		Status: "success",
		Data:   data,
	}
}

func NewErrorResponse(message string) *Response {
	return &Response{
		Status:  "error",
		Message: message,
	}
}

// NewAuthErrorResponse tells the dashboard to clear its state and go to the login page.
func NewAuthErrorResponse(message string) *Response {
	return &Response{
		Status:   "error",
		Message:  message,
		Kind:     string(apperrors.KindAuth),
		Redirect: rbac.LoginPath,
	}
}

// RespondError writes err as JSON. AppErrors keep their status and kind;
// anything else is a 500 with a generic message.
func RespondError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		c.AbortWithStatusJSON(http.StatusInternalServerError, NewErrorResponse("internal server error"))
		return
	}
	if appErr.Kind == apperrors.KindAuth {
		c.AbortWithStatusJSON(appErr.StatusCode(), NewAuthErrorResponse(appErr.Message))
		return
	}
	resp := NewErrorResponse(appErr.Message)
	resp.Kind = string(appErr.Kind)
	c.AbortWithStatusJSON(appErr.StatusCode(), resp)
}
