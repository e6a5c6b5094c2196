package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type JSONResponse struct {
	Status     bool        `json:"status"`
	StatusCode int         `json:"statusCode"`
	Message    string      `json:"message"`
	Data       interface{} `json:"data,omitempty"`
	Meta       interface{} `json:"meta,omitempty"`
}

func RespondJSON(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, JSONResponse{
		Status:     code >= 200 && code < 300,
		StatusCode: code,
		Message:    message,
		Data:       data,
	})
}

// RespondPage writes a list response with pagination meta.
func RespondPage(c *gin.Context, message string, data interface{}, meta PageMeta) {
	c.JSON(http.StatusOK, JSONResponse{
		Status:     true,
		StatusCode: http.StatusOK,
		Message:    message,
		Data:       data,
		Meta:       meta,
	})
}

// RespondAppError maps err onto its HTTP status. Persistence failures are
// logged in full and reported to the caller with a generic message.
func RespondAppError(c *gin.Context, err error) {
	code := HTTPStatus(err)
	msg := err.Error()
	if code == http.StatusInternalServerError {
		ErrorLogger.WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
		}).Errorf("request failed: %v", err)
		msg = "internal server error"
	}
	c.AbortWithStatusJSON(code, JSONResponse{
		Status:     false,
		StatusCode: code,
		Message:    msg,
	})
}
