package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pocketledger/internal/core"
)

// response is the JSON envelope of every endpoint.
type response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Demo    bool   `json:"demo,omitempty"`
}

func statusFor(k core.Kind) int {
	switch k {
	case core.KindValidation:
		return http.StatusBadRequest
	case core.KindNotFound:
		return http.StatusNotFound
	case core.KindUnauthorized:
		return http.StatusUnauthorized
	case core.KindUnconfigured:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeOK(c *gin.Context, status int, data any) {
	c.JSON(status, response{Success: true, Data: data})
}

func writeError(c *gin.Context, err error) {
	writeFailure(c, core.KindOf(err), err.Error())
}

func writeFailure(c *gin.Context, kind core.Kind, msg string) {
	c.JSON(statusFor(kind), response{Error: msg})
}

// writeResult renders res through view, or its failure with the mapped status.
func writeResult[T, V any](c *gin.Context, status int, res core.Result[T], view func(T) V) {
	if !res.Success {
		writeFailure(c, res.Kind, res.Error)
		return
	}
	writeOK(c, status, view(res.Data))
}

func identity[T any](v T) T { return v }
