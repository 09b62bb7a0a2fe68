package v1

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dmehra2102/prod-golang-projects/clinicdesk/internal/domain/ticket"
)

type APIResponse[T any] struct {
	Data T `json:"data"`
}

type ErrorResponse struct {
	Error   string            `json:"error"`
	Code    string            `json:"code,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

func respondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, APIResponse[any]{Data: data})
}

// respondServiceError maps domain errors to responses; details, if any, are
// passed through to the client.
func respondServiceError(c *gin.Context, err error, details map[string]string) {
	switch {
	case errors.Is(err, ticket.ErrTicketNotWaiting):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error(), Code: "TICKET_NOT_WAITING", Details: details})

	default:
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
	}
}

func parseTicket(c *gin.Context, param string) (int, bool) {
	raw := c.Param(param)
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid " + param + ": must be a positive integer"})
		return 0, false
	}
	return n, true
}
