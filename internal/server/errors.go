package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	auditdomain "github.com/mabdulrehman08/propmanager/internal/audit/domain"
	dashboarddomain "github.com/mabdulrehman08/propmanager/internal/dashboard/domain"
	historydomain "github.com/mabdulrehman08/propmanager/internal/history/domain"
	invoicedomain "github.com/mabdulrehman08/propmanager/internal/invoice/domain"
	paymentdomain "github.com/mabdulrehman08/propmanager/internal/payment/domain"
	settlementdomain "github.com/mabdulrehman08/propmanager/internal/settlement/domain"
)

// APIError is the wire shape for failed requests.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func (e *APIError) Error() string { return e.Code }

func invalidRequestError() *APIError {
	return &APIError{Status: http.StatusBadRequest, Code: "invalid_request", Message: "malformed request body"}
}

func newValidationError(field, code, message string) *APIError {
	return &APIError{Status: http.StatusBadRequest, Code: code, Message: message, Field: field}
}

var errNotFound = &APIError{Status: http.StatusNotFound, Code: "not_found", Message: "resource not found"}

// statusForError maps domain sentinels onto HTTP statuses. Unknown errors are
// surfaced as 500 without leaking internals.
func statusForError(err error) (int, string) {
	switch {
	case errors.Is(err, invoicedomain.ErrInvoiceNotFound),
		errors.Is(err, historydomain.ErrUnitNotFound),
		errors.Is(err, settlementdomain.ErrPropertyNotFound),
		errors.Is(err, paymentdomain.ErrPaymentNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, invoicedomain.ErrInvalidPeriod),
		errors.Is(err, invoicedomain.ErrInvalidAmount),
		errors.Is(err, historydomain.ErrInvalidRent),
		errors.Is(err, historydomain.ErrInvalidIncrease),
		errors.Is(err, historydomain.ErrInvalidStart),
		errors.Is(err, settlementdomain.ErrInvalidPeriod),
		errors.Is(err, dashboarddomain.ErrInvalidPeriod),
		errors.Is(err, auditdomain.ErrMissingAction),
		errors.Is(err, auditdomain.ErrMissingEntity):
		return http.StatusBadRequest, err.Error()
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// AbortWithError terminates the request with the mapped status and body.
func AbortWithError(c *gin.Context, err error) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		c.AbortWithStatusJSON(apiErr.Status, gin.H{"error": apiErr})
		return
	}
	status, code := statusForError(err)
	c.AbortWithStatusJSON(status, gin.H{"error": &APIError{Status: status, Code: code, Message: code}})
}
