package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	invoicedomain "github.com/mabdulrehman08/propmanager/internal/invoice/domain"
)

type generateInvoicesRequest struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

func (s *Server) GenerateInvoices(c *gin.Context) {
	var req generateInvoicesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.invoiceSvc.Generate(c.Request.Context(), invoicedomain.GenerateRequest{
		Month: req.Month,
		Year:  req.Year,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type payInvoiceRequest struct {
	PaidAmount    *string `json:"paid_amount,omitempty"`
	PaymentMethod *string `json:"payment_method,omitempty"`
}

func (s *Server) PayInvoice(c *gin.Context) {
	invoiceID, err := snowflake.ParseString(strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_invoice_id", "invalid invoice id"))
		return
	}

	var req payInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	payReq := invoicedomain.PayRequest{
		InvoiceID:     invoiceID,
		PaymentMethod: req.PaymentMethod,
	}
	if req.PaidAmount != nil {
		amount, err := decimal.NewFromString(strings.TrimSpace(*req.PaidAmount))
		if err != nil {
			AbortWithError(c, newValidationError("paid_amount", "invalid_amount", "paid_amount must be a decimal string"))
			return
		}
		payReq.PaidAmount = &amount
	}

	invoice, err := s.invoiceSvc.Pay(c.Request.Context(), payReq)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": invoice})
}

func (s *Server) GetInvoice(c *gin.Context) {
	invoiceID, err := snowflake.ParseString(strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_invoice_id", "invalid invoice id"))
		return
	}
	invoice, err := s.invoiceSvc.GetByID(c.Request.Context(), invoiceID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": invoice})
}

// ListInvoices serves either a (month, year) period scan or a tenant scan.
func (s *Server) ListInvoices(c *gin.Context) {
	if tenantParam := strings.TrimSpace(c.Query("tenant_id")); tenantParam != "" {
		tenantID, err := snowflake.ParseString(tenantParam)
		if err != nil {
			AbortWithError(c, newValidationError("tenant_id", "invalid_tenant_id", "invalid tenant id"))
			return
		}
		invoices, err := s.invoiceSvc.ListByTenant(c.Request.Context(), tenantID)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": invoices})
		return
	}

	month, err := strconv.Atoi(strings.TrimSpace(c.Query("month")))
	if err != nil {
		AbortWithError(c, newValidationError("month", "invalid_month", "month is required"))
		return
	}
	year, err := strconv.Atoi(strings.TrimSpace(c.Query("year")))
	if err != nil {
		AbortWithError(c, newValidationError("year", "invalid_year", "year is required"))
		return
	}

	invoices, err := s.invoiceSvc.ListByPeriod(c.Request.Context(), month, year)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": invoices})
}
