package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	ledgerdomain "github.com/mabdulrehman08/propmanager/internal/ledger/domain"
	paymentdomain "github.com/mabdulrehman08/propmanager/internal/payment/domain"
)

type recordPaymentRequest struct {
	Amount          string `json:"amount"`
	Date            string `json:"date,omitempty"`
	ReferenceNumber string `json:"reference_number,omitempty"`
	Source          string `json:"source,omitempty"`
	TenantName      string `json:"tenant_name,omitempty"`
}

func (s *Server) RecordPayment(c *gin.Context) {
	var req recordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(req.Amount))
	if err != nil {
		AbortWithError(c, newValidationError("amount", "invalid_amount", "amount must be a decimal string"))
		return
	}

	recordReq := paymentdomain.RecordRequest{
		Amount:     amount,
		Source:     ledgerdomain.PaymentSource(strings.TrimSpace(req.Source)),
		TenantName: strings.TrimSpace(req.TenantName),
	}
	if ref := strings.TrimSpace(req.ReferenceNumber); ref != "" {
		recordReq.ReferenceNumber = &ref
	}
	if d := strings.TrimSpace(req.Date); d != "" {
		date, err := time.Parse("2006-01-02", d)
		if err != nil {
			AbortWithError(c, newValidationError("date", "invalid_date", "date must be YYYY-MM-DD"))
			return
		}
		recordReq.Date = &date
	}

	resp, err := s.paymentSvc.Record(c.Request.Context(), recordReq)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetPayment(c *gin.Context) {
	paymentID, err := snowflake.ParseString(strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_payment_id", "invalid payment id"))
		return
	}
	payment, err := s.paymentSvc.GetByID(c.Request.Context(), paymentID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": payment})
}

func (s *Server) ListPayments(c *gin.Context) {
	payments, err := s.paymentSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": payments})
}
