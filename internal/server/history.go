package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	historydomain "github.com/mabdulrehman08/propmanager/internal/history/domain"
)

type reconstructHistoryRequest struct {
	CurrentRent           string `json:"current_rent"`
	YearlyIncreasePercent string `json:"yearly_increase_percent"`
	StartYear             int    `json:"start_year,omitempty"`
	StartMonth            int    `json:"start_month,omitempty"`
}

func (s *Server) ReconstructHistory(c *gin.Context) {
	unitID, err := snowflake.ParseString(strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_unit_id", "invalid unit id"))
		return
	}

	var req reconstructHistoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	currentRent, err := decimal.NewFromString(strings.TrimSpace(req.CurrentRent))
	if err != nil {
		AbortWithError(c, newValidationError("current_rent", "invalid_amount", "current_rent must be a decimal string"))
		return
	}
	increase, err := decimal.NewFromString(strings.TrimSpace(req.YearlyIncreasePercent))
	if err != nil {
		AbortWithError(c, newValidationError("yearly_increase_percent", "invalid_percent", "yearly_increase_percent must be a decimal string"))
		return
	}

	resp, err := s.historySvc.Reconstruct(c.Request.Context(), historydomain.ReconstructRequest{
		UnitID:                unitID,
		CurrentRent:           currentRent,
		YearlyIncreasePercent: increase,
		StartYear:             req.StartYear,
		StartMonth:            req.StartMonth,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}
