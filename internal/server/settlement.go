package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	settlementdomain "github.com/mabdulrehman08/propmanager/internal/settlement/domain"
)

type calculateSettlementsRequest struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

func (s *Server) CalculateSettlements(c *gin.Context) {
	propertyID, err := snowflake.ParseString(strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_property_id", "invalid property id"))
		return
	}

	var req calculateSettlementsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	settlements, err := s.settlementSvc.Calculate(c.Request.Context(), settlementdomain.CalculateRequest{
		PropertyID: propertyID,
		Month:      req.Month,
		Year:       req.Year,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": settlements})
}

func (s *Server) ListPropertySettlements(c *gin.Context) {
	propertyID, err := snowflake.ParseString(strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_property_id", "invalid property id"))
		return
	}
	settlements, err := s.settlementSvc.ListByProperty(c.Request.Context(), propertyID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": settlements})
}

func (s *Server) ListUserSettlements(c *gin.Context) {
	userID, err := snowflake.ParseString(strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_user_id", "invalid user id"))
		return
	}
	settlements, err := s.settlementSvc.ListByUser(c.Request.Context(), userID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": settlements})
}
