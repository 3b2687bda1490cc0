package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	ledgerdomain "github.com/mabdulrehman08/propmanager/internal/ledger/domain"
)

type createPropertyRequest struct {
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
	City    string `json:"city,omitempty"`
}

func (s *Server) CreateProperty(c *gin.Context) {
	var req createPropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		AbortWithError(c, newValidationError("name", "missing_name", "name is required"))
		return
	}

	property := &ledgerdomain.Property{
		ID:      s.genID.Generate(),
		Name:    strings.TrimSpace(req.Name),
		Address: strings.TrimSpace(req.Address),
		City:    strings.TrimSpace(req.City),
	}
	if err := s.store.CreateProperty(c.Request.Context(), s.db, property); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": property})
}

func (s *Server) ListProperties(c *gin.Context) {
	properties, err := s.store.ListProperties(c.Request.Context(), s.db)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": properties})
}

func (s *Server) GetProperty(c *gin.Context) {
	propertyID, err := snowflake.ParseString(strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_property_id", "invalid property id"))
		return
	}
	property, err := s.store.FindPropertyByID(c.Request.Context(), s.db, propertyID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if property == nil {
		AbortWithError(c, errNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": property})
}

type createUnitRequest struct {
	UnitNumber  string `json:"unit_number"`
	MonthlyRent string `json:"monthly_rent"`
}

func (s *Server) CreateUnit(c *gin.Context) {
	propertyID, err := snowflake.ParseString(strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_property_id", "invalid property id"))
		return
	}

	var req createUnitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if strings.TrimSpace(req.UnitNumber) == "" {
		AbortWithError(c, newValidationError("unit_number", "missing_unit_number", "unit_number is required"))
		return
	}
	rent, err := decimal.NewFromString(strings.TrimSpace(req.MonthlyRent))
	if err != nil || !rent.IsPositive() {
		AbortWithError(c, newValidationError("monthly_rent", "invalid_amount", "monthly_rent must be a positive decimal string"))
		return
	}

	property, err := s.store.FindPropertyByID(c.Request.Context(), s.db, propertyID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if property == nil {
		AbortWithError(c, errNotFound)
		return
	}

	unit := &ledgerdomain.Unit{
		ID:          s.genID.Generate(),
		PropertyID:  propertyID,
		UnitNumber:  strings.TrimSpace(req.UnitNumber),
		MonthlyRent: rent,
	}
	if err := s.store.CreateUnit(c.Request.Context(), s.db, unit); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": unit})
}

func (s *Server) ListUnits(c *gin.Context) {
	propertyID, err := snowflake.ParseString(strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_property_id", "invalid property id"))
		return
	}
	units, err := s.store.FindUnitsByPropertyID(c.Request.Context(), s.db, propertyID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": units})
}

type createPropertyUserRequest struct {
	UserID           string `json:"user_id"`
	Role             string `json:"role"`
	Status           string `json:"status,omitempty"`
	OwnershipPercent string `json:"ownership_percent,omitempty"`
}

func (s *Server) CreatePropertyUser(c *gin.Context) {
	propertyID, err := snowflake.ParseString(strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_property_id", "invalid property id"))
		return
	}

	var req createPropertyUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	userID, err := snowflake.ParseString(strings.TrimSpace(req.UserID))
	if err != nil {
		AbortWithError(c, newValidationError("user_id", "invalid_user_id", "invalid user id"))
		return
	}
	role := ledgerdomain.Role(strings.TrimSpace(req.Role))
	switch role {
	case ledgerdomain.RolePropertyOwner, ledgerdomain.RoleCoOwner,
		ledgerdomain.RoleAccountant, ledgerdomain.RoleTenant, ledgerdomain.RoleSuperAdmin:
	default:
		AbortWithError(c, newValidationError("role", "invalid_role", "unknown role"))
		return
	}

	status := ledgerdomain.MembershipStatusPending
	if raw := strings.TrimSpace(req.Status); raw != "" {
		status = ledgerdomain.MembershipStatus(raw)
	}
	percent := decimal.Zero
	if raw := strings.TrimSpace(req.OwnershipPercent); raw != "" {
		percent, err = decimal.NewFromString(raw)
		if err != nil || percent.IsNegative() {
			AbortWithError(c, newValidationError("ownership_percent", "invalid_percent", "ownership_percent must be a non-negative decimal string"))
			return
		}
	}

	property, err := s.store.FindPropertyByID(c.Request.Context(), s.db, propertyID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if property == nil {
		AbortWithError(c, errNotFound)
		return
	}

	link := &ledgerdomain.PropertyUser{
		ID:               s.genID.Generate(),
		PropertyID:       propertyID,
		UserID:           userID,
		Role:             role,
		Status:           status,
		OwnershipPercent: percent,
	}
	if err := s.store.CreatePropertyUser(c.Request.Context(), s.db, link); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": link})
}

func (s *Server) ListPropertyUsers(c *gin.Context) {
	propertyID, err := snowflake.ParseString(strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_property_id", "invalid property id"))
		return
	}
	links, err := s.store.FindPropertyUsersByPropertyID(c.Request.Context(), s.db, propertyID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": links})
}

type createTenantRequest struct {
	Name       string `json:"name"`
	Phone      string `json:"phone,omitempty"`
	LeaseStart string `json:"lease_start"`
	LeaseEnd   string `json:"lease_end,omitempty"`
	RentDueDay int    `json:"rent_due_day,omitempty"`
}

func (s *Server) CreateTenant(c *gin.Context) {
	unitID, err := snowflake.ParseString(strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_unit_id", "invalid unit id"))
		return
	}

	var req createTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		AbortWithError(c, newValidationError("name", "missing_name", "name is required"))
		return
	}
	leaseStart, err := time.Parse("2006-01-02", strings.TrimSpace(req.LeaseStart))
	if err != nil {
		AbortWithError(c, newValidationError("lease_start", "invalid_date", "lease_start must be YYYY-MM-DD"))
		return
	}
	var leaseEnd *time.Time
	if raw := strings.TrimSpace(req.LeaseEnd); raw != "" {
		end, err := time.Parse("2006-01-02", raw)
		if err != nil {
			AbortWithError(c, newValidationError("lease_end", "invalid_date", "lease_end must be YYYY-MM-DD"))
			return
		}
		leaseEnd = &end
	}
	dueDay := req.RentDueDay
	if dueDay == 0 {
		dueDay = 1
	}
	if dueDay < 1 || dueDay > 28 {
		AbortWithError(c, newValidationError("rent_due_day", "invalid_due_day", "rent_due_day must be between 1 and 28"))
		return
	}

	unit, err := s.store.FindUnitByID(c.Request.Context(), s.db, unitID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if unit == nil {
		AbortWithError(c, errNotFound)
		return
	}

	tenant := &ledgerdomain.Tenant{
		ID:         s.genID.Generate(),
		UnitID:     unitID,
		Name:       strings.TrimSpace(req.Name),
		Phone:      strings.TrimSpace(req.Phone),
		LeaseStart: leaseStart,
		LeaseEnd:   leaseEnd,
		RentDueDay: dueDay,
		IsActive:   leaseEnd == nil,
	}
	if err := s.store.CreateTenant(c.Request.Context(), s.db, tenant); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": tenant})
}

func (s *Server) ListUnitTenants(c *gin.Context) {
	unitID, err := snowflake.ParseString(strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_unit_id", "invalid unit id"))
		return
	}
	tenants, err := s.store.FindTenantsByUnitID(c.Request.Context(), s.db, unitID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": tenants})
}
