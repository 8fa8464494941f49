package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Harshit24Soni/Electric-Vehicle-Showroom-ERP/internal/domain"
	"github.com/Harshit24Soni/Electric-Vehicle-Showroom-ERP/internal/http/middleware"
	"github.com/Harshit24Soni/Electric-Vehicle-Showroom-ERP/internal/service"
)

// AuthHandler exposes the authentication and staff administration
// endpoints.
type AuthHandler struct {
	Auth *service.AuthService
}

// NewAuthHandler creates the handler set.
func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{Auth: auth}
}

// Health reports service liveness.
func (h *AuthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type loginRequest struct {
	Identifier string `json:"identifier" binding:"required"`
	// number admits digits only; numeric would accept signs and decimals.
	Pin string `json:"pin" binding:"required,len=6,number"`
}

type loginResponse struct {
	AccessToken    string `json:"access_token"`
	TokenType      string `json:"token_type"`
	ForcePinChange bool   `json:"force_pin_change"`
}

// Login authenticates a staff member by identifier (mobile number or
// staff id) and PIN.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "error_description": "identifier and a 6-digit pin are required."})
		return
	}

	result, err := h.Auth.Login(c.Request.Context(), req.Identifier, req.Pin)
	if err != nil {
		h.respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, loginResponse{
		AccessToken:    result.AccessToken,
		TokenType:      result.TokenType,
		ForcePinChange: result.ForcePinChange,
	})
}

type changePinRequest struct {
	OldPin string `json:"old_pin" binding:"required,len=6,number"`
	NewPin string `json:"new_pin" binding:"required,len=6,number"`
}

// ChangePin updates the caller's PIN after verifying the old one.
func (h *AuthHandler) ChangePin(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_token", "error_description": "Authentication required."})
		return
	}

	var req changePinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "error_description": "old_pin and new_pin must be 6-digit pins."})
		return
	}

	if err := h.Auth.ChangePIN(c.Request.Context(), principal.StaffID, req.OldPin, req.NewPin); err != nil {
		h.respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "PIN changed successfully."})
}

// Me returns the authenticated principal.
func (h *AuthHandler) Me(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_token", "error_description": "Authentication required."})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"staff_id":    principal.StaffID,
		"designation": principal.Designation,
	})
}

type createStaffRequest struct {
	FullName    string `json:"full_name" binding:"required"`
	MobileNo    string `json:"mobile_no" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Designation string `json:"designation" binding:"required,oneof=ADMIN STAFF"`

	AadhaarNo     string `json:"aadhaar_no" binding:"required"`
	PanNo         string `json:"pan_no"`
	UpiID         string `json:"upi_id"`
	BankAccountNo string `json:"bank_account_no"`
	BankName      string `json:"bank_name"`
	IfscCode      string `json:"ifsc_code"`

	JoinedDate *time.Time `json:"joined_date"`
}

type staffResponse struct {
	StaffID     int64              `json:"staff_id"`
	FullName    string             `json:"full_name"`
	MobileNo    string             `json:"mobile_no"`
	Email       string             `json:"email"`
	Designation domain.Designation `json:"designation"`
	IsActive    bool               `json:"is_active"`
	JoinedDate  *time.Time         `json:"joined_date,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
}

func newStaffResponse(s domain.Staff) staffResponse {
	return staffResponse{
		StaffID:     s.ID,
		FullName:    s.FullName,
		MobileNo:    s.MobileNo,
		Email:       s.Email,
		Designation: s.Designation,
		IsActive:    s.IsActive,
		JoinedDate:  s.JoinedDate,
		CreatedAt:   s.CreatedAt,
	}
}

// CreateStaff onboards a staff member. The generated initial PIN is
// disclosed once in the response and nowhere else.
func (h *AuthHandler) CreateStaff(c *gin.Context) {
	var req createStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "error_description": "Invalid staff payload."})
		return
	}

	created, tempPIN, err := h.Auth.CreateStaff(c.Request.Context(), service.CreateStaffInput{
		FullName:      req.FullName,
		MobileNo:      req.MobileNo,
		Email:         req.Email,
		Designation:   domain.Designation(req.Designation),
		AadhaarNo:     req.AadhaarNo,
		PanNo:         req.PanNo,
		UpiID:         req.UpiID,
		BankAccountNo: req.BankAccountNo,
		BankName:      req.BankName,
		IfscCode:      req.IfscCode,
		JoinedDate:    req.JoinedDate,
	})
	if err != nil {
		h.respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"staff":         newStaffResponse(created),
		"temporary_pin": tempPIN,
	})
}

// ListStaff returns all staff records.
func (h *AuthHandler) ListStaff(c *gin.Context) {
	staff, err := h.Auth.ListStaff(c.Request.Context())
	if err != nil {
		h.respondAuthError(c, err)
		return
	}

	out := make([]staffResponse, 0, len(staff))
	for _, s := range staff {
		out = append(out, newStaffResponse(s))
	}
	c.JSON(http.StatusOK, out)
}

// ResetPin issues a temporary PIN for the target staff member.
func (h *AuthHandler) ResetPin(c *gin.Context) {
	targetID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || targetID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "error_description": "Staff id must be a positive integer."})
		return
	}

	tempPIN, err := h.Auth.ResetPIN(c.Request.Context(), targetID)
	if err != nil {
		h.respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"temporary_pin": tempPIN})
}

func (h *AuthHandler) respondAuthError(c *gin.Context, err error) {
	logger := zap.L()
	switch {
	case errors.Is(err, domain.ErrInvalidCredential):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_credentials", "error_description": "Invalid credentials."})
	case errors.Is(err, domain.ErrAccountInactive):
		c.JSON(http.StatusForbidden, gin.H{"error": "account_inactive", "error_description": "Account inactive."})
	case errors.Is(err, domain.ErrAccountLocked):
		c.JSON(http.StatusLocked, gin.H{"error": "account_locked", "error_description": "Account temporarily locked. Try again later."})
	case errors.Is(err, domain.ErrSamePin):
		c.JSON(http.StatusBadRequest, gin.H{"error": "same_pin", "error_description": "New PIN must differ from the old PIN."})
	case errors.Is(err, domain.ErrPinChangeRequired):
		c.JSON(http.StatusForbidden, gin.H{"error": "pin_change_required", "error_description": "PIN change required before accessing the system."})
	case errors.Is(err, domain.ErrTokenInvalid):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_token", "error_description": "Invalid or expired token."})
	case errors.Is(err, domain.ErrAuthorizationDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden", "error_description": "You do not have permission to perform this action."})
	case errors.Is(err, domain.ErrStaffNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "error_description": "Staff not found."})
	default:
		logger.Error("auth service failure", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server_error", "error_description": "Internal server error."})
	}
}
