package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/meta-solidaria/meta-solidaria-backend/internal/api/middleware"
	"github.com/meta-solidaria/meta-solidaria-backend/internal/models"
	"github.com/meta-solidaria/meta-solidaria-backend/internal/service"
)

// ============================================
// Partner / Beneficiary Handler
// ============================================

type PartnerHandler struct {
	partnerService service.PartnerService
}

func NewPartnerHandler(partnerService service.PartnerService) *PartnerHandler {
	return &PartnerHandler{partnerService: partnerService}
}

// Create - Register a partner organization
// POST /partners
func (h *PartnerHandler) Create(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var req models.CreatePartnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	partner, err := h.partnerService.CreatePartner(c.Request.Context(), userID, service.CreatePartnerInput{
		Name:        req.Name,
		Category:    req.Category,
		City:        req.City,
		Description: req.Description,
		LogoURL:     req.LogoURL,
		Website:     req.Website,
	})
	if err != nil {
		handleServiceError(c, err, "Failed to create partner")
		return
	}

	c.JSON(http.StatusCreated, toPartnerResponse(partner))
}

// Get - Get a partner by ID
// GET /partners/:id
func (h *PartnerHandler) Get(c *gin.Context) {
	partner, err := h.partnerService.GetPartner(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleServiceError(c, err, "Failed to fetch partner")
		return
	}

	c.JSON(http.StatusOK, toPartnerResponse(partner))
}

// List - Browse the active partner directory
// GET /partners?category=&city=
func (h *PartnerHandler) List(c *gin.Context) {
	partners, err := h.partnerService.ListPartners(c.Request.Context(), c.Query("category"), c.Query("city"))
	if err != nil {
		handleServiceError(c, err, "Failed to fetch partners")
		return
	}

	response := make([]models.PartnerResponse, len(partners))
	for i, p := range partners {
		response[i] = toPartnerResponse(p)
	}
	c.JSON(http.StatusOK, response)
}

// Update - Update a partner entry
// PUT /partners/:id
func (h *PartnerHandler) Update(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var req models.UpdatePartnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	partner, err := h.partnerService.UpdatePartner(c.Request.Context(), c.Param("id"), userID, service.UpdatePartnerInput{
		Name:        req.Name,
		Category:    req.Category,
		City:        req.City,
		Description: req.Description,
		LogoURL:     req.LogoURL,
		Website:     req.Website,
		IsActive:    req.IsActive,
	})
	if err != nil {
		handleServiceError(c, err, "Failed to update partner")
		return
	}

	c.JSON(http.StatusOK, toPartnerResponse(partner))
}

// Deactivate - Hide a partner from the directory
// DELETE /partners/:id
func (h *PartnerHandler) Deactivate(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	if err := h.partnerService.DeactivatePartner(c.Request.Context(), c.Param("id"), userID); err != nil {
		handleServiceError(c, err, "Failed to deactivate partner")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Partner deactivated"})
}

// CreateBeneficiary - Register a beneficiary
// POST /beneficiaries
func (h *PartnerHandler) CreateBeneficiary(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var req models.CreateBeneficiaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	beneficiary, err := h.partnerService.CreateBeneficiary(c.Request.Context(), userID, service.CreateBeneficiaryInput{
		Name:        req.Name,
		City:        req.City,
		Description: req.Description,
	})
	if err != nil {
		handleServiceError(c, err, "Failed to create beneficiary")
		return
	}

	c.JSON(http.StatusCreated, toBeneficiaryResponse(beneficiary))
}

// GetBeneficiary - Get a beneficiary by ID
// GET /beneficiaries/:id
func (h *PartnerHandler) GetBeneficiary(c *gin.Context) {
	beneficiary, err := h.partnerService.GetBeneficiary(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleServiceError(c, err, "Failed to fetch beneficiary")
		return
	}

	c.JSON(http.StatusOK, toBeneficiaryResponse(beneficiary))
}

// ListBeneficiaries - List registered beneficiaries
// GET /beneficiaries
func (h *PartnerHandler) ListBeneficiaries(c *gin.Context) {
	beneficiaries, err := h.partnerService.ListBeneficiaries(c.Request.Context())
	if err != nil {
		handleServiceError(c, err, "Failed to fetch beneficiaries")
		return
	}

	response := make([]models.BeneficiaryResponse, len(beneficiaries))
	for i, b := range beneficiaries {
		response[i] = toBeneficiaryResponse(b)
	}
	c.JSON(http.StatusOK, response)
}

// VerifyBeneficiary - Flip the verification flag
// PUT /beneficiaries/:id/verify
func (h *PartnerHandler) VerifyBeneficiary(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var req models.VerifyBeneficiaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	beneficiary, err := h.partnerService.VerifyBeneficiary(c.Request.Context(), c.Param("id"), userID, req.Verified)
	if err != nil {
		handleServiceError(c, err, "Failed to verify beneficiary")
		return
	}

	c.JSON(http.StatusOK, toBeneficiaryResponse(beneficiary))
}
