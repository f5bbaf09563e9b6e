package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"storefront-service/internal/models"
	"storefront-service/internal/services"
)

// AdminContentHandler manages banners, promotions, store settings and users
type AdminContentHandler struct {
	content  services.ContentService
	settings services.SettingsService
	accounts services.AccountService
	logger   *logrus.Logger
}

// NewAdminContentHandler creates a new admin content handler
func NewAdminContentHandler(
	content services.ContentService,
	settings services.SettingsService,
	accounts services.AccountService,
	logger *logrus.Logger,
) *AdminContentHandler {
	return &AdminContentHandler{content: content, settings: settings, accounts: accounts, logger: logger}
}

// ===== Banners =====

// ListBanners handles GET /admin/banners
// @Summary List banners
// @Tags admin-content
// @Produce json
// @Success 200 {object} models.SuccessResponse
// @Router /admin/banners [get]
// @Security BearerAuth
func (h *AdminContentHandler) ListBanners(c *gin.Context) {
	banners, err := h.content.ListBanners(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err, "Failed to list banners")
		return
	}
	respondData(c, http.StatusOK, banners)
}

// CreateBanner handles POST /admin/banners
// @Summary Create banner
// @Tags admin-content
// @Accept json
// @Produce json
// @Param banner body models.BannerRequest true "Banner"
// @Success 201 {object} models.SuccessResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /admin/banners [post]
// @Security BearerAuth
func (h *AdminContentHandler) CreateBanner(c *gin.Context) {
	var req models.BannerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	banner, err := h.content.CreateBanner(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err, "Failed to create banner")
		return
	}
	respondData(c, http.StatusCreated, banner)
}

// UpdateBanner handles PUT /admin/banners/:id
// @Summary Update banner
// @Tags admin-content
// @Accept json
// @Produce json
// @Param id path string true "Banner ID"
// @Param banner body models.BannerRequest true "Banner"
// @Success 200 {object} models.SuccessResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /admin/banners/{id} [put]
// @Security BearerAuth
func (h *AdminContentHandler) UpdateBanner(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req models.BannerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	banner, err := h.content.UpdateBanner(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, h.logger, err, "Failed to update banner")
		return
	}
	respondData(c, http.StatusOK, banner)
}

// DeleteBanner handles DELETE /admin/banners/:id
// @Summary Delete banner
// @Tags admin-content
// @Produce json
// @Param id path string true "Banner ID"
// @Success 200 {object} models.SuccessResponse
// @Router /admin/banners/{id} [delete]
// @Security BearerAuth
func (h *AdminContentHandler) DeleteBanner(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.content.DeleteBanner(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err, "Failed to delete banner")
		return
	}
	respondMessage(c, "Banner deleted")
}

// ===== Promotions =====

// ListPromotions handles GET /admin/promotions
// @Summary List promotion codes
// @Tags admin-content
// @Produce json
// @Success 200 {object} models.SuccessResponse
// @Router /admin/promotions [get]
// @Security BearerAuth
func (h *AdminContentHandler) ListPromotions(c *gin.Context) {
	promotions, err := h.content.ListPromotions(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err, "Failed to list promotions")
		return
	}
	respondData(c, http.StatusOK, promotions)
}

// CreatePromotion handles POST /admin/promotions
// @Summary Create promotion code
// @Tags admin-content
// @Accept json
// @Produce json
// @Param promotion body models.PromotionRequest true "Promotion"
// @Success 201 {object} models.SuccessResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /admin/promotions [post]
// @Security BearerAuth
func (h *AdminContentHandler) CreatePromotion(c *gin.Context) {
	var req models.PromotionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	promotion, err := h.content.CreatePromotion(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err, "Failed to create promotion")
		return
	}
	respondData(c, http.StatusCreated, promotion)
}

// UpdatePromotion handles PUT /admin/promotions/:id
// @Summary Update promotion code
// @Tags admin-content
// @Accept json
// @Produce json
// @Param id path string true "Promotion ID"
// @Param promotion body models.PromotionRequest true "Promotion"
// @Success 200 {object} models.SuccessResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /admin/promotions/{id} [put]
// @Security BearerAuth
func (h *AdminContentHandler) UpdatePromotion(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req models.PromotionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	promotion, err := h.content.UpdatePromotion(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, h.logger, err, "Failed to update promotion")
		return
	}
	respondData(c, http.StatusOK, promotion)
}

// DeletePromotion handles DELETE /admin/promotions/:id
// @Summary Delete promotion code
// @Tags admin-content
// @Produce json
// @Param id path string true "Promotion ID"
// @Success 200 {object} models.SuccessResponse
// @Router /admin/promotions/{id} [delete]
// @Security BearerAuth
func (h *AdminContentHandler) DeletePromotion(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.content.DeletePromotion(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err, "Failed to delete promotion")
		return
	}
	respondMessage(c, "Promotion deleted")
}

// ===== Settings =====

// GetSettings handles GET /admin/settings
// @Summary Store settings
// @Tags admin-settings
// @Produce json
// @Success 200 {object} models.SuccessResponse
// @Router /admin/settings [get]
// @Security BearerAuth
func (h *AdminContentHandler) GetSettings(c *gin.Context) {
	settings, err := h.settings.Get(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err, "Failed to load settings")
		return
	}
	respondData(c, http.StatusOK, settings)
}

// UpdateSettings handles PUT /admin/settings
// @Summary Update store settings
// @Description Only the fields present are changed
// @Tags admin-settings
// @Accept json
// @Produce json
// @Param settings body models.UpdateSettingsRequest true "Changed fields"
// @Success 200 {object} models.SuccessResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /admin/settings [put]
// @Security BearerAuth
func (h *AdminContentHandler) UpdateSettings(c *gin.Context) {
	var req models.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	settings, err := h.settings.Update(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err, "Failed to update settings")
		return
	}
	respondData(c, http.StatusOK, settings)
}

// ===== Users =====

// ListUsers handles GET /admin/users
// @Summary List user profiles
// @Tags admin-users
// @Produce json
// @Param search query string false "Name or email"
// @Param role query string false "customer or admin"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} models.ListResponse
// @Router /admin/users [get]
// @Security BearerAuth
func (h *AdminContentHandler) ListUsers(c *gin.Context) {
	page, limit := pageParams(c, 20)
	users, pagination, err := h.accounts.ListUsers(c.Request.Context(), models.UserFilter{
		Search: c.Query("search"),
		Role:   models.Role(c.Query("role")),
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		respondError(c, h.logger, err, "Failed to list users")
		return
	}
	respondList(c, users, pagination)
}

// UpdateUserRole handles PUT /admin/users/:id/role
// @Summary Change a user's role
// @Description Admins cannot remove their own admin role
// @Tags admin-users
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param role body models.UpdateRoleRequest true "New role"
// @Success 200 {object} models.SuccessResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /admin/users/{id}/role [put]
// @Security BearerAuth
func (h *AdminContentHandler) UpdateUserRole(c *gin.Context) {
	actorID, ok := currentUser(c)
	if !ok {
		return
	}
	userID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req models.UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	profile, err := h.accounts.UpdateRole(c.Request.Context(), actorID, userID, req.Role)
	if err != nil {
		respondError(c, h.logger, err, "Failed to update role")
		return
	}
	respondData(c, http.StatusOK, profile)
}
