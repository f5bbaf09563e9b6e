package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"storefront-service/internal/middleware"
	"storefront-service/internal/models"
	"storefront-service/internal/repository"
	"storefront-service/internal/services"
	"storefront-service/internal/storage"
)

type errorMapping struct {
	err    error
	status int
	code   string
}

// Order matters: the first matching sentinel wins.
var errorMappings = []errorMapping{
	{services.ErrProductNotFound, http.StatusNotFound, "PRODUCT_NOT_FOUND"},
	{services.ErrCategoryNotFound, http.StatusNotFound, "CATEGORY_NOT_FOUND"},
	{services.ErrOrderNotFound, http.StatusNotFound, "ORDER_NOT_FOUND"},
	{services.ErrAddressNotFound, http.StatusNotFound, "ADDRESS_NOT_FOUND"},
	{services.ErrBannerNotFound, http.StatusNotFound, "BANNER_NOT_FOUND"},
	{services.ErrPromotionNotFound, http.StatusNotFound, "PROMOTION_NOT_FOUND"},
	{services.ErrUserNotFound, http.StatusNotFound, "USER_NOT_FOUND"},
	{services.ErrCartItemNotFound, http.StatusNotFound, "CART_ITEM_NOT_FOUND"},
	{repository.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},

	{services.ErrInvalidQuantity, http.StatusBadRequest, "INVALID_QUANTITY"},
	{services.ErrEmptyCart, http.StatusBadRequest, "EMPTY_CART"},
	{services.ErrInvalidPromotion, http.StatusBadRequest, "INVALID_PROMOTION"},
	{services.ErrInvalidStatus, http.StatusBadRequest, "INVALID_STATUS"},
	{storage.ErrUnsupportedType, http.StatusBadRequest, "UNSUPPORTED_FILE_TYPE"},
	{storage.ErrTooLarge, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE"},

	{services.ErrOutOfStock, http.StatusConflict, "OUT_OF_STOCK"},
	{services.ErrProductInactive, http.StatusConflict, "PRODUCT_UNAVAILABLE"},
	{services.ErrCategoryInUse, http.StatusConflict, "CATEGORY_IN_USE"},
	{services.ErrSlugTaken, http.StatusConflict, "SLUG_TAKEN"},
	{services.ErrInvalidTransition, http.StatusConflict, "INVALID_TRANSITION"},

	{services.ErrSelfDemotion, http.StatusForbidden, "SELF_DEMOTION"},
	{services.ErrStorageDisabled, http.StatusServiceUnavailable, "STORAGE_DISABLED"},
	{services.ErrCartClosed, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE"},
	{context.DeadlineExceeded, http.StatusGatewayTimeout, "TIMEOUT"},
}

func newErrorResponse(c *gin.Context, code, message, field string) models.ErrorResponse {
	return models.ErrorResponse{
		Success:   false,
		Error:     models.Error{Code: code, Message: message, Field: field},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		RequestID: middleware.RequestIDFrom(c),
	}
}

// respondError maps a service error onto the JSON error envelope. Unknown
// errors are logged and hidden behind fallbackMessage.
func respondError(c *gin.Context, logger *logrus.Logger, err error, fallbackMessage string) {
	var verr *services.ValidationError
	if errors.As(err, &verr) {
		resp := newErrorResponse(c, "VALIDATION_ERROR", verr.Message, verr.Field)
		resp.Error.Details = verr.Details()
		c.JSON(http.StatusBadRequest, resp)
		return
	}

	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			c.JSON(m.status, newErrorResponse(c, m.code, err.Error(), ""))
			return
		}
	}

	_ = c.Error(err)
	logger.WithFields(logrus.Fields{
		"request_id": middleware.RequestIDFrom(c),
		"path":       c.FullPath(),
	}).WithError(err).Error(fallbackMessage)
	c.JSON(http.StatusInternalServerError, newErrorResponse(c, "INTERNAL_ERROR", fallbackMessage, ""))
}

func respondBadRequest(c *gin.Context, code, message string) {
	c.JSON(http.StatusBadRequest, newErrorResponse(c, code, message, ""))
}

func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, newErrorResponse(c, "VALIDATION_ERROR", err.Error(), ""))
}

func respondData(c *gin.Context, status int, data interface{}) {
	c.JSON(status, models.SuccessResponse{Success: true, Data: data})
}

func respondMessage(c *gin.Context, message string) {
	c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Message: &message})
}

func respondList(c *gin.Context, data interface{}, pagination *models.PaginationInfo) {
	c.JSON(http.StatusOK, models.ListResponse{Success: true, Data: data, Pagination: pagination})
}

// localizedResponse is the storefront envelope; the UI picks names and text
// direction from locale and dir.
type localizedResponse struct {
	Success    bool                   `json:"success"`
	Data       interface{}            `json:"data"`
	Locale     models.Locale          `json:"locale"`
	Dir        string                 `json:"dir"`
	Pagination *models.PaginationInfo `json:"pagination,omitempty"`
}

func respondLocalized(c *gin.Context, data interface{}, pagination *models.PaginationInfo) {
	locale := middleware.LocaleFrom(c)
	c.JSON(http.StatusOK, localizedResponse{
		Success:    true,
		Data:       data,
		Locale:     locale,
		Dir:        locale.Dir(),
		Pagination: pagination,
	})
}

// parseIDParam reads a UUID path parameter, writing a 400 when it is malformed
func parseIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		respondBadRequest(c, "INVALID_ID", name+" must be a valid UUID")
		return uuid.Nil, false
	}
	return id, true
}

// currentUser returns the authenticated caller, writing a 401 when absent
func currentUser(c *gin.Context) (uuid.UUID, bool) {
	id, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, newErrorResponse(c, "UNAUTHORIZED", "User not authenticated", ""))
		return uuid.Nil, false
	}
	return id, true
}

func pageParams(c *gin.Context, defaultLimit int) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLimit)))
	return page, limit
}

func optionalUUIDQuery(c *gin.Context, name string) (*uuid.UUID, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		respondBadRequest(c, "INVALID_ID", name+" must be a valid UUID")
		return nil, false
	}
	return &id, true
}

func optionalDateQuery(c *gin.Context, name string) (*time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		respondBadRequest(c, "INVALID_DATE", name+" must be formatted as YYYY-MM-DD")
		return nil, false
	}
	return &t, true
}

func sendAttachment(c *gin.Context, contentType, filename string, body []byte) {
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, contentType, body)
}
