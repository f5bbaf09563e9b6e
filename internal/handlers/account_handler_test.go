package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"storefront-service/internal/models"
	"storefront-service/internal/services"
)

func setupAccount(userID uuid.UUID) (*gin.Engine, *MockAccountService, *MockOrderService) {
	accounts := new(MockAccountService)
	orders := new(MockOrderService)
	h := NewAccountHandler(accounts, orders, testLogger())

	r := setupTestRouter()
	api := r.Group("/account", withUser(userID, "hala@example.com"))
	api.GET("/profile", h.GetProfile)
	api.PUT("/profile", h.UpdateProfile)
	api.GET("/addresses", h.ListAddresses)
	api.POST("/addresses", h.CreateAddress)
	api.PUT("/addresses/:id", h.UpdateAddress)
	api.DELETE("/addresses/:id", h.DeleteAddress)
	api.GET("/orders", h.ListOrders)
	api.GET("/orders/:id", h.GetOrder)
	api.GET("/orders/:id/invoice", h.GetOrderInvoice)
	return r, accounts, orders
}

func TestProfile(t *testing.T) {
	userID := uuid.New()
	r, accounts, _ := setupAccount(userID)
	accounts.On("EnsureProfile", mock.Anything, userID, "hala@example.com").
		Return(&models.Profile{ID: userID, Email: "hala@example.com", Role: models.RoleCustomer}, nil)
	accounts.On("UpdateProfile", mock.Anything, userID, mock.Anything).
		Return(nil, &services.ValidationError{Field: "avatarUrl", Message: "must be a valid URL"})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest(http.MethodGet, "/account/profile", ""))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"role":"customer"`)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest(http.MethodPut, "/account/profile", `{"avatarUrl":"nope"}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "avatarUrl", decodeError(t, w).Error.Field)
}

func TestAddresses(t *testing.T) {
	userID, addressID := uuid.New(), uuid.New()
	r, accounts, _ := setupAccount(userID)
	accounts.On("ListAddresses", mock.Anything, userID).Return([]models.Address{{ID: addressID, City: "Jeddah"}}, nil)
	accounts.On("CreateAddress", mock.Anything, userID, mock.MatchedBy(func(req models.AddressRequest) bool {
		return req.City == "Jeddah" && req.IsDefault
	})).Return(&models.Address{ID: addressID, City: "Jeddah", IsDefault: true}, nil)
	accounts.On("UpdateAddress", mock.Anything, userID, addressID, mock.Anything).Return(nil, services.ErrAddressNotFound)
	accounts.On("DeleteAddress", mock.Anything, userID, addressID).Return(nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest(http.MethodGet, "/account/addresses", ""))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest(http.MethodPost, "/account/addresses",
		`{"fullName":"Hala","phone":"0501234567","line1":"Tahlia St","city":"Jeddah","country":"sa","isDefault":true}`))
	assert.Equal(t, http.StatusCreated, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest(http.MethodPut, "/account/addresses/"+addressID.String(), `{"city":"Dammam"}`))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "ADDRESS_NOT_FOUND", decodeError(t, w).Error.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest(http.MethodDelete, "/account/addresses/"+addressID.String(), ""))
	assert.Equal(t, http.StatusOK, w.Code)
	accounts.AssertExpectations(t)
}

func TestCustomerOrders(t *testing.T) {
	userID := uuid.New()
	r, _, orders := setupAccount(userID)
	order := models.Order{ID: uuid.New(), OrderNumber: "ORD-1", UserID: userID, Status: models.OrderStatusShipped}
	foreignID := uuid.New()

	orders.On("ListForCustomer", mock.Anything, userID, 2, 5).
		Return([]models.Order{order}, models.NewPaginationInfo(2, 5, 6), nil)
	orders.On("GetForCustomer", mock.Anything, userID, order.ID).Return(&order, nil)
	orders.On("GetForCustomer", mock.Anything, userID, foreignID).Return(nil, services.ErrOrderNotFound)
	orders.On("Invoice", mock.Anything, order.ID).Return([]byte("%PDF-1.4"), "invoice-ORD-1.pdf", nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest(http.MethodGet, "/account/orders?page=2&limit=5", ""))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"statusLabel":"Shipped"`)
	assert.Contains(t, w.Body.String(), `"totalPages":2`)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest(http.MethodGet, "/account/orders/"+order.ID.String()+"?lang=ar", ""))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"statusLabel":"تم الشحن"`)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest(http.MethodGet, "/account/orders/"+foreignID.String(), ""))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest(http.MethodGet, "/account/orders/"+order.ID.String()+"/invoice", ""))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "invoice-ORD-1.pdf")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest(http.MethodGet, "/account/orders/"+foreignID.String()+"/invoice", ""))
	assert.Equal(t, http.StatusNotFound, w.Code)
	orders.AssertNumberOfCalls(t, "Invoice", 1)
}
