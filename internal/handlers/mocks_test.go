package handlers

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"storefront-service/internal/catalog"
	"storefront-service/internal/models"
	"storefront-service/internal/services"
	"storefront-service/internal/storage"
)

// ===== Catalog =====

type MockCatalogService struct {
	mock.Mock
}

var _ services.CatalogService = (*MockCatalogService)(nil)

func (m *MockCatalogService) Browse(ctx context.Context, rawQuery string, page catalog.PageRequest) (*services.BrowseResult, error) {
	args := m.Called(ctx, rawQuery, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.BrowseResult), args.Error(1)
}

func (m *MockCatalogService) ProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockCatalogService) Categories(ctx context.Context) ([]models.Category, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Category), args.Error(1)
}

func (m *MockCatalogService) FilterMetadata(ctx context.Context) (*models.FilterMetadata, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FilterMetadata), args.Error(1)
}

func (m *MockCatalogService) HomeSections(ctx context.Context) (*services.HomeSections, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.HomeSections), args.Error(1)
}

func (m *MockCatalogService) InvalidateDirectory() {
	m.Called()
}

// ===== Content =====

type MockContentService struct {
	mock.Mock
}

var _ services.ContentService = (*MockContentService)(nil)

func (m *MockContentService) ActiveBanners(ctx context.Context) ([]models.Banner, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Banner), args.Error(1)
}

func (m *MockContentService) ListBanners(ctx context.Context) ([]models.Banner, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Banner), args.Error(1)
}

func (m *MockContentService) CreateBanner(ctx context.Context, req models.BannerRequest) (*models.Banner, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Banner), args.Error(1)
}

func (m *MockContentService) UpdateBanner(ctx context.Context, id uuid.UUID, req models.BannerRequest) (*models.Banner, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Banner), args.Error(1)
}

func (m *MockContentService) DeleteBanner(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockContentService) ListPromotions(ctx context.Context) ([]models.Promotion, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Promotion), args.Error(1)
}

func (m *MockContentService) CreatePromotion(ctx context.Context, req models.PromotionRequest) (*models.Promotion, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Promotion), args.Error(1)
}

func (m *MockContentService) UpdatePromotion(ctx context.Context, id uuid.UUID, req models.PromotionRequest) (*models.Promotion, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Promotion), args.Error(1)
}

func (m *MockContentService) DeletePromotion(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

// ===== Settings =====

type MockSettingsService struct {
	mock.Mock
}

var _ services.SettingsService = (*MockSettingsService)(nil)

func (m *MockSettingsService) Get(ctx context.Context) (*models.StoreSettings, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StoreSettings), args.Error(1)
}

func (m *MockSettingsService) Update(ctx context.Context, req models.UpdateSettingsRequest) (*models.StoreSettings, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StoreSettings), args.Error(1)
}

// ===== Cart =====

type MockCartService struct {
	mock.Mock
}

var _ services.CartService = (*MockCartService)(nil)

func (m *MockCartService) GetCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Cart), args.Error(1)
}

func (m *MockCartService) AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (*models.Cart, error) {
	args := m.Called(ctx, userID, productID, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Cart), args.Error(1)
}

func (m *MockCartService) UpdateItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (*models.Cart, error) {
	args := m.Called(ctx, userID, productID, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Cart), args.Error(1)
}

func (m *MockCartService) RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*models.Cart, error) {
	args := m.Called(ctx, userID, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Cart), args.Error(1)
}

func (m *MockCartService) Clear(ctx context.Context, userID uuid.UUID) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *MockCartService) GetWishlist(ctx context.Context, userID uuid.UUID) ([]models.WishlistItem, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]models.WishlistItem), args.Error(1)
}

func (m *MockCartService) ToggleWishlist(ctx context.Context, userID, productID uuid.UUID) (*models.WishlistToggleResponse, error) {
	args := m.Called(ctx, userID, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WishlistToggleResponse), args.Error(1)
}

func (m *MockCartService) MoveWishlistToCart(ctx context.Context, userID uuid.UUID, productIDs []uuid.UUID) ([]models.MoveResult, error) {
	args := m.Called(ctx, userID, productIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.MoveResult), args.Error(1)
}

func (m *MockCartService) Exclusive(ctx context.Context, userID uuid.UUID, fn func(ctx context.Context) error) error {
	args := m.Called(ctx, userID, fn)
	return args.Error(0)
}

func (m *MockCartService) Close() {
	m.Called()
}

// ===== Checkout =====

type MockCheckoutService struct {
	mock.Mock
}

var _ services.CheckoutService = (*MockCheckoutService)(nil)

func (m *MockCheckoutService) Quote(ctx context.Context, userID uuid.UUID, req models.QuoteRequest) (*models.Totals, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Totals), args.Error(1)
}

func (m *MockCheckoutService) PlaceOrder(ctx context.Context, userID uuid.UUID, locale models.Locale, req models.CheckoutRequest) (*models.Order, error) {
	args := m.Called(ctx, userID, locale, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

// ===== Orders =====

type MockOrderService struct {
	mock.Mock
}

var _ services.OrderService = (*MockOrderService)(nil)

func (m *MockOrderService) ListForCustomer(ctx context.Context, userID uuid.UUID, page, limit int) ([]models.Order, *models.PaginationInfo, error) {
	args := m.Called(ctx, userID, page, limit)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).([]models.Order), args.Get(1).(*models.PaginationInfo), args.Error(2)
}

func (m *MockOrderService) GetForCustomer(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error) {
	args := m.Called(ctx, userID, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderService) List(ctx context.Context, filter models.OrderFilter) ([]models.Order, *models.PaginationInfo, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).([]models.Order), args.Get(1).(*models.PaginationInfo), args.Error(2)
}

func (m *MockOrderService) Get(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, status models.OrderStatus) (*models.Order, error) {
	args := m.Called(ctx, orderID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderService) Stats(ctx context.Context) (*models.OrderStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.OrderStats), args.Error(1)
}

func (m *MockOrderService) Invoice(ctx context.Context, orderID uuid.UUID) ([]byte, string, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).([]byte), args.String(1), args.Error(2)
}

func (m *MockOrderService) Export(ctx context.Context, filter models.OrderFilter) ([]byte, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// ===== Admin catalog =====

type MockAdminCatalogService struct {
	mock.Mock
}

var _ services.AdminCatalogService = (*MockAdminCatalogService)(nil)

func (m *MockAdminCatalogService) ListProducts(ctx context.Context, filter models.AdminProductFilter) ([]models.Product, *models.PaginationInfo, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).([]models.Product), args.Get(1).(*models.PaginationInfo), args.Error(2)
}

func (m *MockAdminCatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockAdminCatalogService) CreateProduct(ctx context.Context, actorID uuid.UUID, req models.ProductRequest) (*models.Product, error) {
	args := m.Called(ctx, actorID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockAdminCatalogService) UpdateProduct(ctx context.Context, actorID, id uuid.UUID, req models.ProductRequest) (*models.Product, error) {
	args := m.Called(ctx, actorID, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockAdminCatalogService) DeleteProduct(ctx context.Context, actorID, id uuid.UUID) error {
	return m.Called(ctx, actorID, id).Error(0)
}

func (m *MockAdminCatalogService) BulkUpdateStatus(ctx context.Context, actorID uuid.UUID, req models.BulkStatusRequest) (int64, error) {
	args := m.Called(ctx, actorID, req)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAdminCatalogService) UploadProductImage(ctx context.Context, actorID, id uuid.UUID, upload services.ImageUpload) (*models.Product, error) {
	args := m.Called(ctx, actorID, id, upload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockAdminCatalogService) UploadImage(ctx context.Context, folder string, upload services.ImageUpload) (*storage.Image, error) {
	args := m.Called(ctx, folder, upload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.Image), args.Error(1)
}

func (m *MockAdminCatalogService) ExportProducts(ctx context.Context, filter models.AdminProductFilter) ([]byte, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockAdminCatalogService) ImportProducts(ctx context.Context, actorID uuid.UUID, r io.Reader, validateOnly bool) (*services.ImportResult, error) {
	args := m.Called(ctx, actorID, r, validateOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.ImportResult), args.Error(1)
}

func (m *MockAdminCatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Category), args.Error(1)
}

func (m *MockAdminCatalogService) CreateCategory(ctx context.Context, req models.CategoryRequest) (*models.Category, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}

func (m *MockAdminCatalogService) UpdateCategory(ctx context.Context, id uuid.UUID, req models.CategoryRequest) (*models.Category, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}

func (m *MockAdminCatalogService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

// ===== Accounts =====

type MockAccountService struct {
	mock.Mock
}

var _ services.AccountService = (*MockAccountService)(nil)

func (m *MockAccountService) EnsureProfile(ctx context.Context, userID uuid.UUID, email string) (*models.Profile, error) {
	args := m.Called(ctx, userID, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *MockAccountService) UpdateProfile(ctx context.Context, userID uuid.UUID, req models.UpdateProfileRequest) (*models.Profile, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *MockAccountService) Role(ctx context.Context, userID uuid.UUID) (models.Role, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(models.Role), args.Error(1)
}

func (m *MockAccountService) ListAddresses(ctx context.Context, userID uuid.UUID) ([]models.Address, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]models.Address), args.Error(1)
}

func (m *MockAccountService) CreateAddress(ctx context.Context, userID uuid.UUID, req models.AddressRequest) (*models.Address, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Address), args.Error(1)
}

func (m *MockAccountService) UpdateAddress(ctx context.Context, userID, addressID uuid.UUID, req models.AddressRequest) (*models.Address, error) {
	args := m.Called(ctx, userID, addressID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Address), args.Error(1)
}

func (m *MockAccountService) DeleteAddress(ctx context.Context, userID, addressID uuid.UUID) error {
	return m.Called(ctx, userID, addressID).Error(0)
}

func (m *MockAccountService) ListUsers(ctx context.Context, filter models.UserFilter) ([]models.Profile, *models.PaginationInfo, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).([]models.Profile), args.Get(1).(*models.PaginationInfo), args.Error(2)
}

func (m *MockAccountService) UpdateRole(ctx context.Context, actorID, userID uuid.UUID, role models.Role) (*models.Profile, error) {
	args := m.Called(ctx, actorID, userID, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}
