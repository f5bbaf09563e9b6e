package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"storefront-service/internal/models"
)

// UsersRepositoryInterface defines profile and address persistence
type UsersRepositoryInterface interface {
	EnsureProfile(ctx context.Context, id uuid.UUID, email string) (*models.Profile, error)
	GetProfile(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	UpdateProfile(ctx context.Context, profile *models.Profile) error
	GetRole(ctx context.Context, id uuid.UUID) (models.Role, error)
	UpdateRole(ctx context.Context, id uuid.UUID, role models.Role) error
	List(ctx context.Context, filter models.UserFilter) ([]models.Profile, int64, error)

	ListAddresses(ctx context.Context, userID uuid.UUID) ([]models.Address, error)
	GetAddress(ctx context.Context, userID, id uuid.UUID) (*models.Address, error)
	SaveAddress(ctx context.Context, address *models.Address) error
	DeleteAddress(ctx context.Context, userID, id uuid.UUID) error
}

var _ UsersRepositoryInterface = (*UsersRepository)(nil)

type UsersRepository struct {
	db *gorm.DB
}

func NewUsersRepository(db *gorm.DB) *UsersRepository {
	return &UsersRepository{db: db}
}

// EnsureProfile returns the profile for a token subject, creating a customer
// profile on first sight.
func (r *UsersRepository) EnsureProfile(ctx context.Context, id uuid.UUID, email string) (*models.Profile, error) {
	profile := models.Profile{ID: id}
	err := r.db.WithContext(ctx).
		Where(models.Profile{ID: id}).
		Attrs(models.Profile{Email: email, Role: models.RoleCustomer, PreferredLocale: models.LocaleEnglish}).
		FirstOrCreate(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *UsersRepository) GetProfile(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.WithContext(ctx).First(&profile, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &profile, nil
}

func (r *UsersRepository) UpdateProfile(ctx context.Context, profile *models.Profile) error {
	return r.db.WithContext(ctx).Save(profile).Error
}

func (r *UsersRepository) GetRole(ctx context.Context, id uuid.UUID) (models.Role, error) {
	var profile models.Profile
	err := r.db.WithContext(ctx).Select("role").First(&profile, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}
	return profile.Role, nil
}

func (r *UsersRepository) UpdateRole(ctx context.Context, id uuid.UUID, role models.Role) error {
	result := r.db.WithContext(ctx).Model(&models.Profile{}).Where("id = ?", id).Update("role", role)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *UsersRepository) List(ctx context.Context, filter models.UserFilter) ([]models.Profile, int64, error) {
	page, limit := normalizePage(filter.Page, filter.Limit)
	query := r.db.WithContext(ctx).Model(&models.Profile{})
	if filter.Search != "" {
		pattern := containsPattern(filter.Search)
		query = query.Where("(LOWER(email) LIKE ? OR LOWER(full_name) LIKE ?)", pattern, pattern)
	}
	if filter.Role != "" {
		query = query.Where("role = ?", filter.Role)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	profiles := []models.Profile{}
	err := query.Order("created_at DESC").Offset((page - 1) * limit).Limit(limit).Find(&profiles).Error
	return profiles, total, err
}

func (r *UsersRepository) ListAddresses(ctx context.Context, userID uuid.UUID) ([]models.Address, error) {
	addresses := []models.Address{}
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("is_default DESC, created_at ASC").
		Find(&addresses).Error
	return addresses, err
}

func (r *UsersRepository) GetAddress(ctx context.Context, userID, id uuid.UUID) (*models.Address, error) {
	var address models.Address
	err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&address).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &address, nil
}

// SaveAddress creates or updates an address. Only one address per user is
// the default; the user's first address always is.
func (r *UsersRepository) SaveAddress(ctx context.Context, address *models.Address) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Address{}).
			Where("user_id = ? AND id <> ?", address.UserID, address.ID).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			address.IsDefault = true
		}
		if address.IsDefault {
			if err := tx.Model(&models.Address{}).
				Where("user_id = ? AND id <> ?", address.UserID, address.ID).
				Update("is_default", false).Error; err != nil {
				return err
			}
		}
		if address.ID == uuid.Nil {
			address.ID = uuid.New()
		}
		return tx.Save(address).Error
	})
}

func (r *UsersRepository) DeleteAddress(ctx context.Context, userID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.Address{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
