package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"storefront-service/internal/models"
	"storefront-service/internal/repository"
)

// AccountService manages the signed-in customer's profile and addresses, and
// the back-office user list.
type AccountService interface {
	EnsureProfile(ctx context.Context, userID uuid.UUID, email string) (*models.Profile, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, req models.UpdateProfileRequest) (*models.Profile, error)
	Role(ctx context.Context, userID uuid.UUID) (models.Role, error)

	ListAddresses(ctx context.Context, userID uuid.UUID) ([]models.Address, error)
	CreateAddress(ctx context.Context, userID uuid.UUID, req models.AddressRequest) (*models.Address, error)
	UpdateAddress(ctx context.Context, userID, addressID uuid.UUID, req models.AddressRequest) (*models.Address, error)
	DeleteAddress(ctx context.Context, userID, addressID uuid.UUID) error

	ListUsers(ctx context.Context, filter models.UserFilter) ([]models.Profile, *models.PaginationInfo, error)
	UpdateRole(ctx context.Context, actorID, userID uuid.UUID, role models.Role) (*models.Profile, error)
}

type accountService struct {
	users  repository.UsersRepositoryInterface
	logger *logrus.Logger
}

func NewAccountService(users repository.UsersRepositoryInterface, logger *logrus.Logger) AccountService {
	return &accountService{users: users, logger: logger}
}

// EnsureProfile returns the caller's profile, creating it on first sign-in
func (s *accountService) EnsureProfile(ctx context.Context, userID uuid.UUID, email string) (*models.Profile, error) {
	return s.users.EnsureProfile(ctx, userID, strings.ToLower(email))
}

func (s *accountService) UpdateProfile(ctx context.Context, userID uuid.UUID, req models.UpdateProfileRequest) (*models.Profile, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	profile, err := s.users.GetProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if req.FullName != nil {
		profile.FullName = strings.TrimSpace(*req.FullName)
	}
	if req.Phone != nil {
		phone := strings.TrimSpace(*req.Phone)
		profile.Phone = &phone
	}
	if req.AvatarURL != nil {
		profile.AvatarURL = req.AvatarURL
	}
	if req.PreferredLocale != nil {
		profile.PreferredLocale = *req.PreferredLocale
	}

	if err := s.users.UpdateProfile(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// Role resolves a user's role; unknown users are customers
func (s *accountService) Role(ctx context.Context, userID uuid.UUID) (models.Role, error) {
	role, err := s.users.GetRole(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.RoleCustomer, nil
		}
		return "", err
	}
	return role, nil
}

// ===== Addresses =====

func (s *accountService) ListAddresses(ctx context.Context, userID uuid.UUID) ([]models.Address, error) {
	return s.users.ListAddresses(ctx, userID)
}

func (s *accountService) CreateAddress(ctx context.Context, userID uuid.UUID, req models.AddressRequest) (*models.Address, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	address := &models.Address{UserID: userID}
	applyAddressRequest(address, req)
	if err := s.users.SaveAddress(ctx, address); err != nil {
		return nil, err
	}
	return address, nil
}

func (s *accountService) UpdateAddress(ctx context.Context, userID, addressID uuid.UUID, req models.AddressRequest) (*models.Address, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	address, err := s.users.GetAddress(ctx, userID, addressID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAddressNotFound
		}
		return nil, err
	}
	wasDefault := address.IsDefault
	applyAddressRequest(address, req)
	// the default can only move by choosing another address
	address.IsDefault = address.IsDefault || wasDefault
	if err := s.users.SaveAddress(ctx, address); err != nil {
		return nil, err
	}
	return address, nil
}

// DeleteAddress removes an address and promotes the oldest remaining one when
// the default was removed.
func (s *accountService) DeleteAddress(ctx context.Context, userID, addressID uuid.UUID) error {
	address, err := s.users.GetAddress(ctx, userID, addressID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAddressNotFound
		}
		return err
	}
	if err := s.users.DeleteAddress(ctx, userID, addressID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAddressNotFound
		}
		return err
	}
	if !address.IsDefault {
		return nil
	}

	remaining, err := s.users.ListAddresses(ctx, userID)
	if err != nil || len(remaining) == 0 {
		return err
	}
	next := remaining[0]
	next.IsDefault = true
	if err := s.users.SaveAddress(ctx, &next); err != nil {
		s.logger.WithError(err).WithField("user_id", userID).Warn("Failed to promote default address")
	}
	return nil
}

func applyAddressRequest(address *models.Address, req models.AddressRequest) {
	address.Label = strings.TrimSpace(req.Label)
	address.FullName = strings.TrimSpace(req.FullName)
	address.Phone = strings.TrimSpace(req.Phone)
	address.Line1 = strings.TrimSpace(req.Line1)
	address.Line2 = strings.TrimSpace(req.Line2)
	address.City = strings.TrimSpace(req.City)
	address.Region = strings.TrimSpace(req.Region)
	address.PostalCode = strings.TrimSpace(req.PostalCode)
	address.Country = strings.ToUpper(strings.TrimSpace(req.Country))
	address.IsDefault = req.IsDefault
}

// ===== Users (admin) =====

func (s *accountService) ListUsers(ctx context.Context, filter models.UserFilter) ([]models.Profile, *models.PaginationInfo, error) {
	page, limit := pageOrDefault(filter.Page, filter.Limit)
	filter.Page, filter.Limit = page, limit
	profiles, total, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, nil, err
	}
	return profiles, models.NewPaginationInfo(page, limit, total), nil
}

// UpdateRole changes a user's role. Admins cannot demote themselves.
func (s *accountService) UpdateRole(ctx context.Context, actorID, userID uuid.UUID, role models.Role) (*models.Profile, error) {
	if role != models.RoleCustomer && role != models.RoleAdmin {
		return nil, &ValidationError{Field: "role", Message: "must be one of: customer admin"}
	}
	if actorID == userID && role != models.RoleAdmin {
		return nil, ErrSelfDemotion
	}
	if err := s.users.UpdateRole(ctx, userID, role); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"actor_id": actorID,
		"user_id":  userID,
		"role":     role,
	}).Info("User role changed")

	profile, err := s.users.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	return profile, nil
}
