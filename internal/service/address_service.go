package service

import (
	"context"
	"strings"

	"storefront-service/internal/apperr"
	"storefront-service/internal/models"
	"storefront-service/internal/store"
	"storefront-service/internal/util"

	"go.uber.org/zap"
)

const msgAddressNotFound = "Address not found"

// AddressService manages saved shipping addresses
type AddressService struct {
	store  store.AddressStore
	logger *zap.Logger
}

// NewAddressService creates a new address service
func NewAddressService(addresses store.AddressStore) *AddressService {
	return &AddressService{store: addresses, logger: util.GetLogger()}
}

// AddressInput carries the editable address fields
type AddressInput struct {
	UserID  string `json:"userId"`
	Address string `json:"address"`
	City    string `json:"city"`
	Pincode string `json:"pincode"`
	Phone   string `json:"phone"`
	Notes   string `json:"notes"`
}

func (in *AddressInput) valid() bool {
	for _, f := range []string{in.UserID, in.Address, in.City, in.Pincode, in.Phone} {
		if strings.TrimSpace(f) == "" {
			return false
		}
	}
	return true
}

// AddAddress stores a new address; the per-user quota is left to clients
func (s *AddressService) AddAddress(ctx context.Context, in *AddressInput) (*models.Address, error) {
	ctx, span := util.StartSpan(ctx, "AddressService.AddAddress")
	defer span.End()

	if in == nil || !in.valid() {
		return nil, apperr.InvalidInput("Invalid data provided!")
	}

	address := &models.Address{
		UserID:  in.UserID,
		Address: in.Address,
		City:    in.City,
		Pincode: in.Pincode,
		Phone:   in.Phone,
		Notes:   in.Notes,
	}
	if err := s.store.CreateAddress(ctx, address); err != nil {
		return nil, storeError(err, "")
	}

	s.logger.Debug("Address added", zap.String("user_id", in.UserID), zap.String("address_id", address.ID))
	return address, nil
}

// ListAddresses returns a user's addresses, newest first
func (s *AddressService) ListAddresses(ctx context.Context, userID string) ([]models.Address, error) {
	ctx, span := util.StartSpan(ctx, "AddressService.ListAddresses")
	defer span.End()

	if userID == "" {
		return nil, apperr.InvalidInput("User id is required!")
	}

	addresses, err := s.store.ListAddresses(ctx, userID)
	if err != nil {
		return nil, storeError(err, "")
	}
	if addresses == nil {
		addresses = []models.Address{}
	}
	return addresses, nil
}

// UpdateAddress overlays the non-empty fields of in onto an address owned by userID
func (s *AddressService) UpdateAddress(ctx context.Context, userID, addressID string, in *AddressInput) (*models.Address, error) {
	ctx, span := util.StartSpan(ctx, "AddressService.UpdateAddress")
	defer span.End()

	if userID == "" || addressID == "" || in == nil {
		return nil, apperr.InvalidInput("User and address id is required!")
	}

	addresses, err := s.store.ListAddresses(ctx, userID)
	if err != nil {
		return nil, storeError(err, "")
	}
	var address *models.Address
	for i := range addresses {
		if addresses[i].ID == addressID {
			address = &addresses[i]
			break
		}
	}
	if address == nil {
		return nil, apperr.NotFound(msgAddressNotFound)
	}

	overlay(&address.Address, in.Address)
	overlay(&address.City, in.City)
	overlay(&address.Pincode, in.Pincode)
	overlay(&address.Phone, in.Phone)
	overlay(&address.Notes, in.Notes)

	if err := s.store.UpdateAddress(ctx, address); err != nil {
		return nil, storeError(err, msgAddressNotFound)
	}
	return address, nil
}

func overlay(dst *string, value string) {
	if strings.TrimSpace(value) != "" {
		*dst = value
	}
}

// DeleteAddress removes an address owned by userID
func (s *AddressService) DeleteAddress(ctx context.Context, userID, addressID string) error {
	ctx, span := util.StartSpan(ctx, "AddressService.DeleteAddress")
	defer span.End()

	if userID == "" || addressID == "" {
		return apperr.InvalidInput("User and address id is required!")
	}

	return storeError(s.store.DeleteAddress(ctx, userID, addressID), msgAddressNotFound)
}
