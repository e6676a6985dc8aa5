package domain

import (
	"errors"
	"mime/multipart"
	"strings"
	"time"
)

const (
	ListingStatusAvailable = "available"
	ListingStatusPending   = "pending"
	ListingStatusSold      = "sold"

	ListingStatusAll = "all"
)

var (
	MessageSuccessCreateListing = "waste listing created successfully"
	MessageSuccessGetListings   = "waste listings retrieved successfully"
	MessageSuccessGetListing    = "waste listing retrieved successfully"
	MessageSuccessUpdateListing = "waste listing updated successfully"
	MessageSuccessDeleteListing = "waste listing deleted successfully"
	MessageSuccessUploadImage   = "waste listing image uploaded successfully"

	MessageFailedCreateListing = "failed to create waste listing"
	MessageFailedGetListings   = "failed to retrieve waste listings"
	MessageFailedGetListing    = "failed to retrieve waste listing"
	MessageFailedUpdateListing = "failed to update waste listing"
	MessageFailedDeleteListing = "failed to delete waste listing"
	MessageFailedUploadImage   = "failed to upload waste listing image"

	ErrListingNotFound         = errors.New("waste listing not found")
	ErrListingUnavailable      = errors.New("waste listing is not available")
	ErrInsufficientQuantity    = errors.New("requested quantity exceeds available quantity")
	ErrListingReserved         = errors.New("waste listing is held by confirmed orders")
	ErrInvalidListingStatus    = errors.New("invalid waste listing status")
	ErrInvalidAvailableFrom    = errors.New("invalid available_from date, expected YYYY-MM-DD")
	ErrUnauthorizedListingEdit = errors.New("unauthorized access to waste listing")
)

type (
	CreateListingRequest struct {
		WasteType     string  `json:"waste_type" validate:"required"`
		Description   string  `json:"description"`
		Quantity      float64 `json:"quantity" validate:"required,gt=0"`
		Unit          string  `json:"unit" validate:"required,oneof=kg ton quintal"`
		Price         float64 `json:"price" validate:"required,gt=0"`
		Location      string  `json:"location" validate:"required"`
		AvailableFrom string  `json:"available_from" validate:"omitempty"`
	}

	UpdateListingRequest struct {
		WasteType     string  `json:"waste_type" validate:"omitempty"`
		Description   *string `json:"description"`
		Quantity      float64 `json:"quantity" validate:"omitempty,gt=0"`
		Unit          string  `json:"unit" validate:"omitempty,oneof=kg ton quintal"`
		Price         float64 `json:"price" validate:"omitempty,gt=0"`
		Location      string  `json:"location" validate:"omitempty"`
		AvailableFrom string  `json:"available_from" validate:"omitempty"`
		Status        string  `json:"status" validate:"omitempty,oneof=available sold"`
		Version       int     `json:"version" validate:"required,min=1"`
	}

	UploadListingImageRequest struct {
		Image *multipart.FileHeader `form:"image" validate:"required"`
	}

	Listing struct {
		ID            string     `json:"id"`
		FarmerID      string     `json:"farmer_id"`
		FarmerName    string     `json:"farmer_name,omitempty"`
		WasteType     string     `json:"waste_type"`
		Description   string     `json:"description"`
		Quantity      float64    `json:"quantity"`
		Unit          string     `json:"unit"`
		Price         float64    `json:"price"`
		Location      string     `json:"location"`
		AvailableFrom *time.Time `json:"available_from,omitempty"`
		ImageURL      string     `json:"image_url,omitempty"`
		Status        string     `json:"status"`
		Version       int        `json:"version"`
		CreatedAt     time.Time  `json:"created_at"`
		UpdatedAt     time.Time  `json:"updated_at"`
	}

	// ListingFilter narrows listings by a free-text term and a status. Both
	// predicates must hold.
	ListingFilter struct {
		Search string
		Status string
	}
)

func IsValidListingStatus(status string) bool {
	switch status {
	case ListingStatusAvailable, ListingStatusPending, ListingStatusSold:
		return true
	}
	return false
}

func NewListingFilter(search, status string) (ListingFilter, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	if status != "" && status != ListingStatusAll && !IsValidListingStatus(status) {
		return ListingFilter{}, ErrInvalidListingStatus
	}
	return ListingFilter{Search: strings.TrimSpace(search), Status: status}, nil
}

// AnyStatus reports whether the filter leaves status unconstrained.
func (f ListingFilter) AnyStatus() bool {
	return f.Status == "" || f.Status == ListingStatusAll
}

// SearchPattern returns the ILIKE pattern for the search term with LIKE
// wildcards in the term escaped.
func (f ListingFilter) SearchPattern() string {
	return "%" + likeEscaper.Replace(strings.ToLower(f.Search)) + "%"
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

func (f ListingFilter) Matches(l Listing) bool {
	if !f.AnyStatus() && l.Status != f.Status {
		return false
	}
	if f.Search == "" {
		return true
	}
	term := strings.ToLower(f.Search)
	return strings.Contains(strings.ToLower(l.WasteType), term) ||
		strings.Contains(strings.ToLower(l.Description), term) ||
		strings.Contains(strings.ToLower(l.Location), term)
}

func ParseAvailableFrom(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, ErrInvalidAvailableFrom
	}
	return &t, nil
}
