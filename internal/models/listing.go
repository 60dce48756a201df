package models

import (
	"mime/multipart"
	"time"
)

// Listing is the base aggregate root. Exactly one detail record
// (apartment, house, land or commercial space) extends it 1:1.
type Listing struct {
	ID             int        `json:"id"`
	Street         string     `json:"street"`
	Description    string     `json:"description"`
	LocationID     int        `json:"-"`
	Location       *Reference `json:"location,omitempty"`
	SectorID       *int       `json:"-"`
	Sector         *Reference `json:"sector,omitempty"`
	UserID         int        `json:"-"`
	User           *User      `json:"user,omitempty"`
	SaleTypeID     int        `json:"-"`
	SaleType       *Reference `json:"sale_type,omitempty"`
	Price          int        `json:"price"`
	Availability   bool       `json:"availability"`
	PropertyTypeID int        `json:"-"`
	PropertyType   *Reference `json:"property_type,omitempty"`
	Images         []string   `json:"images"`
	CreatedAt      time.Time  `json:"created_at"`
	ModifiedAt     *time.Time `json:"modified_at,omitempty"`
}

// ListingImage wraps one stored object attached to a listing. ObjectKey
// is the object-store handle; deleting the row must release the object.
type ListingImage struct {
	ID        int    `json:"id"`
	ListingID int    `json:"listing_id"`
	ObjectKey string `json:"-"`
	URL       string `json:"url"`
}

// ListingInput carries listing fields of a create or update payload.
// Pointer fields are merged only when present. SectorID nil together
// with a present sector key means "clear the sector".
type ListingInput struct {
	Street         *string
	Description    *string
	LocationID     *int
	SectorID       *int
	SectorSet      bool
	UserID         *int
	SaleTypeID     *int
	Price          *int
	Availability   *bool
	PropertyTypeID *int
}

// ImageSource is one element of an images payload: either a fresh binary
// upload or a URL reference to an already stored object. Exactly one of
// the two must be set; anything else is a validation error, not a skip.
type ImageSource struct {
	File *multipart.FileHeader
	URL  string
}
