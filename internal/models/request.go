package models

import "time"

// Request is a price-estimate request. It shares the sector/location
// rule with Listing. Approved always starts false and may only be set
// by privileged roles, never by the creator.
type Request struct {
	ID             int        `json:"id"`
	FirstName      string     `json:"first_name"`
	LastName       string     `json:"last_name"`
	Phone          string     `json:"phone"`
	Email          string     `json:"email"`
	LocationID     int        `json:"-"`
	Location       *Reference `json:"location,omitempty"`
	SectorID       *int       `json:"-"`
	Sector         *Reference `json:"sector,omitempty"`
	PropertyTypeID int        `json:"-"`
	PropertyType   *Reference `json:"property_type,omitempty"`
	EstimatedPrice int        `json:"estimated_price"`
	ConditionID    int        `json:"-"`
	Condition      *Reference `json:"condition,omitempty"`
	Note           string     `json:"note,omitempty"`
	Approved       bool       `json:"approved"`
	CreatedAt      time.Time  `json:"created_at"`
}

// RequestInput is the write payload for a request.
type RequestInput struct {
	FirstName      *string `json:"first_name"`
	LastName       *string `json:"last_name"`
	Phone          *string `json:"phone"`
	Email          *string `json:"email"`
	LocationID     *int    `json:"location_id"`
	SectorID       *int    `json:"sector_id"`
	PropertyTypeID *int    `json:"property_type_id"`
	EstimatedPrice *int    `json:"estimated_price"`
	ConditionID    *int    `json:"condition_id"`
	Note           *string `json:"note"`
	Approved       *bool   `json:"approved"`
}
