package models

import (
	"errors"
	"fmt"
)

var (
	ErrListingNotFound         = errors.New("models: listing not found")
	ErrApartmentNotFound       = errors.New("models: apartment not found")
	ErrHouseNotFound           = errors.New("models: house not found")
	ErrLandNotFound            = errors.New("models: land not found")
	ErrCommercialSpaceNotFound = errors.New("models: commercial space not found")
	ErrImageNotFound           = errors.New("models: listing image not found")
	ErrUserNotFound            = errors.New("models: user not found")
	ErrMessageNotFound         = errors.New("models: message not found")
	ErrRequestNotFound         = errors.New("models: request not found")
	ErrReferenceNotFound       = errors.New("models: reference not found")
	ErrDuplicateEmail          = errors.New("models: duplicate email")
	ErrDuplicatePhone          = errors.New("models: duplicate phone number")
	ErrDuplicateUsername       = errors.New("models: duplicate username")
	ErrInvalidCredentials      = errors.New("models: invalid credentials")
	ErrForbidden               = errors.New("models: forbidden")
	ErrReferenceInUse          = errors.New("models: reference row is still in use")
)

// ValidationError is a field-scoped validation failure. The field name is
// the wire name of the offending input, so clients can attach the message
// to the right form control.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NotFoundError returns the typed not-found sentinel for a detail type.
func NotFoundError(t DetailType) error {
	switch t {
	case DetailApartment:
		return ErrApartmentNotFound
	case DetailHouse:
		return ErrHouseNotFound
	case DetailLand:
		return ErrLandNotFound
	case DetailCommercialSpace:
		return ErrCommercialSpaceNotFound
	}
	return ErrListingNotFound
}
