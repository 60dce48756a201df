package services

import (
	"context"
	"fmt"
	"log"

	"imobilBack/internal/auth"
	"imobilBack/internal/models"
	"imobilBack/internal/repositories"
)

const msgPricePositive = "Introduceți o valoare mai mare ca 0"

// RequestService handles price-estimate requests. Creation is public,
// the approved flag is reserved for privileged roles.
type RequestService struct {
	RequestRepo   *repositories.RequestRepository
	ReferenceRepo *repositories.ReferenceRepository
	Mail          MailSender
	NotifyAddr    string
}

// CreateRequest validates and stores a request. Approved is forced to
// false regardless of the payload; the agency mailbox gets a
// notification once the row is durable.
func (s *RequestService) CreateRequest(ctx context.Context, in models.RequestInput) (models.Request, error) {
	var req models.Request

	requiredStr := []struct {
		field string
		value *string
	}{
		{"first_name", in.FirstName},
		{"last_name", in.LastName},
		{"phone", in.Phone},
		{"email", in.Email},
	}
	for _, f := range requiredStr {
		if f.value == nil || *f.value == "" {
			return models.Request{}, &models.ValidationError{Field: f.field, Message: models.MsgFieldRequired}
		}
	}
	req.FirstName = *in.FirstName
	req.LastName = *in.LastName
	req.Phone = *in.Phone
	req.Email = *in.Email

	if !emailRegexp.MatchString(req.Email) {
		return models.Request{}, &models.ValidationError{Field: "email", Message: msgEmailInvalid}
	}
	if !phoneRegexp.MatchString(req.Phone) {
		return models.Request{}, &models.ValidationError{Field: "phone", Message: msgPhoneInvalid}
	}

	if in.EstimatedPrice == nil {
		return models.Request{}, &models.ValidationError{Field: "estimated_price", Message: models.MsgFieldRequired}
	}
	if *in.EstimatedPrice <= 0 {
		return models.Request{}, &models.ValidationError{Field: "estimated_price", Message: msgPricePositive}
	}
	req.EstimatedPrice = *in.EstimatedPrice

	if in.LocationID == nil {
		return models.Request{}, &models.ValidationError{Field: "location_id", Message: models.MsgFieldRequired}
	}
	location, err := s.ReferenceRepo.Resolve(ctx, models.RefLocation, *in.LocationID)
	if err != nil {
		return models.Request{}, err
	}
	req.LocationID = location.ID

	if in.SectorID != nil {
		if _, err := s.ReferenceRepo.Resolve(ctx, models.RefSector, *in.SectorID); err != nil {
			return models.Request{}, err
		}
		req.SectorID = in.SectorID
	}
	if verr := models.ValidateSectorRule(location.Name, req.SectorID != nil); verr != nil {
		return models.Request{}, verr
	}

	if in.PropertyTypeID == nil {
		return models.Request{}, &models.ValidationError{Field: "property_type_id", Message: models.MsgFieldRequired}
	}
	if _, err := s.ReferenceRepo.Resolve(ctx, models.RefPropertyType, *in.PropertyTypeID); err != nil {
		return models.Request{}, err
	}
	req.PropertyTypeID = *in.PropertyTypeID

	if in.ConditionID == nil {
		return models.Request{}, &models.ValidationError{Field: "condition_id", Message: models.MsgFieldRequired}
	}
	if _, err := s.ReferenceRepo.Resolve(ctx, models.RefCondition, *in.ConditionID); err != nil {
		return models.Request{}, err
	}
	req.ConditionID = *in.ConditionID

	if in.Note != nil {
		req.Note = *in.Note
	}
	req.Approved = false

	created, err := s.RequestRepo.CreateRequest(ctx, req)
	if err != nil {
		return models.Request{}, err
	}

	body := fmt.Sprintf("Cerere nouă de evaluare de la %s %s (%s, %s).", created.FirstName, created.LastName, created.Email, created.Phone)
	if err := s.Mail.Send("Cerere nouă de evaluare", body, []string{s.NotifyAddr}); err != nil {
		log.Printf("[WARN] request %d stored but notification failed: %v", created.ID, err)
	}
	return s.RequestRepo.GetRequestByID(ctx, created.ID)
}

// UpdateRequest merges a partial payload. Touching approved requires a
// privileged role; location and sector are validated against their
// merged state.
func (s *RequestService) UpdateRequest(ctx context.Context, actor auth.Actor, id int, in models.RequestInput) (models.Request, error) {
	existing, err := s.RequestRepo.GetRequestByID(ctx, id)
	if err != nil {
		return models.Request{}, err
	}
	if in.Approved != nil && !auth.CanApproveRequest(actor) {
		return models.Request{}, models.ErrForbidden
	}

	if in.Email != nil && !emailRegexp.MatchString(*in.Email) {
		return models.Request{}, &models.ValidationError{Field: "email", Message: msgEmailInvalid}
	}
	if in.Phone != nil && !phoneRegexp.MatchString(*in.Phone) {
		return models.Request{}, &models.ValidationError{Field: "phone", Message: msgPhoneInvalid}
	}
	if in.EstimatedPrice != nil && *in.EstimatedPrice <= 0 {
		return models.Request{}, &models.ValidationError{Field: "estimated_price", Message: msgPricePositive}
	}

	locationName := ""
	if existing.Location != nil {
		locationName = existing.Location.Name
	}
	if in.LocationID != nil {
		location, err := s.ReferenceRepo.Resolve(ctx, models.RefLocation, *in.LocationID)
		if err != nil {
			return models.Request{}, err
		}
		locationName = location.Name
	}
	hasSector := existing.SectorID != nil
	if in.LocationID != nil {
		// A location change resets the sector to whatever the payload
		// carries, so the pair always validates together.
		hasSector = in.SectorID != nil
	}
	if in.SectorID != nil {
		if _, err := s.ReferenceRepo.Resolve(ctx, models.RefSector, *in.SectorID); err != nil {
			return models.Request{}, err
		}
		hasSector = true
	}
	if verr := models.ValidateSectorRule(locationName, hasSector); verr != nil {
		return models.Request{}, verr
	}

	if in.PropertyTypeID != nil {
		if _, err := s.ReferenceRepo.Resolve(ctx, models.RefPropertyType, *in.PropertyTypeID); err != nil {
			return models.Request{}, err
		}
	}
	if in.ConditionID != nil {
		if _, err := s.ReferenceRepo.Resolve(ctx, models.RefCondition, *in.ConditionID); err != nil {
			return models.Request{}, err
		}
	}

	return s.RequestRepo.UpdateRequest(ctx, id, in)
}

func (s *RequestService) GetRequestByID(ctx context.Context, id int) (models.Request, error) {
	return s.RequestRepo.GetRequestByID(ctx, id)
}

func (s *RequestService) GetRequests(ctx context.Context) ([]models.Request, error) {
	return s.RequestRepo.GetRequests(ctx)
}

func (s *RequestService) DeleteRequest(ctx context.Context, id int) error {
	return s.RequestRepo.DeleteRequest(ctx, id)
}
