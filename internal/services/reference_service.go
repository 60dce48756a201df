package services

import (
	"context"

	"imobilBack/internal/auth"
	"imobilBack/internal/models"
	"imobilBack/internal/repositories"
)

// ReferenceService manages the lookup catalogs. Reads are public;
// writes need an elevated role.
type ReferenceService struct {
	ReferenceRepo *repositories.ReferenceRepository
}

func (s *ReferenceService) List(ctx context.Context, kind models.ReferenceKind) ([]models.Reference, error) {
	return s.ReferenceRepo.List(ctx, kind)
}

func (s *ReferenceService) GetByID(ctx context.Context, kind models.ReferenceKind, id int) (models.Reference, error) {
	return s.ReferenceRepo.GetByID(ctx, kind, id)
}

func (s *ReferenceService) Create(ctx context.Context, actor auth.Actor, kind models.ReferenceKind, name string) (models.Reference, error) {
	if !auth.CanManageReference(actor) {
		return models.Reference{}, models.ErrForbidden
	}
	if name == "" {
		return models.Reference{}, &models.ValidationError{Field: "name", Message: models.MsgFieldRequired}
	}
	return s.ReferenceRepo.Create(ctx, kind, name)
}

func (s *ReferenceService) Update(ctx context.Context, actor auth.Actor, kind models.ReferenceKind, id int, name string) (models.Reference, error) {
	if !auth.CanManageReference(actor) {
		return models.Reference{}, models.ErrForbidden
	}
	if name == "" {
		return models.Reference{}, &models.ValidationError{Field: "name", Message: models.MsgFieldRequired}
	}
	return s.ReferenceRepo.Update(ctx, kind, models.Reference{ID: id, Name: name})
}

// Delete refuses, via ErrReferenceInUse, to remove an entry that rows
// still point at.
func (s *ReferenceService) Delete(ctx context.Context, actor auth.Actor, kind models.ReferenceKind, id int) error {
	if !auth.CanManageReference(actor) {
		return models.ErrForbidden
	}
	return s.ReferenceRepo.Delete(ctx, kind, id)
}
