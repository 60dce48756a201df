package services

import (
	"context"
	"io"
	"log"
	"mime/multipart"

	"imobilBack/internal/auth"
	"imobilBack/internal/models"
	"imobilBack/internal/repositories"
)

// ImageService manages a listing's images as a subresource.
type ImageService struct {
	ImageRepo   *repositories.ImageRepository
	ListingRepo *repositories.ListingRepository
	Store       FileStore
}

func (s *ImageService) ListImages(ctx context.Context, listingID int) ([]models.ListingImage, error) {
	if _, err := s.ListingRepo.ListingOwner(ctx, listingID); err != nil {
		return nil, err
	}
	images, err := s.ImageRepo.ImagesByListing(ctx, listingID)
	if err != nil {
		return nil, err
	}
	for i := range images {
		images[i].URL = s.Store.URL(images[i].ObjectKey)
	}
	return images, nil
}

// AddImage stores the payload and attaches it to the listing. Only the
// owner, or an elevated role, may attach.
func (s *ImageService) AddImage(ctx context.Context, actor auth.Actor, listingID int, fh *multipart.FileHeader) (models.ListingImage, error) {
	ownerID, err := s.ListingRepo.ListingOwner(ctx, listingID)
	if err != nil {
		return models.ListingImage{}, err
	}
	if !auth.CanMutateListingResource(actor, ownerID) {
		return models.ListingImage{}, models.ErrForbidden
	}

	file, err := fh.Open()
	if err != nil {
		return models.ListingImage{}, &models.ValidationError{Field: "image", Message: "Invalid image data"}
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return models.ListingImage{}, &models.ValidationError{Field: "image", Message: "Invalid image data"}
	}

	key := s.Store.ObjectKey(fh.Filename)
	if _, err := s.Store.Upload(data, key, fh.Header.Get("Content-Type")); err != nil {
		return models.ListingImage{}, err
	}

	img, err := s.ImageRepo.Add(ctx, listingID, key)
	if err != nil {
		if derr := s.Store.Delete(key); derr != nil {
			log.Printf("[WARN] leaked stored object %s: %v", key, derr)
		}
		return models.ListingImage{}, err
	}
	img.URL = s.Store.URL(img.ObjectKey)
	return img, nil
}

// DeleteImage detaches the row first, then releases the object. A
// failed release is a storage leak, logged and otherwise ignored.
func (s *ImageService) DeleteImage(ctx context.Context, actor auth.Actor, listingID, imageID int) error {
	ownerID, err := s.ListingRepo.ListingOwner(ctx, listingID)
	if err != nil {
		return err
	}
	if !auth.CanMutateListingResource(actor, ownerID) {
		return models.ErrForbidden
	}

	key, err := s.ImageRepo.Delete(ctx, listingID, imageID)
	if err != nil {
		return err
	}
	if err := s.Store.Delete(key); err != nil {
		log.Printf("[WARN] leaked stored object %s: %v", key, err)
	}
	return nil
}
