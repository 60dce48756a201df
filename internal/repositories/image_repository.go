package repositories

import (
	"context"
	"database/sql"
	"errors"

	"imobilBack/internal/models"
)

type ImageRepository struct {
	DB *sql.DB
}

func (r *ImageRepository) ImagesByListing(ctx context.Context, listingID int) ([]models.ListingImage, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id, listing_id, object_key FROM listing_images WHERE listing_id = ? ORDER BY id`, listingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var images []models.ListingImage
	for rows.Next() {
		var img models.ListingImage
		if err := rows.Scan(&img.ID, &img.ListingID, &img.ObjectKey); err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

func (r *ImageRepository) GetByID(ctx context.Context, listingID, imageID int) (models.ListingImage, error) {
	var img models.ListingImage
	err := r.DB.QueryRowContext(ctx, `SELECT id, listing_id, object_key FROM listing_images WHERE id = ? AND listing_id = ?`, imageID, listingID).
		Scan(&img.ID, &img.ListingID, &img.ObjectKey)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ListingImage{}, models.ErrImageNotFound
	}
	return img, err
}

func (r *ImageRepository) Add(ctx context.Context, listingID int, objectKey string) (models.ListingImage, error) {
	res, err := r.DB.ExecContext(ctx, `INSERT INTO listing_images (listing_id, object_key) VALUES (?, ?)`, listingID, objectKey)
	if err != nil {
		return models.ListingImage{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.ListingImage{}, err
	}
	return models.ListingImage{ID: int(id), ListingID: listingID, ObjectKey: objectKey}, nil
}

// Delete removes one image row and returns its object key so the caller
// can release the stored file.
func (r *ImageRepository) Delete(ctx context.Context, listingID, imageID int) (string, error) {
	img, err := r.GetByID(ctx, listingID, imageID)
	if err != nil {
		return "", err
	}
	res, err := r.DB.ExecContext(ctx, `DELETE FROM listing_images WHERE id = ?`, img.ID)
	if err != nil {
		return "", err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return "", err
	}
	if affected == 0 {
		return "", models.ErrImageNotFound
	}
	return img.ObjectKey, nil
}
