package repositories

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"imobilBack/internal/models"
)

func newMock(t *testing.T) (*ListingRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return &ListingRepository{DB: db}, mock
}

func apartmentAggregate() *models.DetailListing {
	return &models.DetailListing{
		Type: models.DetailApartment,
		Listing: models.Listing{
			Street:         "Stefan cel Mare 1",
			Description:    "centru",
			LocationID:     1,
			SectorID:       nil,
			UserID:         3,
			SaleTypeID:     1,
			Price:          50000,
			Availability:   true,
			PropertyTypeID: 2,
		},
		Apartment: &models.Apartment{
			Surface:            54,
			ConditionID:        1,
			ConstructionTypeID: 2,
			PlanningTypeID:     1,
			Rooms:              2,
			Floor:              3,
			TotalFloors:        9,
			Bathrooms:          1,
			HeatingTypeID:      1,
		},
	}
}

func TestCreateAggregateCommitsAllRows(t *testing.T) {
	repo, mock := newMock(t)
	dl := apartmentAggregate()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO listings`)).
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO listing_images (listing_id, object_key) VALUES (?, ?)`)).
		WithArgs(int64(7), "listings/a.jpg").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO listing_images (listing_id, object_key) VALUES (?, ?)`)).
		WithArgs(int64(7), "listings/b.jpg").
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO apartments`)).
		WillReturnResult(sqlmock.NewResult(4, 1))
	mock.ExpectCommit()

	id, err := repo.CreateAggregate(context.Background(), dl, []string{"listings/a.jpg", "listings/b.jpg"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != 7 {
		t.Fatalf("expected listing id 7 got %d", id)
	}
	if dl.Apartment.ID != 4 || dl.Apartment.ListingID != 7 {
		t.Fatalf("detail ids not set: %+v", dl.Apartment)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestCreateAggregateRollsBackOnDetailFailure(t *testing.T) {
	repo, mock := newMock(t)
	dl := apartmentAggregate()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO listings`)).
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO apartments`)).
		WillReturnError(errors.New("constraint violation"))
	mock.ExpectRollback()

	if _, err := repo.CreateAggregate(context.Background(), dl, nil); err == nil {
		t.Fatal("expected the detail failure to surface")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestDeleteAggregateRemovesInDependencyOrder(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT user_id FROM listings WHERE id = ?`)).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(3))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id FROM apartments WHERE listing_id = ?`)).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(4))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT object_key FROM listing_images WHERE listing_id = ?`)).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"object_key"}).AddRow("listings/a.jpg"))

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM listing_images WHERE listing_id = ?`)).
		WithArgs(7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM apartments WHERE listing_id = ?`)).
		WithArgs(7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM listings WHERE id = ?`)).
		WithArgs(7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	keys, err := repo.DeleteAggregate(context.Background(), models.DetailApartment, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(keys) != 1 || keys[0] != "listings/a.jpg" {
		t.Fatalf("expected released keys, got %v", keys)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestDeleteAggregateDistinguishesMissingParts(t *testing.T) {
	t.Run("missing listing", func(t *testing.T) {
		repo, mock := newMock(t)
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT user_id FROM listings WHERE id = ?`)).
			WithArgs(99).
			WillReturnRows(sqlmock.NewRows([]string{"user_id"}))

		_, err := repo.DeleteAggregate(context.Background(), models.DetailApartment, 99)
		if !errors.Is(err, models.ErrListingNotFound) {
			t.Fatalf("expected ErrListingNotFound got %v", err)
		}
	})

	t.Run("missing detail record", func(t *testing.T) {
		repo, mock := newMock(t)
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT user_id FROM listings WHERE id = ?`)).
			WithArgs(7).
			WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(3))
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT id FROM houses WHERE listing_id = ?`)).
			WithArgs(7).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := repo.DeleteAggregate(context.Background(), models.DetailHouse, 7)
		if !errors.Is(err, models.ErrHouseNotFound) {
			t.Fatalf("expected ErrHouseNotFound got %v", err)
		}
	})
}

func TestUpdateAggregateAppliesImageDiff(t *testing.T) {
	repo, mock := newMock(t)

	street := "Alba Iulia 10"
	in := &models.ListingInput{Street: &street}
	surface := 80
	detail := &models.DetailInput{Surface: &surface}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE listings SET street = ?, modified_at = ? WHERE id = ?`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM listing_images WHERE id = ? AND listing_id = ?`)).
		WithArgs(12, 7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO listing_images (listing_id, object_key) VALUES (?, ?)`)).
		WithArgs(7, "listings/new.jpg").
		WillReturnResult(sqlmock.NewResult(30, 1))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE apartments SET surface = ? WHERE listing_id = ?`)).
		WithArgs(80, 7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.UpdateAggregate(context.Background(), models.DetailApartment, 7, in, detail, []int{12}, []string{"listings/new.jpg"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}
