package services

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"path"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"imobilBack/internal/auth"
	"imobilBack/internal/models"
	"imobilBack/internal/repositories"
)

type fakeStore struct {
	uploaded []string
	deleted  []string
}

func (f *fakeStore) ObjectKey(filename string) string { return "listings/" + filename }
func (f *fakeStore) KeyFromURL(raw string) string     { return "listings/" + path.Base(raw) }
func (f *fakeStore) URL(key string) string            { return "https://cdn.test/" + key }

func (f *fakeStore) Upload(data []byte, key string, contentType string) (string, error) {
	f.uploaded = append(f.uploaded, key)
	return f.URL(key), nil
}

func (f *fakeStore) Delete(key string) error {
	f.deleted = append(f.deleted, key)
	return nil
}

func fileHeader(t *testing.T, name string) *multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile("images", name)
	if err != nil {
		t.Fatal(err)
	}
	part.Write([]byte("payload"))
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	form, err := multipart.NewReader(body, w.Boundary()).ReadForm(32 << 20)
	if err != nil {
		t.Fatal(err)
	}
	return form.File["images"][0]
}

func newService(t *testing.T) (*ListingService, sqlmock.Sqlmock, *fakeStore) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	store := &fakeStore{}
	svc := &ListingService{
		ListingRepo:   &repositories.ListingRepository{DB: db},
		ImageRepo:     &repositories.ImageRepository{DB: db},
		ReferenceRepo: &repositories.ReferenceRepository{DB: db},
		UserRepo:      &repositories.UserRepository{DB: db},
		Store:         store,
	}
	return svc, mock, store
}

func refRow(id int, name string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name"}).AddRow(id, name)
}

func userRow(id int) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "first_name", "last_name", "username", "email", "phone", "password",
		"is_active", "date_joined", "modified_at", "user_type_id", "name",
	}).AddRow(id, "Ion", "Rusu", "ion", "ion@test.md", "+37369000000", "x",
		true, time.Now(), nil, auth.RoleAgent, "agent")
}

func strPtr(v string) *string { return &v }
func intPtr(v int) *int       { return &v }
func boolPtr(v bool) *bool    { return &v }

func validApartmentInput() CreateDetailListingInput {
	return CreateDetailListingInput{
		Listing: models.ListingInput{
			Street:         strPtr("Alba Iulia 10"),
			Description:    strPtr("renovat"),
			LocationID:     intPtr(2),
			SaleTypeID:     intPtr(1),
			Price:          intPtr(45000),
			Availability:   boolPtr(true),
			PropertyTypeID: intPtr(2),
		},
		Detail: models.DetailInput{
			Surface:            intPtr(54),
			Rooms:              intPtr(2),
			Floor:              intPtr(3),
			TotalFloors:        intPtr(9),
			Bathrooms:          intPtr(1),
			ConditionID:        intPtr(1),
			ConstructionTypeID: intPtr(2),
			PlanningTypeID:     intPtr(1),
			HeatingTypeID:      intPtr(1),
		},
	}
}

func TestPartitionImageSources(t *testing.T) {
	t.Run("splits files from url references", func(t *testing.T) {
		sources := []models.ImageSource{
			{File: fileHeader(t, "a.jpg")},
			{URL: "https://cdn.test/listings/kept.jpg"},
		}
		files, kept, err := partitionImageSources(sources)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(files) != 1 {
			t.Fatalf("expected 1 upload got %d", len(files))
		}
		if !kept["kept.jpg"] {
			t.Fatalf("expected kept.jpg in kept set, got %v", kept)
		}
	})

	t.Run("empty source is a validation error", func(t *testing.T) {
		_, _, err := partitionImageSources([]models.ImageSource{{}})
		var verr *models.ValidationError
		if !errors.As(err, &verr) || verr.Field != "images" {
			t.Fatalf("expected images validation error got %v", err)
		}
	})

	t.Run("ambiguous source is a validation error", func(t *testing.T) {
		src := models.ImageSource{File: fileHeader(t, "a.jpg"), URL: "https://cdn.test/b.jpg"}
		if _, _, err := partitionImageSources([]models.ImageSource{src}); err == nil {
			t.Fatal("expected a validation error")
		}
	})
}

func TestCreateDetailListingMissingField(t *testing.T) {
	svc, _, store := newService(t)

	in := validApartmentInput()
	in.Listing.Street = nil

	_, err := svc.CreateDetailListing(context.Background(), auth.Actor{UserID: 3, Role: auth.RoleAgent, Authenticated: true}, models.DetailApartment, in)
	var verr *models.ValidationError
	if !errors.As(err, &verr) || verr.Field != "street" {
		t.Fatalf("expected street validation error got %v", err)
	}
	if len(store.uploaded) != 0 {
		t.Fatal("nothing may be uploaded before validation passes")
	}
}

func TestCreateDetailListingSectorRule(t *testing.T) {
	svc, mock, store := newService(t)

	mock.ExpectQuery("SELECT id, name FROM locations WHERE id = ?").
		WillReturnRows(refRow(1, models.ChisinauLocationName))

	in := validApartmentInput()
	in.Listing.LocationID = intPtr(1)

	_, err := svc.CreateDetailListing(context.Background(), auth.Actor{UserID: 3, Role: auth.RoleAgent, Authenticated: true}, models.DetailApartment, in)
	var verr *models.ValidationError
	if !errors.As(err, &verr) || verr.Message != models.MsgSectorRequired {
		t.Fatalf("expected sector-required error got %v", err)
	}
	if len(store.uploaded) != 0 {
		t.Fatal("nothing may be uploaded before validation passes")
	}
}

func TestCreateDetailListingReleasesUploadsOnRollback(t *testing.T) {
	svc, mock, store := newService(t)

	mock.ExpectQuery("SELECT id, name FROM locations WHERE id = ?").
		WillReturnRows(refRow(2, "Bălți"))
	mock.ExpectQuery("SELECT id, name FROM sale_types WHERE id = ?").
		WillReturnRows(refRow(1, "Vânzare"))
	mock.ExpectQuery("SELECT id, name FROM property_types WHERE id = ?").
		WillReturnRows(refRow(2, "Apartament"))
	mock.ExpectQuery("SELECT (.+) FROM users u").
		WillReturnRows(userRow(3))
	mock.ExpectQuery("SELECT id, name FROM conditions WHERE id = ?").
		WillReturnRows(refRow(1, "Reparat"))
	mock.ExpectQuery("SELECT id, name FROM construction_types WHERE id = ?").
		WillReturnRows(refRow(2, "Bloc nou"))
	mock.ExpectQuery("SELECT id, name FROM planning_types WHERE id = ?").
		WillReturnRows(refRow(1, "Separată"))
	mock.ExpectQuery("SELECT id, name FROM heating_types WHERE id = ?").
		WillReturnRows(refRow(1, "Autonomă"))

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO listings").
		WillReturnError(errors.New("db gone"))
	mock.ExpectRollback()

	in := validApartmentInput()
	in.Images = []models.ImageSource{{File: fileHeader(t, "new.jpg")}}

	_, err := svc.CreateDetailListing(context.Background(), auth.Actor{UserID: 3, Role: auth.RoleAgent, Authenticated: true}, models.DetailApartment, in)
	if err == nil {
		t.Fatal("expected the transaction failure to surface")
	}
	if len(store.uploaded) != 1 {
		t.Fatalf("expected 1 upload got %d", len(store.uploaded))
	}
	if len(store.deleted) != 1 || store.deleted[0] != store.uploaded[0] {
		t.Fatalf("expected the uploaded object to be released, deleted=%v", store.deleted)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestDeleteDetailListingAuthorization(t *testing.T) {
	svc, mock, _ := newService(t)

	mock.ExpectQuery("SELECT user_id FROM listings WHERE id = ?").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(4))

	actor := auth.Actor{UserID: 3, Role: auth.RoleAgent, Authenticated: true}
	err := svc.DeleteDetailListing(context.Background(), actor, models.DetailApartment, 7)
	if !errors.Is(err, models.ErrForbidden) {
		t.Fatalf("expected ErrForbidden got %v", err)
	}
}

func listingRow() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "street", "description", "price", "availability", "created_at", "modified_at",
		"location_id", "location_name", "sector_id", "sector_name",
		"sale_type_id", "sale_type_name", "property_type_id", "property_type_name",
		"user_id", "first_name", "last_name", "email", "phone",
	}).AddRow(10, "Alba Iulia 10", "renovat", 45000, true, time.Now(), nil,
		2, "Bălți", nil, nil, 1, "vânzare", 2, "apartament",
		3, "Ion", "Rusu", "ion@test.md", "+37369000000")
}

func apartmentRow() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "surface", "rooms", "floor", "total_floors", "bathrooms",
		"condition_id", "condition_name", "construction_type_id", "construction_type_name",
		"planning_type_id", "planning_type_name", "heating_type_id", "heating_type_name",
	}).AddRow(5, 54, 2, 3, 9, 1, 1, "reparație euro", 1, "cărămidă", 1, "decomandat", 1, "autonomă")
}

func imageRows(keys ...string) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id", "listing_id", "object_key"})
	for i, key := range keys {
		rows.AddRow(i+1, 10, key)
	}
	return rows
}

func expectApartmentLoad(mock sqlmock.Sqlmock, images *sqlmock.Rows) {
	mock.ExpectQuery("FROM listings l").WithArgs(10).WillReturnRows(listingRow())
	mock.ExpectQuery("FROM apartments a").WithArgs(10).WillReturnRows(apartmentRow())
	if images != nil {
		mock.ExpectQuery("SELECT id, listing_id, object_key FROM listing_images").
			WithArgs(10).WillReturnRows(images)
	}
}

func TestUpdateDetailListingKeepsImagesNamedByURL(t *testing.T) {
	svc, mock, store := newService(t)
	admin := auth.Actor{UserID: 1, Role: auth.RoleAdmin, Authenticated: true}

	expectApartmentLoad(mock, nil)
	mock.ExpectQuery("SELECT id, listing_id, object_key FROM listing_images").
		WithArgs(10).WillReturnRows(imageRows("listings/a.jpg", "listings/b.jpg"))
	mock.ExpectBegin()
	mock.ExpectCommit()
	expectApartmentLoad(mock, imageRows("listings/a.jpg", "listings/b.jpg"))

	dl, err := svc.UpdateDetailListing(context.Background(), admin, models.DetailApartment, 10, UpdateDetailListingInput{
		Images: []models.ImageSource{
			{URL: "https://cdn.test/listings/a.jpg"},
			{URL: "https://cdn.test/listings/b.jpg"},
		},
		ImagesSet: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.deleted) != 0 || len(store.uploaded) != 0 {
		t.Fatalf("expected no storage churn, deleted %v uploaded %v", store.deleted, store.uploaded)
	}
	if len(dl.Listing.Images) != 2 {
		t.Fatalf("expected both image URLs got %v", dl.Listing.Images)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestUpdateDetailListingEmptyImagesDeletesAll(t *testing.T) {
	svc, mock, store := newService(t)
	admin := auth.Actor{UserID: 1, Role: auth.RoleAdmin, Authenticated: true}

	expectApartmentLoad(mock, nil)
	mock.ExpectQuery("SELECT id, listing_id, object_key FROM listing_images").
		WithArgs(10).WillReturnRows(imageRows("listings/a.jpg", "listings/b.jpg"))
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM listing_images WHERE id = \\? AND listing_id = \\?").
		WithArgs(1, 10).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM listing_images WHERE id = \\? AND listing_id = \\?").
		WithArgs(2, 10).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	expectApartmentLoad(mock, imageRows())

	dl, err := svc.UpdateDetailListing(context.Background(), admin, models.DetailApartment, 10, UpdateDetailListingInput{
		ImagesSet: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(dl.Listing.Images) != 0 {
		t.Fatalf("expected no image URLs got %v", dl.Listing.Images)
	}
	want := []string{"listings/a.jpg", "listings/b.jpg"}
	if len(store.deleted) != len(want) {
		t.Fatalf("expected released keys %v got %v", want, store.deleted)
	}
	for i, key := range want {
		if store.deleted[i] != key {
			t.Fatalf("expected released keys %v got %v", want, store.deleted)
		}
	}
	if len(store.uploaded) != 0 {
		t.Fatalf("expected no uploads got %v", store.uploaded)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}
