package services

import (
	"context"
	"io"
	"log"
	"mime/multipart"
	"net/url"
	"path"

	"imobilBack/internal/auth"
	"imobilBack/internal/models"
	"imobilBack/internal/repositories"
)

// FileStore is the object-storage collaborator. Keys are deterministic,
// so the basename of a public URL maps back to the stored object.
type FileStore interface {
	ObjectKey(filename string) string
	KeyFromURL(raw string) string
	Upload(data []byte, key string, contentType string) (string, error)
	Delete(key string) error
	URL(key string) string
}

// ListingService is the aggregate write coordinator: it builds or
// mutates a listing together with its single detail record and its
// image set as one durable unit.
type ListingService struct {
	ListingRepo   *repositories.ListingRepository
	ImageRepo     *repositories.ImageRepository
	ReferenceRepo *repositories.ReferenceRepository
	UserRepo      *repositories.UserRepository
	Store         FileStore
}

type CreateDetailListingInput struct {
	Listing models.ListingInput
	Detail  models.DetailInput
	Images  []models.ImageSource
}

type UpdateDetailListingInput struct {
	Listing *models.ListingInput
	Detail  models.DetailInput
	// Images replaces the attached set by diff when ImagesSet is true,
	// even with an empty slice. When ImagesSet is false the images stay
	// untouched.
	Images    []models.ImageSource
	ImagesSet bool
}

// CreateDetailListing validates all references and the sector rule
// before any write, stores new image payloads, then persists listing,
// image rows and the detail record in one transaction. A failed
// transaction releases the just-uploaded objects again.
func (s *ListingService) CreateDetailListing(ctx context.Context, actor auth.Actor, typ models.DetailType, in CreateDetailListingInput) (models.DetailListing, error) {
	listing, err := s.buildListing(ctx, actor, in.Listing)
	if err != nil {
		return models.DetailListing{}, err
	}

	dl := models.DetailListing{Type: typ, Listing: listing}
	if err := s.buildDetail(ctx, &dl, in.Detail); err != nil {
		return models.DetailListing{}, err
	}

	files, kept, err := partitionImageSources(in.Images)
	if err != nil {
		return models.DetailListing{}, err
	}

	uploaded, err := s.uploadAll(files)
	if err != nil {
		return models.DetailListing{}, err
	}
	imageKeys := make([]string, 0, len(in.Images))
	imageKeys = append(imageKeys, uploaded...)
	for name := range kept {
		imageKeys = append(imageKeys, s.Store.KeyFromURL(name))
	}

	listingID, err := s.ListingRepo.CreateAggregate(ctx, &dl, imageKeys)
	if err != nil {
		s.releaseObjects(uploaded)
		return models.DetailListing{}, err
	}

	return s.loadAggregate(ctx, typ, listingID)
}

// UpdateDetailListing merges listing and detail fields onto the existing
// aggregate and, when an image set was supplied, replaces the attached
// images by diff: URL-form sources keep their object, binary sources
// become fresh rows, everything else is removed.
func (s *ListingService) UpdateDetailListing(ctx context.Context, actor auth.Actor, typ models.DetailType, listingID int, in UpdateDetailListingInput) (models.DetailListing, error) {
	existing, err := s.ListingRepo.GetByListingID(ctx, typ, listingID)
	if err != nil {
		return models.DetailListing{}, err
	}
	if !auth.CanMutateListingResource(actor, existing.Listing.UserID) {
		return models.DetailListing{}, models.ErrForbidden
	}

	if in.Listing != nil {
		if err := s.validateListingUpdate(ctx, existing.Listing, in.Listing); err != nil {
			return models.DetailListing{}, err
		}
	}
	if err := s.validateDetailUpdate(ctx, typ, in.Detail); err != nil {
		return models.DetailListing{}, err
	}

	var (
		removeIDs  []int
		removeKeys []string
		addKeys    []string
	)
	if in.ImagesSet {
		files, kept, err := partitionImageSources(in.Images)
		if err != nil {
			return models.DetailListing{}, err
		}

		current, err := s.ImageRepo.ImagesByListing(ctx, listingID)
		if err != nil {
			return models.DetailListing{}, err
		}
		for _, img := range current {
			if !kept[path.Base(img.ObjectKey)] {
				removeIDs = append(removeIDs, img.ID)
				removeKeys = append(removeKeys, img.ObjectKey)
			}
		}

		addKeys, err = s.uploadAll(files)
		if err != nil {
			return models.DetailListing{}, err
		}
	}

	if err := s.ListingRepo.UpdateAggregate(ctx, typ, listingID, in.Listing, &in.Detail, removeIDs, addKeys); err != nil {
		s.releaseObjects(addKeys)
		return models.DetailListing{}, err
	}

	// Rows are gone; the objects are released best-effort. A failure
	// here is a storage leak, not a correctness problem.
	s.releaseObjects(removeKeys)

	return s.loadAggregate(ctx, typ, listingID)
}

// DeleteDetailListing removes images, detail record and listing in that
// order. The caller's right to do so is checked against the listing
// owner first.
func (s *ListingService) DeleteDetailListing(ctx context.Context, actor auth.Actor, typ models.DetailType, listingID int) error {
	ownerID, err := s.ListingRepo.ListingOwner(ctx, listingID)
	if err != nil {
		return err
	}
	if !auth.CanMutateListingResource(actor, ownerID) {
		return models.ErrForbidden
	}

	keys, err := s.ListingRepo.DeleteAggregate(ctx, typ, listingID)
	if err != nil {
		return err
	}
	s.releaseObjects(keys)
	return nil
}

func (s *ListingService) GetDetailListing(ctx context.Context, typ models.DetailType, listingID int) (models.DetailListing, error) {
	return s.loadAggregate(ctx, typ, listingID)
}

func (s *ListingService) GetDetailListings(ctx context.Context, typ models.DetailType, filter repositories.ListingFilter) ([]models.DetailListing, error) {
	listings, err := s.ListingRepo.List(ctx, typ, filter)
	if err != nil {
		return nil, err
	}
	for i := range listings {
		if err := s.attachImageURLs(ctx, &listings[i].Listing); err != nil {
			return nil, err
		}
	}
	return listings, nil
}

func (s *ListingService) loadAggregate(ctx context.Context, typ models.DetailType, listingID int) (models.DetailListing, error) {
	dl, err := s.ListingRepo.GetByListingID(ctx, typ, listingID)
	if err != nil {
		return models.DetailListing{}, err
	}
	if err := s.attachImageURLs(ctx, &dl.Listing); err != nil {
		return models.DetailListing{}, err
	}
	return dl, nil
}

func (s *ListingService) attachImageURLs(ctx context.Context, listing *models.Listing) error {
	images, err := s.ImageRepo.ImagesByListing(ctx, listing.ID)
	if err != nil {
		return err
	}
	listing.Images = make([]string, 0, len(images))
	for _, img := range images {
		listing.Images = append(listing.Images, s.Store.URL(img.ObjectKey))
	}
	return nil
}

// buildListing turns a create payload into a listing, rejecting missing
// required fields and unresolved references before any write happens.
func (s *ListingService) buildListing(ctx context.Context, actor auth.Actor, in models.ListingInput) (models.Listing, error) {
	var listing models.Listing

	if in.Street == nil || *in.Street == "" {
		return models.Listing{}, &models.ValidationError{Field: "street", Message: models.MsgFieldRequired}
	}
	if in.Description == nil || *in.Description == "" {
		return models.Listing{}, &models.ValidationError{Field: "description", Message: models.MsgFieldRequired}
	}
	if in.Price == nil {
		return models.Listing{}, &models.ValidationError{Field: "price", Message: models.MsgFieldRequired}
	}
	if in.Availability == nil {
		return models.Listing{}, &models.ValidationError{Field: "availability", Message: models.MsgFieldRequired}
	}
	if in.LocationID == nil {
		return models.Listing{}, &models.ValidationError{Field: "location_id", Message: models.MsgFieldRequired}
	}
	if in.SaleTypeID == nil {
		return models.Listing{}, &models.ValidationError{Field: "sale_type_id", Message: models.MsgFieldRequired}
	}
	if in.PropertyTypeID == nil {
		return models.Listing{}, &models.ValidationError{Field: "property_type_id", Message: models.MsgFieldRequired}
	}

	listing.Street = *in.Street
	listing.Description = *in.Description
	listing.Price = *in.Price
	listing.Availability = *in.Availability

	location, err := s.ReferenceRepo.Resolve(ctx, models.RefLocation, *in.LocationID)
	if err != nil {
		return models.Listing{}, err
	}
	listing.LocationID = location.ID

	if in.SectorID != nil {
		if _, err := s.ReferenceRepo.Resolve(ctx, models.RefSector, *in.SectorID); err != nil {
			return models.Listing{}, err
		}
		listing.SectorID = in.SectorID
	}
	if verr := models.ValidateSectorRule(location.Name, listing.SectorID != nil); verr != nil {
		return models.Listing{}, verr
	}

	if _, err := s.ReferenceRepo.Resolve(ctx, models.RefSaleType, *in.SaleTypeID); err != nil {
		return models.Listing{}, err
	}
	listing.SaleTypeID = *in.SaleTypeID

	if _, err := s.ReferenceRepo.Resolve(ctx, models.RefPropertyType, *in.PropertyTypeID); err != nil {
		return models.Listing{}, err
	}
	listing.PropertyTypeID = *in.PropertyTypeID

	ownerID := actor.UserID
	if in.UserID != nil {
		ownerID = *in.UserID
	}
	if _, err := s.UserRepo.GetUserByID(ctx, ownerID); err != nil {
		return models.Listing{}, &models.ValidationError{Field: "user_id", Message: "Agentul specificat nu există."}
	}
	listing.UserID = ownerID

	return listing, nil
}

// validateListingUpdate checks the references an update touches and the
// sector rule for the merged state of location and sector.
func (s *ListingService) validateListingUpdate(ctx context.Context, existing models.Listing, in *models.ListingInput) error {
	locationName := existing.Location.Name
	if in.LocationID != nil {
		location, err := s.ReferenceRepo.Resolve(ctx, models.RefLocation, *in.LocationID)
		if err != nil {
			return err
		}
		locationName = location.Name
	}

	hasSector := existing.SectorID != nil
	if in.SectorSet {
		hasSector = in.SectorID != nil
		if in.SectorID != nil {
			if _, err := s.ReferenceRepo.Resolve(ctx, models.RefSector, *in.SectorID); err != nil {
				return err
			}
		}
	}
	if verr := models.ValidateSectorRule(locationName, hasSector); verr != nil {
		return verr
	}

	if in.SaleTypeID != nil {
		if _, err := s.ReferenceRepo.Resolve(ctx, models.RefSaleType, *in.SaleTypeID); err != nil {
			return err
		}
	}
	if in.PropertyTypeID != nil {
		if _, err := s.ReferenceRepo.Resolve(ctx, models.RefPropertyType, *in.PropertyTypeID); err != nil {
			return err
		}
	}
	if in.UserID != nil {
		if _, err := s.UserRepo.GetUserByID(ctx, *in.UserID); err != nil {
			return &models.ValidationError{Field: "user_id", Message: "Agentul specificat nu există."}
		}
	}
	return nil
}

// buildDetail materializes the detail record for the aggregate's type,
// rejecting missing required fields and unresolved references.
func (s *ListingService) buildDetail(ctx context.Context, dl *models.DetailListing, in models.DetailInput) error {
	requireInt := func(field string, v *int) (int, error) {
		if v == nil {
			return 0, &models.ValidationError{Field: field, Message: models.MsgFieldRequired}
		}
		return *v, nil
	}
	requireBool := func(field string, v *bool) (bool, error) {
		if v == nil {
			return false, &models.ValidationError{Field: field, Message: models.MsgFieldRequired}
		}
		return *v, nil
	}
	resolve := func(kind models.ReferenceKind, field string, v *int) (int, error) {
		id, err := requireInt(field, v)
		if err != nil {
			return 0, err
		}
		if _, err := s.ReferenceRepo.Resolve(ctx, kind, id); err != nil {
			return 0, err
		}
		return id, nil
	}

	var err error
	switch dl.Type {
	case models.DetailApartment:
		a := &models.Apartment{}
		if a.Surface, err = requireInt("surface", in.Surface); err != nil {
			return err
		}
		if a.Rooms, err = requireInt("rooms", in.Rooms); err != nil {
			return err
		}
		if a.Floor, err = requireInt("floor", in.Floor); err != nil {
			return err
		}
		if a.TotalFloors, err = requireInt("total_floors", in.TotalFloors); err != nil {
			return err
		}
		if a.Bathrooms, err = requireInt("bathrooms", in.Bathrooms); err != nil {
			return err
		}
		if a.ConditionID, err = resolve(models.RefCondition, "condition_id", in.ConditionID); err != nil {
			return err
		}
		if a.ConstructionTypeID, err = resolve(models.RefConstructionType, "construction_type_id", in.ConstructionTypeID); err != nil {
			return err
		}
		if a.PlanningTypeID, err = resolve(models.RefPlanningType, "planning_type_id", in.PlanningTypeID); err != nil {
			return err
		}
		if a.HeatingTypeID, err = resolve(models.RefHeatingType, "heating_type_id", in.HeatingTypeID); err != nil {
			return err
		}
		dl.Apartment = a
	case models.DetailHouse:
		h := &models.House{}
		if h.Surface, err = requireInt("surface", in.Surface); err != nil {
			return err
		}
		if in.LandSurface == nil {
			return &models.ValidationError{Field: "land_surface", Message: models.MsgFieldRequired}
		}
		h.LandSurface = *in.LandSurface
		if h.Rooms, err = requireInt("rooms", in.Rooms); err != nil {
			return err
		}
		if h.TotalFloors, err = requireInt("total_floors", in.TotalFloors); err != nil {
			return err
		}
		if h.Bathrooms, err = requireInt("bathrooms", in.Bathrooms); err != nil {
			return err
		}
		if h.WaterInstallation, err = requireBool("water_installation", in.WaterInstallation); err != nil {
			return err
		}
		if h.GasInstallation, err = requireBool("gas_installation", in.GasInstallation); err != nil {
			return err
		}
		if h.SewerageInstallation, err = requireBool("sewerage_installation", in.SewerageInstallation); err != nil {
			return err
		}
		dl.House = h
	case models.DetailLand:
		l := &models.Land{}
		if in.LandSurface == nil {
			return &models.ValidationError{Field: "land_surface", Message: models.MsgFieldRequired}
		}
		l.LandSurface = *in.LandSurface
		if l.SurfaceTypeID, err = resolve(models.RefSurfaceType, "surface_type_id", in.SurfaceTypeID); err != nil {
			return err
		}
		dl.Land = l
	case models.DetailCommercialSpace:
		c := &models.CommercialSpace{}
		if c.Surface, err = requireInt("surface", in.Surface); err != nil {
			return err
		}
		if c.Floor, err = requireInt("floor", in.Floor); err != nil {
			return err
		}
		if c.Offices, err = requireInt("offices", in.Offices); err != nil {
			return err
		}
		if c.Bathrooms, err = requireInt("bathrooms", in.Bathrooms); err != nil {
			return err
		}
		if c.ConditionID, err = resolve(models.RefCondition, "condition_id", in.ConditionID); err != nil {
			return err
		}
		dl.CommercialSpace = c
	}
	return nil
}

// validateDetailUpdate resolves only the references the merge touches.
func (s *ListingService) validateDetailUpdate(ctx context.Context, typ models.DetailType, in models.DetailInput) error {
	check := func(kind models.ReferenceKind, v *int) error {
		if v == nil {
			return nil
		}
		_, err := s.ReferenceRepo.Resolve(ctx, kind, *v)
		return err
	}
	if typ == models.DetailApartment || typ == models.DetailCommercialSpace {
		if err := check(models.RefCondition, in.ConditionID); err != nil {
			return err
		}
	}
	if typ == models.DetailApartment {
		if err := check(models.RefConstructionType, in.ConstructionTypeID); err != nil {
			return err
		}
		if err := check(models.RefPlanningType, in.PlanningTypeID); err != nil {
			return err
		}
		if err := check(models.RefHeatingType, in.HeatingTypeID); err != nil {
			return err
		}
	}
	if typ == models.DetailLand {
		if err := check(models.RefSurfaceType, in.SurfaceTypeID); err != nil {
			return err
		}
	}
	return nil
}

func (s *ListingService) uploadAll(files []*multipart.FileHeader) ([]string, error) {
	var keys []string
	for _, fh := range files {
		key, err := s.uploadOne(fh)
		if err != nil {
			s.releaseObjects(keys)
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, nil
}

func (s *ListingService) uploadOne(fh *multipart.FileHeader) (string, error) {
	file, err := fh.Open()
	if err != nil {
		return "", &models.ValidationError{Field: "images", Message: "Invalid image data"}
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", &models.ValidationError{Field: "images", Message: "Invalid image data"}
	}

	key := s.Store.ObjectKey(fh.Filename)
	if _, err := s.Store.Upload(data, key, fh.Header.Get("Content-Type")); err != nil {
		return "", err
	}
	return key, nil
}

func (s *ListingService) releaseObjects(keys []string) {
	for _, key := range keys {
		if err := s.Store.Delete(key); err != nil {
			log.Printf("[WARN] leaked stored object %s: %v", key, err)
		}
	}
}

// partitionImageSources splits an images payload into fresh uploads and
// the basenames of URL-referenced objects to keep. A source that is
// neither is a validation error, never a silent skip.
func partitionImageSources(sources []models.ImageSource) ([]*multipart.FileHeader, map[string]bool, error) {
	var files []*multipart.FileHeader
	kept := make(map[string]bool)

	for _, src := range sources {
		switch {
		case src.File != nil && src.URL == "":
			files = append(files, src.File)
		case src.File == nil && src.URL != "":
			u, err := url.Parse(src.URL)
			if err != nil || u.Path == "" {
				return nil, nil, &models.ValidationError{Field: "images", Message: "Invalid image data"}
			}
			kept[path.Base(u.Path)] = true
		default:
			return nil, nil, &models.ValidationError{Field: "images", Message: "Invalid image data"}
		}
	}
	return files, kept, nil
}
