package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"imobilBack/internal/models"
)

// detailTables maps a detail type to its table.
var detailTables = map[models.DetailType]string{
	models.DetailApartment:       "apartments",
	models.DetailHouse:           "houses",
	models.DetailLand:            "lands",
	models.DetailCommercialSpace: "commercial_spaces",
}

// ListingFilter narrows detail-listing queries. Pointer fields are
// applied only when set.
type ListingFilter struct {
	PriceMin       *int
	PriceMax       *int
	Availability   *bool
	LocationID     *int
	SectorID       *int
	SaleTypeID     *int
	PropertyTypeID *int
	MinSurface     *int
	MaxSurface     *int
	MinRooms       *int
	MaxRooms       *int
	Sort           string
	Limit          int
	Offset         int
}

// ListingRepository persists the listing aggregate: the base row, its
// single detail record and its image rows. Multi-table writes run in one
// transaction so a failure leaves no partial aggregate behind.
type ListingRepository struct {
	DB *sql.DB
}

// CreateAggregate inserts the listing, its image rows and exactly one
// detail record as a unit. It returns the new listing id.
func (r *ListingRepository) CreateAggregate(ctx context.Context, dl *models.DetailListing, imageKeys []string) (int, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	listing := &dl.Listing
	res, execErr := tx.ExecContext(ctx, `INSERT INTO listings (street, description, location_id, sector_id, user_id, sale_type_id, price, availability, property_type_id, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		listing.Street, listing.Description, listing.LocationID, nullableInt(listing.SectorID),
		listing.UserID, listing.SaleTypeID, listing.Price, listing.Availability,
		listing.PropertyTypeID, time.Now(),
	)
	if execErr != nil {
		err = translateIntegrityError(execErr)
		return 0, err
	}
	listingID, idErr := res.LastInsertId()
	if idErr != nil {
		err = idErr
		return 0, err
	}
	listing.ID = int(listingID)

	for _, key := range imageKeys {
		if _, err = tx.ExecContext(ctx, `INSERT INTO listing_images (listing_id, object_key) VALUES (?, ?)`, listingID, key); err != nil {
			return 0, err
		}
	}

	if err = insertDetail(ctx, tx, dl); err != nil {
		err = translateIntegrityError(err)
		return 0, err
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return listing.ID, nil
}

func insertDetail(ctx context.Context, tx *sql.Tx, dl *models.DetailListing) error {
	listingID := dl.Listing.ID
	switch dl.Type {
	case models.DetailApartment:
		a := dl.Apartment
		res, err := tx.ExecContext(ctx, `INSERT INTO apartments (listing_id, surface, condition_id, construction_type_id, planning_type_id, rooms, floor, total_floors, bathrooms, heating_type_id) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			listingID, a.Surface, a.ConditionID, a.ConstructionTypeID, a.PlanningTypeID,
			a.Rooms, a.Floor, a.TotalFloors, a.Bathrooms, a.HeatingTypeID)
		if err != nil {
			return err
		}
		return setDetailID(res, &a.ID, listingID, &a.ListingID)
	case models.DetailHouse:
		h := dl.House
		res, err := tx.ExecContext(ctx, `INSERT INTO houses (listing_id, surface, land_surface, rooms, total_floors, bathrooms, water_installation, gas_installation, sewerage_installation) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			listingID, h.Surface, h.LandSurface, h.Rooms, h.TotalFloors, h.Bathrooms,
			h.WaterInstallation, h.GasInstallation, h.SewerageInstallation)
		if err != nil {
			return err
		}
		return setDetailID(res, &h.ID, listingID, &h.ListingID)
	case models.DetailLand:
		l := dl.Land
		res, err := tx.ExecContext(ctx, `INSERT INTO lands (listing_id, land_surface, surface_type_id) VALUES (?, ?, ?)`,
			listingID, l.LandSurface, l.SurfaceTypeID)
		if err != nil {
			return err
		}
		return setDetailID(res, &l.ID, listingID, &l.ListingID)
	case models.DetailCommercialSpace:
		c := dl.CommercialSpace
		res, err := tx.ExecContext(ctx, `INSERT INTO commercial_spaces (listing_id, surface, condition_id, floor, offices, bathrooms) VALUES (?, ?, ?, ?, ?, ?)`,
			listingID, c.Surface, c.ConditionID, c.Floor, c.Offices, c.Bathrooms)
		if err != nil {
			return err
		}
		return setDetailID(res, &c.ID, listingID, &c.ListingID)
	}
	return fmt.Errorf("unknown detail type %q", dl.Type)
}

func setDetailID(res sql.Result, id *int, listingID int, listingField *int) error {
	lastID, err := res.LastInsertId()
	if err != nil {
		return err
	}
	*id = int(lastID)
	*listingField = listingID
	return nil
}

// GetByListingID loads the full aggregate for one listing. The listing
// and its detail record report distinct not-found conditions.
func (r *ListingRepository) GetByListingID(ctx context.Context, typ models.DetailType, listingID int) (models.DetailListing, error) {
	dl := models.DetailListing{Type: typ}

	listing, err := r.getListing(ctx, listingID)
	if err != nil {
		return models.DetailListing{}, err
	}
	dl.Listing = listing

	if err := r.loadDetail(ctx, &dl, listingID); err != nil {
		return models.DetailListing{}, err
	}
	return dl, nil
}

func (r *ListingRepository) getListing(ctx context.Context, listingID int) (models.Listing, error) {
	query := `
        SELECT l.id, l.street, l.description, l.price, l.availability, l.created_at, l.modified_at,
               l.location_id, loc.name, l.sector_id, sec.name,
               l.sale_type_id, st.name, l.property_type_id, pt.name,
               l.user_id, u.first_name, u.last_name, u.email, u.phone
        FROM listings l
        JOIN locations loc ON l.location_id = loc.id
        LEFT JOIN sectors sec ON l.sector_id = sec.id
        JOIN sale_types st ON l.sale_type_id = st.id
        JOIN property_types pt ON l.property_type_id = pt.id
        JOIN users u ON l.user_id = u.id
        WHERE l.id = ?`

	var (
		listing      models.Listing
		location     models.Reference
		saleType     models.Reference
		propertyType models.Reference
		owner        models.User
		sectorID     sql.NullInt64
		sectorName   sql.NullString
		modifiedAt   sql.NullTime
	)
	err := r.DB.QueryRowContext(ctx, query, listingID).Scan(
		&listing.ID, &listing.Street, &listing.Description, &listing.Price, &listing.Availability,
		&listing.CreatedAt, &modifiedAt,
		&location.ID, &location.Name, &sectorID, &sectorName,
		&saleType.ID, &saleType.Name, &propertyType.ID, &propertyType.Name,
		&owner.ID, &owner.FirstName, &owner.LastName, &owner.Email, &owner.Phone,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Listing{}, models.ErrListingNotFound
	}
	if err != nil {
		return models.Listing{}, err
	}

	listing.LocationID = location.ID
	listing.Location = &location
	listing.SaleTypeID = saleType.ID
	listing.SaleType = &saleType
	listing.PropertyTypeID = propertyType.ID
	listing.PropertyType = &propertyType
	listing.UserID = owner.ID
	listing.User = &owner
	if sectorID.Valid {
		id := int(sectorID.Int64)
		listing.SectorID = &id
		listing.Sector = &models.Reference{ID: id, Name: sectorName.String}
	}
	if modifiedAt.Valid {
		listing.ModifiedAt = &modifiedAt.Time
	}
	return listing, nil
}

func (r *ListingRepository) loadDetail(ctx context.Context, dl *models.DetailListing, listingID int) error {
	var err error
	switch dl.Type {
	case models.DetailApartment:
		a := models.Apartment{ListingID: listingID}
		var condition, construction, planning, heating models.Reference
		err = r.DB.QueryRowContext(ctx, `
            SELECT a.id, a.surface, a.rooms, a.floor, a.total_floors, a.bathrooms,
                   a.condition_id, c.name, a.construction_type_id, ct.name,
                   a.planning_type_id, plt.name, a.heating_type_id, ht.name
            FROM apartments a
            JOIN conditions c ON a.condition_id = c.id
            JOIN construction_types ct ON a.construction_type_id = ct.id
            JOIN planning_types plt ON a.planning_type_id = plt.id
            JOIN heating_types ht ON a.heating_type_id = ht.id
            WHERE a.listing_id = ?`, listingID).Scan(
			&a.ID, &a.Surface, &a.Rooms, &a.Floor, &a.TotalFloors, &a.Bathrooms,
			&condition.ID, &condition.Name, &construction.ID, &construction.Name,
			&planning.ID, &planning.Name, &heating.ID, &heating.Name,
		)
		if err == nil {
			a.ConditionID, a.Condition = condition.ID, &condition
			a.ConstructionTypeID, a.ConstructionType = construction.ID, &construction
			a.PlanningTypeID, a.PlanningType = planning.ID, &planning
			a.HeatingTypeID, a.HeatingType = heating.ID, &heating
			dl.Apartment = &a
		}
	case models.DetailHouse:
		h := models.House{ListingID: listingID}
		err = r.DB.QueryRowContext(ctx, `
            SELECT id, surface, land_surface, rooms, total_floors, bathrooms,
                   water_installation, gas_installation, sewerage_installation
            FROM houses WHERE listing_id = ?`, listingID).Scan(
			&h.ID, &h.Surface, &h.LandSurface, &h.Rooms, &h.TotalFloors, &h.Bathrooms,
			&h.WaterInstallation, &h.GasInstallation, &h.SewerageInstallation,
		)
		if err == nil {
			dl.House = &h
		}
	case models.DetailLand:
		l := models.Land{ListingID: listingID}
		var surfaceType models.Reference
		err = r.DB.QueryRowContext(ctx, `
            SELECT ld.id, ld.land_surface, ld.surface_type_id, st.name
            FROM lands ld
            JOIN surface_types st ON ld.surface_type_id = st.id
            WHERE ld.listing_id = ?`, listingID).Scan(
			&l.ID, &l.LandSurface, &surfaceType.ID, &surfaceType.Name,
		)
		if err == nil {
			l.SurfaceTypeID, l.SurfaceType = surfaceType.ID, &surfaceType
			dl.Land = &l
		}
	case models.DetailCommercialSpace:
		c := models.CommercialSpace{ListingID: listingID}
		var condition models.Reference
		err = r.DB.QueryRowContext(ctx, `
            SELECT cs.id, cs.surface, cs.floor, cs.offices, cs.bathrooms, cs.condition_id, c.name
            FROM commercial_spaces cs
            JOIN conditions c ON cs.condition_id = c.id
            WHERE cs.listing_id = ?`, listingID).Scan(
			&c.ID, &c.Surface, &c.Floor, &c.Offices, &c.Bathrooms, &condition.ID, &condition.Name,
		)
		if err == nil {
			dl.CommercialSpace = &c
		}
	default:
		return fmt.Errorf("unknown detail type %q", dl.Type)
	}

	if errors.Is(err, sql.ErrNoRows) {
		return models.NotFoundError(dl.Type)
	}
	return err
}

// ListingOwner returns the owning user id of a listing.
func (r *ListingRepository) ListingOwner(ctx context.Context, listingID int) (int, error) {
	var ownerID int
	err := r.DB.QueryRowContext(ctx, `SELECT user_id FROM listings WHERE id = ?`, listingID).Scan(&ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, models.ErrListingNotFound
	}
	return ownerID, err
}

// List returns aggregates of one detail type matching the filter,
// ordered by listing created_at descending unless the filter says
// otherwise.
func (r *ListingRepository) List(ctx context.Context, typ models.DetailType, filter ListingFilter) ([]models.DetailListing, error) {
	table, ok := detailTables[typ]
	if !ok {
		return nil, fmt.Errorf("unknown detail type %q", typ)
	}

	query := fmt.Sprintf(`SELECT d.listing_id FROM %s d JOIN listings l ON d.listing_id = l.id`, table)

	var (
		conditions []string
		params     []interface{}
	)
	addCond := func(cond string, v interface{}) {
		conditions = append(conditions, cond)
		params = append(params, v)
	}
	if filter.PriceMin != nil {
		addCond("l.price >= ?", *filter.PriceMin)
	}
	if filter.PriceMax != nil {
		addCond("l.price <= ?", *filter.PriceMax)
	}
	if filter.Availability != nil {
		addCond("l.availability = ?", *filter.Availability)
	}
	if filter.LocationID != nil {
		addCond("l.location_id = ?", *filter.LocationID)
	}
	if filter.SectorID != nil {
		addCond("l.sector_id = ?", *filter.SectorID)
	}
	if filter.SaleTypeID != nil {
		addCond("l.sale_type_id = ?", *filter.SaleTypeID)
	}
	if filter.PropertyTypeID != nil {
		addCond("l.property_type_id = ?", *filter.PropertyTypeID)
	}
	if typ != models.DetailLand {
		if filter.MinSurface != nil {
			addCond("d.surface >= ?", *filter.MinSurface)
		}
		if filter.MaxSurface != nil {
			addCond("d.surface <= ?", *filter.MaxSurface)
		}
	}
	if typ == models.DetailApartment || typ == models.DetailHouse {
		if filter.MinRooms != nil {
			addCond("d.rooms >= ?", *filter.MinRooms)
		}
		if filter.MaxRooms != nil {
			addCond("d.rooms <= ?", *filter.MaxRooms)
		}
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	switch filter.Sort {
	case "price":
		query += " ORDER BY l.price ASC"
	case "-price":
		query += " ORDER BY l.price DESC"
	case "created_at":
		query += " ORDER BY l.created_at ASC"
	default:
		query += " ORDER BY l.created_at DESC"
	}

	if filter.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		params = append(params, filter.Limit, filter.Offset)
	}

	rows, err := r.DB.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	listings := make([]models.DetailListing, 0, len(ids))
	for _, id := range ids {
		dl, err := r.GetByListingID(ctx, typ, id)
		if err != nil {
			return nil, err
		}
		listings = append(listings, dl)
	}
	return listings, nil
}

// UpdateAggregate applies an attribute-level merge of listing and detail
// fields and the image diff in one transaction. removeImageIDs rows are
// deleted and addKeys become fresh image rows; both slices may be empty.
func (r *ListingRepository) UpdateAggregate(ctx context.Context, typ models.DetailType, listingID int, listing *models.ListingInput, detail *models.DetailInput, removeImageIDs []int, addKeys []string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if listing != nil {
		if err = updateListing(ctx, tx, listingID, listing); err != nil {
			err = translateIntegrityError(err)
			return err
		}
	}

	for _, imageID := range removeImageIDs {
		if _, err = tx.ExecContext(ctx, `DELETE FROM listing_images WHERE id = ? AND listing_id = ?`, imageID, listingID); err != nil {
			return err
		}
	}
	for _, key := range addKeys {
		if _, err = tx.ExecContext(ctx, `INSERT INTO listing_images (listing_id, object_key) VALUES (?, ?)`, listingID, key); err != nil {
			return err
		}
	}

	if detail != nil {
		if err = updateDetail(ctx, tx, typ, listingID, detail); err != nil {
			err = translateIntegrityError(err)
			return err
		}
	}

	return tx.Commit()
}

func updateListing(ctx context.Context, tx *sql.Tx, listingID int, in *models.ListingInput) error {
	var (
		sets   []string
		params []interface{}
	)
	set := func(col string, v interface{}) {
		sets = append(sets, col+" = ?")
		params = append(params, v)
	}
	if in.Street != nil {
		set("street", *in.Street)
	}
	if in.Description != nil {
		set("description", *in.Description)
	}
	if in.LocationID != nil {
		set("location_id", *in.LocationID)
	}
	if in.SectorSet {
		set("sector_id", nullableInt(in.SectorID))
	}
	if in.UserID != nil {
		set("user_id", *in.UserID)
	}
	if in.SaleTypeID != nil {
		set("sale_type_id", *in.SaleTypeID)
	}
	if in.Price != nil {
		set("price", *in.Price)
	}
	if in.Availability != nil {
		set("availability", *in.Availability)
	}
	if in.PropertyTypeID != nil {
		set("property_type_id", *in.PropertyTypeID)
	}
	if len(sets) == 0 {
		return nil
	}
	set("modified_at", time.Now())

	params = append(params, listingID)
	res, err := tx.ExecContext(ctx, `UPDATE listings SET `+strings.Join(sets, ", ")+` WHERE id = ?`, params...)
	if err != nil {
		return err
	}
	// rowsAffected is 0 both for a missing row and an identical update,
	// so existence is checked by the caller before the transaction.
	_, err = res.RowsAffected()
	return err
}

func updateDetail(ctx context.Context, tx *sql.Tx, typ models.DetailType, listingID int, in *models.DetailInput) error {
	var (
		sets   []string
		params []interface{}
	)
	set := func(col string, v interface{}) {
		sets = append(sets, col+" = ?")
		params = append(params, v)
	}

	switch typ {
	case models.DetailApartment:
		if in.Surface != nil {
			set("surface", *in.Surface)
		}
		if in.ConditionID != nil {
			set("condition_id", *in.ConditionID)
		}
		if in.ConstructionTypeID != nil {
			set("construction_type_id", *in.ConstructionTypeID)
		}
		if in.PlanningTypeID != nil {
			set("planning_type_id", *in.PlanningTypeID)
		}
		if in.Rooms != nil {
			set("rooms", *in.Rooms)
		}
		if in.Floor != nil {
			set("floor", *in.Floor)
		}
		if in.TotalFloors != nil {
			set("total_floors", *in.TotalFloors)
		}
		if in.Bathrooms != nil {
			set("bathrooms", *in.Bathrooms)
		}
		if in.HeatingTypeID != nil {
			set("heating_type_id", *in.HeatingTypeID)
		}
	case models.DetailHouse:
		if in.Surface != nil {
			set("surface", *in.Surface)
		}
		if in.LandSurface != nil {
			set("land_surface", *in.LandSurface)
		}
		if in.Rooms != nil {
			set("rooms", *in.Rooms)
		}
		if in.TotalFloors != nil {
			set("total_floors", *in.TotalFloors)
		}
		if in.Bathrooms != nil {
			set("bathrooms", *in.Bathrooms)
		}
		if in.WaterInstallation != nil {
			set("water_installation", *in.WaterInstallation)
		}
		if in.GasInstallation != nil {
			set("gas_installation", *in.GasInstallation)
		}
		if in.SewerageInstallation != nil {
			set("sewerage_installation", *in.SewerageInstallation)
		}
	case models.DetailLand:
		if in.LandSurface != nil {
			set("land_surface", *in.LandSurface)
		}
		if in.SurfaceTypeID != nil {
			set("surface_type_id", *in.SurfaceTypeID)
		}
	case models.DetailCommercialSpace:
		if in.Surface != nil {
			set("surface", *in.Surface)
		}
		if in.ConditionID != nil {
			set("condition_id", *in.ConditionID)
		}
		if in.Floor != nil {
			set("floor", *in.Floor)
		}
		if in.Offices != nil {
			set("offices", *in.Offices)
		}
		if in.Bathrooms != nil {
			set("bathrooms", *in.Bathrooms)
		}
	default:
		return fmt.Errorf("unknown detail type %q", typ)
	}

	if len(sets) == 0 {
		return nil
	}
	params = append(params, listingID)
	_, err := tx.ExecContext(ctx, `UPDATE `+detailTables[typ]+` SET `+strings.Join(sets, ", ")+` WHERE listing_id = ?`, params...)
	return err
}

// DeleteAggregate removes the aggregate in dependency order: image rows,
// then the detail record, then the listing. The listing and the detail
// record report distinct not-found conditions before anything is
// deleted. It returns the object keys of the removed images so the
// caller can release the stored files after commit.
func (r *ListingRepository) DeleteAggregate(ctx context.Context, typ models.DetailType, listingID int) ([]string, error) {
	table, ok := detailTables[typ]
	if !ok {
		return nil, fmt.Errorf("unknown detail type %q", typ)
	}

	if _, err := r.ListingOwner(ctx, listingID); err != nil {
		return nil, err
	}
	var detailID int
	err := r.DB.QueryRowContext(ctx, `SELECT id FROM `+table+` WHERE listing_id = ?`, listingID).Scan(&detailID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.NotFoundError(typ)
	}
	if err != nil {
		return nil, err
	}

	keys, err := r.imageKeys(ctx, listingID)
	if err != nil {
		return nil, err
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM listing_images WHERE listing_id = ?`, listingID); err != nil {
		return nil, err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE listing_id = ?`, listingID); err != nil {
		return nil, err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM listings WHERE id = ?`, listingID); err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return keys, nil
}

func (r *ListingRepository) imageKeys(ctx context.Context, listingID int) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT object_key FROM listing_images WHERE listing_id = ?`, listingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

func nullableInt(v *int) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
