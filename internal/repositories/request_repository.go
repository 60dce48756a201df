package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"imobilBack/internal/models"
)

type RequestRepository struct {
	DB *sql.DB
}

const requestQuery = `
        SELECT r.id, r.first_name, r.last_name, r.phone, r.email,
               r.location_id, loc.name, r.sector_id, sec.name,
               r.property_type_id, pt.name, r.condition_id, c.name,
               r.estimated_price, r.note, r.approved, r.created_at
        FROM requests r
        JOIN locations loc ON r.location_id = loc.id
        LEFT JOIN sectors sec ON r.sector_id = sec.id
        JOIN property_types pt ON r.property_type_id = pt.id
        JOIN conditions c ON r.condition_id = c.id`

func scanRequest(scan func(dest ...interface{}) error) (models.Request, error) {
	var (
		req          models.Request
		location     models.Reference
		propertyType models.Reference
		condition    models.Reference
		sectorID     sql.NullInt64
		sectorName   sql.NullString
		note         sql.NullString
	)
	err := scan(&req.ID, &req.FirstName, &req.LastName, &req.Phone, &req.Email,
		&location.ID, &location.Name, &sectorID, &sectorName,
		&propertyType.ID, &propertyType.Name, &condition.ID, &condition.Name,
		&req.EstimatedPrice, &note, &req.Approved, &req.CreatedAt)
	if err != nil {
		return models.Request{}, err
	}
	req.LocationID = location.ID
	req.Location = &location
	req.PropertyTypeID = propertyType.ID
	req.PropertyType = &propertyType
	req.ConditionID = condition.ID
	req.Condition = &condition
	if sectorID.Valid {
		id := int(sectorID.Int64)
		req.SectorID = &id
		req.Sector = &models.Reference{ID: id, Name: sectorName.String}
	}
	req.Note = note.String
	return req, nil
}

func (r *RequestRepository) CreateRequest(ctx context.Context, req models.Request) (models.Request, error) {
	res, err := r.DB.ExecContext(ctx, `INSERT INTO requests (first_name, last_name, phone, email, location_id, sector_id, property_type_id, condition_id, estimated_price, note, approved, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		req.FirstName, req.LastName, req.Phone, req.Email, req.LocationID, nullableInt(req.SectorID),
		req.PropertyTypeID, req.ConditionID, req.EstimatedPrice, req.Note, req.Approved, time.Now(),
	)
	if err != nil {
		return models.Request{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Request{}, err
	}
	return r.GetRequestByID(ctx, int(id))
}

func (r *RequestRepository) GetRequestByID(ctx context.Context, id int) (models.Request, error) {
	row := r.DB.QueryRowContext(ctx, requestQuery+` WHERE r.id = ?`, id)
	req, err := scanRequest(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Request{}, models.ErrRequestNotFound
	}
	return req, err
}

func (r *RequestRepository) GetRequests(ctx context.Context) ([]models.Request, error) {
	rows, err := r.DB.QueryContext(ctx, requestQuery+` ORDER BY r.created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []models.Request
	for rows.Next() {
		req, err := scanRequest(rows.Scan)
		if err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}
	return requests, rows.Err()
}

func (r *RequestRepository) UpdateRequest(ctx context.Context, id int, in models.RequestInput) (models.Request, error) {
	var (
		sets   []string
		params []interface{}
	)
	set := func(col string, v interface{}) {
		sets = append(sets, col+" = ?")
		params = append(params, v)
	}
	if in.FirstName != nil {
		set("first_name", *in.FirstName)
	}
	if in.LastName != nil {
		set("last_name", *in.LastName)
	}
	if in.Phone != nil {
		set("phone", *in.Phone)
	}
	if in.Email != nil {
		set("email", *in.Email)
	}
	if in.LocationID != nil {
		set("location_id", *in.LocationID)
		set("sector_id", nullableInt(in.SectorID))
	} else if in.SectorID != nil {
		set("sector_id", *in.SectorID)
	}
	if in.PropertyTypeID != nil {
		set("property_type_id", *in.PropertyTypeID)
	}
	if in.ConditionID != nil {
		set("condition_id", *in.ConditionID)
	}
	if in.EstimatedPrice != nil {
		set("estimated_price", *in.EstimatedPrice)
	}
	if in.Note != nil {
		set("note", *in.Note)
	}
	if in.Approved != nil {
		set("approved", *in.Approved)
	}
	if len(sets) == 0 {
		return r.GetRequestByID(ctx, id)
	}

	params = append(params, id)
	res, err := r.DB.ExecContext(ctx, `UPDATE requests SET `+strings.Join(sets, ", ")+` WHERE id = ?`, params...)
	if err != nil {
		return models.Request{}, err
	}
	if _, err := res.RowsAffected(); err != nil {
		return models.Request{}, err
	}
	return r.GetRequestByID(ctx, id)
}

func (r *RequestRepository) DeleteRequest(ctx context.Context, id int) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM requests WHERE id = ?`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return models.ErrRequestNotFound
	}
	return nil
}
