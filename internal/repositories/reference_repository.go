package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"imobilBack/internal/models"
)

// refTable maps a reference kind to its lookup table, the wire name of
// the foreign key referencing it and the client-facing message used when
// the referenced row does not exist.
type refTable struct {
	table      string
	field      string
	missingMsg string
}

var referenceTables = map[models.ReferenceKind]refTable{
	models.RefPropertyType:     {"property_types", "property_type_id", "Tipul de proprietate specificat nu există."},
	models.RefCondition:        {"conditions", "condition_id", "Condiția specificată nu există."},
	models.RefSaleType:         {"sale_types", "sale_type_id", "Tipul specificat nu există."},
	models.RefUserType:         {"user_types", "user_type_id", "Tipul indicat specificat nu există."},
	models.RefSector:           {"sectors", "sector_id", "Sectorul specificat nu există."},
	models.RefLocation:         {"locations", "location_id", "Locația specificată nu există."},
	models.RefHeatingType:      {"heating_types", "heating_type_id", "Tipul specificat nu există."},
	models.RefPlanningType:     {"planning_types", "planning_type_id", "Tipul specificat nu există."},
	models.RefConstructionType: {"construction_types", "construction_type_id", "Tipul specificat nu există."},
	models.RefSurfaceType:      {"surface_types", "surface_type_id", "Tipul specificat nu există."},
}

type ReferenceRepository struct {
	DB *sql.DB
}

func (r *ReferenceRepository) List(ctx context.Context, kind models.ReferenceKind) ([]models.Reference, error) {
	t, ok := referenceTables[kind]
	if !ok {
		return nil, fmt.Errorf("unknown reference kind %q", kind)
	}

	rows, err := r.DB.QueryContext(ctx, fmt.Sprintf(`SELECT id, name FROM %s ORDER BY name`, t.table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var refs []models.Reference
	for rows.Next() {
		var ref models.Reference
		if err := rows.Scan(&ref.ID, &ref.Name); err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

func (r *ReferenceRepository) GetByID(ctx context.Context, kind models.ReferenceKind, id int) (models.Reference, error) {
	t, ok := referenceTables[kind]
	if !ok {
		return models.Reference{}, fmt.Errorf("unknown reference kind %q", kind)
	}

	var ref models.Reference
	err := r.DB.QueryRowContext(ctx, fmt.Sprintf(`SELECT id, name FROM %s WHERE id = ?`, t.table), id).
		Scan(&ref.ID, &ref.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Reference{}, models.ErrReferenceNotFound
	}
	if err != nil {
		return models.Reference{}, err
	}
	return ref, nil
}

func (r *ReferenceRepository) Create(ctx context.Context, kind models.ReferenceKind, name string) (models.Reference, error) {
	t, ok := referenceTables[kind]
	if !ok {
		return models.Reference{}, fmt.Errorf("unknown reference kind %q", kind)
	}

	res, err := r.DB.ExecContext(ctx, fmt.Sprintf(`INSERT INTO %s (name) VALUES (?)`, t.table), name)
	if err != nil {
		return models.Reference{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Reference{}, err
	}
	return models.Reference{ID: int(id), Name: name}, nil
}

func (r *ReferenceRepository) Update(ctx context.Context, kind models.ReferenceKind, ref models.Reference) (models.Reference, error) {
	t, ok := referenceTables[kind]
	if !ok {
		return models.Reference{}, fmt.Errorf("unknown reference kind %q", kind)
	}

	res, err := r.DB.ExecContext(ctx, fmt.Sprintf(`UPDATE %s SET name = ? WHERE id = ?`, t.table), ref.Name, ref.ID)
	if err != nil {
		return models.Reference{}, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return models.Reference{}, err
	}
	if affected == 0 {
		return models.Reference{}, models.ErrReferenceNotFound
	}
	return ref, nil
}

// Delete removes a lookup row. The schema restricts deleting rows that
// are still referenced; that surfaces as ErrReferenceInUse.
func (r *ReferenceRepository) Delete(ctx context.Context, kind models.ReferenceKind, id int) error {
	t, ok := referenceTables[kind]
	if !ok {
		return fmt.Errorf("unknown reference kind %q", kind)
	}

	res, err := r.DB.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, t.table), id)
	if err != nil {
		return translateIntegrityError(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return models.ErrReferenceNotFound
	}
	return nil
}

// Resolve validates that the referenced row exists and returns it.
// Resolution failure is a field-scoped unknown-reference error, not a
// generic validation failure.
func (r *ReferenceRepository) Resolve(ctx context.Context, kind models.ReferenceKind, id int) (models.Reference, error) {
	ref, err := r.GetByID(ctx, kind, id)
	if errors.Is(err, models.ErrReferenceNotFound) {
		t := referenceTables[kind]
		return models.Reference{}, &models.ValidationError{Field: t.field, Message: t.missingMsg}
	}
	return ref, err
}
