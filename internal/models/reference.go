package models

// Reference is a row of one of the lookup tables. All lookups share the
// same {id, name} shape and differ only by table.
type Reference struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// ReferenceKind selects which lookup table a reference operation targets.
type ReferenceKind string

const (
	RefPropertyType     ReferenceKind = "property_type"
	RefCondition        ReferenceKind = "condition"
	RefSaleType         ReferenceKind = "sale_type"
	RefUserType         ReferenceKind = "user_type"
	RefSector           ReferenceKind = "sector"
	RefLocation         ReferenceKind = "location"
	RefHeatingType      ReferenceKind = "heating_type"
	RefPlanningType     ReferenceKind = "planning_type"
	RefConstructionType ReferenceKind = "construction_type"
	RefSurfaceType      ReferenceKind = "surface_type"
)

// ChisinauLocationName is the location whose listings and requests must
// carry a sector. Everywhere else the sector must stay empty.
const ChisinauLocationName = "Chișinău"

const (
	MsgSectorRequired  = "Sectorul este obligatoriu când locația este Chișinău."
	MsgSectorForbidden = "Sectorul trebuie să fie necompletat când locația nu este Chișinău."
	MsgFieldRequired   = "Acest câmp nu poate fi gol."
)

// ValidateSectorRule enforces the sector/location pairing shared by
// listings and price-estimate requests.
func ValidateSectorRule(locationName string, hasSector bool) *ValidationError {
	if locationName == ChisinauLocationName && !hasSector {
		return &ValidationError{Field: "sector_id", Message: MsgSectorRequired}
	}
	if locationName != ChisinauLocationName && hasSector {
		return &ValidationError{Field: "sector_id", Message: MsgSectorForbidden}
	}
	return nil
}
