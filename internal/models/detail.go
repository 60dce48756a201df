package models

// DetailType discriminates which of the four detail tables extends a
// listing. The aggregate holds exactly one detail record, never more.
type DetailType string

const (
	DetailApartment       DetailType = "apartment"
	DetailHouse           DetailType = "house"
	DetailLand            DetailType = "land"
	DetailCommercialSpace DetailType = "commercial_space"
)

type Apartment struct {
	ID                 int        `json:"id"`
	ListingID          int        `json:"-"`
	Surface            int        `json:"surface"`
	ConditionID        int        `json:"-"`
	Condition          *Reference `json:"condition,omitempty"`
	ConstructionTypeID int        `json:"-"`
	ConstructionType   *Reference `json:"construction_type,omitempty"`
	PlanningTypeID     int        `json:"-"`
	PlanningType       *Reference `json:"planning_type,omitempty"`
	Rooms              int        `json:"rooms"`
	Floor              int        `json:"floor"`
	TotalFloors        int        `json:"total_floors"`
	Bathrooms          int        `json:"bathrooms"`
	HeatingTypeID      int        `json:"-"`
	HeatingType        *Reference `json:"heating_type,omitempty"`
}

type House struct {
	ID                   int     `json:"id"`
	ListingID            int     `json:"-"`
	Surface              int     `json:"surface"`
	LandSurface          float64 `json:"land_surface"`
	Rooms                int     `json:"rooms"`
	TotalFloors          int     `json:"total_floors"`
	Bathrooms            int     `json:"bathrooms"`
	WaterInstallation    bool    `json:"water_installation"`
	GasInstallation      bool    `json:"gas_installation"`
	SewerageInstallation bool    `json:"sewerage_installation"`
}

type Land struct {
	ID            int        `json:"id"`
	ListingID     int        `json:"-"`
	LandSurface   float64    `json:"land_surface"`
	SurfaceTypeID int        `json:"-"`
	SurfaceType   *Reference `json:"surface_type,omitempty"`
}

type CommercialSpace struct {
	ID          int        `json:"id"`
	ListingID   int        `json:"-"`
	Surface     int        `json:"surface"`
	ConditionID int        `json:"-"`
	Condition   *Reference `json:"condition,omitempty"`
	Floor       int        `json:"floor"`
	Offices     int        `json:"offices"`
	Bathrooms   int        `json:"bathrooms"`
}

// DetailListing is the composed aggregate: the listing plus the single
// detail record selected by Type.
type DetailListing struct {
	Type            DetailType       `json:"type"`
	Listing         Listing          `json:"listing"`
	Apartment       *Apartment       `json:"apartment,omitempty"`
	House           *House           `json:"house,omitempty"`
	Land            *Land            `json:"land,omitempty"`
	CommercialSpace *CommercialSpace `json:"commercial_space,omitempty"`
}

// DetailInput carries the type-specific fields of a create or update
// payload. Only the fields that apply to the target detail type are
// consulted; pointers are merged attribute-wise on update.
type DetailInput struct {
	Surface              *int
	LandSurface          *float64
	Rooms                *int
	Floor                *int
	TotalFloors          *int
	Bathrooms            *int
	Offices              *int
	ConditionID          *int
	ConstructionTypeID   *int
	PlanningTypeID       *int
	HeatingTypeID        *int
	SurfaceTypeID        *int
	WaterInstallation    *bool
	GasInstallation      *bool
	SewerageInstallation *bool
}
