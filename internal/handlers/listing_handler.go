package handlers

import (
	"net/http"
	"strconv"

	"imobilBack/internal/models"
	"imobilBack/internal/repositories"
	"imobilBack/internal/services"
)

const maxListingFormSize = 32 << 20

// ListingHandler serves the four typed listing collections. Every
// endpoint is parameterized by the detail type, so apartments, houses,
// lands and commercial spaces share one implementation.
type ListingHandler struct {
	Service *services.ListingService
}

func (h *ListingHandler) Create(typ models.DetailType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(maxListingFormSize); err != nil {
			http.Error(w, "Invalid input", http.StatusBadRequest)
			return
		}

		listing, err := parseListingInput(r)
		if err != nil {
			respondError(w, err)
			return
		}
		detail, err := parseDetailInput(r)
		if err != nil {
			respondError(w, err)
			return
		}
		images, _ := collectImageSources(r)

		created, err := h.Service.CreateDetailListing(r.Context(), actorFrom(r), typ, services.CreateDetailListingInput{
			Listing: *listing,
			Detail:  *detail,
			Images:  images,
		})
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusCreated, created)
	}
}

func (h *ListingHandler) Get(typ models.DetailType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		listingID, err := pathID(r, "listing_id")
		if err != nil {
			http.Error(w, "Invalid listing ID", http.StatusBadRequest)
			return
		}

		dl, err := h.Service.GetDetailListing(r.Context(), typ, listingID)
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, dl)
	}
}

func (h *ListingHandler) List(typ models.DetailType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter, err := parseListingFilter(r)
		if err != nil {
			respondError(w, err)
			return
		}

		listings, err := h.Service.GetDetailListings(r.Context(), typ, filter)
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, listings)
	}
}

func (h *ListingHandler) Update(typ models.DetailType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		listingID, err := pathID(r, "listing_id")
		if err != nil {
			http.Error(w, "Invalid listing ID", http.StatusBadRequest)
			return
		}
		if err := r.ParseMultipartForm(maxListingFormSize); err != nil {
			http.Error(w, "Invalid input", http.StatusBadRequest)
			return
		}

		listing, err := parseListingInput(r)
		if err != nil {
			respondError(w, err)
			return
		}
		detail, err := parseDetailInput(r)
		if err != nil {
			respondError(w, err)
			return
		}
		images, imagesSet := collectImageSources(r)

		updated, err := h.Service.UpdateDetailListing(r.Context(), actorFrom(r), typ, listingID, services.UpdateDetailListingInput{
			Listing:   listing,
			Detail:    *detail,
			Images:    images,
			ImagesSet: imagesSet,
		})
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, updated)
	}
}

func (h *ListingHandler) Delete(typ models.DetailType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		listingID, err := pathID(r, "listing_id")
		if err != nil {
			http.Error(w, "Invalid listing ID", http.StatusBadRequest)
			return
		}

		if err := h.Service.DeleteDetailListing(r.Context(), actorFrom(r), typ, listingID); err != nil {
			respondError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func parseListingInput(r *http.Request) (*models.ListingInput, error) {
	in := &models.ListingInput{
		Street:      formString(r, "street"),
		Description: formString(r, "description"),
	}

	var err error
	if in.LocationID, err = formInt(r, "location_id"); err != nil {
		return nil, err
	}
	if in.UserID, err = formInt(r, "user_id"); err != nil {
		return nil, err
	}
	if in.SaleTypeID, err = formInt(r, "sale_type_id"); err != nil {
		return nil, err
	}
	if in.Price, err = formInt(r, "price"); err != nil {
		return nil, err
	}
	if in.PropertyTypeID, err = formInt(r, "property_type_id"); err != nil {
		return nil, err
	}
	if in.Availability, err = formBool(r, "availability"); err != nil {
		return nil, err
	}

	// A present sector key with an empty value clears the sector, an
	// absent key leaves it alone.
	if values, ok := r.MultipartForm.Value["sector_id"]; ok && len(values) > 0 {
		in.SectorSet = true
		if values[0] != "" {
			v, err := strconv.Atoi(values[0])
			if err != nil {
				return nil, &models.ValidationError{Field: "sector_id", Message: "Valoarea trebuie să fie un număr întreg."}
			}
			in.SectorID = &v
		}
	}
	return in, nil
}

func parseDetailInput(r *http.Request) (*models.DetailInput, error) {
	in := &models.DetailInput{}

	var err error
	if in.Surface, err = formInt(r, "surface"); err != nil {
		return nil, err
	}
	if in.LandSurface, err = formFloat(r, "land_surface"); err != nil {
		return nil, err
	}
	if in.Rooms, err = formInt(r, "rooms"); err != nil {
		return nil, err
	}
	if in.Floor, err = formInt(r, "floor"); err != nil {
		return nil, err
	}
	if in.TotalFloors, err = formInt(r, "total_floors"); err != nil {
		return nil, err
	}
	if in.Bathrooms, err = formInt(r, "bathrooms"); err != nil {
		return nil, err
	}
	if in.Offices, err = formInt(r, "offices"); err != nil {
		return nil, err
	}
	if in.ConditionID, err = formInt(r, "condition_id"); err != nil {
		return nil, err
	}
	if in.ConstructionTypeID, err = formInt(r, "construction_type_id"); err != nil {
		return nil, err
	}
	if in.PlanningTypeID, err = formInt(r, "planning_type_id"); err != nil {
		return nil, err
	}
	if in.HeatingTypeID, err = formInt(r, "heating_type_id"); err != nil {
		return nil, err
	}
	if in.SurfaceTypeID, err = formInt(r, "surface_type_id"); err != nil {
		return nil, err
	}
	if in.WaterInstallation, err = formBool(r, "water_installation"); err != nil {
		return nil, err
	}
	if in.GasInstallation, err = formBool(r, "gas_installation"); err != nil {
		return nil, err
	}
	if in.SewerageInstallation, err = formBool(r, "sewerage_installation"); err != nil {
		return nil, err
	}
	return in, nil
}

func parseListingFilter(r *http.Request) (repositories.ListingFilter, error) {
	q := r.URL.Query()
	filter := repositories.ListingFilter{Sort: q.Get("sort")}

	queryInt := func(name string) (*int, error) {
		raw := q.Get(name)
		if raw == "" {
			return nil, nil
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			return nil, &models.ValidationError{Field: name, Message: "Valoarea trebuie să fie un număr întreg."}
		}
		return &v, nil
	}

	var err error
	if filter.PriceMin, err = queryInt("price_min"); err != nil {
		return filter, err
	}
	if filter.PriceMax, err = queryInt("price_max"); err != nil {
		return filter, err
	}
	if filter.LocationID, err = queryInt("location_id"); err != nil {
		return filter, err
	}
	if filter.SectorID, err = queryInt("sector_id"); err != nil {
		return filter, err
	}
	if filter.SaleTypeID, err = queryInt("sale_type_id"); err != nil {
		return filter, err
	}
	if filter.PropertyTypeID, err = queryInt("property_type_id"); err != nil {
		return filter, err
	}
	if filter.MinSurface, err = queryInt("min_surface"); err != nil {
		return filter, err
	}
	if filter.MaxSurface, err = queryInt("max_surface"); err != nil {
		return filter, err
	}
	if filter.MinRooms, err = queryInt("min_rooms"); err != nil {
		return filter, err
	}
	if filter.MaxRooms, err = queryInt("max_rooms"); err != nil {
		return filter, err
	}

	if raw := q.Get("availability"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return filter, &models.ValidationError{Field: "availability", Message: "Valoarea trebuie să fie true sau false."}
		}
		filter.Availability = &v
	}
	if raw := q.Get("limit"); raw != "" {
		if filter.Limit, err = strconv.Atoi(raw); err != nil {
			return filter, &models.ValidationError{Field: "limit", Message: "Valoarea trebuie să fie un număr întreg."}
		}
	}
	if raw := q.Get("offset"); raw != "" {
		if filter.Offset, err = strconv.Atoi(raw); err != nil {
			return filter, &models.ValidationError{Field: "offset", Message: "Valoarea trebuie să fie un număr întreg."}
		}
	}
	return filter, nil
}
