package models

import "testing"

func TestValidateSectorRule(t *testing.T) {
	cases := []struct {
		name        string
		location    string
		hasSector   bool
		wantMessage string
	}{
		{"chisinau with sector", ChisinauLocationName, true, ""},
		{"chisinau without sector", ChisinauLocationName, false, MsgSectorRequired},
		{"other location without sector", "Bălți", false, ""},
		{"other location with sector", "Bălți", true, MsgSectorForbidden},
		{"empty location with sector", "", true, MsgSectorForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateSectorRule(tc.location, tc.hasSector)
			if tc.wantMessage == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected a validation error")
			}
			if err.Field != "sector_id" {
				t.Fatalf("expected field sector_id got %s", err.Field)
			}
			if err.Message != tc.wantMessage {
				t.Fatalf("expected %q got %q", tc.wantMessage, err.Message)
			}
		})
	}
}

func TestNotFoundError(t *testing.T) {
	cases := []struct {
		typ  DetailType
		want error
	}{
		{DetailApartment, ErrApartmentNotFound},
		{DetailHouse, ErrHouseNotFound},
		{DetailLand, ErrLandNotFound},
		{DetailCommercialSpace, ErrCommercialSpaceNotFound},
		{DetailType("unknown"), ErrListingNotFound},
	}
	for _, tc := range cases {
		if got := NotFoundError(tc.typ); got != tc.want {
			t.Fatalf("%s: expected %v got %v", tc.typ, tc.want, got)
		}
	}
}
