package handlers

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"testing"
)

func buildForm(t *testing.T, values map[string][]string, fileFields map[string][]string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for name, vals := range values {
		for _, v := range vals {
			if err := w.WriteField(name, v); err != nil {
				t.Fatal(err)
			}
		}
	}
	for name, filenames := range fileFields {
		for _, fn := range filenames {
			part, err := w.CreateFormFile(name, fn)
			if err != nil {
				t.Fatal(err)
			}
			part.Write([]byte("fake image bytes"))
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return body, w.FormDataContentType()
}

func TestCollectImageSources(t *testing.T) {
	cases := []struct {
		name      string
		values    map[string][]string
		files     map[string][]string
		wantCount int
		wantSet   bool
	}{
		{"absent key leaves the set untouched", map[string][]string{"street": {"x"}}, nil, 0, false},
		{"empty value clears the set", map[string][]string{"images": {""}}, nil, 0, true},
		{"url values are kept references", map[string][]string{"images": {"https://cdn/a.jpg", "https://cdn/b.jpg"}}, nil, 2, true},
		{"file parts are uploads", nil, map[string][]string{"images": {"a.jpg"}}, 1, true},
		{"mixed files and urls", map[string][]string{"images": {"https://cdn/a.jpg"}}, map[string][]string{"images": {"b.jpg"}}, 2, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			body, contentType := buildForm(t, tc.values, tc.files)
			r := httptest.NewRequest("POST", "/apartments", body)
			r.Header.Set("Content-Type", contentType)
			if err := r.ParseMultipartForm(32 << 20); err != nil {
				t.Fatal(err)
			}

			sources, set := collectImageSources(r)
			if set != tc.wantSet {
				t.Fatalf("expected set=%v got %v", tc.wantSet, set)
			}
			if len(sources) != tc.wantCount {
				t.Fatalf("expected %d sources got %d", tc.wantCount, len(sources))
			}
		})
	}
}

func TestParseListingInputSector(t *testing.T) {
	t.Run("present sector sets the value", func(t *testing.T) {
		body, contentType := buildForm(t, map[string][]string{"sector_id": {"4"}}, nil)
		r := httptest.NewRequest("POST", "/apartments", body)
		r.Header.Set("Content-Type", contentType)
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			t.Fatal(err)
		}

		in, err := parseListingInput(r)
		if err != nil {
			t.Fatal(err)
		}
		if !in.SectorSet || in.SectorID == nil || *in.SectorID != 4 {
			t.Fatalf("expected sector 4, got %+v", in)
		}
	})

	t.Run("empty sector clears it", func(t *testing.T) {
		body, contentType := buildForm(t, map[string][]string{"sector_id": {""}}, nil)
		r := httptest.NewRequest("POST", "/apartments", body)
		r.Header.Set("Content-Type", contentType)
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			t.Fatal(err)
		}

		in, err := parseListingInput(r)
		if err != nil {
			t.Fatal(err)
		}
		if !in.SectorSet || in.SectorID != nil {
			t.Fatalf("expected cleared sector, got %+v", in)
		}
	})

	t.Run("absent sector stays untouched", func(t *testing.T) {
		body, contentType := buildForm(t, map[string][]string{"street": {"Stefan cel Mare 1"}}, nil)
		r := httptest.NewRequest("POST", "/apartments", body)
		r.Header.Set("Content-Type", contentType)
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			t.Fatal(err)
		}

		in, err := parseListingInput(r)
		if err != nil {
			t.Fatal(err)
		}
		if in.SectorSet || in.SectorID != nil {
			t.Fatalf("expected untouched sector, got %+v", in)
		}
		if in.Street == nil || *in.Street != "Stefan cel Mare 1" {
			t.Fatalf("expected street to parse, got %+v", in)
		}
	})
}
