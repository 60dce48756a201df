package utils

import (
	"strings"
	"testing"
)

func TestObjectKey(t *testing.T) {
	s := &S3Storage{Folder: "listings"}

	key := s.ObjectKey("living room.jpg")
	if !strings.HasPrefix(key, "listings/") {
		t.Fatalf("expected folder prefix, got %q", key)
	}
	if strings.Contains(key, " ") {
		t.Fatalf("expected spaces to be replaced, got %q", key)
	}
	if !strings.HasSuffix(key, "_living_room.jpg") {
		t.Fatalf("expected original name suffix, got %q", key)
	}

	if s.ObjectKey("a.jpg") == s.ObjectKey("a.jpg") {
		t.Fatal("two keys for the same filename must differ")
	}
}

func TestKeyFromURL(t *testing.T) {
	s := &S3Storage{Bucket: "imobil", Endpoint: "https://s3.eu-central-1.amazonaws.com", Folder: "listings"}

	key := "listings/123_abcd_a.jpg"
	if got := s.KeyFromURL(s.URL(key)); got != key {
		t.Fatalf("expected %q got %q", key, got)
	}
	if got := s.KeyFromURL("123_abcd_a.jpg"); got != key {
		t.Fatalf("expected bare basename to map to %q, got %q", key, got)
	}
}

func TestURL(t *testing.T) {
	s := &S3Storage{Bucket: "imobil", Endpoint: "https://s3.eu-central-1.amazonaws.com"}
	want := "https://imobil.s3.eu-central-1.amazonaws.com/listings/a.jpg"
	if got := s.URL("listings/a.jpg"); got != want {
		t.Fatalf("expected %q got %q", want, got)
	}
}
