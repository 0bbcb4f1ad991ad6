package services

import (
	"strings"
	"testing"

	"github.com/fitlifeapp/fitlife/internal/server/config"
)

func TestMediaService_Enabled(t *testing.T) {
	cfg := &config.Config{}
	if NewMediaService(cfg).Enabled() {
		t.Fatal("no bucket means disabled")
	}

	cfg.S3Bucket = "fitlife-media"
	if !NewMediaService(cfg).Enabled() {
		t.Fatal("bucket set means enabled")
	}
}

func TestPhotoStorageKey_UniquePerCall(t *testing.T) {
	a := photoStorageKey("u1")
	b := photoStorageKey("u1")
	if a == b {
		t.Fatalf("keys must differ: %q", a)
	}
	if !strings.HasPrefix(a, "photos/") || !strings.Contains(a, "u1") {
		t.Fatalf("unexpected key shape: %q", a)
	}
}

func TestPublicURL(t *testing.T) {
	s := NewMediaService(&config.Config{
		S3Bucket:       "fitlife-media",
		S3BaseEndpoint: "http://127.0.0.1:9000/",
	})
	got := s.publicURL("photos/1/2/3/k")
	want := "http://127.0.0.1:9000/fitlife-media/photos/1/2/3/k"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}

	s = NewMediaService(&config.Config{
		S3Bucket:        "fitlife-media",
		S3PublicBaseURL: "https://cdn.fitlife.example/",
	})
	got = s.publicURL("photos/1/2/3/k")
	want = "https://cdn.fitlife.example/photos/1/2/3/k"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}
