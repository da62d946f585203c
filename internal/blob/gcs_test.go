package blob

import (
	"strings"
	"testing"
)

func TestPublicURLDefault(t *testing.T) {
	s := &GCSStore{bucket: "tintura-styles"}

	got := s.PublicURL("covers/1700000000000-ab12.webp")
	want := "https://storage.googleapis.com/tintura-styles/covers/1700000000000-ab12.webp"
	if got != want {
		t.Fatalf("PublicURL: want=%q got=%q", want, got)
	}
}

func TestPublicURLUsesCDNDomain(t *testing.T) {
	s := &GCSStore{bucket: "tintura-styles", cdnDomain: "img.tintura.example", mode: ModeGCSEmulator, emulatorHost: "http://fake-gcs:4443"}

	got := s.PublicURL("/covers/a.webp")
	want := "https://img.tintura.example/covers/a.webp"
	if got != want {
		t.Fatalf("PublicURL: want=%q got=%q", want, got)
	}
}

func TestPublicURLUsesPublicBaseURL(t *testing.T) {
	s := &GCSStore{bucket: "tintura-styles", publicBaseURL: "http://localhost:4443"}

	got := s.PublicURL("covers/a.webp")
	want := "http://localhost:4443/tintura-styles/covers/a.webp"
	if got != want {
		t.Fatalf("PublicURL: want=%q got=%q", want, got)
	}
}

func TestPublicURLUsesEmulatorMediaEndpoint(t *testing.T) {
	s := &GCSStore{bucket: "tintura-styles", mode: ModeGCSEmulator, emulatorHost: "http://fake-gcs:4443"}

	got := s.PublicURL("covers/a.webp")
	want := "http://fake-gcs:4443/storage/v1/b/tintura-styles/o/covers%2Fa.webp?alt=media"
	if got != want {
		t.Fatalf("PublicURL: want=%q got=%q", want, got)
	}

	s.publicBaseURL = "http://localhost:4443"
	if got := s.PublicURL("covers/a.webp"); !strings.HasPrefix(got, "http://localhost:4443/storage/v1/b/") {
		t.Fatalf("PublicURL should prefer public base over emulator host: %s", got)
	}
}

func TestResolveMode(t *testing.T) {
	cases := []struct {
		raw, host string
		want      Mode
		wantErr   bool
	}{
		{raw: "", host: "", want: ModeGCS},
		{raw: "", host: "http://fake-gcs:4443", want: ModeGCSEmulator},
		{raw: "GCS", host: "http://fake-gcs:4443", want: ModeGCS},
		{raw: "gcs_emulator", host: "http://fake-gcs:4443", want: ModeGCSEmulator},
		{raw: "gcs_emulator", host: "", wantErr: true},
		{raw: "s3", wantErr: true},
	}
	for _, tc := range cases {
		got, err := ResolveMode(tc.raw, tc.host)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("ResolveMode(%q, %q): expected error", tc.raw, tc.host)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ResolveMode(%q, %q): %v", tc.raw, tc.host, err)
		}
		if got != tc.want {
			t.Fatalf("ResolveMode(%q, %q): want=%q got=%q", tc.raw, tc.host, tc.want, got)
		}
	}
}

func TestResolvePublicBaseURL(t *testing.T) {
	got, err := resolvePublicBaseURL(Config{Mode: ModeGCSEmulator, EmulatorHost: "http://fake-gcs:4443/", PublicBaseURL: "http://localhost:4443/"})
	if err != nil {
		t.Fatalf("resolvePublicBaseURL: %v", err)
	}
	if got != "http://localhost:4443" {
		t.Fatalf("baseURL: want=%q got=%q", "http://localhost:4443", got)
	}

	got, err = resolvePublicBaseURL(Config{Mode: ModeGCSEmulator, EmulatorHost: "http://fake-gcs:4443/"})
	if err != nil || got != "http://fake-gcs:4443" {
		t.Fatalf("emulator fallback: got=%q err=%v", got, err)
	}

	got, err = resolvePublicBaseURL(Config{Mode: ModeGCS})
	if err != nil || got != "" {
		t.Fatalf("gcs default: got=%q err=%v", got, err)
	}

	if _, err := resolvePublicBaseURL(Config{PublicBaseURL: "localhost:4443"}); err == nil {
		t.Fatalf("resolvePublicBaseURL: expected error for relative base")
	}
}

func TestContentTypeForKey(t *testing.T) {
	cases := map[string]string{
		"covers/a.webp":    "image/webp",
		"covers/a.JPG":     "image/jpeg",
		"covers/a.png?v=2": "image/png",
		"covers/a":         "application/octet-stream",
	}
	for key, want := range cases {
		if got := contentTypeForKey(key); got != want {
			t.Fatalf("contentTypeForKey(%q): want=%q got=%q", key, want, got)
		}
	}
}
