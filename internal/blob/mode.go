package blob

import (
	"fmt"
	"net/url"
	"strings"
)

type Mode string

const (
	ModeGCS         Mode = "gcs"
	ModeGCSEmulator Mode = "gcs_emulator"
)

// Config selects the bucket and how its objects are addressed publicly.
type Config struct {
	Mode          Mode
	Bucket        string
	CDNDomain     string
	EmulatorHost  string
	PublicBaseURL string
	// CredentialsFile or inline JSON; empty uses application default
	// credentials.
	Credentials string
}

// ResolveMode turns OBJECT_STORAGE_MODE into a Mode. An unset mode with an
// emulator host configured selects the emulator.
func ResolveMode(raw, emulatorHost string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(raw))) {
	case "":
		if strings.TrimSpace(emulatorHost) != "" {
			return ModeGCSEmulator, nil
		}
		return ModeGCS, nil
	case ModeGCS:
		return ModeGCS, nil
	case ModeGCSEmulator:
		if strings.TrimSpace(emulatorHost) == "" {
			return "", fmt.Errorf("OBJECT_STORAGE_MODE=%q requires STORAGE_EMULATOR_HOST to be set", ModeGCSEmulator)
		}
		return ModeGCSEmulator, nil
	default:
		return "", fmt.Errorf("invalid OBJECT_STORAGE_MODE=%q (allowed: %q, %q)", raw, ModeGCS, ModeGCSEmulator)
	}
}

// resolvePublicBaseURL prefers an explicit public base, then the emulator
// host, then nothing (plain GCS URLs).
func resolvePublicBaseURL(cfg Config) (string, error) {
	raw := strings.TrimSpace(cfg.PublicBaseURL)
	if raw != "" {
		parsed, err := url.Parse(raw)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return "", fmt.Errorf("invalid OBJECT_STORAGE_PUBLIC_BASE_URL=%q; expected absolute URL like http://localhost:4443", raw)
		}
		return strings.TrimRight(raw, "/"), nil
	}
	if cfg.Mode == ModeGCSEmulator {
		return strings.TrimRight(strings.TrimSpace(cfg.EmulatorHost), "/"), nil
	}
	return "", nil
}
