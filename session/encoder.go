package session

import (
	"encoding/json"
	"fmt"
)

const (
	profileFormatVersionCurrent = 1
	// Blobs written before versioning carry no "v" field and decode as v0.
	profileFormatVersionLegacy = 0
)

type profileEnvelope struct {
	Version int `json:"v"`
	Profile
}

// EncodeProfile serializes p for the profile storage entry.
func EncodeProfile(p Profile) (string, error) {
	data, err := json.Marshal(profileEnvelope{Version: profileFormatVersionCurrent, Profile: p})
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// DecodeProfile parses a profile storage entry. Unknown fields such as a
// legacy "roles" or "token" copy are ignored; roles always come from the
// credential.
func DecodeProfile(blob string) (Profile, error) {
	var env profileEnvelope
	if err := json.Unmarshal([]byte(blob), &env); err != nil {
		return Profile{}, fmt.Errorf("%w: %v", ErrMalformedProfile, err)
	}

	switch env.Version {
	case profileFormatVersionCurrent, profileFormatVersionLegacy:
		return env.Profile, nil
	default:
		return Profile{}, fmt.Errorf("%w: unsupported version %d", ErrMalformedProfile, env.Version)
	}
}
