package plugin

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Settings is the plugin's persisted configuration.
type Settings struct {
	IsMounted bool `yaml:"isMounted"`
}

// DefaultSettings returns the settings used before anything is saved.
func DefaultSettings() Settings {
	return Settings{IsMounted: false}
}

// DecodeSettings decodes data over DefaultSettings, so keys absent from
// data keep their default values. Empty data yields the defaults.
func DecodeSettings(data []byte) (Settings, error) {
	s := DefaultSettings()
	if len(bytes.TrimSpace(data)) == 0 {
		return s, nil
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("decoding settings: %w", err)
	}
	return s, nil
}

// EncodeSettings encodes s for a SettingsStore.
func EncodeSettings(s Settings) ([]byte, error) {
	data, err := yaml.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encoding settings: %w", err)
	}
	return data, nil
}
