package library

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Settings is the application settings document. It is schemaless so the
// frontend can persist new keys without a backend change.
type Settings map[string]any

func defaultSettings() Settings {
	return Settings{
		"current_project": nil,
		"theme":           "dark",
	}
}

func (l *Library) settingsPath() string {
	return filepath.Join(l.root, "settings.json")
}

// Settings loads settings.json, falling back to defaults when it does not
// exist yet.
func (l *Library) Settings() (Settings, error) {
	data, err := os.ReadFile(l.settingsPath())
	if os.IsNotExist(err) {
		return defaultSettings(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}
	var settings Settings
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("parse settings: %w", err)
	}
	return settings, nil
}

// UpdateSettings merges the given keys into settings.json and returns the
// resulting document.
func (l *Library) UpdateSettings(updates Settings) (Settings, error) {
	settings := Settings{}
	data, err := os.ReadFile(l.settingsPath())
	if err == nil {
		if err := json.Unmarshal(data, &settings); err != nil {
			return nil, fmt.Errorf("parse settings: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	for k, v := range updates {
		settings[k] = v
	}

	out, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal settings: %w", err)
	}
	if err := os.WriteFile(l.settingsPath(), out, 0o644); err != nil {
		return nil, fmt.Errorf("write settings: %w", err)
	}
	return settings, nil
}
