package models

import (
	json "github.com/goccy/go-json"
)

type FontSizes struct {
	Titles    string `json:"titles"`
	Metadata  string `json:"metadata"`
	Countdown string `json:"countdown"`
}

// Settings is the process-wide singleton record. It is merged over defaults
// field by field on load, never wholesale-replaced, so a partially populated
// stored record keeps the remaining defaults intact.
type Settings struct {
	Theme    string    `json:"theme"`
	Effect   string    `json:"effect"`
	FontSize FontSizes `json:"fontSize"`
	Columns  int       `json:"columns"`
}

func DefaultSettings() Settings {
	return Settings{
		Theme:  "dark",
		Effect: "none",
		FontSize: FontSizes{
			Titles:    "medium",
			Metadata:  "small",
			Countdown: "medium",
		},
		Columns: 3,
	}
}

// DecodeSettings merges a stored settings document over the defaults.
// Absent keys keep their default; a malformed document yields the defaults.
func DecodeSettings(raw []byte) Settings {
	s := DefaultSettings()
	if len(raw) == 0 {
		return s
	}
	if err := json.Unmarshal(raw, &s); err != nil {
		return DefaultSettings()
	}
	if s.Columns < 1 {
		s.Columns = 1
	}
	return s
}
