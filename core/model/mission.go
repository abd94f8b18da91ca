package model

import (
	"encoding/json"
	"strings"
	"time"
)

// MissionRecord is one open incident as reported by the mission list feed.
// Records are immutable snapshots taken once per polling cycle.
type MissionRecord struct {
	ID                     string    `json:"id"`
	Title                  string    `json:"title"`
	Address                string    `json:"address"`
	MissionTypeID          string    `json:"mission_type_id"`
	PatientsCount          int       `json:"patients_count"`
	PossiblePatientsCount  int       `json:"possible_patients_count"`
	PrisonersCount         int       `json:"prisoners_count"`
	PossiblePrisonersCount int       `json:"possible_prisoners_count"`
	MissingText            string    `json:"missing_text"`
	Icon                   string    `json:"icon"`
	CreatedAt              time.Time `json:"created_at"`
	Alliance               bool      `json:"alliance,omitempty"`
}

// Urgent reports whether the mission carries a red marker. Red missions are
// processed before all others within a cycle.
func (m MissionRecord) Urgent() bool {
	icon := strings.ToLower(m.Icon)
	return strings.Contains(icon, "_rot") || strings.Contains(icon, "_red") ||
		strings.Contains(icon, "red") || strings.Contains(icon, "rot")
}

// HasMissing reports whether the feed lists units as still missing.
func (m MissionRecord) HasMissing() bool {
	return strings.TrimSpace(m.MissingText) != ""
}

// PatientCount returns the confirmed patient count, falling back to the
// possible count when nothing is confirmed yet.
func (m MissionRecord) PatientCount() int {
	if m.PatientsCount > 0 {
		return m.PatientsCount
	}
	return m.PossiblePatientsCount
}

// DecodeMissingText unwraps the feed's missing-unit description. The field
// arrives either as plain text or as a JSON object with a "vehicles" key.
func DecodeMissingText(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "{") {
		return trimmed
	}
	var obj struct {
		Vehicles string `json:"vehicles"`
	}
	if err := json.Unmarshal([]byte(trimmed), &obj); err != nil {
		return trimmed
	}
	return strings.TrimSpace(obj.Vehicles)
}
