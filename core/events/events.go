// Package events defines the event types published on the internal bus.
package events

import (
	"time"

	"github.com/RoMaSystems-source/Leitstellenspiel-bot/core/model"
)

// MissionEvent is published when a mission becomes eligible for processing.
type MissionEvent struct {
	Mission model.MissionRecord
	At      time.Time
}

// OutcomeEvent is published after a mission reached a terminal outcome.
type OutcomeEvent struct {
	Mission model.MissionRecord
	Outcome model.Outcome
	At      time.Time
}

// ShortageEvent is published when units were withdrawn to status 6.
type ShortageEvent struct {
	MissionID string
	Units     []string
	At        time.Time
}
