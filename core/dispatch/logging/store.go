package logging

import (
	"context"
	"time"

	"github.com/RoMaSystems-source/Leitstellenspiel-bot/core/model"
)

// LogRecord captures one processed mission and its dispatch result.
type LogRecord struct {
	Timestamp    time.Time              `json:"timestamp"`
	MissionID    string                 `json:"mission_id"`
	MissionTitle string                 `json:"mission_title"`
	Outcome      string                 `json:"outcome"`
	Source       string                 `json:"source"`
	Requirements model.Profile          `json:"requirements"`
	Committed    []string               `json:"committed"`
	OutOfService []string               `json:"out_of_service"`
	Shortfall    map[model.Category]int `json:"shortfall,omitempty"`
	Message      string                 `json:"message,omitempty"`
}

// NewLogRecord builds a record from a processed mission.
func NewLogRecord(mission model.MissionRecord, outcome model.Outcome, now time.Time) LogRecord {
	return LogRecord{
		Timestamp:    now,
		MissionID:    mission.ID,
		MissionTitle: mission.Title,
		Outcome:      outcome.Kind.String(),
		Source:       outcome.Source,
		Requirements: outcome.Requirements,
		Committed:    outcome.Committed,
		OutOfService: outcome.OutOfService,
		Shortfall:    outcome.Shortfall,
		Message:      outcome.Message,
	}
}

// LogQuery defines filters for retrieving records.
type LogQuery struct {
	Start     time.Time
	End       time.Time
	MissionID string
	Outcome   string
	// UnitID matches records where the unit was committed or withdrawn.
	UnitID string
}

func (q LogQuery) matches(r LogRecord) bool {
	if !q.Start.IsZero() && r.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && r.Timestamp.After(q.End) {
		return false
	}
	if q.MissionID != "" && r.MissionID != q.MissionID {
		return false
	}
	if q.Outcome != "" && r.Outcome != q.Outcome {
		return false
	}
	if q.UnitID != "" && !containsID(r.Committed, q.UnitID) && !containsID(r.OutOfService, q.UnitID) {
		return false
	}
	return true
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// LogStore persists LogRecords and supports querying.
type LogStore interface {
	Append(ctx context.Context, rec LogRecord) error
	Query(ctx context.Context, q LogQuery) ([]LogRecord, error)
	Close() error
}
