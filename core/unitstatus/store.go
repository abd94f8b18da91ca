// Package unitstatus keeps a small ledger of what the bot last did with each
// unit, for operator inspection.
package unitstatus

import (
	"encoding/json"
	"os"
	"sort"
	"sync"
	"time"
)

const (
	StateDispatched   = "dispatched"
	StateOutOfService = "out_of_service"
)

// Status captures the last known interaction with one unit.
type Status struct {
	UnitID        string    `json:"unit_id"`
	Name          string    `json:"name,omitempty"`
	CurrentStatus string    `json:"current_status"`
	LastMissionID string    `json:"last_mission_id,omitempty"`
	LastOutcome   string    `json:"last_outcome,omitempty"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type Filter struct {
	CurrentStatus string
	MissionID     string
}

type Store interface {
	Set(Status)
	List(Filter) []Status
	RecordDispatch(unitID, missionID, outcome string, at time.Time)
	RecordWithdrawal(unitID, missionID string, at time.Time)
}

type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]Status
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: map[string]Status{}}
}

func (s *MemoryStore) Set(st Status) {
	s.mu.Lock()
	s.data[st.UnitID] = st
	s.mu.Unlock()
}

func (s *MemoryStore) RecordDispatch(unitID, missionID, outcome string, at time.Time) {
	s.record(unitID, missionID, outcome, StateDispatched, at)
}

func (s *MemoryStore) RecordWithdrawal(unitID, missionID string, at time.Time) {
	s.record(unitID, missionID, "", StateOutOfService, at)
}

func (s *MemoryStore) record(unitID, missionID, outcome, state string, at time.Time) {
	s.mu.Lock()
	st := s.data[unitID]
	st.UnitID = unitID
	st.CurrentStatus = state
	st.LastMissionID = missionID
	if outcome != "" {
		st.LastOutcome = outcome
	}
	st.UpdatedAt = at
	s.data[unitID] = st
	s.mu.Unlock()
}

func (s *MemoryStore) List(f Filter) []Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := make([]Status, 0, len(s.data))
	for _, st := range s.data {
		if f.CurrentStatus != "" && st.CurrentStatus != f.CurrentStatus {
			continue
		}
		if f.MissionID != "" && st.LastMissionID != f.MissionID {
			continue
		}
		res = append(res, st)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].UnitID < res[j].UnitID })
	return res
}

// Save writes the ledger to a JSON file.
func (s *MemoryStore) Save(path string) error {
	all := s.List(Filter{})
	b, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

// Load restores a ledger from a JSON file. A missing file yields an empty
// store.
func Load(path string) (*MemoryStore, error) {
	s := NewMemoryStore()
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, err
	}
	var all []Status
	if err := json.Unmarshal(b, &all); err != nil {
		return nil, err
	}
	for _, st := range all {
		s.Set(st)
	}
	return s, nil
}
