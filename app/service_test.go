package app

import (
	"testing"

	"github.com/RoMaSystems-source/Leitstellenspiel-bot/core/model"
)

func TestSelectEligibleOrdersUrgentFirst(t *testing.T) {
	missions := []model.MissionRecord{
		{ID: "1", Icon: "feuer"},
		{ID: "2", Icon: "feuer", MissingText: "1 LF"},
		{ID: "3", Icon: "feuer_rot"},
		{ID: "4", Icon: "unfall", MissingText: "1 RTW"},
		{ID: "5", Icon: "unfall_rot"},
	}
	got := selectEligible(missions, 0)
	ids := make([]string, len(got))
	for i, m := range got {
		ids[i] = m.ID
	}
	// Mission 1 has neither missing units nor urgency and is skipped. Urgent
	// missions come first, feed order preserved within each class.
	want := []string{"3", "5", "2", "4"}
	if len(ids) != len(want) {
		t.Fatalf("eligible = %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("eligible = %v, want %v", ids, want)
		}
	}
}

func TestSelectEligibleHonorsLimit(t *testing.T) {
	missions := []model.MissionRecord{
		{ID: "1", Icon: "a_rot"},
		{ID: "2", Icon: "b_rot"},
		{ID: "3", Icon: "c_rot"},
	}
	got := selectEligible(missions, 2)
	if len(got) != 2 || got[0].ID != "1" || got[1].ID != "2" {
		t.Fatalf("limited selection: %+v", got)
	}
}

func TestRequiredTotal(t *testing.T) {
	p := model.Profile{model.CatLF: 2, model.CatRTW: 1}
	if got := requiredTotal(p); got != 3 {
		t.Fatalf("requiredTotal = %d", got)
	}
}
