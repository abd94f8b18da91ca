package game

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/RoMaSystems-source/Leitstellenspiel-bot/core/model"
)

var (
	helpLinkRe     = regexp.MustCompile(`/einsaetze/(\d+)`)
	drivingRowRe   = regexp.MustCompile(`id="mission_vehicle_driving_\d+"`)
	atMissionRowRe = regexp.MustCompile(`id="mission_vehicle_at_mission_\d+"`)
	checkboxRe     = regexp.MustCompile(`(?s)<input\b[^>]*class="[^"]*vehicle_checkbox[^"]*"[^>]*>`)
	attrRe         = regexp.MustCompile(`([\w-]+)(?:="([^"]*)")?`)
	loadMoreRe     = regexp.MustCompile(`class="[^"]*missing_vehicles_load[^"]*"[^>]*href="([^"]+)"`)
	alertRe        = regexp.MustCompile(`(?s)<div\b([^>]*?)class="[^"]*alert-(success|danger)[^"]*"([^>]*)>(.*?)</div>`)
)

// attributes that describe the input element itself rather than the unit.
var nonTagAttrs = map[string]bool{
	"input": true, "type": true, "class": true, "id": true, "name": true,
	"value": true, "checked": true, "disabled": true, "title": true,
	"tabindex": true,
}

// htmlPage renders a mission page from raw HTML. Commits are collected
// locally and flushed as one alarm form on Submit, which is how the dispatch
// form actually behaves.
type htmlPage struct {
	session   *Session
	missionID string

	body      string
	authToken string
	committed []string
}

func (p *htmlPage) reload(ctx context.Context) error {
	body, err := p.session.fetch(ctx, "/missions/"+p.missionID)
	if err != nil {
		return fmt.Errorf("load mission %s: %w", p.missionID, err)
	}
	p.body = body
	if m := authTokenRe.FindStringSubmatch(body); m != nil {
		p.authToken = m[1]
	}
	return nil
}

func (p *htmlPage) Body() string {
	return StripHTML(p.body)
}

func (p *htmlPage) MissionTypeID() string {
	if m := helpLinkRe.FindStringSubmatch(p.body); m != nil {
		return m[1]
	}
	return ""
}

func (p *htmlPage) EnRouteCount() int {
	return len(drivingRowRe.FindAllString(p.body, -1))
}

func (p *htmlPage) OnSceneCount() int {
	return len(atMissionRowRe.FindAllString(p.body, -1))
}

// LoadMoreUnits follows the pagination link of the unit list and appends the
// returned fragment. The link disappears once the list is exhausted.
func (p *htmlPage) LoadMoreUnits(ctx context.Context) (bool, error) {
	m := loadMoreRe.FindStringSubmatch(p.body)
	if m == nil {
		return false, nil
	}
	href := m[1]
	fragment, err := p.session.fetch(ctx, href)
	if err != nil {
		return false, fmt.Errorf("load more units: %w", err)
	}
	// Drop the consumed link so an unchanged fragment cannot loop forever.
	p.body = loadMoreRe.ReplaceAllLiteralString(p.body, "") + fragment
	return true, nil
}

func (p *htmlPage) ScanUnits() []model.SelectableUnit {
	committed := make(map[string]bool, len(p.committed))
	for _, id := range p.committed {
		committed[id] = true
	}
	var units []model.SelectableUnit
	for _, tag := range checkboxRe.FindAllString(p.body, -1) {
		u := parseCheckbox(tag)
		if u.ID == "" {
			continue
		}
		if committed[u.ID] {
			u.Selected = true
		}
		units = append(units, u)
	}
	return units
}

// parseCheckbox reads one vehicle checkbox element. Every custom attribute
// with a truthy value becomes a capability tag, the way the dispatch form
// annotates special units.
func parseCheckbox(tag string) model.SelectableUnit {
	u := model.SelectableUnit{
		Tags:  map[string]bool{},
		State: model.UnitAvailable,
	}
	var disabled bool
	for _, m := range attrRe.FindAllStringSubmatch(tag, -1) {
		key := strings.ToLower(m[1])
		val := m[2]
		switch {
		case key == "value":
			u.ID = val
		case key == "title":
			u.Name = val
		case key == "checked":
			u.Selected = true
		case key == "disabled":
			disabled = true
		case key == "vehicle_state":
			u.State = model.UnitStateFromFMS(val)
		case nonTagAttrs[key]:
		case val == "" || val == "0" || strings.EqualFold(val, "false"):
		default:
			u.Tags[key] = true
		}
	}
	if disabled {
		u.State = model.UnitOutOfService
	}
	return u
}

func (p *htmlPage) CommitUnit(ctx context.Context, unitID string) error {
	for _, id := range p.committed {
		if id == unitID {
			return fmt.Errorf("unit %s already committed", unitID)
		}
	}
	p.committed = append(p.committed, unitID)
	return nil
}

// Submit posts the alarm form with all committed units and reloads the page
// so the outcome indicator can be read.
func (p *htmlPage) Submit(ctx context.Context) error {
	form := url.Values{
		"authenticity_token": {p.authToken},
		"commit":             {"Alarmieren"},
	}
	for _, id := range p.committed {
		form.Add("vehicle_ids[]", id)
	}
	body, err := p.session.postForm(ctx, "/missions/"+p.missionID+"/alarm", form)
	if err != nil {
		return fmt.Errorf("submit mission %s: %w", p.missionID, err)
	}
	p.committed = nil
	if _, _, ok := findFlashAlert(body); ok {
		p.body = body
		return nil
	}
	return p.reload(ctx)
}

// findFlashAlert returns the first alert div that is an actual flash notice.
// The mission page carries a standing missing-vehicles banner styled as an
// alert too; it lists open requirements, not the result of a submission.
func findFlashAlert(body string) (kind, text string, ok bool) {
	for _, m := range alertRe.FindAllStringSubmatch(body, -1) {
		attrs := m[1] + m[3]
		if strings.Contains(attrs, "missing_text") || strings.Contains(attrs, "missing_vehicles") {
			continue
		}
		return m[2], strings.TrimSpace(StripHTML(m[4])), true
	}
	return "", "", false
}

func (p *htmlPage) ReadOutcome() OutcomeIndicator {
	class, text, ok := findFlashAlert(p.body)
	if !ok {
		return OutcomeIndicator{Kind: IndicatorNone}
	}
	kind := IndicatorSuccess
	if class == "danger" {
		kind = IndicatorFailure
	}
	return OutcomeIndicator{Kind: kind, Text: text}
}

func (p *htmlPage) SelectedUnitIDs(ctx context.Context) ([]string, error) {
	if err := p.reload(ctx); err != nil {
		return nil, err
	}
	var ids []string
	for _, u := range p.ScanUnits() {
		if u.Selected {
			ids = append(ids, u.ID)
		}
	}
	return ids, nil
}
