package game

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/RoMaSystems-source/Leitstellenspiel-bot/core/logger"
	"github.com/RoMaSystems-source/Leitstellenspiel-bot/core/model"
)

// Config defines the connection parameters for the game session.
type Config struct {
	BaseURL          string `json:"base_url"`
	Email            string `json:"email"`
	Password         string `json:"password"`
	AllianceMissions bool   `json:"alliance_missions"`
	TimeoutSeconds   int    `json:"timeout_seconds"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = "https://www.leitstellenspiel.de"
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 15
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if c.Email == "" || c.Password == "" {
		return fmt.Errorf("game credentials are required")
	}
	if _, err := url.Parse(c.BaseURL); err != nil {
		return fmt.Errorf("invalid base_url: %w", err)
	}
	return nil
}

var (
	missionListRe   = regexp.MustCompile(`(?s)const mList = (\[.*?\]);`)
	trailingCommaRe = regexp.MustCompile(`,(\s*[}\]])`)
	authTokenRe     = regexp.MustCompile(`name="authenticity_token"[^>]*value="([^"]+)"`)
	tagRe           = regexp.MustCompile(`(?s)<[^>]*>`)
	scriptRe        = regexp.MustCompile(`(?s)<(script|style)[^>]*>.*?</(script|style)>`)
)

// Session is the authenticated HTTP client for the game website. It owns the
// cookie jar and re-authenticates once when a fetch is answered with a
// sign-in redirect.
type Session struct {
	cfg    Config
	client *http.Client
	log    logger.Logger
}

// NewSession creates an unauthenticated session. Login establishes cookies.
func NewSession(cfg Config, log logger.Logger) (*Session, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("cookie jar: %w", err)
	}
	return &Session{
		cfg: cfg,
		client: &http.Client{
			Jar:     jar,
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
		log: log,
	}, nil
}

// Login performs the sign-in form flow.
func (s *Session) Login(ctx context.Context) error {
	page, _, err := s.get(ctx, "/users/sign_in")
	if err != nil {
		return fmt.Errorf("open sign-in page: %w", err)
	}
	if strings.Contains(page, "Du bist bereits angemeldet") {
		s.log.Infof("already signed in")
		return nil
	}
	m := authTokenRe.FindStringSubmatch(page)
	if m == nil {
		return fmt.Errorf("sign-in page: authenticity token not found")
	}
	form := url.Values{
		"authenticity_token": {m[1]},
		"user[email]":        {s.cfg.Email},
		"user[password]":     {s.cfg.Password},
		"user[remember_me]":  {"1"},
		"commit":             {"Einloggen"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.BaseURL+"/users/sign_in", strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("sign-in request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if strings.Contains(resp.Request.URL.Path, "sign_in") {
		return fmt.Errorf("sign-in rejected, still on login page")
	}
	s.log.Infof("signed in as %s", s.cfg.Email)
	return nil
}

// get fetches a path and reports whether the response landed on the sign-in
// page, which means the session expired.
func (s *Session) get(ctx context.Context, path string) (string, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.BaseURL+path, nil)
	if err != nil {
		return "", false, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return "", false, err
	}
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", false, err
	}
	expired := strings.Contains(resp.Request.URL.Path, "sign_in") && path != "/users/sign_in"
	if resp.StatusCode != http.StatusOK {
		return string(body), expired, fmt.Errorf("GET %s: status %d", path, resp.StatusCode)
	}
	return string(body), expired, nil
}

// fetch wraps get with a single synchronous re-login on session loss.
func (s *Session) fetch(ctx context.Context, path string) (string, error) {
	body, expired, err := s.get(ctx, path)
	if !expired {
		return body, err
	}
	s.log.Warnf("session expired fetching %s, re-authenticating", path)
	if err := s.Login(ctx); err != nil {
		return "", fmt.Errorf("re-login: %w", err)
	}
	body, _, err = s.get(ctx, path)
	return body, err
}

func (s *Session) postForm(ctx context.Context, path string, form url.Values) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.BaseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return string(body), fmt.Errorf("POST %s: status %d", path, resp.StatusCode)
	}
	return string(body), nil
}

// feedMission mirrors one entry of the mission marker feed.
type feedMission struct {
	ID                     json.Number     `json:"id"`
	Caption                string          `json:"caption"`
	Address                string          `json:"address"`
	MissionTypeID          json.Number     `json:"mtid"`
	PatientsCount          int             `json:"patients_count"`
	PossiblePatientsCount  int             `json:"possible_patients_count"`
	PrisonersCount         int             `json:"prisoners_count"`
	PossiblePrisonersCount int             `json:"possible_prisoners_count"`
	MissingText            json.RawMessage `json:"missing_text"`
	Icon                   string          `json:"icon"`
	CreatedAt              json.Number     `json:"created_at"`
}

// ListOpenMissions fetches the own-mission markers, plus alliance markers
// when enabled.
func (s *Session) ListOpenMissions(ctx context.Context) ([]model.MissionRecord, error) {
	missions, err := s.missionMarkers(ctx, "/map/mission_markers_own.js.erb", false)
	if err != nil {
		return nil, err
	}
	if s.cfg.AllianceMissions {
		alliance, err := s.missionMarkers(ctx, "/map/mission_markers_alliance.js.erb", true)
		if err != nil {
			s.log.Warnf("alliance missions unavailable: %v", err)
		} else {
			missions = append(missions, alliance...)
		}
	}
	return missions, nil
}

func (s *Session) missionMarkers(ctx context.Context, path string, alliance bool) ([]model.MissionRecord, error) {
	body, err := s.fetch(ctx, path)
	if err != nil {
		return nil, err
	}
	m := missionListRe.FindStringSubmatch(body)
	if m == nil {
		// No marker list rendered means no open missions.
		return nil, nil
	}
	raw := trailingCommaRe.ReplaceAllString(m[1], "$1")
	var feed []feedMission
	if err := json.Unmarshal([]byte(raw), &feed); err != nil {
		return nil, fmt.Errorf("decode mission list: %w", err)
	}
	out := make([]model.MissionRecord, 0, len(feed))
	for _, f := range feed {
		rec := model.MissionRecord{
			ID:                     f.ID.String(),
			Title:                  f.Caption,
			Address:                f.Address,
			MissionTypeID:          f.MissionTypeID.String(),
			PatientsCount:          f.PatientsCount,
			PossiblePatientsCount:  f.PossiblePatientsCount,
			PrisonersCount:         f.PrisonersCount,
			PossiblePrisonersCount: f.PossiblePrisonersCount,
			Icon:                   f.Icon,
			Alliance:               alliance,
		}
		if len(f.MissingText) > 0 {
			var asString string
			if err := json.Unmarshal(f.MissingText, &asString); err == nil {
				rec.MissingText = model.DecodeMissingText(asString)
			} else {
				rec.MissingText = model.DecodeMissingText(string(f.MissingText))
			}
		}
		if secs, err := f.CreatedAt.Int64(); err == nil && secs > 0 {
			rec.CreatedAt = time.Unix(secs, 0)
		}
		out = append(out, rec)
	}
	return out, nil
}

// FetchCatalog downloads the bulk einsaetze feed.
func (s *Session) FetchCatalog(ctx context.Context) ([]model.CatalogEntry, error) {
	body, err := s.fetch(ctx, "/einsaetze.json")
	if err != nil {
		return nil, err
	}
	var feed []struct {
		ID             json.Number        `json:"id"`
		Name           string             `json:"name"`
		Requirements   map[string]int     `json:"requirements"`
		Chances        map[string]float64 `json:"chances"`
		AverageCredits float64            `json:"average_credits"`
	}
	if err := json.Unmarshal([]byte(body), &feed); err != nil {
		return nil, fmt.Errorf("decode catalog feed: %w", err)
	}
	out := make([]model.CatalogEntry, 0, len(feed))
	for _, f := range feed {
		out = append(out, model.CatalogEntry{
			ID:             f.ID.String(),
			Name:           f.Name,
			Requirements:   f.Requirements,
			Chances:        f.Chances,
			AverageCredits: f.AverageCredits,
		})
	}
	return out, nil
}

// FetchHelpText returns the visible text of a mission-type help page.
func (s *Session) FetchHelpText(ctx context.Context, missionTypeID string) (string, error) {
	body, err := s.fetch(ctx, "/einsaetze/"+missionTypeID)
	if err != nil {
		return "", err
	}
	return StripHTML(body), nil
}

// SetUnitStatus posts an FMS status change for one unit.
func (s *Session) SetUnitStatus(ctx context.Context, unitID string, status int) error {
	_, err := s.postForm(ctx, fmt.Sprintf("/vehicles/%s/set_fms/%d", unitID, status), url.Values{})
	if err != nil {
		return fmt.Errorf("set unit %s to status %d: %w", unitID, status, err)
	}
	return nil
}

// Credits reports the current credits balance.
func (s *Session) Credits(ctx context.Context) (int, error) {
	body, err := s.fetch(ctx, "/api/credits")
	if err != nil {
		return 0, err
	}
	var payload struct {
		UserCredits int `json:"user_credits"`
	}
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		return 0, fmt.Errorf("decode credits: %w", err)
	}
	return payload.UserCredits, nil
}

// OpenMission loads the mission page and wraps it as a Page.
func (s *Session) OpenMission(ctx context.Context, missionID string) (Page, error) {
	p := &htmlPage{session: s, missionID: missionID}
	if err := p.reload(ctx); err != nil {
		return nil, err
	}
	return p, nil
}

// StripHTML reduces a page to its visible text, one line per block element.
func StripHTML(body string) string {
	body = scriptRe.ReplaceAllString(body, "\n")
	body = tagRe.ReplaceAllString(body, "\n")
	return html.UnescapeString(body)
}
