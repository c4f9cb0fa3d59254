package server

import (
	"bytes"
	"context"
	_ "embed"
	"html/template"
	"net/http"
	"sync"

	"github.com/zsiec/livedash/internal/display"
	"github.com/zsiec/livedash/internal/poller"
	"github.com/zsiec/livedash/pkg/version"
)

//go:embed templates/dashboard.html
var dashboardHTML string

var dashboardTemplate = template.Must(template.New("dashboard").Parse(dashboardHTML))

type pageField struct {
	Label string
	ID    string
	Value string
	Image bool
}

type pagePanel struct {
	Key     string
	Title   string
	Visible bool
	Fields  []pageField
}

type pageControl struct {
	Key    string
	Label  string
	Active bool
}

type pageData struct {
	RefreshSeconds int
	Controls       []pageControl
	Panels         []pagePanel
	Problems       []string
	Version        string
}

// handleDashboard renders the current status into the dashboard slots.
// ?tab= selects the visible panel; unknown keys keep the first one.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ts, err := s.layout.NewTabs()
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	if key := r.URL.Query().Get("tab"); key != "" {
		if err := ts.Select(key); err != nil {
			s.logger.WithField("tab", key).Debug("Ignoring unknown dashboard tab")
		}
	}

	board := s.layout.NewBoard()
	problems := s.fillBoard(r.Context(), board)

	data := pageData{
		RefreshSeconds: int(s.pageRefresh.Seconds()),
		Problems:       problems,
		Version:        version.GetInfo().Short(),
	}
	for _, c := range ts.Controls() {
		data.Controls = append(data.Controls, pageControl{Key: c.Key, Label: c.Label, Active: c.Active})
	}
	for _, p := range s.layout.Panels {
		panel := pagePanel{Key: p.Key, Title: p.Title, Visible: ts.Visible(p.Key)}
		for _, f := range p.Fields {
			v, _ := board.Get(f.Slot.ID)
			value := v.Content
			if !v.Set && f.Slot.Kind == display.KindText {
				value = "-"
			}
			panel.Fields = append(panel.Fields, pageField{
				Label: f.Label,
				ID:    f.Slot.ID,
				Value: value,
				Image: f.Slot.Kind == display.KindImage,
			})
		}
		data.Panels = append(data.Panels, panel)
	}

	var buf bytes.Buffer
	if err := dashboardTemplate.Execute(&buf, data); err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(buf.Bytes())
}

// fillBoard projects both status payloads through the pollers' bindings and
// returns a message per failed source.
func (s *Server) fillBoard(ctx context.Context, board *display.Board) []string {
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		problems []string
	)
	fail := func(source string, err error) {
		s.logger.WithError(err).WithField("source", source).Warn("Dashboard source failed")
		mu.Lock()
		problems = append(problems, source+": "+toAppErrorMessage(err))
		mu.Unlock()
	}

	wg.Add(2)
	go func() {
		defer wg.Done()
		st, err := s.statuses.Twitch(ctx)
		if err != nil {
			fail("Twitch", err)
			return
		}
		snap, err := poller.SnapshotOf(st)
		if err == nil {
			err = poller.Project(snap, poller.TwitchBindings(), board)
		}
		if err == nil {
			err = poller.Project(snap, poller.DetailBindings(), board)
		}
		if err != nil {
			fail("Twitch", err)
		}
	}()
	go func() {
		defer wg.Done()
		st, err := s.statuses.YouTube(ctx)
		if err != nil {
			fail("YouTube", err)
			return
		}
		snap, err := poller.SnapshotOf(st)
		if err == nil {
			err = poller.Project(snap, poller.YouTubeBindings(), board)
		}
		if err != nil {
			fail("YouTube", err)
		}
	}()
	wg.Wait()
	return problems
}
