// Package dashboard declares the panels, tabs and slots shared by the
// terminal and web dashboards.
package dashboard

import (
	"github.com/zsiec/livedash/internal/display"
	"github.com/zsiec/livedash/internal/poller"
	"github.com/zsiec/livedash/internal/tabs"
)

// Field is a labelled slot inside a panel.
type Field struct {
	Label string
	Slot  display.Slot
}

// Panel is one tab's content.
type Panel struct {
	Key    string
	Title  string
	Fields []Field
}

// Layout is an ordered set of panels.
type Layout struct {
	Panels []Panel
}

// DefaultLayout matches the slots written by the built-in pollers.
func DefaultLayout() Layout {
	return Layout{Panels: []Panel{
		{
			Key:   poller.NameTwitch,
			Title: "Twitch",
			Fields: []Field{
				{"Followers", display.Text(poller.SlotFollowers)},
				{"Status", display.Text(poller.SlotStatus)},
				{"Viewers", display.Text(poller.SlotViewers)},
				{"Title", display.Text(poller.SlotTitle)},
			},
		},
		{
			Key:   poller.NameYouTube,
			Title: "YouTube",
			Fields: []Field{
				{"Subscribers", display.Text(poller.SlotYTSubs)},
				{"Total views", display.Text(poller.SlotYTViews)},
				{"Latest video", display.Text(poller.SlotYTLastTitle)},
				{"Thumbnail", display.Image(poller.SlotYTLastThumb)},
			},
		},
		{
			Key:   poller.NameDetail,
			Title: "Account",
			Fields: []Field{
				{"Login", display.Text(poller.SlotLogin)},
				{"Display name", display.Text(poller.SlotDisplayName)},
				{"Followers", display.Text(poller.SlotDetailFollowers)},
				{"Live", display.Text(poller.SlotStreamOnline)},
				{"Viewers", display.Text(poller.SlotViewerCount)},
				{"Title", display.Text(poller.SlotDetailTitle)},
			},
		},
	}}
}

// Slots returns every declared slot in panel order.
func (l Layout) Slots() []display.Slot {
	var out []display.Slot
	for _, p := range l.Panels {
		for _, f := range p.Fields {
			out = append(out, f.Slot)
		}
	}
	return out
}

// NewBoard returns a board declaring every slot in the layout.
func (l Layout) NewBoard() *display.Board {
	return display.NewBoard(l.Slots()...)
}

// NewTabs returns a tab set with one tab per panel, the first one active.
func (l Layout) NewTabs() (*tabs.Set, error) {
	ts := make([]tabs.Tab, len(l.Panels))
	for i, p := range l.Panels {
		ts[i] = tabs.Tab{Key: p.Key, Label: p.Title}
	}
	return tabs.New(ts...)
}

// Panel returns the panel keyed by key.
func (l Layout) Panel(key string) (Panel, bool) {
	for _, p := range l.Panels {
		if p.Key == key {
			return p, true
		}
	}
	return Panel{}, false
}
