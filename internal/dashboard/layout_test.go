package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zsiec/livedash/internal/poller"
)

func TestDefaultLayoutDeclaresEveryBoundSlot(t *testing.T) {
	board := DefaultLayout().NewBoard()

	for _, bindings := range [][]poller.Binding{
		poller.TwitchBindings(),
		poller.YouTubeBindings(),
		poller.DetailBindings(),
	} {
		for _, b := range bindings {
			assert.True(t, board.Has(b.Slot), "slot %q not declared", b.Slot)
		}
	}
}

func TestDefaultLayoutSlotIDsAreUnique(t *testing.T) {
	l := DefaultLayout()
	seen := map[string]bool{}
	for _, s := range l.Slots() {
		assert.False(t, seen[s.ID], "duplicate slot %q", s.ID)
		seen[s.ID] = true
	}
	assert.Len(t, l.NewBoard().Slots(), len(l.Slots()))
}

func TestNewTabs(t *testing.T) {
	ts, err := DefaultLayout().NewTabs()
	require.NoError(t, err)

	assert.Equal(t, poller.NameTwitch, ts.Active())
	require.NoError(t, ts.Select(poller.NameDetail))
	assert.True(t, ts.Visible(poller.NameDetail))
	assert.Equal(t, "Account", ts.Controls()[2].Label)

	p, ok := DefaultLayout().Panel(poller.NameYouTube)
	require.True(t, ok)
	assert.Equal(t, "YouTube", p.Title)
	_, ok = DefaultLayout().Panel("settings")
	assert.False(t, ok)
}

func TestPollersFillDefaultBoard(t *testing.T) {
	board := DefaultLayout().NewBoard()
	f := poller.FetcherFunc(func(ctx context.Context, endpoint string) (poller.Snapshot, error) {
		return poller.DecodeSnapshot([]byte(`{"followers": 120, "stream_online": true, "viewer_count": 15, "title": "Hello", "login": "streamer", "display_name": "Streamer"}`))
	})

	for _, cfg := range []poller.Config{
		{Name: poller.NameTwitch, Endpoint: "/api/twitch", Interval: time.Second, Bindings: poller.TwitchBindings(), Policy: poller.PolicyPropagate},
		{Name: poller.NameDetail, Endpoint: "/api/status", Interval: time.Second, Bindings: poller.DetailBindings(), Policy: poller.PolicyPropagate},
	} {
		p, err := poller.New(cfg, f, board, nil)
		require.NoError(t, err)
		require.NoError(t, p.Cycle(context.Background()))
	}

	assert.Equal(t, "120", board.Content(poller.SlotFollowers))
	assert.Equal(t, "120", board.Content(poller.SlotDetailFollowers))
	assert.Equal(t, "Hello", board.Content(poller.SlotTitle))
	assert.Equal(t, "Hello", board.Content(poller.SlotDetailTitle))
	assert.Equal(t, "✓ Sí", board.Content(poller.SlotStreamOnline))
	assert.Equal(t, "En directo 🔴", board.Content(poller.SlotStatus))
}
