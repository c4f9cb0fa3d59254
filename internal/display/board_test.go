package display

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoardWriteAndGet(t *testing.T) {
	b := NewBoard(Text("followers"), Image("yt_last_thumb"))

	require.NoError(t, b.Write("followers", "120"))
	require.NoError(t, b.Write("yt_last_thumb", "https://i.ytimg.com/vi/x/hq.jpg"))

	v, ok := b.Get("followers")
	require.True(t, ok)
	assert.Equal(t, "120", v.Content)
	assert.True(t, v.Set)
	assert.Equal(t, KindText, v.Slot.Kind)

	img, _ := b.Get("yt_last_thumb")
	assert.Equal(t, KindImage, img.Slot.Kind)
	assert.Equal(t, "https://i.ytimg.com/vi/x/hq.jpg", b.Content("yt_last_thumb"))
}

func TestBoardUnknownSlot(t *testing.T) {
	b := NewBoard(Text("followers"))

	err := b.Write("viewers", "15")
	require.ErrorIs(t, err, ErrUnknownSlot)
	assert.Contains(t, err.Error(), `"viewers"`)
	assert.False(t, b.Has("viewers"))

	_, ok := b.Get("viewers")
	assert.False(t, ok)
	assert.Equal(t, "", b.Content("viewers"))
}

func TestBoardUnsetSlot(t *testing.T) {
	b := NewBoard(Text("title"))

	v, ok := b.Get("title")
	require.True(t, ok)
	assert.False(t, v.Set)
	assert.True(t, v.UpdatedAt.IsZero())
	assert.True(t, b.LastUpdate().IsZero())
}

func TestBoardSlotsKeepDeclarationOrder(t *testing.T) {
	b := NewBoard(Text("title"), Text("followers"), Text("title"), Image("thumb"))

	slots := b.Slots()
	require.Len(t, slots, 3)
	assert.Equal(t, "title", slots[0].ID)
	assert.Equal(t, "followers", slots[1].ID)
	assert.Equal(t, "thumb", slots[2].ID)
	assert.Equal(t, []string{"followers", "thumb", "title"}, b.SlotIDs())
}

func TestBoardLastUpdate(t *testing.T) {
	b := NewBoard(Text("a"), Text("b"))
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	tick := base
	b.now = func() time.Time { return tick }

	require.NoError(t, b.Write("a", "1"))
	tick = base.Add(time.Minute)
	require.NoError(t, b.Write("b", "2"))

	assert.Equal(t, base.Add(time.Minute), b.LastUpdate())
	snap := b.Snapshot()
	assert.Equal(t, base, snap["a"].UpdatedAt)
}

func TestBoardSubscribe(t *testing.T) {
	b := NewBoard(Text("viewers"))
	ch, cancel := b.Subscribe(4)

	require.NoError(t, b.Write("viewers", "15"))

	select {
	case c := <-ch:
		assert.Equal(t, "viewers", c.Slot.ID)
		assert.Equal(t, "15", c.Content)
	case <-time.After(time.Second):
		t.Fatal("no change delivered")
	}

	cancel()
	cancel()
	_, open := <-ch
	assert.False(t, open)

	require.NoError(t, b.Write("viewers", "16"))
}

func TestBoardSlowSubscriberDoesNotBlock(t *testing.T) {
	b := NewBoard(Text("viewers"))
	_, cancel := b.Subscribe(0)
	defer cancel()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			_ = b.Write("viewers", "x")
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("write blocked on subscriber")
	}
}

func TestBoardConcurrentWrites(t *testing.T) {
	b := NewBoard(Text("followers"))
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = b.Write("followers", "120")
			_ = b.Snapshot()
		}()
	}
	wg.Wait()
	assert.Equal(t, "120", b.Content("followers"))
}

func TestSinkFunc(t *testing.T) {
	var got []string
	var s Sink = SinkFunc(func(slot, value string) error {
		got = append(got, slot+"="+value)
		return nil
	})
	require.NoError(t, s.Write("title", "Hello"))
	assert.Equal(t, []string{"title=Hello"}, got)
	assert.Equal(t, "image", KindImage.String())
}
