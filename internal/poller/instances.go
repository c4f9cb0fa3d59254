package poller

import (
	"github.com/zsiec/livedash/internal/config"
)

// Poller names.
const (
	NameTwitch  = "twitch"
	NameYouTube = "youtube"
	NameDetail  = "detail"
)

// Slot ids written by the built-in pollers.
const (
	SlotFollowers = "followers"
	SlotStatus    = "status"
	SlotViewers   = "viewers"
	SlotTitle     = "title"

	SlotYTSubs      = "yt_subs"
	SlotYTViews     = "yt_views"
	SlotYTLastTitle = "yt_last_title"
	SlotYTLastThumb = "yt_last_thumb"

	SlotLogin           = "login"
	SlotDisplayName     = "display_name"
	SlotDetailFollowers = "detail_followers"
	SlotStreamOnline    = "stream_online"
	SlotViewerCount     = "viewer_count"
	SlotDetailTitle     = "detail_title"
)

// Labels for the stream_online flag.
const (
	LiveLabel    = "En directo 🔴"
	OfflineLabel = "Offline ⚫"
	YesLabel     = "✓ Sí"
	NoLabel      = "✗ No"
)

// TwitchBindings feed the summary panel from /api/twitch.
func TwitchBindings() []Binding {
	return []Binding{
		Bind("followers", SlotFollowers),
		BindFlag("stream_online", SlotStatus, LiveLabel, OfflineLabel),
		Bind("viewer_count", SlotViewers),
		Bind("title", SlotTitle),
	}
}

// YouTubeBindings feed the YouTube panel from /api/youtube.
func YouTubeBindings() []Binding {
	return []Binding{
		Bind("subscribers", SlotYTSubs),
		Bind("views_total", SlotYTViews),
		Bind("latest_video_title", SlotYTLastTitle),
		Bind("latest_video_thumbnail", SlotYTLastThumb),
	}
}

// DetailBindings feed the account detail panel from /api/status.
func DetailBindings() []Binding {
	return []Binding{
		Bind("login", SlotLogin),
		Bind("display_name", SlotDisplayName),
		Bind("followers", SlotDetailFollowers),
		BindFlag("stream_online", SlotStreamOnline, YesLabel, NoLabel),
		Bind("viewer_count", SlotViewerCount),
		Bind("title", SlotDetailTitle),
	}
}

// Configs returns the enabled built-in pollers described by cfg.
func Configs(cfg config.WatchConfig) []Config {
	defs := []struct {
		name     string
		pc       config.PollerConfig
		bindings []Binding
	}{
		{NameTwitch, cfg.Twitch, TwitchBindings()},
		{NameYouTube, cfg.YouTube, YouTubeBindings()},
		{NameDetail, cfg.Detail, DetailBindings()},
	}

	out := make([]Config, 0, len(defs))
	for _, d := range defs {
		if !d.pc.Enabled {
			continue
		}
		out = append(out, Config{
			Name:     d.name,
			Endpoint: d.pc.Endpoint,
			Interval: d.pc.Interval,
			Bindings: d.bindings,
			Policy:   ErrorPolicy(d.pc.ErrorPolicy),
		})
	}
	return out
}
