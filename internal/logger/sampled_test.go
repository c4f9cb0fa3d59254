package logger

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func newBufferedLogger() (*bytes.Buffer, Logger) {
	var buf bytes.Buffer
	base := logrus.New()
	base.SetOutput(&buf)
	base.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	return &buf, NewLogrusAdapter(logrus.NewEntry(base))
}

func TestSampledLoggerBurstAndWindow(t *testing.T) {
	buf, base := newBufferedLogger()

	clock := time.Unix(1000, 0)
	s := NewSampledLogger(base).WithSampler(CategoryPollFailure, time.Minute, 2)
	s.now = func() time.Time { return clock }

	for i := 0; i < 5; i++ {
		s.Logf(logrus.WarnLevel, CategoryPollFailure, nil, "cycle failed")
	}
	assert.Equal(t, 2, strings.Count(buf.String(), "cycle failed"))

	stats := s.Stats()[CategoryPollFailure]
	assert.Equal(t, int64(5), stats.Total)
	assert.Equal(t, int64(3), stats.Dropped)

	clock = clock.Add(time.Minute)
	s.Logf(logrus.WarnLevel, CategoryPollFailure, map[string]interface{}{"poller": "twitch"}, "cycle failed")

	out := buf.String()
	assert.Equal(t, 3, strings.Count(out, "cycle failed"))
	assert.Contains(t, out, "suppressed=3")
	assert.Contains(t, out, "poller=twitch")
	assert.Equal(t, int64(0), s.Stats()[CategoryPollFailure].Dropped)
}

func TestSampledLoggerUnconfiguredCategoryAlwaysLogs(t *testing.T) {
	buf, base := newBufferedLogger()
	s := NewSampledLogger(base)

	for i := 0; i < 10; i++ {
		s.Logf(logrus.InfoLevel, "other", nil, "line")
	}
	assert.Equal(t, 10, strings.Count(buf.String(), "line"))
}

func TestNewPollLogger(t *testing.T) {
	s := NewPollLogger(NewNullLogger())
	stats := s.Stats()
	assert.Contains(t, stats, CategoryPollFailure)
	assert.Contains(t, stats, CategoryUpstreamError)
	assert.Contains(t, stats, CategoryTokenRefresh)
}
