package health

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockChecker struct {
	name  string
	err   error
	delay time.Duration
}

func (m *mockChecker) Name() string {
	return m.name
}

func (m *mockChecker) Check(ctx context.Context) error {
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return m.err
}

func TestManager(t *testing.T) {
	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)

	t.Run("Register and RunChecks", func(t *testing.T) {
		manager := NewManager(logger)

		manager.Register(&mockChecker{name: "redis", err: nil})
		manager.Register(&mockChecker{name: "twitch_tokens", err: errors.New("token store unreachable")})
		manager.Register(&mockChecker{name: "poll_twitch", err: fmt.Errorf("%w: stale", ErrDegraded)})

		results := manager.RunChecks(context.Background())
		require.Len(t, results, 3)

		assert.Equal(t, StatusOK, results["redis"].Status)
		assert.Empty(t, results["redis"].Message)

		assert.Equal(t, StatusDown, results["twitch_tokens"].Status)
		assert.Contains(t, results["twitch_tokens"].Message, "unreachable")

		assert.Equal(t, StatusDegraded, results["poll_twitch"].Status)
		assert.Contains(t, results["poll_twitch"].Message, "stale")
	})

	t.Run("GetResults returns copies", func(t *testing.T) {
		manager := NewManager(logger)
		manager.Register(&mockChecker{name: "test"})
		manager.RunChecks(context.Background())

		results := manager.GetResults()
		require.Contains(t, results, "test")
		results["test"].Status = StatusDown

		assert.Equal(t, StatusOK, manager.GetResults()["test"].Status)
	})

	t.Run("Timeout", func(t *testing.T) {
		manager := NewManager(logger)
		manager.Register(&mockChecker{name: "slow", delay: time.Minute})

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		results := manager.RunChecks(ctx)
		assert.Equal(t, StatusDown, results["slow"].Status)
		assert.Equal(t, "Health check timed out", results["slow"].Message)
	})
}

func TestGetOverallStatus(t *testing.T) {
	logger := logrus.New()

	tests := []struct {
		name     string
		checkers []Checker
		expected Status
	}{
		{"no checks", nil, StatusDown},
		{"all ok", []Checker{&mockChecker{name: "a"}, &mockChecker{name: "b"}}, StatusOK},
		{"one degraded", []Checker{&mockChecker{name: "a"}, &mockChecker{name: "b", err: ErrDegraded}}, StatusDegraded},
		{"down wins", []Checker{&mockChecker{name: "a", err: ErrDegraded}, &mockChecker{name: "b", err: assert.AnError}}, StatusDown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			manager := NewManager(logger)
			for _, c := range tt.checkers {
				manager.Register(c)
			}
			manager.RunChecks(context.Background())
			assert.Equal(t, tt.expected, manager.GetOverallStatus())
		})
	}
}

func TestStartPeriodicChecks(t *testing.T) {
	manager := NewManager(logrus.New())
	manager.Register(&mockChecker{name: "a"})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		manager.StartPeriodicChecks(ctx, 10*time.Millisecond)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		return len(manager.GetResults()) == 1
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("periodic checks did not stop")
	}
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, StatusOK, StatusOf(nil))
	assert.Equal(t, StatusDegraded, StatusOf(fmt.Errorf("%w: stale", ErrDegraded)))
	assert.Equal(t, StatusDown, StatusOf(errors.New("connection refused")))
}
