package scenario

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ypradera/staticsched/constants"
)

func TestParseFull(t *testing.T) {
	raw := []byte(`{
		"ticks": 1000,
		"timers": [
			{"id": 1, "delay": 5, "period": 0, "label": "oneshot"},
			{"id": 2, "delay": 10, "period": 50, "label": "heartbeat"}
		],
		"tasks": [
			{"priority": 3, "label": "low"},
			{"priority": 1, "label": "high"}
		],
		"trace_path": "/tmp/trace.db"
	}`)

	s, err := Parse(raw)
	require.NoError(t, err)

	assert.Equal(t, int64(1000), s.Ticks)
	require.Len(t, s.Timers, 2)
	assert.Equal(t, uint32(2), s.Timers[1].ID)
	assert.Equal(t, int64(50), s.Timers[1].Period)
	require.Len(t, s.Tasks, 2)
	assert.Equal(t, int64(1), s.Tasks[1].Priority)
	assert.Equal(t, "/tmp/trace.db", s.TracePath)
}

func TestParseDefaultTracePath(t *testing.T) {
	s, err := Parse([]byte(`{"ticks": 10}`))
	require.NoError(t, err)
	assert.Equal(t, constants.DefaultTracePath, s.TracePath)
}

func TestParseRejections(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want error
	}{
		{"zero ticks", `{"ticks": 0}`, ErrNoTicks},
		{"negative ticks", `{"ticks": -5}`, ErrNoTicks},
		{"reserved id", `{"ticks": 10, "timers": [{"id": 0, "delay": 1}]}`, ErrBadTimer},
		{"negative delay", `{"ticks": 10, "timers": [{"id": 1, "delay": -1}]}`, ErrBadTimer},
		{"negative period", `{"ticks": 10, "timers": [{"id": 1, "delay": 1, "period": -2}]}`, ErrBadTimer},
		{"duplicate id", `{"ticks": 10, "timers": [{"id": 7, "delay": 1}, {"id": 7, "delay": 2}]}`, ErrDuplicateID},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.raw))
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.want), "got %v; want %v", err, tc.want)
		})
	}
}

func TestParseMalformedJSON(t *testing.T) {
	_, err := Parse([]byte(`{"ticks": `))
	require.Error(t, err)
}

func TestLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "soak.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"ticks": 42, "timers": [{"id": 1, "delay": 3}]}`), 0o644))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, int64(42), s.Ticks)
	require.Len(t, s.Timers, 1)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
}
