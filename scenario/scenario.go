// ════════════════════════════════════════════════════════════════════════════════════════════════
// ⚡ SCENARIO LOADER — SOAK WORKLOAD DESCRIPTIONS
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Component: JSON Scenario Parser And Validator
//
// Description:
//   Loads soak scenarios from disk: how many ticks to drive, which timers to
//   arm (one-shot and periodic), and which priority tasks to enqueue. All
//   validation happens here so the harness can size its fixed structures once
//   and never check again on the hot path.
//
// ════════════════════════════════════════════════════════════════════════════════════════════════

package scenario

import (
	"errors"
	"fmt"
	"os"

	"github.com/sugawarayuuta/sonnet"

	"github.com/ypradera/staticsched/constants"
)

// Validation failure sentinels.
var (
	ErrNoTicks      = errors.New("scenario: ticks must be positive")
	ErrTooManyTimer = errors.New("scenario: timer count exceeds capacity")
	ErrTooManyTasks = errors.New("scenario: task count exceeds capacity")
	ErrDuplicateID  = errors.New("scenario: duplicate timer id")
	ErrBadTimer     = errors.New("scenario: invalid timer entry")
)

// Timer describes one timer to arm at harness start.
type Timer struct {
	ID     uint32 `json:"id"`     // caller-chosen id, must be ≥ 1 and unique
	Delay  int64  `json:"delay"`  // ticks until first fire
	Period int64  `json:"period"` // 0 = one-shot, >0 = repeating interval
	Label  string `json:"label"`
}

// Task describes one priority task to enqueue at harness start.
type Task struct {
	Priority int64  `json:"priority"`
	Label    string `json:"label"`
}

// Scenario is a full soak workload description.
type Scenario struct {
	Ticks     int64   `json:"ticks"`
	Timers    []Timer `json:"timers"`
	Tasks     []Task  `json:"tasks"`
	TracePath string  `json:"trace_path"` // empty = constants.DefaultTracePath
}

// Load reads and validates a scenario file.
func Load(path string) (*Scenario, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scenario: read %s: %w", path, err)
	}
	return Parse(raw)
}

// Parse decodes and validates scenario JSON.
func Parse(raw []byte) (*Scenario, error) {
	var s Scenario
	if err := sonnet.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("scenario: decode: %w", err)
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	if s.TracePath == "" {
		s.TracePath = constants.DefaultTracePath
	}
	return &s, nil
}

func (s *Scenario) validate() error {
	if s.Ticks <= 0 {
		return ErrNoTicks
	}
	if len(s.Timers) > constants.MaxScenarioTimers {
		return fmt.Errorf("%w: %d > %d", ErrTooManyTimer, len(s.Timers), constants.MaxScenarioTimers)
	}
	if len(s.Tasks) > constants.MaxScenarioTasks {
		return fmt.Errorf("%w: %d > %d", ErrTooManyTasks, len(s.Tasks), constants.MaxScenarioTasks)
	}

	seen := make(map[uint32]struct{}, len(s.Timers))
	for i, tm := range s.Timers {
		if tm.ID == 0 {
			return fmt.Errorf("%w: timer %d has id 0 (reserved)", ErrBadTimer, i)
		}
		if tm.Delay < 0 || tm.Period < 0 {
			return fmt.Errorf("%w: timer %d has negative delay or period", ErrBadTimer, i)
		}
		if _, dup := seen[tm.ID]; dup {
			return fmt.Errorf("%w: id %d", ErrDuplicateID, tm.ID)
		}
		seen[tm.ID] = struct{}{}
	}
	return nil
}
