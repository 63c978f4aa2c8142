// ════════════════════════════════════════════════════════════════════════════════════════════════
// Static Scheduling Soak Harness - Main Entry Point
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: Static-Allocation Scheduling And Buffering Toolkit
// Component: Main Entry Point & Soak Orchestration
//
// Description:
//   Drives the timer wheels and task queue through a scenario-defined soak
//   run, streaming every firing through an SPSC ring to a core-pinned
//   consumer that persists the trace to sqlite.
//
// Architecture:
//   - Phase 0: Scenario load and fixed-structure sizing
//   - Phase 1: Timer arming and task enqueue (all allocation happens here)
//   - Phase 2: Memory cleanup, then the zero-alloc tick loop
//   - Phase 3: Drain, trace flush, and post-run verification
//
// ════════════════════════════════════════════════════════════════════════════════════════════════

package main

import (
	"os"
	"os/signal"
	"runtime"
	rtdebug "runtime/debug"
	"sync/atomic"
	"syscall"

	"github.com/ypradera/staticsched/constants"
	"github.com/ypradera/staticsched/control"
	"github.com/ypradera/staticsched/debug"
	"github.com/ypradera/staticsched/handleidx"
	"github.com/ypradera/staticsched/hierwheel"
	"github.com/ypradera/staticsched/ringbuffer"
	"github.com/ypradera/staticsched/scenario"
	"github.com/ypradera/staticsched/taskqueue"
	"github.com/ypradera/staticsched/timerwheel"
	"github.com/ypradera/staticsched/tracestore"
	"github.com/ypradera/staticsched/utils"
)

// Timers whose first fire or period reaches past the fast wheel's horizon go
// to the hierarchical wheel; everything short-range stays on the fast wheel.
const fastHorizon = timerwheel.WheelSize

// harness bundles the run's fixed structures so timer callbacks can reach the
// trace ring without globals.
type harness struct {
	scn   *scenario.Scenario
	fast  *timerwheel.Wheel
	slow  *hierwheel.Wheel
	tasks *taskqueue.Queue
	ring  *ringbuffer.SPSC[tracestore.Event]
	idx   *handleidx.Index // scenario timer id → index into scn.Timers
	tick  int64
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// MAIN ORCHESTRATION
// ═══════════════════════════════════════════════════════════════════════════════════════════════

func main() {
	// PHASE 0: Scenario load
	path := "scenario.json"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}
	debug.DropMessage("INIT", "Loading scenario "+path)

	scn, err := scenario.Load(path)
	if err != nil {
		debug.DropError("SCENARIO", err)
		os.Exit(1)
	}
	debug.DropMessage("LOADED", utils.Itoa(len(scn.Timers))+" timers, "+
		utils.Itoa(len(scn.Tasks))+" tasks, "+utils.Itoa(int(scn.Ticks))+" ticks")

	store, err := tracestore.Open(scn.TracePath)
	if err != nil {
		debug.DropError("TRACE", err)
		os.Exit(1)
	}

	// PHASE 1: Arm everything. This is the last point where allocation is
	// allowed; the tick loop below runs entirely on preallocated arenas.
	h := &harness{
		scn:   scn,
		fast:  timerwheel.New(),
		slow:  hierwheel.New(),
		tasks: taskqueue.New(constants.MaxScenarioTasks),
		ring:  ringbuffer.NewSPSC[tracestore.Event](1 << constants.TraceRingBits),
		idx:   handleidx.New(constants.MaxScenarioTimers),
	}
	h.armTimers()
	h.enqueueTasks()

	// Trace consumer on its own pinned core. It drains the ring even after
	// stop is raised, so nothing published before Shutdown is lost.
	stopFlag, hotFlag := control.Flags()
	done := make(chan struct{})
	ringbuffer.PinnedConsumer(constants.TraceConsumerCore, h.ring, stopFlag, hotFlag,
		func(ev tracestore.Event) {
			if err := store.Record(ev); err != nil {
				debug.DropError("RECORD", err)
			}
		}, done)

	setupSignalHandling()

	// PHASE 2: Memory cleanup, then run with GC off for a flat tick cadence.
	runtime.GC()
	rtdebug.FreeOSMemory()
	rtdebug.SetGCPercent(-1)
	runtime.LockOSThread()
	debug.DropMessage("READY", "Entering tick loop")

	fired := h.run(stopFlag)

	// PHASE 3: Drain and verify.
	rtdebug.SetGCPercent(100)
	control.Shutdown()
	<-done

	if err := store.Close(); err != nil {
		debug.DropError("TRACE", err)
	}
	debug.DropMessage("DONE", utils.Itoa(fired)+" firings, "+
		utils.Utoa(h.ring.Drops())+" ring drops")

	counts, err := tracestore.CountByKind(scn.TracePath)
	if err != nil {
		debug.DropError("VERIFY", err)
		os.Exit(1)
	}
	for kind, n := range counts {
		debug.DropMessage("TRACE", kind+": "+utils.Itoa(int(n)))
	}
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// SCENARIO BRING-UP
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// armTimers registers every scenario timer on the wheel matching its range
// and records the id → slice-index mapping for callback-time lookup.
func (h *harness) armTimers() {
	for i := range h.scn.Timers {
		tm := &h.scn.Timers[i]
		h.idx.Put(tm.ID, uint32(i))

		delay, period := uint64(tm.Delay), uint64(tm.Period)
		if delay < fastHorizon && period < fastHorizon {
			if _, ok := h.fast.Add(delay, period, h.onFastFire, tm.ID); !ok {
				debug.DropMessage("ARM", "fast wheel full, dropping timer "+utils.Utoa(uint64(tm.ID)))
			}
			continue
		}
		if _, ok := h.slow.Add(delay, period, h.onSlowFire, tm.ID); !ok {
			debug.DropMessage("ARM", "hierarchical wheel full, dropping timer "+utils.Utoa(uint64(tm.ID)))
		}
	}
}

// enqueueTasks loads the priority task queue. Tasks drain one per tick at the
// head of the loop, so high-priority work fronts the run.
func (h *harness) enqueueTasks() {
	for i := range h.scn.Tasks {
		tk := &h.scn.Tasks[i]
		if _, ok := h.tasks.Add(tk.Priority, h.onTaskRun, uint32(i)); !ok {
			debug.DropMessage("ENQUEUE", "task queue full, dropping "+tk.Label)
		}
	}
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// TICK LOOP
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// run advances both wheels in lockstep for the scenario's tick count,
// draining one task per tick. Returns the total firing count.
func (h *harness) run(stop *uint32) int {
	fired := 0
	for h.tick = 1; h.tick <= h.scn.Ticks; h.tick++ {
		if atomic.LoadUint32(stop) != 0 {
			debug.DropMessage("ABORT", "stop observed at tick "+utils.Itoa(int(h.tick)))
			break
		}
		if h.tasks.RunOne() {
			fired++
		}
		fired += h.fast.Tick()
		fired += h.slow.Tick()
		control.PollCooldown()
	}
	return fired
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// FIRING CALLBACKS
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// publish hands one event to the trace ring. Ring drops are counted by the
// ring itself and reported at shutdown.
func (h *harness) publish(kind string, id uint32, label string) {
	h.ring.Push(tracestore.Event{Tick: h.tick, Kind: kind, RefID: id, Label: label})
	control.SignalActivity()
}

func (h *harness) timerMeta(id uint32) *scenario.Timer {
	i, ok := h.idx.Get(id)
	if !ok {
		return nil
	}
	return &h.scn.Timers[i]
}

func (h *harness) onFastFire(_ timerwheel.Handle, arg any) {
	id := arg.(uint32)
	if tm := h.timerMeta(id); tm != nil {
		kind := tracestore.KindTimer
		if tm.Period > 0 {
			kind = tracestore.KindPeriodic
		}
		h.publish(kind, id, tm.Label)
	}
}

func (h *harness) onSlowFire(_ hierwheel.Handle, arg any) {
	id := arg.(uint32)
	if tm := h.timerMeta(id); tm != nil {
		kind := tracestore.KindTimer
		if tm.Period > 0 {
			kind = tracestore.KindPeriodic
		}
		h.publish(kind, id, tm.Label)
	}
}

func (h *harness) onTaskRun(_ taskqueue.TaskID, arg any) {
	i := arg.(uint32)
	tk := &h.scn.Tasks[i]
	h.publish(tracestore.KindTask, uint32(tk.Priority), tk.Label)
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// SYSTEM LIFECYCLE MANAGEMENT
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// setupSignalHandling wires SIGINT/SIGTERM to the global stop flag. The tick
// loop observes the flag at the next tick boundary and winds down normally.
func setupSignalHandling() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		debug.DropMessage("SIGNAL", "Received interrupt, shutting down...")
		control.Shutdown()
	}()
}
