package game

import (
	"context"
	"log/slog"
	"time"

	"terra2d/internal/profiling"
)

const DefaultUPS = 60

// Loop runs Update at a fixed rate using a time accumulator. Frame, when
// set, runs once per iteration with the fraction of a tick left over.
type Loop struct {
	UPS        int
	MaxCatchUp int
	Update     func()
	Frame      func(alpha float64)
	Log        *slog.Logger

	// ProfileEvery logs the profiling summary at this interval when positive.
	ProfileEvery time.Duration

	updates, frames int
}

// Updates returns the number of updates run so far.
func (l *Loop) Updates() int { return l.updates }

// Run blocks until ctx is cancelled. It returns nil on cancellation.
func (l *Loop) Run(ctx context.Context) error {
	ups := l.UPS
	if ups <= 0 {
		ups = DefaultUPS
	}
	maxCatchUp := max(l.MaxCatchUp, 1)
	log := l.Log
	if log == nil {
		log = slog.Default()
	}

	step := time.Second / time.Duration(ups)
	var acc time.Duration
	last := time.Now()
	lastReport, lastProfile := last, last
	reportUpdates, reportFrames := 0, 0

	for {
		if ctx.Err() != nil {
			return nil
		}

		now := time.Now()
		acc += now.Sub(last)
		last = now

		n := 0
		for acc >= step && n < maxCatchUp {
			l.Update()
			acc -= step
			n++
		}
		l.updates += n
		reportUpdates += n
		// Drop whole ticks we could not catch up on to avoid a spiral.
		if acc >= step {
			log.Debug("simulation behind, dropping ticks", "dropped", int(acc/step))
			acc %= step
		}

		if l.Frame != nil {
			l.Frame(float64(acc) / float64(step))
			l.frames++
			reportFrames++
		}

		if since := now.Sub(lastReport); since >= time.Second {
			log.Debug("loop rate", "ups", reportUpdates, "fps", reportFrames)
			reportUpdates, reportFrames = 0, 0
			lastReport = now
		}
		if l.ProfileEvery > 0 && now.Sub(lastProfile) >= l.ProfileEvery {
			log.Info("tick profile", "top", profiling.TopN(5))
			profiling.ResetTick()
			lastProfile = now
		}

		if err := sleepUntil(ctx, last.Add(step-acc)); err != nil {
			return nil
		}
	}
}

// sleepUntil uses a hybrid sleep/spin wait for precision at high rates.
func sleepUntil(ctx context.Context, next time.Time) error {
	const spin = 200 * time.Microsecond
	if remaining := time.Until(next); remaining > spin {
		t := time.NewTimer(remaining - spin)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
	for time.Until(next) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	return nil
}
