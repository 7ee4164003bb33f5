package progress

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

// Tracker reports progress of one long-running phase.
type Tracker interface {
	SetStage(stage string)
	SetProgress(current, total int64)
	Done()
}

// Discard is a Tracker that ignores every update.
var Discard Tracker = noopTracker{}

type noopTracker struct{}

func (noopTracker) SetStage(string)          {}
func (noopTracker) SetProgress(int64, int64) {}
func (noopTracker) Done()                    {}

// BarTracker renders a single mpb progress bar on stderr.
type BarTracker struct {
	container *mpb.Progress
	bar       *mpb.Bar
	stage     *atomic.Value
}

// NewBar creates an interactive progress bar labelled name.
func NewBar(name string, total int64) *BarTracker {
	p := mpb.New(mpb.WithWidth(60))
	stage := &atomic.Value{}
	stage.Store("")
	bar := p.AddBar(total,
		mpb.PrependDecorators(
			decor.Name(name+" ", decor.WCSyncSpaceR),
			decor.CountersNoUnit("%d / %d", decor.WCSyncWidth),
		),
		mpb.AppendDecorators(
			decor.Percentage(decor.WCSyncSpace),
			decor.Any(func(s decor.Statistics) string {
				return " " + stage.Load().(string)
			}),
		),
	)
	return &BarTracker{container: p, bar: bar, stage: stage}
}

func (t *BarTracker) SetStage(stage string) {
	t.stage.Store(stage)
}

func (t *BarTracker) SetProgress(current, total int64) {
	if total > 0 {
		t.bar.SetTotal(total, false)
	}
	t.bar.SetCurrent(current)
}

// Done completes the bar and waits for the final render.
func (t *BarTracker) Done() {
	t.bar.SetTotal(-1, true)
	t.container.Wait()
}

// LogTracker implements Tracker with throttled zerolog lines for non-TTY
// environments (CI, containers).
type LogTracker struct {
	log      zerolog.Logger
	name     string
	stage    string
	start    time.Time
	lastLog  time.Time
	interval time.Duration
}

const logInterval = 5 * time.Second

// NewLog creates a log-line tracker.
func NewLog(log zerolog.Logger, name string) *LogTracker {
	return &LogTracker{log: log, name: name, start: time.Now(), interval: logInterval}
}

func (t *LogTracker) SetStage(stage string) {
	t.stage = stage
	t.lastLog = time.Time{}
	t.log.Info().Str("tracker", t.name).Str("stage", stage).Msg("stage started")
}

func (t *LogTracker) SetProgress(current, total int64) {
	now := time.Now()
	if now.Sub(t.lastLog) < t.interval && current != total {
		return
	}
	t.lastLog = now
	ev := t.log.Info().Str("tracker", t.name).Str("stage", t.stage).Int64("current", current)
	if total > 0 {
		ev = ev.Int64("total", total).Str("pct", fmt.Sprintf("%.0f%%", float64(current)/float64(total)*100))
	}
	ev.Msg("progress")
}

func (t *LogTracker) Done() {
	t.log.Info().
		Str("tracker", t.name).
		Dur("elapsed", time.Since(t.start).Truncate(time.Millisecond)).
		Msg("finished")
}
