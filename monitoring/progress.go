package monitoring

import (
	"sync"
	"time"

	"github.com/sarchlab/streamsim/channel"
	"github.com/sarchlab/streamsim/sim"
)

// A ProgressBar is a tracker of the progress
type ProgressBar struct {
	sync.Mutex
	ID         string
	Name       string
	StartTime  time.Time
	Total      uint64
	Finished   uint64
	InProgress uint64
}

// IncrementInProgress adds the number of in-progress element.
func (b *ProgressBar) IncrementInProgress(amount uint64) {
	b.Lock()
	defer b.Unlock()

	b.InProgress += amount
}

// IncrementFinished add a certain amount to finished element.
func (b *ProgressBar) IncrementFinished(amount uint64) {
	b.Lock()
	defer b.Unlock()

	b.Finished += amount
}

// MoveInProgressToFinished reduces the number of in progress item by a certain
// amount and increase the finished item by the same amount.
func (b *ProgressBar) MoveInProgressToFinished(amount uint64) {
	b.Lock()
	defer b.Unlock()

	b.InProgress -= amount
	b.Finished += amount
}

func (b *ProgressBar) snapshot() progressBarRsp {
	b.Lock()
	defer b.Unlock()

	return progressBarRsp{
		ID:         b.ID,
		Name:       b.Name,
		StartTime:  b.StartTime,
		Total:      b.Total,
		Finished:   b.Finished,
		InProgress: b.InProgress,
	}
}

// ChannelProgress is a channel hook that moves a progress bar: an element
// is in progress once enqueued and finished once dequeued.
type ChannelProgress struct {
	bar *ProgressBar
}

// NewChannelProgress creates a hook that drives the bar.
func NewChannelProgress(bar *ProgressBar) *ChannelProgress {
	return &ChannelProgress{bar: bar}
}

// Func updates the bar.
func (h *ChannelProgress) Func(ctx sim.HookCtx) {
	switch ctx.Pos {
	case channel.HookPosEnqueue:
		h.bar.IncrementInProgress(1)
	case channel.HookPosDequeue:
		h.bar.MoveInProgressToFinished(1)
	}
}
