package watch

import (
	"context"
	"time"
)

// settler holds documents until they stop changing. It is owned by the
// Run loop; only the timer callbacks touch ready from other goroutines.
type settler struct {
	delay   time.Duration
	ready   chan settled
	pending map[string]*settling
	gen     uint64
}

// settled is a timer delivery. gen tells a live delivery from one whose
// timer was replaced after it fired.
type settled struct {
	path string
	gen  uint64
}

type settling struct {
	timer *time.Timer
	gen   uint64
}

func newSettler(delay time.Duration) *settler {
	return &settler{
		delay:   delay,
		ready:   make(chan settled, 64),
		pending: make(map[string]*settling),
	}
}

// touch restarts the quiet period for path.
func (s *settler) touch(ctx context.Context, path string) {
	if p, ok := s.pending[path]; ok && p.timer.Stop() {
		p.timer.Reset(s.delay)
		return
	}

	// Either new, or the old timer already fired and its delivery is stale.
	s.gen++
	item := settled{path: path, gen: s.gen}
	s.pending[path] = &settling{
		gen: item.gen,
		timer: time.AfterFunc(s.delay, func() {
			select {
			case s.ready <- item:
			case <-ctx.Done():
			}
		}),
	}
}

// accept reports whether item is the live delivery for its path, and if so
// forgets the path.
func (s *settler) accept(item settled) bool {
	p, ok := s.pending[item.path]
	if !ok || p.gen != item.gen {
		return false
	}
	delete(s.pending, item.path)
	return true
}

func (s *settler) stop() {
	for _, p := range s.pending {
		p.timer.Stop()
	}
}
