package lane

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/Observe-l/fecsim/codec"
	"github.com/Observe-l/fecsim/fec"
)

// Pool is a fixed set of lanes, one worker each.
type Pool struct {
	lanes []*Lane
}

// NewPool builds p.Lanes lanes concurrently. monitors, if not nil, gives the
// monitor of each lane; it may return the same concurrency-safe monitor for
// all of them. If any lane fails, the others are released.
func NewPool(ctx context.Context, p Params, c codec.Codec, monitors func(id int) Monitor) (*Pool, error) {
	p.setDefaults()
	lanes := make([]*Lane, p.Lanes)
	g, ctx := errgroup.WithContext(ctx)
	for i := range lanes {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			var mon Monitor
			if monitors != nil {
				mon = monitors(i)
			}
			l, err := Build(p, c, i, mon)
			if err != nil {
				return err
			}
			lanes[i] = l
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		for _, l := range lanes {
			l.Release()
		}
		return nil, err
	}
	return &Pool{lanes: lanes}, nil
}

// Lanes returns the lanes in id order.
func (p *Pool) Lanes() []*Lane { return p.lanes }

// Run calls fn once per lane, each on its own goroutine, and returns the
// first error. The context passed to fn is cancelled when any call fails;
// fn decides how often to check it.
func (p *Pool) Run(ctx context.Context, fn func(ctx context.Context, l *Lane) error) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, l := range p.lanes {
		l := l
		g.Go(func() error { return fn(ctx, l) })
	}
	return g.Wait()
}

// Timings sums the stage durations of all lanes. Call it only while no
// lane is running.
func (p *Pool) Timings() fec.StageTotals {
	var t fec.StageTotals
	for _, l := range p.lanes {
		t.Add(l.Timings())
	}
	return t
}

// Release releases every lane.
func (p *Pool) Release() {
	for _, l := range p.lanes {
		l.Release()
	}
}
