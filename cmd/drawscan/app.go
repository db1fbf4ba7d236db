package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/zeebo/drawscan"
	"github.com/zeebo/drawscan/internal/drawtext"
	"github.com/zeebo/drawscan/seedsearch"
	"github.com/zeebo/drawscan/store"
	"github.com/zeebo/errs"
	"github.com/zeebo/pcg"
)

// topSeedsKept is how many scored seeds a scan saves on the machine.
const topSeedsKept = 5

// app holds what the commands and the menu share.
type app struct {
	store *store.Store
	out   io.Writer
	now   func() time.Time

	drawsPerSecond int64
	threshold      float64
	workers        int
}

func (a *app) params(m *store.Machine, durationSeconds int64) (drawscan.Params, error) {
	last, ok := m.LastDraw()
	if !ok {
		return drawscan.Params{}, errs.New("machine %q has no observed draws", m.ID)
	}
	target20, target10, err := drawtext.Targets(last)
	if err != nil {
		return drawscan.Params{}, err
	}

	p := drawscan.DefaultParams()
	p.JumpCount = seedsearch.JumpCountSince(seedsearch.Epoch, a.now(), a.drawsPerSecond)
	p.DurationSeconds = durationSeconds
	p.DrawsPerSecond = a.drawsPerSecond
	p.Target20 = target20
	p.Target10 = target10
	p.MatchThreshold = a.threshold
	return p, nil
}

// ingest records a draw line on the machine.
func (a *app) ingest(id, line string) error {
	vals, err := drawtext.Parse(line)
	if err != nil {
		return err
	}

	m, err := a.store.LoadMachine(id)
	if err != nil {
		return err
	}
	m.ObservedDraws = append(m.ObservedDraws, store.Observed{
		Draw: drawtext.SortedUnique(vals),
		TS:   a.now().UTC(),
	})
	if err := a.store.SaveMachine(m); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "saved draw %d for %s\n", len(m.ObservedDraws), id)
	return nil
}

// scan searches random seeds against the machine's last draw and keeps the
// best ones.
func (a *app) scan(ctx context.Context, id string, trials int, durationSeconds int64, rng *pcg.T) error {
	m, err := a.store.LoadMachine(id)
	if err != nil {
		return err
	}
	p, err := a.params(m, durationSeconds)
	if err != nil {
		return err
	}

	sess, err := seedsearch.Search(ctx, seedsearch.Request{
		Seeds:   seedsearch.RandomSeeds(trials, rng),
		Params:  p,
		Workers: a.workers,
	})
	if err != nil {
		return err
	}
	if err := a.store.SaveSession(sess); err != nil {
		return err
	}

	now := a.now().UTC()
	m.TopSeeds = m.TopSeeds[:0]
	for _, sc := range seedsearch.TopSeeds(sess.Results, topSeedsKept) {
		m.TopSeeds = append(m.TopSeeds, store.TopSeed{Seed: sc.Seed, Score: sc.Score, TS: now})
	}
	if err := a.store.SaveMachine(m); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "scanned %d seeds in %v, session %s\n", trials, sess.Elapsed, sess.ID)
	for i, ts := range m.TopSeeds {
		fmt.Fprintf(a.out, "%d) %v score=%.3f\n", i+1, ts.Seed, ts.Score)
	}
	return nil
}

// search runs the given seeds, or the machine's saved top seeds when none
// are given, and prints every result.
func (a *app) search(ctx context.Context, id string, seeds []seedsearch.Seed, durationSeconds int64) error {
	m, err := a.store.LoadMachine(id)
	if err != nil {
		return err
	}
	if len(seeds) == 0 {
		for _, ts := range m.TopSeeds {
			seeds = append(seeds, ts.Seed)
		}
	}
	if len(seeds) == 0 {
		return errs.New("no seeds given and none saved for %q", id)
	}

	p, err := a.params(m, durationSeconds)
	if err != nil {
		return err
	}
	sess, err := seedsearch.Search(ctx, seedsearch.Request{
		Seeds:   seeds,
		Params:  p,
		Workers: a.workers,
	})
	if err != nil {
		return err
	}
	if err := a.store.SaveSession(sess); err != nil {
		return err
	}

	for _, f := range sess.Failures {
		fmt.Fprintf(a.out, "seed %v error: %s\n", f.Seed, f.Error)
	}
	for _, r := range sess.Results {
		fmt.Fprintf(a.out, "%v seed=%v idx=%d off=%s conf=%.3f\n",
			r.Type, r.Seed, r.DrawIndex, r.TimeOffsetPretty, r.Confidence)
	}
	fmt.Fprintf(a.out, "%d results, session %s\n", len(sess.Results), sess.ID)
	return nil
}

// listSeeds prints the machine's saved top seeds.
func (a *app) listSeeds(id string) error {
	m, err := a.store.LoadMachine(id)
	if err != nil {
		return err
	}
	if len(m.TopSeeds) == 0 {
		fmt.Fprintf(a.out, "no seeds saved for %s\n", id)
		return nil
	}
	for i, ts := range m.TopSeeds {
		fmt.Fprintf(a.out, "%d) %v score=%.3f at %s\n", i+1, ts.Seed, ts.Score, ts.TS.Format(time.RFC3339))
	}
	return nil
}
