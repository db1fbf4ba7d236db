// Package seedsearch runs drawscan over many candidate seeds and aggregates
// the matches into a Session.
package seedsearch

import (
	"context"
	"encoding/json"
	"log"
	"math"
	"runtime"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/zeebo/drawscan"
	"github.com/zeebo/drawscan/internal/drawtext"
	"github.com/zeebo/drawscan/internal/timing"
	"github.com/zeebo/errs"
	"github.com/zeebo/pcg"
)

// Error is the class of errors returned by the package.
var Error = errs.Class("seedsearch")

// MaxWorkers caps the default number of concurrent seeds.
const MaxWorkers = 8

// Epoch is the reference time jump counts are computed from.
var Epoch = time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC)

// JumpCountSince returns how many draws happened between epoch and now at
// drawsPerSecond, counting whole seconds. It is 0 if now is before epoch.
func JumpCountSince(epoch, now time.Time, drawsPerSecond int64) uint64 {
	secs := int64(now.Sub(epoch) / time.Second)
	if secs <= 0 || drawsPerSecond <= 0 {
		return 0
	}
	return uint64(secs) * uint64(drawsPerSecond)
}

// Seed is an lcg seed that encodes as a hex string.
type Seed uint64

// String returns the seed in hex with a 0x prefix.
func (s Seed) String() string { return "0x" + strconv.FormatUint(uint64(s), 16) }

// MarshalText implements encoding.TextMarshaler.
func (s Seed) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Seed) UnmarshalText(data []byte) error {
	v, err := ParseSeed(string(data))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// UnmarshalJSON accepts a seed as a string in any ParseSeed form or as a
// plain json number.
func (s *Seed) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var x string
		if err := json.Unmarshal(data, &x); err != nil {
			return Error.Wrap(err)
		}
		return s.UnmarshalText([]byte(x))
	}
	v, err := strconv.ParseUint(string(data), 10, 64)
	if err != nil {
		return Error.New("invalid seed %s", data)
	}
	*s = Seed(v)
	return nil
}

// ParseSeed parses a seed in decimal, or hex/octal/binary with a prefix.
func ParseSeed(x string) (Seed, error) {
	v, err := strconv.ParseUint(x, 0, 64)
	if err != nil {
		return 0, Error.New("invalid seed %q", x)
	}
	return Seed(v), nil
}

// RandomSeeds returns n seeds drawn from rng.
func RandomSeeds(n int, rng *pcg.T) []Seed {
	out := make([]Seed, n)
	for i := range out {
		out[i] = Seed(rng.Uint64())
	}
	return out
}

// Request describes a search over many seeds.
type Request struct {
	// Seeds are searched in order. Their Params.Seed is overwritten.
	Seeds []Seed
	// Params is the template for every core call.
	Params drawscan.Params
	// Workers bounds how many seeds run at once. Zero picks GOMAXPROCS
	// capped at MaxWorkers.
	Workers int
	// Progress, if set, is called once per finished seed. Calls never
	// overlap.
	Progress func(seed Seed, matches []drawscan.Match, err error)
}

// Result is one match found for one seed.
type Result struct {
	Seed       Seed               `json:"seed"`
	Type       drawscan.MatchType `json:"match_type"`
	DrawIndex  uint64             `json:"draw_index"`
	Confidence float64            `json:"confidence"`

	TimeOffsetSeconds int64  `json:"time_offset_seconds"`
	TimeOffsetPretty  string `json:"time_offset_pretty"`
}

// Failure records a seed whose core call failed.
type Failure struct {
	Seed  Seed   `json:"seed"`
	Code  string `json:"code"`
	Error string `json:"error"`
}

// Session is the outcome of a Search.
type Session struct {
	ID       string        `json:"id"`
	Created  time.Time     `json:"created"`
	Seeds    []Seed        `json:"seeds"`
	Results  []Result      `json:"results"`
	Failures []Failure     `json:"failures,omitempty"`
	Elapsed  time.Duration `json:"elapsed"`
}

// outcome is the raw core answer for one seed.
type outcome struct {
	matches []drawscan.Match
	err     error
}

// Search runs the core once per seed over a bounded pool of workers. A
// failing seed is recorded in the session and does not stop the search.
// Canceling ctx stops seeds that have not started yet and fails the search.
func Search(ctx context.Context, req Request) (_ *Session, err error) {
	defer timing.Start().Stop(&err)

	workers := req.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
		if workers > MaxWorkers {
			workers = MaxWorkers
		}
	}

	start := time.Now()
	outcomes := make([]outcome, len(req.Seeds))
	sem := make(chan struct{}, workers)

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)

	for i, seed := range req.Seeds {
		if err := ctx.Err(); err != nil {
			wg.Wait()
			return nil, Error.Wrap(err)
		}

		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			wg.Wait()
			return nil, Error.Wrap(ctx.Err())
		}

		wg.Add(1)
		go func(i int, seed Seed) {
			defer wg.Done()
			defer func() { <-sem }()

			p := req.Params
			p.Seed = uint64(seed)
			matches, err := drawscan.GenerateAndMatch(p)
			outcomes[i] = outcome{matches: matches, err: err}

			if req.Progress != nil {
				mu.Lock()
				req.Progress(seed, matches, err)
				mu.Unlock()
			}
		}(i, seed)
	}
	wg.Wait()

	sess := &Session{
		ID:      uuid.New().String(),
		Created: start.UTC(),
		Seeds:   req.Seeds,
		Results: []Result{},
	}
	for i, out := range outcomes {
		seed := req.Seeds[i]
		if out.err != nil {
			sess.Failures = append(sess.Failures, Failure{
				Seed:  seed,
				Code:  drawscan.Code(out.err),
				Error: out.err.Error(),
			})
			continue
		}
		for _, m := range out.matches {
			sess.Results = append(sess.Results, newResult(seed, m, req.Params.DrawsPerSecond))
		}
	}
	sess.Elapsed = time.Since(start)

	log.Printf("[INFO] session %s: %d seeds, %d results, %d failures in %v",
		sess.ID, len(req.Seeds), len(sess.Results), len(sess.Failures), sess.Elapsed)

	return sess, nil
}

// newResult attaches the seed and the time offset of the draw to a match.
func newResult(seed Seed, m drawscan.Match, drawsPerSecond int64) Result {
	offset := int64(math.RoundToEven(float64(m.DrawIndex) / float64(drawsPerSecond)))
	return Result{
		Seed:              seed,
		Type:              m.Type,
		DrawIndex:         m.DrawIndex,
		Confidence:        m.Confidence,
		TimeOffsetSeconds: offset,
		TimeOffsetPretty:  drawtext.FormatOffset(offset),
	}
}

// Scored is a seed with the summed confidence of all of its results.
type Scored struct {
	Seed  Seed    `json:"seed"`
	Score float64 `json:"score"`
}

// TopSeeds sums the confidence of every result per seed and returns the k
// best seeds, highest score first. Ties go to the smaller seed.
func TopSeeds(results []Result, k int) []Scored {
	scores := make(map[Seed]float64)
	for _, r := range results {
		scores[r.Seed] += r.Confidence
	}

	out := make([]Scored, 0, len(scores))
	for seed, score := range scores {
		out = append(out, Scored{Seed: seed, Score: score})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Seed < out[j].Seed
	})

	if k >= 0 && len(out) > k {
		out = out[:k]
	}
	return out
}
