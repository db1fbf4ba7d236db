package timing

import (
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
	"unsafe"

	"github.com/zeebo/this"
)

// State keeps track of all of the timing information for one name.
type State struct {
	current int64
	his     Histogram

	mu     sync.Mutex
	errors map[string]int64
}

// start informs the state that a task is starting.
func (s *State) start() { atomic.AddInt64(&s.current, 1) }

// done informs the State that a task has completed in the given amount of
// nanoseconds, failing with kind if kind is not empty.
func (s *State) done(v int64, kind string) {
	atomic.AddInt64(&s.current, -1)
	s.his.Observe(v)

	if kind != "" {
		s.mu.Lock()
		if s.errors == nil {
			s.errors = make(map[string]int64)
		}
		s.errors[kind]++
		s.mu.Unlock()
	}
}

// Histogram returns the Histogram of durations for the state.
func (s *State) Histogram() *Histogram { return &s.his }

// Current returns the number of active calls.
func (s *State) Current() int64 { return atomic.LoadInt64(&s.current) }

// Total returns the number of completed calls.
func (s *State) Total() int64 { return s.his.Total() }

// Errors returns a copy of the failure counts keyed by error kind.
func (s *State) Errors() map[string]int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]int64, len(s.errors))
	for kind, n := range s.errors {
		out[kind] = n
	}
	return out
}

var ( // states is a map[string]*State
	states unsafe.Pointer
	mu     sync.Mutex
)

func init() { storeStates(make(map[string]*State)) }

// storeStates overwrites the states map.
func storeStates(ss map[string]*State) {
	atomic.StorePointer(&states, unsafe.Pointer(&ss))
}

// loadStates atomically loads the current states map.
func loadStates() map[string]*State {
	return *(*map[string]*State)(atomic.LoadPointer(&states))
}

// GetState returns the State for the name, allocating it if necessary.
func GetState(name string) *State {
	if st, ok := loadStates()[name]; ok {
		return st
	}
	return newState(name)
}

// LookupState returns the State for the name or nil if none exists.
func LookupState(name string) *State { return loadStates()[name] }

// newState allocates a State for name and stores it in the global set
// without racing other allocations.
func newState(name string) *State {
	mu.Lock()
	defer mu.Unlock()

	ss := loadStates()
	if st, ok := ss[name]; ok {
		return st
	}

	next := make(map[string]*State, len(ss)+1)
	for key, val := range ss {
		next[key] = val
	}

	st := new(State)
	next[name] = st
	storeStates(next)
	return st
}

// Times calls the callback with every State in name order until it
// returns false.
func Times(cb func(string, *State) bool) {
	ss := loadStates()
	names := make([]string, 0, len(ss))
	for name := range ss {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if !cb(name, ss[name]) {
			return
		}
	}
}

// Start returns a Timer using the calling function for the name.
func Start() Timer { return StartNamed(this.ThisN(1)) }

// StartNamed returns a Timer that records a duration when Stop is called.
func StartNamed(name string) Timer {
	st := GetState(name)
	st.start()
	return Timer{now: time.Now(), state: st}
}

// Timer keeps track of the state necessary to record timing info.
type Timer struct {
	now   time.Time
	state *State
}

// Stop records the elapsed time and, if err points at a non-nil error, the
// kind of failure. It returns the elapsed time.
func (t Timer) Stop(err *error) time.Duration {
	kind := ""
	if err != nil {
		kind = getKind(*err)
	}

	elapsed := time.Since(t.now)
	t.state.done(int64(elapsed), kind)
	return elapsed
}

// getKind returns a string that attempts to be representative of the error.
func getKind(err error) string {
	if n, ok := err.(interface{ Name() (string, bool) }); ok {
		if name, ok := n.Name(); ok {
			return name
		}
	}

	if err != nil {
		s := err.Error()
		if i := strings.IndexByte(s, ':'); i > 0 {
			return s[:i]
		} else if strings.IndexByte(s, ' ') == -1 {
			return s
		} else {
			return "error"
		}
	}

	return ""
}
