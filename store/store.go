// Package store persists machines and search sessions under a data
// directory.
//
// Machines are plain JSON files in machines/<id>.json. Sessions are JSON
// compressed with zstd in sessions/<id>.json.zst, prefixed by the little
// endian xxh3 hash of the uncompressed JSON.
package store

import (
	"encoding/binary"
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/zeebo/drawscan/seedsearch"
	"github.com/zeebo/errs"
	"github.com/zeebo/xxh3"
)

var (
	// Error is the class of errors returned by the package.
	Error = errs.Class("store")

	// ErrCorrupt is returned when a stored file fails its checksum.
	ErrCorrupt = errs.Class("corrupt")
)

const (
	machinesDir = "machines"
	sessionsDir = "sessions"

	sessionExt = ".json.zst"
)

var validID = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// Draw is a list of draw values that encodes as a JSON array of numbers.
type Draw []uint8

// MarshalJSON implements json.Marshaler.
func (d Draw) MarshalJSON() ([]byte, error) {
	ints := make([]int, len(d))
	for i, v := range d {
		ints[i] = int(v)
	}
	return json.Marshal(ints)
}

// Observed is a draw seen on a machine.
type Observed struct {
	Draw Draw      `json:"draw"`
	TS   time.Time `json:"ts"`
}

// TopSeed is a seed scored by a scan.
type TopSeed struct {
	Seed  seedsearch.Seed `json:"seed"`
	Score float64         `json:"score"`
	TS    time.Time       `json:"ts"`
}

// Machine is everything known about one keno machine.
type Machine struct {
	ID            string     `json:"machine_id"`
	ObservedDraws []Observed `json:"observed_draws"`
	TopSeeds      []TopSeed  `json:"top_seeds"`
	Created       time.Time  `json:"created"`
}

// LastDraw returns the most recently observed draw, if any.
func (m *Machine) LastDraw() (Draw, bool) {
	if len(m.ObservedDraws) == 0 {
		return nil, false
	}
	return m.ObservedDraws[len(m.ObservedDraws)-1].Draw, true
}

// Store reads and writes files under a directory.
type Store struct {
	dir string
}

// Open returns a Store rooted at dir, creating the directory layout.
func Open(dir string) (*Store, error) {
	for _, sub := range []string{machinesDir, sessionsDir} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0755); err != nil {
			return nil, Error.Wrap(err)
		}
	}
	return &Store{dir: dir}, nil
}

// Dir returns the root directory of the store.
func (s *Store) Dir() string { return s.dir }

func checkID(id string) error {
	if id == "." || id == ".." || !validID.MatchString(id) {
		return Error.New("invalid id %q", id)
	}
	return nil
}

func (s *Store) machinePath(id string) string {
	return filepath.Join(s.dir, machinesDir, id+".json")
}

func (s *Store) sessionPath(id string) string {
	return filepath.Join(s.dir, sessionsDir, id+sessionExt)
}

// LoadMachine returns the machine with the id, or a fresh machine if none
// has been saved yet.
func (s *Store) LoadMachine(id string) (*Machine, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.machinePath(id))
	if os.IsNotExist(err) {
		return &Machine{
			ID:            id,
			ObservedDraws: []Observed{},
			TopSeeds:      []TopSeed{},
			Created:       time.Now().UTC(),
		}, nil
	} else if err != nil {
		return nil, Error.Wrap(err)
	}

	var m Machine
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, ErrCorrupt.New("machine %q: %v", id, err)
	}
	return &m, nil
}

// SaveMachine atomically replaces the stored machine.
func (s *Store) SaveMachine(m *Machine) error {
	if err := checkID(m.ID); err != nil {
		return err
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return Error.Wrap(err)
	}
	return writeFile(s.machinePath(m.ID), data)
}

// ListMachines returns the ids of every saved machine in sorted order.
func (s *Store) ListMachines() ([]string, error) {
	return s.list(machinesDir, ".json")
}

// ListSessions returns the ids of every saved session in sorted order.
func (s *Store) ListSessions() ([]string, error) {
	return s.list(sessionsDir, sessionExt)
}

func (s *Store) list(sub, ext string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.dir, sub))
	if err != nil {
		return nil, Error.Wrap(err)
	}

	var ids []string
	for _, ent := range entries {
		if name := ent.Name(); !ent.IsDir() && strings.HasSuffix(name, ext) {
			ids = append(ids, strings.TrimSuffix(name, ext))
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// SaveSession compresses and stores the session under its id.
func (s *Store) SaveSession(sess *seedsearch.Session) (err error) {
	if err := checkID(sess.ID); err != nil {
		return err
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return Error.Wrap(err)
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return Error.Wrap(err)
	}
	defer func() { err = errs.Combine(err, Error.Wrap(enc.Close())) }()

	var header [8]byte
	binary.LittleEndian.PutUint64(header[:], xxh3.Hash(data))

	return writeFile(s.sessionPath(sess.ID), enc.EncodeAll(data, header[:]))
}

// LoadSession reads back a session stored by SaveSession.
func (s *Store) LoadSession(id string) (*seedsearch.Session, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(s.sessionPath(id))
	if err != nil {
		return nil, Error.Wrap(err)
	}
	if len(raw) < 8 {
		return nil, ErrCorrupt.New("session %q: too short", id)
	}

	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, Error.Wrap(err)
	}
	defer dec.Close()

	data, err := dec.DecodeAll(raw[8:], nil)
	if err != nil {
		return nil, ErrCorrupt.New("session %q: %v", id, err)
	}
	if binary.LittleEndian.Uint64(raw[:8]) != xxh3.Hash(data) {
		return nil, ErrCorrupt.New("session %q: checksum mismatch", id)
	}

	var sess seedsearch.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, ErrCorrupt.New("session %q: %v", id, err)
	}
	return &sess, nil
}

// cleaner runs registered cleanups in reverse when an error happened.
type cleaner []func() error

func (c *cleaner) Add(cl func() error) { *c = append(*c, cl) }

func (c *cleaner) Close(err *error) {
	if err != nil && *err != nil {
		for i := len(*c) - 1; i >= 0; i-- {
			*err = errs.Combine(*err, (*c)[i]())
		}
	}
}

// writeFile writes data to a temporary file next to path and renames it
// into place, so readers see either the old or the new contents.
func writeFile(path string, data []byte) (err error) {
	var cl cleaner
	defer cl.Close(&err)

	fh, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp*")
	if err != nil {
		return Error.Wrap(err)
	}
	cl.Add(func() error { return os.Remove(fh.Name()) })

	if _, err := fh.Write(data); err != nil {
		return Error.Wrap(errs.Combine(err, fh.Close()))
	}
	if err := fh.Sync(); err != nil {
		return Error.Wrap(errs.Combine(err, fh.Close()))
	}
	if err := fh.Close(); err != nil {
		return Error.Wrap(err)
	}
	return Error.Wrap(os.Rename(fh.Name(), path))
}
