// Package web serves drawscan over http and websockets.
package web

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/zeebo/drawscan"
	"github.com/zeebo/drawscan/seedsearch"
	"github.com/zeebo/drawscan/store"
	"github.com/zeebo/errs"
)

// DefaultMaxTotal bounds the numbers a single web request may generate.
const DefaultMaxTotal = 50 * 1000 * 1000

// maxBody bounds request bodies and websocket messages.
const maxBody = 1 << 20

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4 << 10,
	WriteBufferSize: 4 << 10,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Request is the json body of a search.
type Request struct {
	Seed  seedsearch.Seed   `json:"seed"`
	Seeds []seedsearch.Seed `json:"seeds,omitempty"`

	JumpCount       uint64  `json:"jump_count"`
	DurationSeconds int64   `json:"duration_seconds"`
	DrawsPerSecond  int64   `json:"draws_per_second"`
	Target20        []uint8 `json:"target20"`
	Target10        []uint8 `json:"target10"`
	NumbersPerDraw  int32   `json:"numbers_per_draw"`
	MatchThreshold  float64 `json:"match_threshold"`
	Unbiased        bool    `json:"unbiased"`
	Multiplier      uint64  `json:"multiplier"`
	Increment       uint64  `json:"increment"`
}

func defaultRequest() Request {
	p := drawscan.DefaultParams()
	return Request{
		NumbersPerDraw: p.NumbersPerDraw,
		MatchThreshold: p.MatchThreshold,
		Unbiased:       p.Unbiased,
		Multiplier:     p.Multiplier,
		Increment:      p.Increment,
	}
}

// Params converts the request into core parameters.
func (r Request) Params() drawscan.Params {
	return drawscan.Params{
		Seed:            uint64(r.Seed),
		JumpCount:       r.JumpCount,
		DurationSeconds: r.DurationSeconds,
		DrawsPerSecond:  r.DrawsPerSecond,
		Target20:        r.Target20,
		Target10:        r.Target10,
		NumbersPerDraw:  r.NumbersPerDraw,
		MatchThreshold:  r.MatchThreshold,
		Unbiased:        r.Unbiased,
		Multiplier:      r.Multiplier,
		Increment:       r.Increment,
	}
}

// Message is one websocket frame sent back to a client.
type Message struct {
	Kind    string              `json:"kind"`
	Seed    seedsearch.Seed     `json:"seed,omitempty"`
	Match   *drawscan.Match     `json:"match,omitempty"`
	Code    string              `json:"code,omitempty"`
	Error   string              `json:"error,omitempty"`
	Session *seedsearch.Session `json:"session,omitempty"`
}

// Handler routes the web ui and api.
type Handler struct {
	// MaxTotal caps the numbers generated per seed. Zero means
	// DefaultMaxTotal.
	MaxTotal uint64
	// Store, if set, receives every websocket session.
	Store *store.Store

	once sync.Once
	mux  *http.ServeMux
}

// New returns a Handler that saves sessions into st, which may be nil.
func New(st *store.Store) *Handler {
	return &Handler{Store: st}
}

func (h *Handler) init() {
	h.mux = http.NewServeMux()
	h.mux.HandleFunc("/", h.index)
	h.mux.HandleFunc("/status", h.status)
	h.mux.HandleFunc("/api/search", h.search)
	h.mux.HandleFunc("/ws/search", h.wsSearch)
	h.mux.HandleFunc(timersPrefix, h.timers)
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	h.once.Do(h.init)
	h.mux.ServeHTTP(w, req)
}

func (h *Handler) maxTotal() uint64 {
	if h.MaxTotal == 0 {
		return DefaultMaxTotal
	}
	return h.MaxTotal
}

// check rejects requests that would generate more than the handler allows.
// Malformed sizes are left for the core to report.
func (h *Handler) check(r Request) error {
	if r.DurationSeconds <= 0 || r.DrawsPerSecond <= 0 || r.NumbersPerDraw <= 0 {
		return nil
	}
	total := float64(r.DurationSeconds) * float64(r.DrawsPerSecond) * float64(r.NumbersPerDraw)
	if total > float64(h.maxTotal()) {
		return drawscan.ErrRequestTooLarge.New("request generates %.0f numbers, limit is %d",
			total, h.maxTotal())
	}
	return nil
}

// StatusCode maps an error to the http status describing it.
func StatusCode(err error) int {
	switch drawscan.Code(err) {
	case "invalid_argument", "computed_size_zero":
		return http.StatusBadRequest
	case "request_too_large":
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[ERROR] write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, StatusCode(err), Message{
		Kind:  "error",
		Code:  drawscan.Code(err),
		Error: err.Error(),
	})
}

func decodeRequest(r io.Reader) (Request, error) {
	req := defaultRequest()
	if err := json.NewDecoder(io.LimitReader(r, maxBody)).Decode(&req); err != nil {
		return req, drawscan.ErrInvalidArgument.New("decode request: %v", err)
	}
	return req, nil
}

const indexPage = `<!doctype html>
<html>
<head><title>drawscan</title></head>
<body>
<h1>drawscan</h1>
<ul>
<li><a href="/status">status</a></li>
<li><a href="/timers/">timers</a></li>
<li>POST /api/search</li>
<li>websocket /ws/search</li>
</ul>
</body>
</html>
`

func (h *Handler) index(w http.ResponseWriter, req *http.Request) {
	if req.URL.Path != "/" {
		http.NotFound(w, req)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = io.WriteString(w, indexPage)
}

func (h *Handler) status(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"message": "Web UI is running!",
	})
}

func (h *Handler) search(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	r, err := decodeRequest(req.Body)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.check(r); err != nil {
		writeError(w, err)
		return
	}

	res, err := drawscan.Run(r.Params())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// wsSearch reads one request, streams a message per match as each seed
// finishes, then sends a summary holding the whole session.
func (h *Handler) wsSearch(w http.ResponseWriter, req *http.Request) {
	conn, err := upgrader.Upgrade(w, req, nil)
	if err != nil {
		log.Printf("[ERROR] websocket upgrade: %v", err)
		return
	}
	defer func() { _ = conn.Close() }()

	if err := h.streamSearch(req.Context(), conn); err != nil {
		log.Printf("[ERROR] websocket search: %v", err)
	}
}

func (h *Handler) streamSearch(ctx context.Context, conn *websocket.Conn) (err error) {
	conn.SetReadLimit(maxBody)

	_, rd, err := conn.NextReader()
	if err != nil {
		return err
	}
	r, err := decodeRequest(rd)
	if err == nil {
		err = h.check(r)
	}
	if err != nil {
		return errs.Combine(err, conn.WriteJSON(Message{
			Kind:  "error",
			Code:  drawscan.Code(err),
			Error: err.Error(),
		}))
	}

	seeds := r.Seeds
	if len(seeds) == 0 {
		seeds = []seedsearch.Seed{r.Seed}
	}

	var werr error
	sess, err := seedsearch.Search(ctx, seedsearch.Request{
		Seeds:  seeds,
		Params: r.Params(),
		Progress: func(seed seedsearch.Seed, matches []drawscan.Match, err error) {
			if werr != nil {
				return
			}
			if err != nil {
				werr = conn.WriteJSON(Message{
					Kind:  "error",
					Seed:  seed,
					Code:  drawscan.Code(err),
					Error: err.Error(),
				})
				return
			}
			for i := range matches {
				if werr = conn.WriteJSON(Message{
					Kind:  "match",
					Seed:  seed,
					Match: &matches[i],
				}); werr != nil {
					return
				}
			}
		},
	})
	if err != nil {
		return err
	}
	if werr != nil {
		return werr
	}

	if h.Store != nil {
		if err := h.Store.SaveSession(sess); err != nil {
			log.Printf("[ERROR] save session %s: %v", sess.ID, err)
		}
	}

	return conn.WriteJSON(Message{Kind: "summary", Session: sess})
}
