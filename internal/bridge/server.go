// Package bridge exposes the routing env to external agents over a
// websocket, one env per connection.
package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/vovakirdan/routeboard/internal/agent"
	"github.com/vovakirdan/routeboard/internal/games/routing/core"
	"github.com/vovakirdan/routeboard/internal/storage"
)

// EpisodeSaver persists finished episodes.
type EpisodeSaver interface {
	SaveEpisode(e storage.EpisodeRecord) (int64, error)
}

// Config holds configuration for the bridge server.
type Config struct {
	// Address is the host:port to listen on (e.g., ":8765").
	Address string

	// Variants maps variant IDs to rules. The query parameter
	// "variant" selects one; DefaultVariant is used when it is absent.
	Variants       map[string]core.Rules
	DefaultVariant string

	// Router answers suggest requests.
	Router string

	// Store receives finished episodes. May be nil.
	Store EpisodeSaver

	Logger *log.Logger
}

// DefaultConfig returns a config serving both rule presets.
func DefaultConfig() Config {
	return Config{
		Address: ":8765",
		Variants: map[string]core.Rules{
			"routing":         core.StandardRules(),
			"routing_classic": core.ClassicRules(),
		},
		DefaultVariant: "routing",
		Router:         "flow",
	}
}

// Server is the websocket bridge.
type Server struct {
	cfg      Config
	logger   *log.Logger
	upgrader websocket.Upgrader
	http     *http.Server
}

// NewServer creates a bridge server.
func NewServer(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			Prefix:          "routeboard-bridge",
		})
	}
	if cfg.Router == "" {
		cfg.Router = "flow"
	}
	s := &Server{
		cfg:    cfg,
		logger: logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
	s.http = &http.Server{
		Addr:              cfg.Address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the HTTP routes: /env (websocket) and /healthz.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/env", s.handleEnv)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("ok"))
	})
	return mux
}

// ListenAndServe serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	s.logger.Info("starting bridge", "address", s.cfg.Address)

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.http.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.http.Shutdown(shutdownCtx)
}

func (s *Server) handleEnv(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	variant := q.Get("variant")
	if variant == "" {
		variant = s.cfg.DefaultVariant
	}
	rules, ok := s.cfg.Variants[variant]
	if !ok {
		http.Error(w, fmt.Sprintf("unknown variant %q", variant), http.StatusBadRequest)
		return
	}

	seed := time.Now().UnixNano()
	if raw := q.Get("seed"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			http.Error(w, fmt.Sprintf("invalid seed %q", raw), http.StatusBadRequest)
			return
		}
		seed = v
	}

	sess, err := newSession(variant, rules, seed, s.cfg.Router)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	defer conn.Close()

	s.logger.Info("connection opened", "remote", r.RemoteAddr, "variant", variant, "seed", seed)
	s.serve(conn, sess)
	s.logger.Info("connection closed", "remote", r.RemoteAddr, "episodes", sess.finished)
}

// serve runs the request/response loop for one connection.
func (s *Server) serve(conn *websocket.Conn, sess *session) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Debug("read error", "error", err)
			}
			return
		}

		reply := sess.handle(data)
		if sess.justFinished {
			sess.justFinished = false
			s.saveEpisode(sess)
		}
		if err := conn.WriteJSON(reply); err != nil {
			s.logger.Debug("write error", "error", err)
			return
		}
	}
}

func (s *Server) saveEpisode(sess *session) {
	score, _ := sess.env.Score()
	snap := sess.env.Snapshot()
	s.logger.Info("episode finished",
		"variant", sess.variant, "seed", sess.seed, "score", score.Total,
		"eaten", score.Eaten, "leftover", score.Leftover)

	if s.cfg.Store == nil {
		return
	}
	_, err := s.cfg.Store.SaveEpisode(storage.EpisodeRecord{
		Variant:    sess.variant,
		Seed:       sess.seed,
		Score:      score.Total,
		DrainSteps: score.DrainSteps,
		Eaten:      score.Eaten,
		Leftover:   score.Leftover,
		Placed:     snap.Placed,
		Turns:      snap.Turn,
		Source:     storage.SourceBridge,
	})
	if err != nil {
		s.logger.Warn("could not save episode", "error", err)
	}
}

// session is the per-connection env state.
type session struct {
	variant string
	seed    int64
	env     *core.Env
	router  agent.Router
	name    string // router name, to rebuild it on a seeded reset

	// fresh is set while the episode built by NewEnv is untouched, so the
	// first reset serves exactly the episode of the connection's seed.
	fresh bool

	finished     int
	justFinished bool
}

func newSession(variant string, rules core.Rules, seed int64, router string) (*session, error) {
	env, err := core.NewEnv(core.Config{Rules: rules, Seed: seed})
	if err != nil {
		return nil, err
	}
	r, err := agent.New(router, rules, seed)
	if err != nil {
		return nil, err
	}
	return &session{variant: variant, seed: seed, env: env, router: r, name: router, fresh: true}, nil
}

// handle decodes one request and builds the reply.
func (s *session) handle(data []byte) Message {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return errorMessage(CodeBadMessage, err.Error())
	}

	switch msg.Type {
	case TypeReset:
		var req ResetRequest
		if len(msg.Data) > 0 {
			if err := json.Unmarshal(msg.Data, &req); err != nil {
				return errorMessage(CodeBadMessage, err.Error())
			}
		}
		var obs core.Observation
		switch {
		case req.Seed != nil:
			r, err := agent.New(s.name, s.env.Rules(), *req.Seed)
			if err != nil {
				return errorMessage(CodeBadMessage, err.Error())
			}
			s.seed = *req.Seed
			s.router = r
			s.env.Reseed(s.seed)
			obs = s.env.Reset()
		case s.fresh:
			obs = s.env.Observation()
		default:
			obs = s.env.Reset()
		}
		s.fresh = false
		return s.observation(core.StepResult{Observation: obs, Info: map[string]any{}})

	case TypeStep:
		var req StepRequest
		if err := json.Unmarshal(msg.Data, &req); err != nil {
			return errorMessage(CodeBadMessage, err.Error())
		}
		res, err := s.env.Step(req.Action)
		if err != nil {
			return stepError(err)
		}
		s.fresh = false
		if res.Terminated {
			s.finished++
			s.justFinished = true
		}
		return s.observation(res)

	case TypeRender:
		return mustMessage(TypeRender, RenderPayload{Text: s.env.Render()})

	case TypeRules:
		rules := s.env.Rules()
		return mustMessage(TypeRules, RulesPayload{
			Variant:    s.variant,
			Categories: rules.Categories(),
			Rules:      rules,
		})

	case TypeSuggest:
		return mustMessage(TypeAction, ActionPayload{
			Router: s.router.Name(),
			Action: s.router.Act(s.env.Observation()),
		})

	default:
		return errorMessage(CodeUnknownType, fmt.Sprintf("unknown message type %q", msg.Type))
	}
}

func (s *session) observation(res core.StepResult) Message {
	p := ObservationPayload{
		Observation: FromCore(res.Observation),
		Reward:      res.Reward,
		Terminated:  res.Terminated,
		Info:        res.Info,
	}
	if score, ok := s.env.Score(); ok {
		p.Score = &score
	}
	return mustMessage(TypeObservation, p)
}

func stepError(err error) Message {
	var ae *core.ActionError
	switch {
	case errors.As(err, &ae):
		return errorMessage(ae.Code, ae.Message)
	case errors.Is(err, core.ErrTerminated):
		return errorMessage(CodeTerminated, "episode has terminated; send reset")
	default:
		return errorMessage(CodeBadMessage, err.Error())
	}
}

func errorMessage(code, message string) Message {
	return mustMessage(TypeError, ErrorPayload{Code: code, Message: message})
}

// mustMessage marshals payloads built from plain structs, which cannot fail.
func mustMessage(typ string, data any) Message {
	msg, err := newMessage(typ, data)
	if err != nil {
		panic(fmt.Sprintf("bridge: cannot encode %s payload: %v", typ, err))
	}
	return msg
}
