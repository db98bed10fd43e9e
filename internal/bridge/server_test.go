package bridge

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/routeboard/internal/games/routing/core"
	"github.com/vovakirdan/routeboard/internal/storage"
)

type memorySaver struct {
	mu      sync.Mutex
	records []storage.EpisodeRecord
}

func (m *memorySaver) SaveEpisode(e storage.EpisodeRecord) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, e)
	return int64(len(m.records)), nil
}

func (m *memorySaver) all() []storage.EpisodeRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]storage.EpisodeRecord(nil), m.records...)
}

func startServer(t *testing.T, store EpisodeSaver) *httptest.Server {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Store = store
	cfg.Logger = log.New(io.Discard)
	ts := httptest.NewServer(NewServer(cfg).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func dial(t *testing.T, ts *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/env?" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func request(t *testing.T, conn *websocket.Conn, typ string, data any) Message {
	t.Helper()
	msg := Message{Type: typ}
	if data != nil {
		raw, err := json.Marshal(data)
		require.NoError(t, err)
		msg.Data = raw
	}
	require.NoError(t, conn.WriteJSON(msg))

	var reply Message
	require.NoError(t, conn.ReadJSON(&reply))
	return reply
}

func decode[T any](t *testing.T, msg Message) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(msg.Data, &v))
	return v
}

func TestHealthz(t *testing.T) {
	ts := startServer(t, nil)
	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "ok", string(body))
}

func TestResetMatchesLocalEnv(t *testing.T) {
	ts := startServer(t, nil)
	conn := dial(t, ts, "variant=routing&seed=11")

	reply := request(t, conn, TypeReset, nil)
	require.Equal(t, TypeObservation, reply.Type)
	got := decode[ObservationPayload](t, reply)

	env, err := core.NewEnv(core.Config{Rules: core.StandardRules(), Seed: 11})
	require.NoError(t, err)
	require.Equal(t, FromCore(env.Observation()), got.Observation)
	require.False(t, got.Terminated)
	require.Nil(t, got.Score)
}

func TestPlayEpisodeOverBridge(t *testing.T) {
	saver := &memorySaver{}
	ts := startServer(t, saver)
	conn := dial(t, ts, "variant=routing_classic&seed=4")

	rules := decode[RulesPayload](t, request(t, conn, TypeRules, nil))
	require.Equal(t, "routing_classic", rules.Variant)
	require.Equal(t, 5, rules.Categories)
	require.Equal(t, core.ClassicRules(), rules.Rules)

	obs := decode[ObservationPayload](t, request(t, conn, TypeReset, nil))
	for !obs.Terminated {
		suggestion := decode[ActionPayload](t, request(t, conn, TypeSuggest, nil))
		require.Equal(t, "flow", suggestion.Router)
		require.Len(t, suggestion.Action, 100)

		reply := request(t, conn, TypeStep, StepRequest{Action: suggestion.Action})
		require.Equal(t, TypeObservation, reply.Type)
		obs = decode[ObservationPayload](t, reply)
	}
	require.NotNil(t, obs.Score)
	require.Equal(t, -float64(obs.Score.Total), obs.Reward)
	require.Equal(t, "terminated", obs.Observation.Phase)

	render := decode[RenderPayload](t, request(t, conn, TypeRender, nil))
	require.Contains(t, render.Text, "Phase: terminated")

	// Stepping a finished episode is reported, not fatal.
	reply := request(t, conn, TypeStep, StepRequest{Action: make(core.Action, 100)})
	require.Equal(t, TypeError, reply.Type)
	require.Equal(t, CodeTerminated, decode[ErrorPayload](t, reply).Code)

	records := saver.all()
	require.Len(t, records, 1)
	require.Equal(t, "routing_classic", records[0].Variant)
	require.Equal(t, int64(4), records[0].Seed)
	require.Equal(t, obs.Score.Total, records[0].Score)
	require.Equal(t, storage.SourceBridge, records[0].Source)
}

func TestErrorsKeepConnectionOpen(t *testing.T) {
	ts := startServer(t, nil)
	conn := dial(t, ts, "seed=1")

	tests := []struct {
		name string
		typ  string
		data any
		code string
	}{
		{"short action", TypeStep, StepRequest{Action: core.Action{0, 1}}, core.CodeActionLength},
		{"bad category", TypeStep, StepRequest{Action: badCategory()}, core.CodeActionCategory},
		{"unknown type", "teleport", nil, CodeUnknownType},
		{"bad payload", TypeStep, "not an object", CodeBadMessage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reply := request(t, conn, tt.typ, tt.data)
			require.Equal(t, TypeError, reply.Type)
			require.Equal(t, tt.code, decode[ErrorPayload](t, reply).Code)
		})
	}

	// Still usable.
	reply := request(t, conn, TypeReset, nil)
	require.Equal(t, TypeObservation, reply.Type)
}

func badCategory() core.Action {
	a := make(core.Action, 100)
	a[7] = 4 // standard rules have four categories
	return a
}

func TestResetWithSeed(t *testing.T) {
	ts := startServer(t, nil)
	conn := dial(t, ts, "seed=1")

	seed := int64(99)
	first := decode[ObservationPayload](t, request(t, conn, TypeReset, ResetRequest{Seed: &seed}))
	second := decode[ObservationPayload](t, request(t, conn, TypeReset, ResetRequest{Seed: &seed}))
	require.Equal(t, first.Observation, second.Observation)
}

func TestRejectsBadQuery(t *testing.T) {
	ts := startServer(t, nil)
	base := "ws" + strings.TrimPrefix(ts.URL, "http") + "/env?"

	for _, q := range []string{"variant=chess", "seed=abc"} {
		_, resp, err := websocket.DefaultDialer.Dial(base+q, nil)
		require.Error(t, err, q)
		require.NotNil(t, resp, q)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode, q)
		resp.Body.Close()
	}
}

func sessionReply[T any](t *testing.T, s *session, typ string, data any) T {
	t.Helper()
	msg := Message{Type: typ}
	if data != nil {
		raw, err := json.Marshal(data)
		require.NoError(t, err)
		msg.Data = raw
	}
	raw, err := json.Marshal(msg)
	require.NoError(t, err)
	return decode[T](t, s.handle(raw))
}

func TestFirstResetServesConnectionSeed(t *testing.T) {
	s, err := newSession("routing", core.StandardRules(), 11, "flow")
	require.NoError(t, err)

	got := sessionReply[ObservationPayload](t, s, TypeReset, nil)

	env, err := core.NewEnv(core.Config{Rules: core.StandardRules(), Seed: 11})
	require.NoError(t, err)
	require.Equal(t, FromCore(env.Observation()), got.Observation)
}

func TestSeededResetMatchesLocalEnv(t *testing.T) {
	s, err := newSession("routing", core.StandardRules(), 1, "flow")
	require.NoError(t, err)

	seed := int64(11)
	got := sessionReply[ObservationPayload](t, s, TypeReset, ResetRequest{Seed: &seed})

	env, err := core.NewEnv(core.Config{Rules: core.StandardRules(), Seed: 11})
	require.NoError(t, err)
	require.Equal(t, FromCore(env.Observation()), got.Observation)
}

func TestSuggestReproducibleAfterSeededReset(t *testing.T) {
	seed := int64(5)
	var suggestions [2]ActionPayload
	for i, initial := range []int64{100, 200} {
		s, err := newSession("routing", core.StandardRules(), initial, "random")
		require.NoError(t, err)
		sessionReply[ObservationPayload](t, s, TypeReset, ResetRequest{Seed: &seed})
		suggestions[i] = sessionReply[ActionPayload](t, s, TypeSuggest, nil)
	}
	require.Equal(t, "random", suggestions[0].Router)
	require.Equal(t, suggestions[0].Action, suggestions[1].Action)
}
