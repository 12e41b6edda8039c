package fieldclient

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/league-live/internal/platform/logging"
	"github.com/stretchr/testify/require"
)

type leagueStub struct {
	eventStatus int
	eventBody   string
	matchState  string
	posts       atomic.Int32
	lastBody    atomic.Value
}

func (s *leagueStub) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("POST /v1/matches/{matchID}/events", func(w http.ResponseWriter, r *http.Request) {
		s.posts.Add(1)
		raw, _ := io.ReadAll(r.Body)
		s.lastBody.Store(raw)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(s.eventStatus)
		_, _ = io.WriteString(w, s.eventBody)
	})
	mux.HandleFunc("GET /v1/matches/{matchID}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"apiVersion":"2.0","data":{"id":"`+r.PathValue("matchID")+`","state":"`+s.matchState+`","current_minute":71}}`)
	})
	return mux
}

func newStubDeliverer(t *testing.T, stub *leagueStub) *HTTPDeliverer {
	t.Helper()

	srv := httptest.NewServer(stub.handler())
	t.Cleanup(srv.Close)

	d, err := NewHTTPDeliverer(HTTPDelivererConfig{BaseURL: srv.URL}, logging.NewNop())
	require.NoError(t, err)
	return d
}

func queuedGoal() QueuedEvent {
	return QueuedEvent{ID: "qe-1", Seq: 1, MatchID: "m-1", Payload: goal(71), Status: StatusSyncing}
}

func TestHTTPDeliverer_SendsQueuedIDAsEventID(t *testing.T) {
	t.Parallel()

	stub := &leagueStub{eventStatus: http.StatusCreated, eventBody: `{"apiVersion":"2.0","data":{}}`, matchState: "LIVE"}
	d := newStubDeliverer(t, stub)

	require.NoError(t, d.Deliver(context.Background(), queuedGoal()))

	var body map[string]any
	require.NoError(t, sonic.Unmarshal(stub.lastBody.Load().([]byte), &body))
	require.Equal(t, "qe-1", body["event_id"])
	require.Equal(t, "goal", body["type"])
	require.Equal(t, float64(71), body["minute"])
	require.Equal(t, "team-home", body["team_id"])
	require.NotContains(t, body, "assisting_player_id")
}

func TestHTTPDeliverer_ClassifiesResponses(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
		body   string
		state  string
		want   error
	}{
		{
			name:   "finished match",
			status: http.StatusConflict,
			body:   `{"error":{"code":409,"message":"match is FINISHED","status":"FAILED_PRECONDITION"}}`,
			state:  "FINISHED",
			want:   ErrConflict,
		},
		{
			name:   "invalid transition on live match",
			status: http.StatusConflict,
			body:   `{"error":{"code":409,"message":"cannot record_event","status":"FAILED_PRECONDITION"}}`,
			state:  "SCHEDULED",
			want:   ErrRejected,
		},
		{
			name:   "event id reused",
			status: http.StatusConflict,
			body:   `{"error":{"code":409,"message":"event id exists","status":"ABORTED"}}`,
			state:  "LIVE",
			want:   ErrRejected,
		},
		{
			name:   "validation",
			status: http.StatusBadRequest,
			body:   `{"error":{"code":400,"message":"bad minute","status":"INVALID_ARGUMENT"}}`,
			state:  "LIVE",
			want:   ErrRejected,
		},
		{
			name:   "server unavailable",
			status: http.StatusServiceUnavailable,
			state:  "LIVE",
			want:   ErrDeliveryFailed,
		},
		{
			name:   "rate limited",
			status: http.StatusTooManyRequests,
			state:  "LIVE",
			want:   ErrDeliveryFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			d := newStubDeliverer(t, &leagueStub{eventStatus: tt.status, eventBody: tt.body, matchState: tt.state})
			err := d.Deliver(context.Background(), queuedGoal())
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestHTTPDeliverer_MatchState(t *testing.T) {
	t.Parallel()

	d := newStubDeliverer(t, &leagueStub{matchState: "HALF_TIME"})
	got, err := d.MatchState(context.Background(), "m-7")
	require.NoError(t, err)
	require.Equal(t, ServerMatch{ID: "m-7", State: "HALF_TIME", CurrentMinute: 71}, got)
}

func TestHTTPDeliverer_PingReportsOffline(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer((&leagueStub{}).handler())
	d, err := NewHTTPDeliverer(HTTPDelivererConfig{BaseURL: srv.URL}, logging.NewNop())
	require.NoError(t, err)
	require.NoError(t, d.Ping(context.Background()))

	srv.Close()
	require.ErrorIs(t, d.Ping(context.Background()), ErrOffline)
}

func TestHTTPDeliverer_DialFailureIsOffline(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer((&leagueStub{}).handler())
	d, err := NewHTTPDeliverer(HTTPDelivererConfig{BaseURL: srv.URL}, logging.NewNop())
	require.NoError(t, err)
	srv.Close()

	err = d.Deliver(context.Background(), queuedGoal())
	require.ErrorIs(t, err, ErrOffline)
	require.NotErrorIs(t, err, ErrDeliveryFailed)
}

func TestNewHTTPDeliverer_ValidatesBaseURL(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"", "ftp://league.local", "http://"} {
		if _, err := NewHTTPDeliverer(HTTPDelivererConfig{BaseURL: raw}, nil); err == nil {
			t.Fatalf("expected error for base url %q", raw)
		}
	}
}
