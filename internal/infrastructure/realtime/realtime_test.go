package realtime

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
	"github.com/riskibarqy/league-live/internal/domain/match"
	"github.com/riskibarqy/league-live/internal/domain/matchevent"
	"github.com/riskibarqy/league-live/internal/platform/logging"
	"github.com/riskibarqy/league-live/internal/usecase"
	"github.com/stretchr/testify/require"
)

var _ usecase.Notifier = (*Broadcaster)(nil)

func receive(t *testing.T, c *Client) Envelope {
	t.Helper()

	select {
	case raw := <-c.send:
		var env Envelope
		require.NoError(t, sonic.Unmarshal(raw, &env))
		return env
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for message")
	}
	return Envelope{}
}

func TestValidTopic(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want bool
	}{
		{in: "live", want: true},
		{in: "match:m-1", want: true},
		{in: "match:", want: false},
		{in: "match: ", want: false},
		{in: "tournament:t-1", want: false},
		{in: "", want: false},
	}
	for _, tt := range tests {
		if got := ValidTopic(tt.in); got != tt.want {
			t.Fatalf("ValidTopic(%q)=%v want=%v", tt.in, got, tt.want)
		}
	}
}

func TestHub_PublishSkipsFullSubscriber(t *testing.T) {
	t.Parallel()

	hub := NewHub(logging.NewNop())
	fast := newClient(hub, nil, 4, logging.NewNop())
	slow := newClient(hub, nil, 1, logging.NewNop())
	hub.Subscribe(fast, "live")
	hub.Subscribe(slow, "live")

	if got := hub.Publish("live", []byte("one")); got != 2 {
		t.Fatalf("unexpected delivered count: got=%d want=2", got)
	}
	if got := hub.Publish("live", []byte("two")); got != 1 {
		t.Fatalf("unexpected delivered count: got=%d want=1", got)
	}
	if len(fast.send) != 2 || len(slow.send) != 1 {
		t.Fatalf("unexpected buffers: fast=%d slow=%d", len(fast.send), len(slow.send))
	}
}

func TestHub_RemoveDropsEmptyTopics(t *testing.T) {
	t.Parallel()

	hub := NewHub(logging.NewNop())
	c := newClient(hub, nil, 1, logging.NewNop())
	hub.Subscribe(c, "live")
	hub.Subscribe(c, MatchTopic("m-1"))

	hub.Remove(c)
	if hub.Subscribers("live") != 0 || hub.Subscribers(MatchTopic("m-1")) != 0 {
		t.Fatalf("expected no subscribers after remove")
	}
	if got := hub.Publish("live", []byte("x")); got != 0 {
		t.Fatalf("unexpected delivered count after remove: %d", got)
	}
}

func TestBroadcaster_RoutesByTopic(t *testing.T) {
	t.Parallel()

	hub := NewHub(logging.NewNop())
	b, err := NewBroadcaster(hub, 2, logging.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close(time.Second) })

	matchSub := newClient(hub, nil, 8, logging.NewNop())
	liveSub := newClient(hub, nil, 8, logging.NewNop())
	hub.Subscribe(matchSub, MatchTopic("m-1"))
	hub.Subscribe(liveSub, TopicLive)

	m := match.Match{ID: "m-1", State: match.StateLive, CurrentMinute: 12}
	m.SetScore(1, 0)

	ctx := context.Background()
	b.MinuteUpdated(ctx, m)
	got := receive(t, matchSub)
	require.Equal(t, TypeMinuteUpdated, got.Type)
	require.Equal(t, "match:m-1", got.Topic)

	b.ScoreUpdated(ctx, m)
	got = receive(t, matchSub)
	require.Equal(t, TypeScoreUpdated, got.Type)
	data, ok := got.Data.(map[string]any)
	require.True(t, ok)
	require.EqualValues(t, 1, data["goalsHome"])

	live := receive(t, liveSub)
	require.Equal(t, TypeScoreUpdated, live.Type, "minute updates must not reach the live topic")
	require.Equal(t, TopicLive, live.Topic)
}

func TestBroadcaster_KeepsMatchOrder(t *testing.T) {
	t.Parallel()

	hub := NewHub(logging.NewNop())
	b, err := NewBroadcaster(hub, 8, logging.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close(time.Second) })

	const goals = 100
	matchSub := newClient(hub, nil, goals, logging.NewNop())
	liveSub := newClient(hub, nil, goals+1, logging.NewNop())
	hub.Subscribe(matchSub, MatchTopic("m-1"))
	hub.Subscribe(liveSub, TopicLive)

	ctx := context.Background()
	m := match.Match{ID: "m-1", State: match.StateLive}
	for i := 1; i <= goals; i++ {
		m.SetScore(i, 0)
		b.ScoreUpdated(ctx, m)
	}

	for i := 1; i <= goals; i++ {
		got := receive(t, matchSub)
		if got.Seq != uint64(i) {
			t.Fatalf("out of order frame: got seq=%d want=%d", got.Seq, i)
		}
		data := got.Data.(map[string]any)
		require.EqualValues(t, i, data["goalsHome"])
		require.EqualValues(t, i, receive(t, liveSub).Seq)
	}

	// A finished match restarts its sequence.
	b.MatchFinished(ctx, m)
	require.EqualValues(t, goals+1, receive(t, liveSub).Seq)
	b.MatchStarted(ctx, match.Match{ID: "m-1"})
	require.EqualValues(t, 1, receive(t, liveSub).Seq)
}

func TestBroadcaster_EventPayload(t *testing.T) {
	t.Parallel()

	hub := NewHub(logging.NewNop())
	b, err := NewBroadcaster(hub, 1, logging.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close(time.Second) })

	sub := newClient(hub, nil, 4, logging.NewNop())
	hub.Subscribe(sub, MatchTopic("m-9"))

	b.EventRecorded(context.Background(), match.Match{ID: "m-9"}, matchevent.Event{
		ID: "e-1", MatchID: "m-9", Type: matchevent.TypeYellowCard, Minute: 33, TeamID: "a", PlayerID: "p-7",
	})

	got := receive(t, sub)
	require.Equal(t, TypeEventRecorded, got.Type)
	data := got.Data.(map[string]any)
	event := data["event"].(map[string]any)
	require.Equal(t, "yellow_card", event["type"])
	require.Equal(t, "p-7", event["playerId"])
}

func TestHandler_JoinAndReceive(t *testing.T) {
	t.Parallel()

	hub := NewHub(logging.NewNop())
	srv := httptest.NewServer(NewHandler(hub, []string{"*"}, 8, logging.NewNop()))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))

	require.NoError(t, conn.WriteJSON(Command{Action: "join", Topic: "match:m-1"}))
	var ack Envelope
	require.NoError(t, conn.ReadJSON(&ack))
	require.Equal(t, TypeJoined, ack.Type)
	require.Equal(t, 1, hub.Subscribers("match:m-1"))

	raw, err := encode(Envelope{Type: TypeMatchFinished, Topic: "match:m-1", Data: MatchRef{MatchID: "m-1"}})
	require.NoError(t, err)
	require.Equal(t, 1, hub.Publish("match:m-1", raw))

	var got Envelope
	require.NoError(t, conn.ReadJSON(&got))
	require.Equal(t, TypeMatchFinished, got.Type)

	require.NoError(t, conn.WriteJSON(Command{Action: "join", Topic: "bogus"}))
	var rejected Envelope
	require.NoError(t, conn.ReadJSON(&rejected))
	require.Equal(t, TypeError, rejected.Type)
}

func TestOriginChecker(t *testing.T) {
	t.Parallel()

	check := originChecker([]string{"https://league.example"})
	req := httptest.NewRequest("GET", "/v1/realtime", nil)
	if !check(req) {
		t.Fatalf("expected request without Origin to pass")
	}
	req.Header.Set("Origin", "https://league.example")
	if !check(req) {
		t.Fatalf("expected listed origin to pass")
	}
	req.Header.Set("Origin", "https://evil.example")
	if check(req) {
		t.Fatalf("expected unlisted origin to fail")
	}
}
