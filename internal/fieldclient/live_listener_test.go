package fieldclient

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/jonboulle/clockwork"
	"github.com/riskibarqy/league-live/internal/infrastructure/realtime"
	"github.com/riskibarqy/league-live/internal/platform/logging"
	"github.com/stretchr/testify/require"
)

func TestNewLiveListener_Endpoint(t *testing.T) {
	t.Parallel()

	q := newTestQueue(t, nil, newFakeDeliverer(), clockwork.NewFakeClock())

	l, err := NewLiveListener("https://league.example.com/api/", nil, q, nil)
	require.NoError(t, err)
	require.Equal(t, "wss://league.example.com/api/v1/realtime", l.Endpoint())

	l, err = NewLiveListener("http://localhost:8080", nil, q, nil)
	require.NoError(t, err)
	require.Equal(t, "ws://localhost:8080/v1/realtime", l.Endpoint())
}

func TestLiveListener_MarksFinishedMatchConflicted(t *testing.T) {
	t.Parallel()

	hub := realtime.NewHub(logging.NewNop())
	srv := httptest.NewServer(realtime.NewHandler(hub, nil, 8, logging.NewNop()))
	t.Cleanup(srv.Close)

	q := newTestQueue(t, nil, newFakeDeliverer(), clockwork.NewFakeClock())
	q.SetOnline(false)
	enqueue(t, q, "m-1", goal(90))

	l, err := NewLiveListener(srv.URL, []string{"m-1"}, q, logging.NewNop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	topic := realtime.MatchTopic("m-1")
	require.Eventually(t, func() bool {
		return hub.Subscribers(topic) == 1
	}, 2*time.Second, 10*time.Millisecond)

	raw, err := sonic.Marshal(realtime.Envelope{
		Type:   realtime.TypeMatchFinished,
		Topic:  topic,
		Data:   realtime.MatchRef{MatchID: "m-1"},
		SentAt: time.Now().UTC(),
	})
	require.NoError(t, err)
	require.Equal(t, 1, hub.Publish(topic, raw))

	require.Eventually(t, func() bool {
		status, err := q.Status(context.Background())
		return err == nil && len(status.Conflicted) == 1 && status.Conflicted[0] == "m-1"
	}, 2*time.Second, 10*time.Millisecond)
}
