package main

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/riskibarqy/league-live/internal/fieldclient"
	"github.com/riskibarqy/league-live/internal/platform/logging"
	"github.com/stretchr/testify/require"
)

type stubDeliverer struct {
	mu        sync.Mutex
	delivered []fieldclient.QueuedEvent
	state     string
}

func (d *stubDeliverer) Deliver(_ context.Context, e fieldclient.QueuedEvent) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.delivered = append(d.delivered, e)
	return nil
}

func (d *stubDeliverer) MatchState(_ context.Context, matchID string) (fieldclient.ServerMatch, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	state := d.state
	if state == "" {
		state = "LIVE"
	}
	return fieldclient.ServerMatch{ID: matchID, State: state}, nil
}

func (d *stubDeliverer) Ping(context.Context) error { return nil }

func newTestConsole(t *testing.T, d *stubDeliverer) (*console, *bytes.Buffer) {
	t.Helper()

	q, err := fieldclient.Open(context.Background(), fieldclient.NewMemoryStore(), d, fieldclient.Options{Logger: logging.NewNop()})
	require.NoError(t, err)
	t.Cleanup(q.Close)

	out := &bytes.Buffer{}
	return &console{queue: q, out: out}, out
}

func TestConsole_RecordDeliversWhenOnline(t *testing.T) {
	t.Parallel()

	d := &stubDeliverer{}
	c, out := newTestConsole(t, d)

	require.NoError(t, c.execute(context.Background(), "record m-1 goal 12 home p-9 p-10"))
	require.NoError(t, c.execute(context.Background(), `event m-1 {"type":"yellow_card","minute":30,"team_id":"away","player_id":"p-4"}`))

	require.Len(t, d.delivered, 2)
	require.Equal(t, "p-10", d.delivered[0].Payload.AssistingPlayerID)
	require.Equal(t, 30, d.delivered[1].Payload.Minute)
	require.Contains(t, out.String(), "m-1: delivered=1 remaining=0")
}

func TestConsole_OfflineKeepsEventsQueued(t *testing.T) {
	t.Parallel()

	d := &stubDeliverer{}
	c, out := newTestConsole(t, d)
	c.queue.SetOnline(false)

	require.NoError(t, c.execute(context.Background(), "record m-2 goal 5 home p-1"))
	require.Empty(t, d.delivered)

	out.Reset()
	require.NoError(t, c.execute(context.Background(), "status"))
	require.Contains(t, out.String(), "online=false pending=1")

	out.Reset()
	require.NoError(t, c.execute(context.Background(), "events m-2"))
	require.Contains(t, out.String(), "m-2 #1")
}

func TestConsole_ConflictAndResolve(t *testing.T) {
	t.Parallel()

	d := &stubDeliverer{state: "FINISHED"}
	c, out := newTestConsole(t, d)

	require.NoError(t, c.execute(context.Background(), "record m-3 red_card 88 away p-7"))
	require.Contains(t, out.String(), "not delivered yet")

	out.Reset()
	require.NoError(t, c.execute(context.Background(), "status"))
	require.Contains(t, out.String(), "conflicted: m-3")

	require.NoError(t, c.execute(context.Background(), "resolve m-3 discard"))
	out.Reset()
	require.NoError(t, c.execute(context.Background(), "events"))
	require.Contains(t, out.String(), "no queued events")

	require.Error(t, c.execute(context.Background(), "resolve m-3 merge"))
}

func TestConsole_InputErrors(t *testing.T) {
	t.Parallel()

	c, _ := newTestConsole(t, &stubDeliverer{})
	for _, line := range []string{
		"record m-1 goal",
		"record m-1 goal soon home",
		"event m-1 {not json",
		"retry",
		"dance",
	} {
		if err := c.execute(context.Background(), line); err == nil {
			t.Fatalf("expected error for %q", line)
		}
	}
	require.NoError(t, c.execute(context.Background(), "# comment"))
}

func TestConsole_RunStopsOnQuit(t *testing.T) {
	t.Parallel()

	d := &stubDeliverer{}
	c, out := newTestConsole(t, d)

	input := strings.NewReader("help\nbogus\nquit\nrecord m-1 goal 1 home p-1\n")
	require.NoError(t, c.run(context.Background(), input))
	require.Empty(t, d.delivered)
	require.Contains(t, out.String(), "commands:")
	require.Contains(t, out.String(), "error: unknown command")
}
