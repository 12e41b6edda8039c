package fieldclient

import (
	"context"
	"net/url"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/cenkalti/backoff/v5"
	crerr "github.com/cockroachdb/errors"
	"github.com/gorilla/websocket"
	"github.com/riskibarqy/league-live/internal/infrastructure/realtime"
	"github.com/riskibarqy/league-live/internal/platform/logging"
)

const (
	listenerHandshakeTimeout = 10 * time.Second
	listenerMaxReconnect     = 30 * time.Second
)

type inboundFrame struct {
	Type  string         `json:"type"`
	Topic string         `json:"topic"`
	Data  map[string]any `json:"data"`
}

// LiveListener follows the server's realtime feed for a set of matches and
// marks a match conflicted as soon as the server reports it finished.
type LiveListener struct {
	endpoint string
	matchIDs []string
	queue    *Queue
	dialer   *websocket.Dialer
	logger   *logging.Logger
}

// NewLiveListener derives the websocket endpoint from the server base url.
func NewLiveListener(serverURL string, matchIDs []string, queue *Queue, logger *logging.Logger) (*LiveListener, error) {
	base, err := validateHTTPBaseURL(serverURL)
	if err != nil {
		return nil, crerr.Wrap(err, "invalid server base url")
	}
	if queue == nil {
		return nil, crerr.New("live listener needs a queue")
	}
	parsed, err := url.Parse(base)
	if err != nil {
		return nil, crerr.Wrap(err, "parse server base url")
	}
	if parsed.Scheme == "https" {
		parsed.Scheme = "wss"
	} else {
		parsed.Scheme = "ws"
	}
	parsed.Path = strings.TrimRight(parsed.Path, "/") + "/v1/realtime"

	if logger == nil {
		logger = logging.Default()
	}
	return &LiveListener{
		endpoint: parsed.String(),
		matchIDs: append([]string(nil), matchIDs...),
		queue:    queue,
		dialer:   &websocket.Dialer{HandshakeTimeout: listenerHandshakeTimeout},
		logger:   logger.Named("fieldclient.live"),
	}, nil
}

func (l *LiveListener) Endpoint() string {
	return l.endpoint
}

// Run keeps a subscription open until ctx ends, reconnecting with
// exponential backoff.
func (l *LiveListener) Run(ctx context.Context) error {
	b := backoff.NewExponentialBackOff()
	b.MaxInterval = listenerMaxReconnect

	for {
		err := l.listen(ctx, b.Reset)
		if ctx.Err() != nil {
			return nil
		}
		delay := b.NextBackOff()
		l.logger.WarnContext(ctx, "live feed disconnected", "error", err, "retry_in", delay)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}
	}
}

// listen serves one connection. connected is called once the joins went out.
func (l *LiveListener) listen(ctx context.Context, connected func()) error {
	conn, _, err := l.dialer.DialContext(ctx, l.endpoint, nil)
	if err != nil {
		return crerr.Wrapf(err, "dial %s", l.endpoint)
	}
	defer func() {
		_ = conn.Close()
	}()

	stop := context.AfterFunc(ctx, func() {
		_ = conn.Close()
	})
	defer stop()

	for _, matchID := range l.matchIDs {
		cmd := realtime.Command{Action: "join", Topic: realtime.MatchTopic(matchID)}
		if err := conn.WriteJSON(cmd); err != nil {
			return crerr.Wrapf(err, "join %s", cmd.Topic)
		}
	}
	connected()
	l.logger.InfoContext(ctx, "live feed connected", "matches", len(l.matchIDs))

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return crerr.Wrap(err, "read live frame")
		}
		var frame inboundFrame
		if err := sonic.Unmarshal(raw, &frame); err != nil {
			l.logger.DebugContext(ctx, "ignoring undecodable frame", "error", err)
			continue
		}
		l.handle(ctx, frame)
	}
}

func (l *LiveListener) handle(ctx context.Context, frame inboundFrame) {
	switch frame.Type {
	case realtime.TypeMatchFinished:
		matchID, _ := frame.Data["matchId"].(string)
		if matchID == "" {
			return
		}
		if err := l.queue.MarkConflicted(ctx, matchID); err != nil {
			l.logger.ErrorContext(ctx, "mark finished match conflicted", "match_id", matchID, "error", err)
			return
		}
		l.logger.InfoContext(ctx, "match finished on server", "match_id", matchID)
	case realtime.TypeError:
		l.logger.WarnContext(ctx, "live feed error", "topic", frame.Topic, "data", frame.Data)
	}
}
