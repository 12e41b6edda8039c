package fieldclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/league-live/internal/platform/logging"
	"github.com/riskibarqy/league-live/internal/platform/resilience"
	"github.com/valyala/bytebufferpool"
)

// Deliverer talks to the league server on behalf of the queue.
type Deliverer interface {
	// Deliver posts e using e.ID as the server event id.
	Deliver(ctx context.Context, e QueuedEvent) error
	MatchState(ctx context.Context, matchID string) (ServerMatch, error)
	Ping(ctx context.Context) error
}

type HTTPDelivererConfig struct {
	BaseURL        string
	Timeout        time.Duration
	CircuitBreaker resilience.CircuitBreakerConfig
}

type HTTPDeliverer struct {
	client  *http.Client
	baseURL string
	breaker *resilience.CircuitBreaker
	logger  *logging.Logger
}

func NewHTTPDeliverer(cfg HTTPDelivererConfig, logger *logging.Logger) (*HTTPDeliverer, error) {
	baseURL, err := validateHTTPBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, crerr.Wrap(err, "invalid server base url")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = logging.Default()
	}

	breaker := resilience.NewOptionalCircuitBreaker(resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker))
	logger = logger.Named("fieldclient.deliverer")
	breaker.OnStateChange(func(from, to resilience.CircuitState) {
		logger.Warn("delivery circuit state changed", "from", from, "to", to)
	})

	return &HTTPDeliverer{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
		breaker: breaker,
		logger:  logger,
	}, nil
}

type deliverRequest struct {
	EventID           string `json:"event_id"`
	Type              string `json:"type"`
	Minute            int    `json:"minute"`
	TeamID            string `json:"team_id"`
	PlayerID          string `json:"player_id,omitempty"`
	AssistingPlayerID string `json:"assisting_player_id,omitempty"`
	Note              string `json:"note,omitempty"`
}

type serverEnvelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

func (d *HTTPDeliverer) Deliver(ctx context.Context, e QueuedEvent) error {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	if err := sonic.ConfigDefault.NewEncoder(buf).Encode(deliverRequest{
		EventID:           e.ID,
		Type:              string(e.Payload.Type),
		Minute:            e.Payload.Minute,
		TeamID:            e.Payload.TeamID,
		PlayerID:          e.Payload.PlayerID,
		AssistingPlayerID: e.Payload.AssistingPlayerID,
		Note:              e.Payload.Note,
	}); err != nil {
		return crerr.Mark(crerr.Wrapf(err, "encode event %s", e.ID), ErrRejected)
	}

	endpoint := d.baseURL + "/v1/matches/" + url.PathEscape(e.MatchID) + "/events"
	status, env, err := d.do(ctx, http.MethodPost, endpoint, buf.B)
	if err != nil {
		return err
	}

	switch {
	case status/100 == 2:
		return nil
	case status == http.StatusConflict:
		return d.classifyConflict(ctx, e.MatchID, env)
	case isRetryableStatus(status):
		return crerr.Mark(crerr.Newf("deliver event %s: status=%d %s", e.ID, status, envelopeMessage(env)), ErrDeliveryFailed)
	default:
		return crerr.Mark(crerr.Newf("deliver event %s: status=%d %s", e.ID, status, envelopeMessage(env)), ErrRejected)
	}
}

// classifyConflict separates "match already finished" from other 409s.
// Only the former can be reconciled; an id reused on another match or a
// match in the wrong state is permanent.
func (d *HTTPDeliverer) classifyConflict(ctx context.Context, matchID string, env serverEnvelope) error {
	msg := envelopeMessage(env)
	if env.Error != nil && env.Error.Status == "FAILED_PRECONDITION" {
		server, err := d.MatchState(ctx, matchID)
		if err == nil && server.State == serverStateFinished {
			return crerr.Mark(crerr.Newf("match %s is finished: %s", matchID, msg), ErrConflict)
		}
		if err != nil && !isRejected(err) {
			return err
		}
	}
	return crerr.Mark(crerr.Newf("match %s refused event: %s", matchID, msg), ErrRejected)
}

func (d *HTTPDeliverer) MatchState(ctx context.Context, matchID string) (ServerMatch, error) {
	endpoint := d.baseURL + "/v1/matches/" + url.PathEscape(matchID)
	status, env, err := d.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return ServerMatch{}, err
	}

	switch {
	case status == http.StatusOK:
	case isRetryableStatus(status):
		return ServerMatch{}, crerr.Mark(crerr.Newf("get match %s: status=%d", matchID, status), ErrDeliveryFailed)
	default:
		return ServerMatch{}, crerr.Mark(crerr.Newf("get match %s: status=%d %s", matchID, status, envelopeMessage(env)), ErrRejected)
	}

	var out ServerMatch
	if err := sonic.Unmarshal(env.Data, &out); err != nil {
		return ServerMatch{}, crerr.Mark(crerr.Wrapf(err, "decode match %s", matchID), ErrDeliveryFailed)
	}
	return out, nil
}

func (d *HTTPDeliverer) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.baseURL+"/healthz", nil)
	if err != nil {
		return crerr.Wrap(err, "create ping request")
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return crerr.Mark(crerr.Wrap(err, "ping server"), ErrOffline)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode/100 != 2 {
		return crerr.Mark(crerr.Newf("ping server: status=%d", resp.StatusCode), ErrOffline)
	}
	return nil
}

func (d *HTTPDeliverer) do(ctx context.Context, method, endpoint string, body []byte) (int, serverEnvelope, error) {
	if err := d.breaker.Allow(); err != nil {
		return 0, serverEnvelope{}, crerr.Mark(crerr.Wrap(err, "server circuit open"), ErrDeliveryFailed)
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		d.breaker.RecordSuccess()
		return 0, serverEnvelope{}, crerr.Mark(crerr.Wrap(err, "create request"), ErrRejected)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := d.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			d.breaker.RecordSuccess()
			return 0, serverEnvelope{}, crerr.Wrapf(ctxErr, "%s %s", method, endpoint)
		}
		d.breaker.RecordFailure()
		if isDialError(err) {
			// Nothing reached the server.
			return 0, serverEnvelope{}, crerr.Mark(crerr.Wrapf(err, "%s %s", method, endpoint), ErrOffline)
		}
		return 0, serverEnvelope{}, crerr.Mark(crerr.Wrapf(err, "%s %s", method, endpoint), ErrDeliveryFailed)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if isRetryableStatus(resp.StatusCode) {
		d.breaker.RecordFailure()
	} else {
		d.breaker.RecordSuccess()
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return 0, serverEnvelope{}, crerr.Mark(crerr.Wrap(err, "read response"), ErrDeliveryFailed)
	}

	var env serverEnvelope
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := sonic.Unmarshal(raw, &env); err != nil {
			d.logger.DebugContext(ctx, "response is not an api envelope", "status", resp.StatusCode, "error", err)
		}
	}
	return resp.StatusCode, env, nil
}

func isDialError(err error) bool {
	var opErr *net.OpError
	return crerr.As(err, &opErr) && opErr.Op == "dial"
}

func envelopeMessage(env serverEnvelope) string {
	if env.Error == nil {
		return ""
	}
	return env.Error.Status + ": " + env.Error.Message
}

func isRetryableStatus(status int) bool {
	return status == http.StatusRequestTimeout ||
		status == http.StatusTooManyRequests ||
		status >= http.StatusInternalServerError
}

func validateHTTPBaseURL(raw string) (string, error) {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return "", crerr.New("value is empty")
	}

	parsed, err := url.Parse(candidate)
	if err != nil {
		return "", crerr.Wrapf(err, "parse %q", candidate)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", crerr.Newf("%q uses unsupported scheme=%q; expected http or https", candidate, parsed.Scheme)
	}
	if strings.TrimSpace(parsed.Host) == "" {
		return "", crerr.Newf("%q has empty host", candidate)
	}

	return strings.TrimRight(candidate, "/"), nil
}
