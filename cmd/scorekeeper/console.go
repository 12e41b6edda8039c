package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/league-live/internal/domain/matchevent"
	"github.com/riskibarqy/league-live/internal/fieldclient"
)

var errQuit = crerr.New("quit")

const usage = `commands:
  record <match> <type> <minute> <team> [player] [assist]
  event <match> <json draft>
  flush [match]
  retry <match>
  resolve <match> discard|reapply
  events [match]
  status
  clear
  quit`

// console turns operator input lines into queue operations. Results go to
// out; failures are reported inline so one bad line never stops the loop.
type console struct {
	queue *fieldclient.Queue
	out   io.Writer
}

func (c *console) run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		err := c.execute(ctx, scanner.Text())
		if crerr.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			fmt.Fprintf(c.out, "error: %v\n", err)
		}
	}
	return scanner.Err()
}

func (c *console) execute(ctx context.Context, line string) error {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return nil
	}

	cmd, rest, _ := strings.Cut(line, " ")
	args := strings.Fields(rest)
	switch strings.ToLower(cmd) {
	case "record":
		return c.record(ctx, args)
	case "event":
		return c.event(ctx, rest)
	case "flush":
		return c.flush(ctx, args)
	case "retry":
		if len(args) != 1 {
			return crerr.New("usage: retry <match>")
		}
		res, err := c.queue.RetryFailed(ctx, args[0])
		c.printResult(res)
		return err
	case "resolve":
		if len(args) != 2 {
			return crerr.New("usage: resolve <match> discard|reapply")
		}
		res, err := c.queue.ResolveConflict(ctx, args[0], fieldclient.Resolution(strings.ToLower(args[1])))
		c.printResult(res)
		return err
	case "events":
		matchID := ""
		if len(args) > 0 {
			matchID = args[0]
		}
		return c.events(ctx, matchID)
	case "status":
		return c.status(ctx)
	case "clear":
		if err := c.queue.Clear(ctx); err != nil {
			return err
		}
		fmt.Fprintln(c.out, "queue cleared")
		return nil
	case "help":
		fmt.Fprintln(c.out, usage)
		return nil
	case "quit", "exit":
		return errQuit
	default:
		return crerr.Newf("unknown command %q, try help", cmd)
	}
}

func (c *console) record(ctx context.Context, args []string) error {
	if len(args) < 4 || len(args) > 6 {
		return crerr.New("usage: record <match> <type> <minute> <team> [player] [assist]")
	}
	minute, err := strconv.Atoi(args[2])
	if err != nil {
		return crerr.Wrapf(err, "invalid minute %q", args[2])
	}

	draft := matchevent.Draft{
		Type:   matchevent.Type(strings.ToLower(args[1])),
		Minute: minute,
		TeamID: args[3],
	}
	if len(args) > 4 {
		draft.PlayerID = args[4]
	}
	if len(args) > 5 {
		draft.AssistingPlayerID = args[5]
	}
	return c.enqueue(ctx, args[0], draft)
}

func (c *console) event(ctx context.Context, rest string) error {
	matchID, raw, ok := strings.Cut(strings.TrimSpace(rest), " ")
	if !ok || strings.TrimSpace(raw) == "" {
		return crerr.New("usage: event <match> <json draft>")
	}

	var draft matchevent.Draft
	if err := sonic.UnmarshalString(raw, &draft); err != nil {
		return crerr.Wrap(err, "decode event draft")
	}
	return c.enqueue(ctx, matchID, draft)
}

func (c *console) enqueue(ctx context.Context, matchID string, draft matchevent.Draft) error {
	id, err := c.queue.Enqueue(ctx, matchID, draft)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "queued %s %s %d' for %s\n", id, draft.Type, draft.Minute, matchID)

	if !c.queue.Online() {
		return nil
	}
	res, err := c.queue.Flush(ctx, matchID)
	if err != nil {
		// stays queued; the monitor or a retry timer picks it up
		fmt.Fprintf(c.out, "not delivered yet: %v\n", err)
		return nil
	}
	c.printResult(res)
	return nil
}

func (c *console) flush(ctx context.Context, args []string) error {
	if len(args) > 0 {
		res, err := c.queue.Flush(ctx, args[0])
		c.printResult(res)
		return err
	}

	results, err := c.queue.FlushAll(ctx)
	if err != nil {
		return err
	}
	for _, res := range results {
		c.printResult(res)
		if res.Err != nil {
			fmt.Fprintf(c.out, "  %s: %v\n", res.MatchID, res.Err)
		}
	}
	return nil
}

func (c *console) events(ctx context.Context, matchID string) error {
	items, err := c.queue.Events(ctx, matchID)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Fprintln(c.out, "no queued events")
		return nil
	}
	for _, e := range items {
		line := fmt.Sprintf("%s #%d %s %s %d' %s retries=%d", e.MatchID, e.Seq, e.ID, e.Payload.Type, e.Payload.Minute, e.Status, e.RetryCount)
		if e.LastError != "" {
			line += " last_error=" + strconv.Quote(e.LastError)
		}
		fmt.Fprintln(c.out, line)
	}
	return nil
}

func (c *console) status(ctx context.Context) error {
	report, err := c.queue.Status(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "online=%t pending=%d syncing=%d failed=%d\n", report.Online, report.Pending, report.Syncing, report.Failed)
	if len(report.Conflicted) > 0 {
		fmt.Fprintf(c.out, "conflicted: %s\n", strings.Join(report.Conflicted, ", "))
	}
	return nil
}

func (c *console) printResult(res fieldclient.FlushResult) {
	if res.MatchID == "" {
		return
	}
	fmt.Fprintf(c.out, "%s: delivered=%d remaining=%d blocked=%t\n", res.MatchID, res.Delivered, res.Remaining, res.Blocked)
}
