package firecrawl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
	"golang.org/x/time/rate"
)

const (
	wsDialTimeout = 30 * time.Second

	// maxPollFailures is the number of consecutive transient status errors
	// tolerated by the polling transport before the crawl is reported failed.
	maxPollFailures = 3
)

// Watcher delivers the events of one crawl job.
type Watcher struct {
	id        string
	events    chan Event
	cancel    context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once
}

func newWatcher(id string, cancel context.CancelFunc) *Watcher {
	return &Watcher{
		id:     id,
		events: make(chan Event),
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

// ID returns the remote job ID.
func (w *Watcher) ID() string {
	return w.id
}

// Events returns the event channel. It is closed after the terminal event,
// or without one once Close is called.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Close stops delivery and waits for the background reader to exit.
// It does not cancel the remote job; see Client.Cancel.
func (w *Watcher) Close() error {
	w.closeOnce.Do(w.cancel)
	<-w.done
	return nil
}

// emit delivers ev unless the watcher is being closed.
func (w *Watcher) emit(ctx context.Context, ev Event) bool {
	select {
	case w.events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

// Watch starts a crawl of startURL and returns a Watcher streaming its
// events. If the event stream cannot be opened, Watch falls back to polling
// the job status so the already started job is not lost.
func (c *Client) Watch(ctx context.Context, startURL string, opts CrawlOptions) (*Watcher, error) {
	id, err := c.StartCrawl(ctx, startURL, opts)
	if err != nil {
		return nil, err
	}

	wctx, cancel := context.WithCancel(ctx)
	w := newWatcher(id, cancel)

	if c.transport == TransportWebsocket {
		conn, r, err := c.dial(wctx, id)
		if err == nil {
			go c.stream(wctx, w, conn, r)
			return w, nil
		}
		c.logger.Warn("event stream unavailable, falling back to polling", "job_id", id, "error", err)
	}

	go c.poll(wctx, w)
	return w, nil
}

// websocketURL converts the REST base URL into the stream URL of a job.
func (c *Client) websocketURL(jobID string) (string, error) {
	u, err := url.Parse(c.jobURL(jobID))
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	return u.String(), nil
}

// dial opens the event stream of a job. The API key is offered as the
// websocket subprotocol, which is how the service authenticates streams.
func (c *Client) dial(ctx context.Context, jobID string) (net.Conn, io.Reader, error) {
	target, err := c.websocketURL(jobID)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrWebsocket, err)
	}

	header := http.Header{}
	header.Set("User-Agent", c.userAgent)
	dialer := ws.Dialer{
		Protocols: []string{c.apiKey},
		Header:    ws.HandshakeHeaderHTTP(header),
		Timeout:   wsDialTimeout,
	}

	conn, br, _, err := dialer.Dial(ctx, target)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrWebsocket, err)
	}

	// Frames the server sent together with the handshake response are
	// buffered in br and must be consumed before reading from conn.
	var r io.Reader = conn
	if br != nil {
		r = io.MultiReader(br, conn)
	}

	c.logger.Debug("event stream connected", "job_id", jobID)
	return conn, r, nil
}

// streamMessage is a frame of the event stream.
type streamMessage struct {
	Type  string          `json:"type"`
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error"`
}

// catchupPayload carries the pages crawled before the stream was opened.
type catchupPayload struct {
	Status string     `json:"status"`
	Data   []Document `json:"data"`
}

// stream reads the event stream until a terminal message arrives, the
// connection fails, or the watcher is closed.
func (c *Client) stream(ctx context.Context, w *Watcher, conn net.Conn, r io.Reader) {
	defer close(w.done)
	defer close(w.events)
	defer w.cancel()

	stop := context.AfterFunc(ctx, func() {
		_ = conn.Close()
	})
	defer func() {
		if stop() {
			_ = wsutil.WriteClientMessage(conn, ws.OpClose, ws.NewCloseFrameBody(ws.StatusNormalClosure, ""))
			_ = conn.Close()
		}
	}()

	rw := struct {
		io.Reader
		io.Writer
	}{r, conn}

	for {
		data, _, err := wsutil.ReadServerData(rw)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			var closed wsutil.ClosedError
			if errors.As(err, &closed) {
				err = fmt.Errorf("%w: connection closed before the crawl finished (%d %s)", ErrWebsocket, closed.Code, closed.Reason)
			} else {
				err = fmt.Errorf("%w: %w", ErrWebsocket, err)
			}
			w.emit(ctx, Event{Type: EventError, Err: err})
			return
		}

		var msg streamMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.logger.Debug("ignoring malformed stream message", "job_id", w.id, "error", err)
			continue
		}
		c.logger.Debug("stream message", "job_id", w.id, "type", msg.Type)

		if !c.dispatch(ctx, w, msg) {
			return
		}
	}
}

// dispatch emits the events of one stream message. It returns false when
// the stream is over.
func (c *Client) dispatch(ctx context.Context, w *Watcher, msg streamMessage) bool {
	switch msg.Type {
	case "catchup":
		var payload catchupPayload
		if err := json.Unmarshal(msg.Data, &payload); err != nil {
			c.logger.Debug("ignoring malformed catchup message", "job_id", w.id, "error", err)
			return true
		}
		for _, doc := range payload.Data {
			if !w.emit(ctx, documentEvent(doc)) {
				return false
			}
		}
		if ev, ok := terminalEvent(normalizeStatus(payload.Status), ""); ok {
			w.emit(ctx, ev)
			return false
		}
		return true

	case "document":
		var doc Document
		if err := json.Unmarshal(msg.Data, &doc); err != nil {
			c.logger.Debug("ignoring malformed document message", "job_id", w.id, "error", err)
			return true
		}
		return w.emit(ctx, documentEvent(doc))

	case "done":
		w.emit(ctx, Event{Type: EventDone})
		return false

	case "error":
		w.emit(ctx, Event{Type: EventError, Err: errorf(ErrCrawlFailed, msg.Error)})
		return false

	default:
		return true
	}
}

// terminalEvent returns the terminal event for a finished job status.
func terminalEvent(status JobStatus, msg string) (Event, bool) {
	switch status {
	case StatusCompleted:
		return Event{Type: EventDone}, true
	case StatusFailed:
		return Event{Type: EventError, Err: errorf(ErrCrawlFailed, msg)}, true
	case StatusCancelled:
		return Event{Type: EventError, Err: errorf(ErrCrawlCancelled, msg)}, true
	default:
		return Event{}, false
	}
}

// poll emits new pages from the status endpoint until the job finishes.
// Pages are assumed to keep their position in the result set, so only the
// tail beyond the previously seen count is emitted.
func (c *Client) poll(ctx context.Context, w *Watcher) {
	defer close(w.done)
	defer close(w.events)
	defer w.cancel()

	limiter := rate.NewLimiter(rate.Every(c.pollInterval), 1)
	seen := 0
	failures := 0

	for {
		if err := limiter.Wait(ctx); err != nil {
			return
		}

		status, err := c.CheckStatus(ctx, w.id)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			failures++
			if isRetryable(err) && failures < maxPollFailures {
				c.logger.Debug("status poll failed, retrying", "job_id", w.id, "attempt", failures, "error", err)
				continue
			}
			w.emit(ctx, Event{Type: EventError, Err: err})
			return
		}
		failures = 0

		for ; seen < len(status.Data); seen++ {
			if !w.emit(ctx, documentEvent(status.Data[seen])) {
				return
			}
		}

		if ev, ok := terminalEvent(status.Status, ""); ok {
			w.emit(ctx, ev)
			return
		}
	}
}
