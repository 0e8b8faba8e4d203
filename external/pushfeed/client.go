package pushfeed

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"

	"github.com/riskibarqy/prediction-settlement/internal/platform/logging"
	"github.com/riskibarqy/prediction-settlement/internal/usecase"
)

const (
	defaultMinBackoff  = 1 * time.Second
	defaultMaxBackoff  = 30 * time.Second
	defaultReadTimeout = 90 * time.Second
	writeTimeout       = 5 * time.Second
	defaultTopic       = "livescores"
	stableConnection   = time.Minute
)

// DeltaApplier receives decoded deltas. FixtureSnapshotStore satisfies it.
type DeltaApplier interface {
	ApplyLiveDelta(delta usecase.LiveDelta) bool
}

type ClientConfig struct {
	URL         string
	Token       string
	Topic       string
	Dialer      *websocket.Dialer
	ReadTimeout time.Duration
	MinBackoff  time.Duration
	MaxBackoff  time.Duration
	Logger      *logging.Logger
}

// Client keeps a subscription to the push feed open and forwards deltas.
type Client struct {
	url         string
	token       string
	topic       string
	dialer      *websocket.Dialer
	readTimeout time.Duration
	minBackoff  time.Duration
	maxBackoff  time.Duration
	applier     DeltaApplier
	logger      *logging.Logger

	received atomic.Int64
	applied  atomic.Int64
}

func NewClient(cfg ClientConfig, applier DeltaApplier) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	dialer := cfg.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}
	topic := strings.TrimSpace(cfg.Topic)
	if topic == "" {
		topic = defaultTopic
	}
	readTimeout := cfg.ReadTimeout
	if readTimeout <= 0 {
		readTimeout = defaultReadTimeout
	}
	minBackoff := cfg.MinBackoff
	if minBackoff <= 0 {
		minBackoff = defaultMinBackoff
	}
	maxBackoff := cfg.MaxBackoff
	if maxBackoff < minBackoff {
		maxBackoff = defaultMaxBackoff
		if maxBackoff < minBackoff {
			maxBackoff = minBackoff
		}
	}

	return &Client{
		url:         strings.TrimSpace(cfg.URL),
		token:       strings.TrimSpace(cfg.Token),
		topic:       topic,
		dialer:      dialer,
		readTimeout: readTimeout,
		minBackoff:  minBackoff,
		maxBackoff:  maxBackoff,
		applier:     applier,
		logger:      logger.Named("pushfeed"),
	}
}

// Received is the number of deltas decoded since start.
func (c *Client) Received() int64 { return c.received.Load() }

// Applied is the number of deltas that changed the snapshot.
func (c *Client) Applied() int64 { return c.applied.Load() }

// ConnectWithRetry connects and reconnects with exponential backoff until ctx
// is cancelled.
func (c *Client) ConnectWithRetry(ctx context.Context) {
	attempt := 0
	for {
		if ctx.Err() != nil {
			return
		}

		connStart := time.Now()
		err := c.connect(ctx)
		if ctx.Err() != nil {
			return
		}
		if time.Since(connStart) > stableConnection {
			attempt = 0
		}

		attempt++
		backoff := c.backoff(attempt)
		c.logger.WarnContext(ctx, "push feed connection lost", "attempt", attempt, "retry_in", backoff.String(), "error", err)

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

func (c *Client) backoff(attempt int) time.Duration {
	backoff := c.minBackoff
	for i := 1; i < attempt && backoff < c.maxBackoff; i++ {
		backoff *= 2
	}
	if backoff > c.maxBackoff {
		backoff = c.maxBackoff
	}
	return backoff
}

func (c *Client) connect(ctx context.Context) error {
	if c.url == "" {
		return fmt.Errorf("push feed url is required")
	}

	conn, _, err := c.dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() {
		_ = conn.Close()
	})
	defer stop()

	conn.SetPingHandler(func(appData string) error {
		_ = conn.SetReadDeadline(time.Now().Add(c.readTimeout))
		return conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(writeTimeout))
	})

	if err := c.subscribe(conn); err != nil {
		return err
	}
	c.logger.InfoContext(ctx, "push feed connected", "topic", c.topic)

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		_ = conn.SetReadDeadline(time.Now().Add(c.readTimeout))
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}

		if err := c.handleMessage(ctx, raw); err != nil {
			return err
		}
	}
}

func (c *Client) subscribe(conn *websocket.Conn) error {
	payload, err := sonic.Marshal(subscribeRequest{Op: "subscribe", Token: c.token, Topic: c.topic})
	if err != nil {
		return fmt.Errorf("encode subscribe: %w", err)
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	return nil
}

// handleMessage applies deltas. Only a server-side error message ends the
// connection; malformed frames are logged and skipped.
func (c *Client) handleMessage(ctx context.Context, raw []byte) error {
	var msg envelope
	if err := sonic.Unmarshal(raw, &msg); err != nil {
		c.logger.WarnContext(ctx, "decode push message failed", "error", err)
		return nil
	}

	switch msg.Type {
	case messageTypeAck:
		return nil
	case messageTypeError:
		return fmt.Errorf("push feed error: %s", msg.Message)
	case messageTypeDelta:
		c.apply(msg.deltaMessage)
	case messageTypeBatch:
		for _, item := range msg.Items {
			c.apply(item)
		}
	default:
		c.logger.DebugContext(ctx, "ignored push message", "type", msg.Type)
	}
	return nil
}

func (c *Client) apply(msg deltaMessage) {
	delta, ok := msg.toLiveDelta()
	if !ok {
		return
	}
	c.received.Add(1)
	if c.applier != nil && c.applier.ApplyLiveDelta(delta) {
		c.applied.Add(1)
	}
}
