package nats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/kirillkom/ledger-dashboard/internal/core/domain"
	"github.com/kirillkom/ledger-dashboard/internal/infrastructure/resilience"
)

const DefaultSubject = "ledger.dashboard.notices"

// Queue publishes upload outcome notices so other operators and tools can follow them.
type Queue struct {
	conn     *nats.Conn
	subject  string
	executor *resilience.Executor
}

func New(url, subject string) (*Queue, error) {
	return NewWithOptions(url, subject, Options{})
}

type Options struct {
	ConnectTimeout       time.Duration
	ReconnectWait        time.Duration
	MaxReconnects        int
	RetryOnFailedConnect *bool
	ResilienceExecutor   *resilience.Executor
	ClientName           string
}

func NewWithOptions(url, subject string, options Options) (*Queue, error) {
	connectTimeout := options.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = 2 * time.Second
	}
	reconnectWait := options.ReconnectWait
	if reconnectWait <= 0 {
		reconnectWait = 2 * time.Second
	}
	maxReconnects := options.MaxReconnects
	if maxReconnects <= 0 {
		maxReconnects = 60
	}
	retryOnFailedConnect := true
	if options.RetryOnFailedConnect != nil {
		retryOnFailedConnect = *options.RetryOnFailedConnect
	}
	clientName := options.ClientName
	if clientName == "" {
		clientName = "ledger-dashboard"
	}
	if subject == "" {
		subject = DefaultSubject
	}

	conn, err := nats.Connect(
		url,
		nats.Name(clientName),
		nats.Timeout(connectTimeout),
		nats.ReconnectWait(reconnectWait),
		nats.MaxReconnects(maxReconnects),
		nats.RetryOnFailedConnect(retryOnFailedConnect),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			slog.Warn("nats_disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			slog.Info("nats_reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return &Queue{
		conn:     conn,
		subject:  subject,
		executor: options.ResilienceExecutor,
	}, nil
}

func (q *Queue) Close() {
	if q.conn != nil {
		q.conn.Close()
	}
}

// noticeEvent is the wire form of a published notice.
type noticeEvent struct {
	Event  string        `json:"event"`
	Notice domain.Notice `json:"notice"`
}

func encodeNotice(n domain.Notice) ([]byte, error) {
	return json.Marshal(noticeEvent{Event: "upload_outcome", Notice: n})
}

func decodeNotice(data []byte) (domain.Notice, error) {
	var event noticeEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return domain.Notice{}, fmt.Errorf("decode notice event: %w", err)
	}
	if event.Notice.ID == "" {
		return domain.Notice{}, fmt.Errorf("decode notice event: missing notice id")
	}
	return event.Notice, nil
}

// Notify publishes n. Delivery is best effort: failures are logged, never returned, so a
// broker outage cannot fail an upload.
func (q *Queue) Notify(ctx context.Context, n domain.Notice) {
	if err := q.PublishNotice(ctx, n); err != nil {
		slog.WarnContext(ctx, "notice_publish_failed", "notice_id", n.ID, "subject", q.subject, "error", err)
	}
}

func (q *Queue) PublishNotice(ctx context.Context, n domain.Notice) error {
	payload, err := encodeNotice(n)
	if err != nil {
		return fmt.Errorf("encode notice: %w", err)
	}
	call := func(_ context.Context) error {
		if err := q.conn.Publish(q.subject, payload); err != nil {
			return fmt.Errorf("nats publish: %w", err)
		}
		return nil
	}

	if q.executor != nil {
		err = q.executor.Execute(ctx, "nats.publish", call, classifyNATSError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return wrapTemporaryIfNeeded(err)
	}
	return nil
}

// SubscribeNotices delivers published notices to handler until ctx is done.
func (q *Queue) SubscribeNotices(ctx context.Context, handler func(context.Context, domain.Notice) error) error {
	sub, err := q.conn.Subscribe(q.subject, func(msg *nats.Msg) {
		if errors.Is(ctx.Err(), context.Canceled) {
			return
		}
		n, err := decodeNotice(msg.Data)
		if err != nil {
			slog.Warn("notice_decode_failed", "subject", msg.Subject, "error", err)
			return
		}

		handlerCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		if err := handler(handlerCtx, n); err != nil {
			slog.Error("notice_handler_failed", "notice_id", n.ID, "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("nats subscribe: %w", err)
	}

	if err := q.conn.Flush(); err != nil {
		return fmt.Errorf("nats flush: %w", err)
	}

	<-ctx.Done()
	if err := sub.Drain(); err != nil {
		return fmt.Errorf("nats drain subscription: %w", err)
	}
	if err := q.conn.FlushTimeout(5 * time.Second); err != nil {
		return fmt.Errorf("nats flush after drain: %w", err)
	}
	return nil
}
