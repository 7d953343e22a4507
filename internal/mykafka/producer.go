package mykafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

const (
	defaultInboxSize = 256
	closeTimeout     = 5 * time.Second
)

var ErrProducerClosed = errors.New("kafka: producer closed")

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer hands events to a background goroutine that writes them to one
// topic. PublishEvent only blocks while the inbox is full.
type Producer struct {
	w     messageWriter
	inbox chan kafka.Message
	log   *slog.Logger

	mu      sync.RWMutex
	closing bool
	stop    chan struct{}
	closeCh chan struct{}
}

func NewProducer(brokers []string, topic string, buf int, logger *slog.Logger) *Producer {
	return newProducer(&kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}, buf, logger)
}

func newProducer(w messageWriter, buf int, logger *slog.Logger) *Producer {
	if buf <= 0 {
		buf = defaultInboxSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Producer{
		w:       w,
		inbox:   make(chan kafka.Message, buf),
		log:     logger.With("component", "kafka"),
		stop:    make(chan struct{}),
		closeCh: make(chan struct{}),
	}
}

// Start runs the writer loop. When ctx is cancelled the queued messages
// are drained before the writer is closed.
func (p *Producer) Start(ctx context.Context) {
	go func() {
		defer close(p.closeCh)
		for {
			select {
			case <-ctx.Done():
				close(p.stop)
				p.mu.Lock()
				p.closing = true
				close(p.inbox)
				p.mu.Unlock()

				drainCtx, cancel := context.WithTimeout(context.Background(), closeTimeout)
				for m := range p.inbox {
					p.write(drainCtx, m)
				}
				cancel()
				if err := p.w.Close(); err != nil {
					p.log.Error("kafka_close_error", "error", err)
				}
				return
			case m := <-p.inbox:
				p.write(ctx, m)
			}
		}
	}()
}

func (p *Producer) write(ctx context.Context, m kafka.Message) {
	if err := p.w.WriteMessages(ctx, m); err != nil {
		p.log.Error("kafka_write_error", "key", string(m.Key), "error", err)
	}
}

func (p *Producer) PublishEvent(ctx context.Context, key string, event map[string]any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("kafka: json.Marshal failed: %w", err)
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closing {
		return ErrProducerClosed
	}

	select {
	case p.inbox <- kafka.Message{Key: []byte(key), Value: data, Time: time.Now()}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-p.stop:
		return ErrProducerClosed
	}
}

// WaitClosed blocks until the loop started by Start has flushed and exited.
func (p *Producer) WaitClosed() { <-p.closeCh }
