package services

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/HSouheill/marketplace_backend/models"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

const (
	EventOrderCreated        = "order.created"
	EventOrderPaid           = "order.paid"
	EventOrderStatusChanged  = "order.status_changed"
	EventOrderRefundRequired = "order.refund_required"
)

// EventPublisher emits order lifecycle events. Publish must not block the caller.
type EventPublisher interface {
	Publish(ctx context.Context, event models.OrderEvent)
	Close()
}

func newOrderEvent(kind string, order *models.Order) models.OrderEvent {
	return models.OrderEvent{
		ID:         uuid.New().String(),
		Type:       kind,
		OrderID:    order.ID,
		UserID:     order.User,
		Status:     order.Status,
		TotalPrice: order.TotalPrice,
		OccurredAt: time.Now().UTC(),
	}
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher buffers events in memory and writes them from one goroutine.
// Events are keyed by order id so one order's events stay on one partition.
type KafkaPublisher struct {
	w       messageWriter
	inbox   chan kafka.Message
	quit    chan struct{}
	closed  chan struct{}
	once    sync.Once
	started atomic.Bool
}

func NewKafkaPublisher(brokers []string, topic string, buf int) *KafkaPublisher {
	return newKafkaPublisher(&kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
	}, buf)
}

func newKafkaPublisher(w messageWriter, buf int) *KafkaPublisher {
	return &KafkaPublisher{
		w:      w,
		inbox:  make(chan kafka.Message, buf),
		quit:   make(chan struct{}),
		closed: make(chan struct{}),
	}
}

// Start runs the write loop until ctx is done or Close is called, then
// flushes what is left in the buffer.
func (p *KafkaPublisher) Start(ctx context.Context) {
	if !p.started.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer close(p.closed)
		for {
			select {
			case <-ctx.Done():
				p.drain()
				return
			case <-p.quit:
				p.drain()
				return
			case m := <-p.inbox:
				p.write(m)
			}
		}
	}()
}

func (p *KafkaPublisher) drain() {
	for {
		select {
		case m := <-p.inbox:
			p.write(m)
		default:
			if err := p.w.Close(); err != nil {
				log.Printf("Error closing kafka writer: %v", err)
			}
			return
		}
	}
}

func (p *KafkaPublisher) write(m kafka.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := p.w.WriteMessages(ctx, m); err != nil {
		log.Printf("Error publishing order event %s: %v", m.Key, err)
	}
}

func (p *KafkaPublisher) Publish(_ context.Context, event models.OrderEvent) {
	value, err := json.Marshal(event)
	if err != nil {
		log.Printf("Error encoding order event: %v", err)
		return
	}

	select {
	case <-p.quit:
		log.Printf("Order event %s dropped: publisher closed", event.Type)
		return
	default:
	}

	msg := kafka.Message{
		Key:   []byte(event.OrderID.Hex()),
		Value: value,
		Time:  event.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(event.Type)},
		},
	}
	select {
	case p.inbox <- msg:
	default:
		log.Printf("Order event %s for %s dropped: buffer full", event.Type, event.OrderID.Hex())
	}
}

// Close stops the loop and waits for the remaining events to be flushed.
func (p *KafkaPublisher) Close() {
	p.once.Do(func() { close(p.quit) })
	if !p.started.Load() {
		p.w.Close()
		return
	}
	<-p.closed
}

// LogPublisher is used when no brokers are configured.
type LogPublisher struct{}

func (LogPublisher) Publish(_ context.Context, event models.OrderEvent) {
	log.Printf("Order event %s: order=%s status=%s", event.Type, event.OrderID.Hex(), event.Status)
}

func (LogPublisher) Close() {}
