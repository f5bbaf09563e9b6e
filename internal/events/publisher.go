package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/sirupsen/logrus"
	"storefront-service/internal/models"
)

const (
	StreamStorefront = "STOREFRONT_EVENTS"

	SubjectOrderPlaced        = "storefront.order.placed"
	SubjectOrderStatusChanged = "storefront.order.status_changed"
	SubjectProductChanged     = "storefront.product.changed"
)

// OrderEvent is published when an order is placed or changes status
type OrderEvent struct {
	EventID     string             `json:"eventId"`
	EventType   string             `json:"eventType"`
	Timestamp   time.Time          `json:"timestamp"`
	OrderID     string             `json:"orderId"`
	OrderNumber string             `json:"orderNumber"`
	UserID      string             `json:"userId"`
	Email       string             `json:"email"`
	Status      models.OrderStatus `json:"status"`
	OldStatus   models.OrderStatus `json:"oldStatus,omitempty"`
	Total       string             `json:"total"`
	Currency    string             `json:"currency"`
	Locale      models.Locale      `json:"locale"`
	ItemCount   int                `json:"itemCount"`
}

// ProductEvent is published when the back-office changes a product
type ProductEvent struct {
	EventID    string    `json:"eventId"`
	EventType  string    `json:"eventType"`
	Timestamp  time.Time `json:"timestamp"`
	ProductID  string    `json:"productId"`
	Slug       string    `json:"slug"`
	ChangeType string    `json:"changeType"`
	ActorID    string    `json:"actorId,omitempty"`
}

// Publisher publishes storefront domain events to JetStream. A nil Publisher
// is valid and drops every event.
type Publisher struct {
	nc     *nats.Conn
	js     jetstream.JetStream
	logger *logrus.Entry
}

// NewPublisher connects to NATS and ensures the storefront stream exists
func NewPublisher(natsURL string, logger *logrus.Logger) (*Publisher, error) {
	entry := logger.WithField("component", "storefront-events")

	nc, err := nats.Connect(natsURL,
		nats.Name("storefront-service"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			entry.Infof("reconnected to %s", nc.ConnectedUrl())
		}),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			entry.WithError(err).Warn("disconnected from NATS")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      StreamStorefront,
		Subjects:  []string{"storefront.>"},
		Retention: jetstream.LimitsPolicy,
		MaxAge:    7 * 24 * time.Hour,
	}); err != nil {
		entry.WithError(err).Warn("Failed to ensure storefront stream (may already exist)")
	}

	return &Publisher{nc: nc, js: js, logger: entry}, nil
}

// Close closes the NATS connection
func (p *Publisher) Close() {
	if p != nil && p.nc != nil {
		p.nc.Close()
	}
}

func (p *Publisher) PublishOrderPlaced(ctx context.Context, order *models.Order) error {
	return p.publish(ctx, SubjectOrderPlaced, newOrderEvent(SubjectOrderPlaced, order, ""))
}

func (p *Publisher) PublishOrderStatusChanged(ctx context.Context, order *models.Order, oldStatus models.OrderStatus) error {
	return p.publish(ctx, SubjectOrderStatusChanged, newOrderEvent(SubjectOrderStatusChanged, order, oldStatus))
}

func (p *Publisher) PublishProductChanged(ctx context.Context, product *models.Product, changeType, actorID string) error {
	return p.publish(ctx, SubjectProductChanged, ProductEvent{
		EventID:    uuid.NewString(),
		EventType:  SubjectProductChanged,
		Timestamp:  time.Now().UTC(),
		ProductID:  product.ID.String(),
		Slug:       product.Slug,
		ChangeType: changeType,
		ActorID:    actorID,
	})
}

func newOrderEvent(eventType string, order *models.Order, oldStatus models.OrderStatus) OrderEvent {
	items := 0
	for _, item := range order.Items {
		items += item.Quantity
	}
	return OrderEvent{
		EventID:     uuid.NewString(),
		EventType:   eventType,
		Timestamp:   time.Now().UTC(),
		OrderID:     order.ID.String(),
		OrderNumber: order.OrderNumber,
		UserID:      order.UserID.String(),
		Email:       order.Email,
		Status:      order.Status,
		OldStatus:   oldStatus,
		Total:       order.Total.StringFixed(2),
		Currency:    order.Currency,
		Locale:      order.Locale,
		ItemCount:   items,
	}
}

func (p *Publisher) publish(ctx context.Context, subject string, event interface{}) error {
	if p == nil || p.js == nil {
		return nil
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if _, err := p.js.Publish(ctx, subject, data); err != nil {
		p.logger.WithError(err).WithField("subject", subject).Error("failed to publish event")
		return err
	}
	p.logger.WithField("subject", subject).Debug("event published")
	return nil
}
