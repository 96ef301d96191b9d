package libs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"saif-gifts/models"

	"github.com/segmentio/kafka-go"
)

// OrderPlacedEvent is the sales-feed record published for every checkout.
type OrderPlacedEvent struct {
	OrderID   string           `json:"order_id"`
	Owner     string           `json:"owner"`
	Guest     bool             `json:"guest"`
	Customer  string           `json:"customer"`
	Email     string           `json:"email"`
	ItemCount int              `json:"item_count"`
	Subtotal  string           `json:"subtotal"`
	Tax       string           `json:"tax"`
	Total     string           `json:"total"`
	Items     []OrderEventItem `json:"items"`
	PlacedAt  time.Time        `json:"placed_at"`
}

type OrderEventItem struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
}

func NewOrderPlacedEvent(s *models.OrderSnapshot, guest bool) OrderPlacedEvent {
	ev := OrderPlacedEvent{
		OrderID:  s.OrderID,
		Owner:    s.Owner,
		Guest:    guest,
		Customer: s.ShippingDetails.FullName,
		Email:    s.ShippingDetails.Email,
		Subtotal: s.Subtotal.StringFixed(2),
		Tax:      s.Tax.StringFixed(2),
		Total:    s.Total.StringFixed(2),
		PlacedAt: s.OrderDate,
	}
	for _, li := range s.LineItems {
		ev.ItemCount += li.Quantity
		ev.Items = append(ev.Items, OrderEventItem{
			ProductID: li.ProductID,
			Name:      li.Name,
			Quantity:  li.Quantity,
			UnitPrice: li.UnitPrice.StringFixed(2),
		})
	}
	return ev
}

type KafkaPublisher struct {
	writer  *kafka.Writer
	timeout time.Duration
}

func NewKafkaPublisher(topic string, brokers ...string) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
		RequiredAcks:           kafka.RequireOne,
	}
	return &KafkaPublisher{writer: w, timeout: 5 * time.Second}
}

// PublishOrderPlaced keys the message by order id so retries land on the same
// partition.
func (p *KafkaPublisher) PublishOrderPlaced(ctx context.Context, snapshot *models.OrderSnapshot, guest bool) error {
	payload, err := json.Marshal(NewOrderPlacedEvent(snapshot, guest))
	if err != nil {
		return fmt.Errorf("marshal order event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	msg := kafka.Message{
		Key:   []byte(snapshot.OrderID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte("order.placed")},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish order %s: %w", snapshot.OrderID, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
