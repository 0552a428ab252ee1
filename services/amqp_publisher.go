package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/yeremiapane/drivethru-app/models"
	"github.com/yeremiapane/drivethru-app/utils"
)

const OrdersExchange = "orders_topic"

// AMQPPublisher forwards order events to a durable topic exchange so other
// systems (kitchen display, analytics) can follow the drive-thru.
type AMQPPublisher struct {
	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

func DialAMQP(url string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open amqp channel: %w", err)
	}
	if err := ch.ExchangeDeclare(OrdersExchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare %s: %w", OrdersExchange, err)
	}
	return &AMQPPublisher{conn: conn, ch: ch}, nil
}

// RoutingKey is orders.<action>, e.g. orders.placed.
func RoutingKey(event models.OrderEvent) string {
	return "orders." + string(event.Action)
}

// EncodeEvent builds the persistent message published for event.
func EncodeEvent(event models.OrderEvent) (amqp.Publishing, error) {
	body, err := json.Marshal(event)
	if err != nil {
		return amqp.Publishing{}, err
	}
	return amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		Timestamp:    event.CreatedAt.UTC(),
		ContentType:  "application/json",
		MessageId:    event.RequestID,
		Body:         body,
	}, nil
}

func (p *AMQPPublisher) Notify(ctx context.Context, event models.OrderEvent) {
	msg, err := EncodeEvent(event)
	if err != nil {
		utils.ErrorLogger.Errorf("Error encoding order event: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.ch.PublishWithContext(ctx, OrdersExchange, RoutingKey(event), false, false, msg); err != nil {
		utils.ErrorLogger.WithField("order_id", event.OrderID).Errorf("Error publishing order event: %v", err)
	}
}

func (p *AMQPPublisher) Close() {
	if p == nil {
		return
	}
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}
