package events

import (
	"context"
	"time"

	"github.com/magabrotheeeer/parish-calendar/internal/models"
)

// Виды изменений календаря. Используются как суффикс ключа маршрутизации.
const (
	OpCreated = "created"
	OpUpdated = "updated"
	OpDeleted = "deleted"
	OpSeeded  = "seeded"
)

// Change описывает одно изменение списка событий.
type Change struct {
	Op      string        `json:"op"`
	EventID string        `json:"event_id,omitempty"`
	Event   *models.Event `json:"event,omitempty"`
	Count   int           `json:"count,omitempty"`
	Synced  bool          `json:"synced"`
	At      time.Time     `json:"at"`
}

// Notifier получает уведомления об изменениях. Ошибка только логируется.
type Notifier interface {
	Notify(ctx context.Context, c Change) error
}

// Publisher: отправка сообщения в брокер по ключу маршрутизации.
type Publisher interface {
	Publish(routingKey string, message any) error
}

// BrokerNotifier публикует изменения с ключом events.<op>.
type BrokerNotifier struct {
	publisher Publisher
}

// NewBrokerNotifier оборачивает publisher в Notifier.
func NewBrokerNotifier(p Publisher) *BrokerNotifier {
	return &BrokerNotifier{publisher: p}
}

// Notify публикует изменение.
func (n *BrokerNotifier) Notify(_ context.Context, c Change) error {
	return n.publisher.Publish("events."+c.Op, c)
}

type noopNotifier struct{}

func (noopNotifier) Notify(context.Context, Change) error { return nil }
