package realtime

import (
	"context"
	"encoding/json"
	"log"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Publisher is the best-effort realtime channel: it pushes to the
// local hub's websocket sessions and publishes to Redis so instances
// holding the user's socket elsewhere can deliver too. Every method is
// fire-and-forget; failures are logged and never returned.
type Publisher struct {
	Hub *Hub
	RDB *redis.Client
}

func NewPublisher(hub *Hub, rdb *redis.Client) *Publisher {
	return &Publisher{Hub: hub, RDB: rdb}
}

// PublishToUser sends payload on the user's private queue, e.g.
// "notifications:<userId>".
func (p *Publisher) PublishToUser(ctx context.Context, userID uuid.UUID, queue string, payload interface{}) {
	if p.Hub != nil {
		p.Hub.SendToUser(userID, payload)
	}
	if p.RDB == nil {
		return
	}

	b, err := json.Marshal(payload)
	if err != nil {
		log.Printf("realtime: marshal %s payload: %v", queue, err)
		return
	}
	if err := p.RDB.Publish(ctx, queue+":"+userID.String(), b).Err(); err != nil {
		log.Printf("realtime: publish %s for user %s: %v", queue, userID, err)
	}
}

// PublishToPair fans a conversation event out to both participants.
func (p *Publisher) PublishToPair(ctx context.Context, a, b uuid.UUID, queue string, payload interface{}) {
	p.PublishToUser(ctx, a, queue, payload)
	p.PublishToUser(ctx, b, queue, payload)
}
