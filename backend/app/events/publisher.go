// Package events pushes control-state changes to redis for dashboards and
// schedulers that want to react without polling the HTTP API.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

type Publisher struct {
	rdb     *redis.Client
	channel string
	log     zerolog.Logger
}

type ToggleEvent struct {
	Active bool      `json:"active"`
	Reason string    `json:"reason"`
	Actor  string    `json:"actor"`
	At     time.Time `json:"at"`
}

func NewPublisher(rdb *redis.Client, channel string, log zerolog.Logger) *Publisher {
	if channel == "" {
		channel = "homeguard:events"
	}
	return &Publisher{rdb: rdb, channel: channel, log: log}
}

// PublishToggle is best-effort: a dead redis never fails a toggle. Nil
// receivers are allowed so callers need no wiring when redis is disabled.
func (p *Publisher) PublishToggle(ctx context.Context, evt ToggleEvent) {
	if p == nil || p.rdb == nil {
		return
	}
	b, err := json.Marshal(evt)
	if err != nil {
		return
	}
	if err := p.rdb.Publish(ctx, p.channel, b).Err(); err != nil {
		p.log.Warn().Err(err).Str("channel", p.channel).Msg("event publish failed")
	}
}
