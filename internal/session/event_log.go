package session

import (
	"context"
	"encoding/json"
	"fmt"

	"eqcoach/services"

	"github.com/redis/go-redis/v9"
)

const eventStreamMaxLen = 500

// EventLog appends debate session events to a capped Redis Stream per session.
type EventLog struct {
	rdb *redis.Client
}

func NewEventLog(rdb *redis.Client) *EventLog {
	return &EventLog{rdb: rdb}
}

func streamKey(sessionID string) string {
	return fmt.Sprintf("%s:debate:%s:events", keyPrefix, sessionID)
}

// Append adds one event to the session's stream.
func (l *EventLog) Append(ctx context.Context, sessionID string, ev *services.Event) error {
	if l == nil || l.rdb == nil {
		return errRedisUnavailable
	}
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return l.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: streamKey(sessionID),
		MaxLen: eventStreamMaxLen,
		Approx: true,
		Values: map[string]interface{}{"type": ev.Type, "event": string(b)},
	}).Err()
}

// Recent returns up to count of the newest events, oldest first.
func (l *EventLog) Recent(ctx context.Context, sessionID string, count int64) ([]*services.Event, error) {
	if l == nil || l.rdb == nil {
		return nil, errRedisUnavailable
	}
	msgs, err := l.rdb.XRevRangeN(ctx, streamKey(sessionID), "+", "-", count).Result()
	if err != nil {
		return nil, err
	}
	events := make([]*services.Event, 0, len(msgs))
	for i := len(msgs) - 1; i >= 0; i-- {
		raw, ok := msgs[i].Values["event"].(string)
		if !ok {
			continue
		}
		var ev services.Event
		if err := json.Unmarshal([]byte(raw), &ev); err != nil {
			continue
		}
		events = append(events, &ev)
	}
	return events, nil
}
