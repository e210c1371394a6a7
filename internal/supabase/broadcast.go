package supabase

import (
	"context"
	"fmt"
	"net/http"
)

type broadcastMessage struct {
	Channel string `json:"channel"`
	Type    string `json:"type"`
	Event   string `json:"event"`
	Payload any    `json:"payload"`
}

// Broadcast publishes payload as event on a realtime channel through the
// broadcast RPC.
func (c *Client) Broadcast(ctx context.Context, channel, event string, payload any) error {
	err := c.do(ctx, http.MethodPost, "/rest/v1/rpc/broadcast", nil, broadcastMessage{
		Channel: channel,
		Type:    "broadcast",
		Event:   event,
		Payload: payload,
	}, "", nil)
	if err != nil {
		return fmt.Errorf("failed to broadcast on %s: %w", channel, err)
	}
	return nil
}

// UserChannel names the per-user realtime channel for topic.
func UserChannel(userID, topic string) string {
	return fmt.Sprintf("user:%s:%s", userID, topic)
}
