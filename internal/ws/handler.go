package ws

import (
	"encoding/json"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/net/websocket"
)

type Handler struct {
	hub *Hub
}

func NewHandler(hub *Hub) *Handler {
	return &Handler{hub: hub}
}

type subscribeMessage struct {
	Action    string `json:"action"`
	Channel   string `json:"channel"`
	TenantID  string `json:"tenantId"`
	AccountID string `json:"accountId"`
}

func (h *Handler) HandleWebSocket(c *gin.Context) {
	websocket.Handler(func(conn *websocket.Conn) {
		client := NewClient(conn)
		go h.writer(client)
		h.reader(client)
	}).ServeHTTP(c.Writer, c.Request)
}

func (h *Handler) reader(client *Client) {
	defer func() {
		h.hub.UnsubscribeAll(client)
		close(client.out)
		_ = client.conn.Close()
	}()

	for {
		var raw string
		if err := websocket.Message.Receive(client.conn, &raw); err != nil {
			return
		}
		var msg subscribeMessage
		if err := json.Unmarshal([]byte(raw), &msg); err != nil {
			continue
		}
		topic := subscriptionTopic(msg)
		if topic == "" {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(msg.Action)) {
		case "subscribe":
			h.hub.Subscribe(topic, client)
			ack, _ := json.Marshal(map[string]string{"event": "subscribed", "channel": topic})
			client.send(ack)
		case "unsubscribe":
			h.hub.Unsubscribe(topic, client)
			ack, _ := json.Marshal(map[string]string{"event": "unsubscribed", "channel": topic})
			client.send(ack)
		}
	}
}

func (h *Handler) writer(client *Client) {
	for payload := range client.out {
		if err := websocket.Message.Send(client.conn, string(payload)); err != nil {
			return
		}
	}
}

func subscriptionTopic(msg subscribeMessage) string {
	channel := strings.ToLower(strings.TrimSpace(msg.Channel))
	switch channel {
	case "tenant:payments":
		tenantID := strings.TrimSpace(msg.TenantID)
		if tenantID == "" {
			return ""
		}
		return "tenant:payments:" + tenantID
	case "account:payments":
		accountID := strings.TrimSpace(msg.AccountID)
		if accountID == "" {
			return ""
		}
		return "account:payments:" + accountID
	default:
		return ""
	}
}
