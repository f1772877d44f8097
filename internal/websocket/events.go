package websocket

import (
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"
)

// StatusEvent 检查表状态变更事件
// 状态流转成功后推送给所有在线客户端
type StatusEvent struct {
	Type         string    `json:"type"`
	ChecksheetID string    `json:"checksheet_id"`
	SerialNumber string    `json:"serial_number"`
	Variant      string    `json:"variant"`
	FromStatus   string    `json:"from_status"`
	ToStatus     string    `json:"to_status"`
	ChangedBy    string    `json:"changed_by"`
	Timestamp    time.Time `json:"timestamp"`
}

// BroadcastStatusEvent 广播状态变更事件
func (h *Hub) BroadcastStatusEvent(event StatusEvent) {
	if event.Type == "" {
		event.Type = "status_changed"
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	data, err := json.Marshal(event)
	if err != nil {
		logrus.WithError(err).Warn("failed to marshal status event")
		return
	}

	// 非阻塞发送，避免无消费者时卡住调用方
	select {
	case h.Broadcast <- data:
	default:
		logrus.Warn("status event dropped: broadcast channel full")
	}
}

// NotifyOwner 向检查表拥有者推送事件
// 拥有者不在线时直接返回,不做序列化
func (h *Hub) NotifyOwner(ownerID string, event StatusEvent) {
	if !h.HasUser(ownerID) {
		return
	}
	if event.Type == "" {
		event.Type = "status_changed"
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	data, err := json.Marshal(event)
	if err != nil {
		logrus.WithError(err).Warn("failed to marshal status event")
		return
	}
	h.BroadcastToUser(ownerID, data)
}
