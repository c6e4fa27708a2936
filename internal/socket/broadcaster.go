package socket

import "fmt"

// Broadcaster provides high-level methods for broadcasting events
type Broadcaster struct {
	hub *Hub
}

// NewBroadcaster creates a new Broadcaster
func NewBroadcaster(hub *Hub) *Broadcaster {
	return &Broadcaster{hub: hub}
}

// SendNotification sends a notification to a specific user
func (b *Broadcaster) SendNotification(userID string, notification map[string]interface{}) {
	b.hub.SendToUser(userID, MessageNotification, notification)
}

// SendNotificationCount updates notification count for a user
func (b *Broadcaster) SendNotificationCount(userID string, total, unread int) {
	b.hub.SendToUser(userID, MessageNotificationCount, map[string]interface{}{
		"total":  total,
		"unread": unread,
	})
}

// BroadcastDonationRecorded broadcasts a new progress entry to group members
func (b *Broadcaster) BroadcastDonationRecorded(groupID string, entry map[string]interface{}, excludeUserID string) {
	room := fmt.Sprintf("group:%s", groupID)
	b.hub.SendToRoom(room, MessageDonationRecorded, entry, excludeUserID)
}

// BroadcastMemberAdded broadcasts a roster change to group members
func (b *Broadcaster) BroadcastMemberAdded(groupID string, member map[string]interface{}) {
	room := fmt.Sprintf("group:%s", groupID)
	b.hub.SendToRoom(room, MessageMemberAdded, member, "")
}

// BroadcastGroupUpdated broadcasts group changes to group members
func (b *Broadcaster) BroadcastGroupUpdated(groupID string, group map[string]interface{}, excludeUserID string) {
	room := fmt.Sprintf("group:%s", groupID)
	b.hub.SendToRoom(room, MessageGroupUpdated, group, excludeUserID)
}
