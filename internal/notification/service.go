package notification

import (
	"context"
	"fmt"
	"log"

	"github.com/meta-solidaria/meta-solidaria-backend/internal/repository"
	"github.com/meta-solidaria/meta-solidaria-backend/internal/socket"
)

// Notification event types
const (
	TypeJoinRequest = "join_request"
	TypeNewDonation = "new_donation"
	TypeNewMember   = "new_member"
	TypeInvitation  = "invitation"
)

// Event carries everything needed to notify a group leader about
// activity in their group.
type Event struct {
	Type      string
	LeaderID  string
	GroupID   string
	GroupName string
	ActorName string
	Details   string
}

// Service persists notifications and pushes them over the WebSocket
// hub. Delivery is best effort: callers dispatch after their primary
// write commits and never branch on the result.
type Service struct {
	notificationRepo repository.NotificationRepository
	broadcaster      *socket.Broadcaster
}

// NewService creates a new notification service
func NewService(notificationRepo repository.NotificationRepository) *Service {
	return &Service{
		notificationRepo: notificationRepo,
	}
}

// SetBroadcaster sets the WebSocket broadcaster
func (s *Service) SetBroadcaster(b *socket.Broadcaster) {
	s.broadcaster = b
}

// Dispatch sends the event in a fresh goroutine and swallows failures.
// The caller's transaction has already committed; a lost notification
// must never surface to the end user.
func (s *Service) Dispatch(event Event) {
	go func() {
		if err := s.deliver(context.Background(), event); err != nil {
			log.Printf("[Notification] ⚠️ delivery failed: type=%s leader=%s group=%s: %v",
				event.Type, event.LeaderID, event.GroupID, err)
		}
	}()
}

func (s *Service) deliver(ctx context.Context, event Event) error {
	if event.LeaderID == "" {
		return nil // nobody to notify
	}

	title, message := render(event)
	notification := &repository.Notification{
		UserID:  event.LeaderID,
		Type:    event.Type,
		Title:   title,
		Message: message,
		Data: map[string]interface{}{
			"groupId":   event.GroupID,
			"actorName": event.ActorName,
			"details":   event.Details,
		},
	}

	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		return err
	}

	s.push(notification)
	return nil
}

func (s *Service) push(notification *repository.Notification) {
	if s.broadcaster == nil || notification == nil {
		return
	}

	s.broadcaster.SendNotification(notification.UserID, map[string]interface{}{
		"id":        notification.ID,
		"type":      notification.Type,
		"title":     notification.Title,
		"message":   notification.Message,
		"data":      notification.Data,
		"read":      notification.Read,
		"createdAt": notification.CreatedAt,
	})
}

// List returns a page of the user's notifications, newest first.
func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]*repository.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.notificationRepo.FindByUser(ctx, userID, limit, offset)
}

// CountUnread returns how many notifications the user has not read.
func (s *Service) CountUnread(ctx context.Context, userID string) (int, error) {
	return s.notificationRepo.CountUnread(ctx, userID)
}

// MarkRead marks one of the user's notifications read.
func (s *Service) MarkRead(ctx context.Context, id, userID string) error {
	return s.notificationRepo.MarkRead(ctx, id, userID)
}

// MarkAllRead marks all of the user's notifications read.
func (s *Service) MarkAllRead(ctx context.Context, userID string) error {
	return s.notificationRepo.MarkAllRead(ctx, userID)
}

func render(event Event) (title, message string) {
	switch event.Type {
	case TypeJoinRequest:
		title = "Nova solicitação de entrada"
		message = fmt.Sprintf("%s pediu para entrar no grupo %s", event.ActorName, event.GroupName)
	case TypeNewDonation:
		title = "Nova doação registrada"
		message = fmt.Sprintf("%s registrou uma doação no grupo %s: %s", event.ActorName, event.GroupName, event.Details)
	case TypeNewMember:
		title = "Novo membro no grupo"
		message = fmt.Sprintf("%s entrou no grupo %s", event.ActorName, event.GroupName)
	case TypeInvitation:
		title = "Convite enviado"
		message = fmt.Sprintf("Convite para o grupo %s enviado para %s", event.GroupName, event.Details)
	default:
		title = "Atividade no grupo"
		message = event.Details
	}
	return title, message
}
