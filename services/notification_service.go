package services

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log"
	"strings"

	"journal-api/models"
	"journal-api/repositories"

	"gorm.io/gorm"
)

// Notifier is the sink workflow transitions report to. Delivery is best
// effort: implementations never fail the caller.
type Notifier interface {
	Notify(ctx context.Context, req models.NotificationRequest)
}

// Mailer delivers notification emails. *config.Mailer satisfies it.
type Mailer interface {
	SendMail(to []string, subject, html string) error
}

type NotificationService interface {
	Notifier
	CreateNotification(ctx context.Context, actor models.CurrentUser, req models.CreateNotificationRequest) (*models.Notification, error)
	GetNotifications(ctx context.Context, actor models.CurrentUser) ([]models.NotificationView, error)
	GetUnreadCount(ctx context.Context, actor models.CurrentUser) (int, error)
	MarkAsRead(ctx context.Context, actor models.CurrentUser, id uint) error
	MarkAllAsRead(ctx context.Context, actor models.CurrentUser) error
	DeleteNotification(ctx context.Context, actor models.CurrentUser, id uint) error
	GetAllNotifications(ctx context.Context, actor models.CurrentUser) ([]models.Notification, error)
}

const notificationListLimit = 50

type notificationService struct {
	notificationRepo repositories.NotificationRepository
	userRepo         repositories.UserRepository
	mailer           Mailer
	baseURL          string
}

// NewNotificationService wires the store and optional mailer. A nil mailer
// disables email delivery.
func NewNotificationService(notificationRepo repositories.NotificationRepository, userRepo repositories.UserRepository, mailer Mailer, baseURL string) NotificationService {
	return &notificationService{
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
		mailer:           mailer,
		baseURL:          strings.TrimRight(baseURL, "/"),
	}
}

func (s *notificationService) Notify(ctx context.Context, req models.NotificationRequest) {
	notification := &models.Notification{
		Title:       req.Title,
		Message:     req.Message,
		Type:        req.Type,
		TargetRoles: req.TargetRoles,
		RecipientID: req.RecipientID,
		Link:        req.Link,
		CreatedBy:   req.CreatedBy,
	}
	if !notification.Type.Valid() {
		notification.Type = models.NotificationInfo
	}
	if notification.RecipientID == nil && len(notification.TargetRoles) == 0 {
		notification.TargetRoles = []string{models.TargetAll}
	}

	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		log.Printf("failed to create notification %q: %v", req.Title, err)
		return
	}

	if s.mailer == nil || req.RecipientID == nil {
		return
	}
	recipient, err := s.userRepo.GetByID(ctx, *req.RecipientID)
	if err != nil {
		log.Printf("notification %d: recipient %d lookup failed: %v", notification.ID, *req.RecipientID, err)
		return
	}
	if recipient.Email == "" {
		return
	}

	subject, body := s.renderEmail(notification)
	go func(to string) {
		if err := s.mailer.SendMail([]string{to}, subject, body); err != nil {
			log.Printf("notification %d: email to %s failed: %v", notification.ID, to, err)
		}
	}(recipient.Email)
}

func (s *notificationService) renderEmail(n *models.Notification) (string, string) {
	var b strings.Builder
	b.WriteString("<p>")
	b.WriteString(html.EscapeString(n.Message))
	b.WriteString("</p>")
	if n.Link != "" {
		link := s.baseURL + n.Link
		fmt.Fprintf(&b, `<p><a href="%s">%s</a></p>`, html.EscapeString(link), html.EscapeString(link))
	}
	return n.Title, b.String()
}

func (s *notificationService) CreateNotification(ctx context.Context, actor models.CurrentUser, req models.CreateNotificationRequest) (*models.Notification, error) {
	if !actor.IsAdmin() {
		return nil, models.NotAuthorizedError("only admins can create notifications")
	}

	kind := req.Type
	if kind == "" {
		kind = models.NotificationInfo
	}
	if !kind.Valid() {
		return nil, models.ValidationError("invalid notification type %q", req.Type)
	}

	roles := req.TargetRoles
	if len(roles) == 0 {
		roles = []string{models.TargetAll}
	}
	for _, role := range roles {
		if role != models.TargetAll && !models.UserRole(role).Valid() {
			return nil, models.ValidationError("invalid target role %q", role)
		}
	}

	notification := &models.Notification{
		Title:       req.Title,
		Message:     req.Message,
		Type:        kind,
		TargetRoles: roles,
		RecipientID: req.RecipientID,
		Link:        req.Link,
		CreatedBy:   actor.ID,
	}
	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		return nil, err
	}
	return notification, nil
}

func (s *notificationService) visible(ctx context.Context, actor models.CurrentUser) ([]models.Notification, error) {
	candidates, err := s.notificationRepo.GetCandidatesFor(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	visible := make([]models.Notification, 0, len(candidates))
	for i := range candidates {
		if candidates[i].VisibleTo(actor.ID, actor.Role) {
			visible = append(visible, candidates[i])
		}
	}
	return visible, nil
}

func (s *notificationService) GetNotifications(ctx context.Context, actor models.CurrentUser) ([]models.NotificationView, error) {
	notifications, err := s.visible(ctx, actor)
	if err != nil {
		return nil, err
	}
	if len(notifications) > notificationListLimit {
		notifications = notifications[:notificationListLimit]
	}

	ids := make([]uint, len(notifications))
	for i, n := range notifications {
		ids[i] = n.ID
	}
	read, err := s.notificationRepo.GetReadIDs(ctx, actor.ID, ids)
	if err != nil {
		return nil, err
	}

	views := make([]models.NotificationView, len(notifications))
	for i, n := range notifications {
		views[i] = models.NotificationView{
			ID:        n.ID,
			Title:     n.Title,
			Message:   n.Message,
			Type:      n.Type,
			Link:      n.Link,
			CreatedBy: n.CreatedBy,
			CreatedAt: n.CreatedAt,
			IsRead:    read[n.ID],
		}
	}
	return views, nil
}

func (s *notificationService) GetUnreadCount(ctx context.Context, actor models.CurrentUser) (int, error) {
	notifications, err := s.visible(ctx, actor)
	if err != nil {
		return 0, err
	}
	ids := make([]uint, len(notifications))
	for i, n := range notifications {
		ids[i] = n.ID
	}
	read, err := s.notificationRepo.GetReadIDs(ctx, actor.ID, ids)
	if err != nil {
		return 0, err
	}
	return len(ids) - len(read), nil
}

func (s *notificationService) MarkAsRead(ctx context.Context, actor models.CurrentUser, id uint) error {
	notification, err := s.notificationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NotFoundError("notification not found")
		}
		return err
	}
	if !notification.VisibleTo(actor.ID, actor.Role) {
		return models.NotFoundError("notification not found")
	}
	return s.notificationRepo.MarkRead(ctx, actor.ID, id)
}

func (s *notificationService) MarkAllAsRead(ctx context.Context, actor models.CurrentUser) error {
	notifications, err := s.visible(ctx, actor)
	if err != nil {
		return err
	}
	ids := make([]uint, len(notifications))
	for i, n := range notifications {
		ids[i] = n.ID
	}
	return s.notificationRepo.MarkRead(ctx, actor.ID, ids...)
}

func (s *notificationService) DeleteNotification(ctx context.Context, actor models.CurrentUser, id uint) error {
	if !actor.IsAdmin() {
		return models.NotAuthorizedError("only admins can delete notifications")
	}
	if _, err := s.notificationRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NotFoundError("notification not found")
		}
		return err
	}
	return s.notificationRepo.Delete(ctx, id)
}

func (s *notificationService) GetAllNotifications(ctx context.Context, actor models.CurrentUser) ([]models.Notification, error) {
	if !actor.IsAdmin() {
		return nil, models.NotAuthorizedError("only admins can list all notifications")
	}
	return s.notificationRepo.GetAll(ctx)
}
