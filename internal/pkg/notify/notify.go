// internal/pkg/notify/notify.go
package notify

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/your-org/erp-backend/internal/config"
	"gorm.io/gorm"
)

// Importance levels for notifications
const (
	ImportanceLow    = "low"
	ImportanceMedium = "medium"
	ImportanceHigh   = "high"
)

// Notification is a fire-and-forget message raised by core events
// (low stock, order placed). Persisted for the notification feed.
type Notification struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	DedupeKey  string    `gorm:"uniqueIndex;size:36" json:"dedupe_key"`
	Title      string    `gorm:"not null;size:255" json:"title"`
	Message    string    `gorm:"type:text" json:"message"`
	Module     string    `gorm:"size:50;index" json:"module"`
	Importance string    `gorm:"size:20;default:'medium'" json:"importance"`
	From       string    `gorm:"size:100" json:"from"`
	Recipients string    `gorm:"type:text" json:"recipients"` // comma-separated emails
	IsRead     bool      `gorm:"default:false" json:"is_read"`
	CreatedAt  time.Time `json:"created_at"`
}

// Notifier is what core services call. Delivery is best-effort; the
// caller never depends on the result.
type Notifier interface {
	Notify(ctx context.Context, n *Notification)
}

// Service persists notifications and logs dispatches
type Service struct {
	db     *gorm.DB
	config *config.Config
	log    *logrus.Entry
}

// NewService creates a new notification service
func NewService(db *gorm.DB, cfg *config.Config, log *logrus.Entry) *Service {
	return &Service{
		db:     db,
		config: cfg,
		log:    log,
	}
}

// Notify records and dispatches a notification. Errors are logged and
// swallowed so a failed dispatch never fails the triggering operation.
func (s *Service) Notify(ctx context.Context, n *Notification) {
	if !s.config.Notify.Enabled {
		return
	}

	if n.From == "" {
		n.From = s.config.Notify.From
	}
	if n.Importance == "" {
		n.Importance = ImportanceMedium
	}
	n.DedupeKey = uuid.NewString()

	if err := s.db.WithContext(ctx).Create(n).Error; err != nil {
		s.log.WithError(err).WithField("title", n.Title).Warn("Failed to persist notification")
		return
	}

	s.log.WithFields(logrus.Fields{
		"title":      n.Title,
		"module":     n.Module,
		"importance": n.Importance,
	}).Info("Notification dispatched")
}

// Noop discards notifications; used where dispatch is not wired
type Noop struct{}

// Notify implements Notifier
func (Noop) Notify(ctx context.Context, n *Notification) {}
