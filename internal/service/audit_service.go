package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/dmehra2102/prod-golang-projects/clinicdesk/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/clinicdesk/pkg/metrics"
)

type AuditEntry struct {
	Role         domain.Role
	Action       domain.AuditAction
	ResourceType string
	ResourceID   string
	Changes      map[string]string
}

// AuditService writes an audit trail of clinical actions to a dedicated
// logger. Entries are written synchronously; there is no buffer to drop from.
type AuditService struct {
	sessionID string
	log       *zap.Logger
	metrics   *metrics.Collector
	now       func() time.Time
}

func NewAuditService(sessionID string, m *metrics.Collector, log *zap.Logger) *AuditService {
	return &AuditService{
		sessionID: sessionID,
		log:       log.Named("audit"),
		metrics:   m,
		now:       time.Now,
	}
}

// Record is safe to call on a nil *AuditService.
func (s *AuditService) Record(_ context.Context, entry AuditEntry) {
	if s == nil {
		return
	}
	if !entry.Role.IsValid() {
		s.log.Warn("audit entry without a known role", zap.String("role", string(entry.Role)), zap.String("action", string(entry.Action)))
	}

	al := &domain.AuditLog{
		OccurredAt:   s.now(),
		SessionID:    s.sessionID,
		Role:         entry.Role,
		Action:       entry.Action,
		ResourceType: entry.ResourceType,
		ResourceID:   entry.ResourceID,
		Changes:      entry.Changes,
	}

	fields := []zap.Field{
		zap.Time("occurred_at", al.OccurredAt),
		zap.String("session_id", al.SessionID),
		zap.String("role", string(al.Role)),
		zap.String("action", string(al.Action)),
		zap.String("resource_type", al.ResourceType),
		zap.String("resource_id", al.ResourceID),
	}
	if len(al.Changes) > 0 {
		fields = append(fields, zap.Any("changes", al.Changes))
	}
	s.log.Info("audit", fields...)

	if s.metrics != nil {
		s.metrics.AuditEntriesTotal.WithLabelValues(string(al.Action)).Inc()
	}
}
