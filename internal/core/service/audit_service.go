package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/ankatech/investor-admin/internal/api/metrics"
	"github.com/ankatech/investor-admin/internal/core/domain"
	"github.com/ankatech/investor-admin/internal/core/ports"
)

type auditService struct {
	repo ports.AuditRepository
	log  zerolog.Logger
}

// NewAuditService returns an AuditService. With a nil repository changes are
// only logged.
func NewAuditService(repo ports.AuditRepository, log zerolog.Logger) ports.AuditService {
	return &auditService{repo: repo, log: log}
}

// Record persists a single allocation change.
func (s *auditService) Record(ctx context.Context, change domain.AllocationChange) error {
	if s.repo != nil {
		if err := s.repo.Insert(ctx, change); err != nil {
			metrics.AuditRecordedTotal.WithLabelValues("error").Inc()
			return fmt.Errorf("record allocation change: %w", err)
		}
	}
	metrics.AuditRecordedTotal.WithLabelValues("ok").Inc()

	s.log.Info().
		Str("client_id", change.ClientID).
		Str("action", string(change.Action)).
		Str("actor", change.Actor).
		Strs("assets", change.AssetIDs).
		Msg("allocation change recorded")
	return nil
}
