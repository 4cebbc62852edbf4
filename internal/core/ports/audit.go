package ports

import (
	"context"

	"github.com/ankatech/investor-admin/internal/core/domain"
)

// AuditRepository persists allocation change records.
type AuditRepository interface {
	Insert(ctx context.Context, change domain.AllocationChange) error
}

// AuditService records a single allocation change.
type AuditService interface {
	Record(ctx context.Context, change domain.AllocationChange) error
}

// AuditSink accepts changes for asynchronous recording. Enqueue never blocks
// the caller for long.
type AuditSink interface {
	Enqueue(change domain.AllocationChange)
}

// SubmissionGuard rejects the second use of a form submission token.
type SubmissionGuard interface {
	// Claim returns true the first time token is seen within the guard's TTL.
	Claim(ctx context.Context, token string) (bool, error)
}
