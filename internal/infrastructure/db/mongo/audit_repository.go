package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ankatech/investor-admin/internal/core/domain"
	"github.com/ankatech/investor-admin/internal/core/ports"
)

const collectionAllocationChanges = "allocation_changes"

// AuditRepository implements ports.AuditRepository using MongoDB.
type AuditRepository struct {
	col *mongo.Collection
}

func NewAuditRepository(db *mongo.Database) ports.AuditRepository {
	return &AuditRepository{col: db.Collection(collectionAllocationChanges)}
}

// Insert persists an allocation change to the audit collection.
func (r *AuditRepository) Insert(ctx context.Context, change domain.AllocationChange) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := bson.M{
		"client_id":    change.ClientID,
		"action":       string(change.Action),
		"actor":        change.Actor,
		"at":           change.At.UTC(),
		"processed_at": time.Now().UTC(),
	}
	if change.Name != "" {
		doc["nome"] = change.Name
	}
	if change.Status != "" {
		doc["status"] = string(change.Status)
	}
	if change.AssetIDs != nil {
		doc["ativos_financeiros"] = change.AssetIDs
	}

	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert allocation change: %w", err)
	}
	return nil
}
