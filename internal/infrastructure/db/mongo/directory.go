package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ankatech/investor-admin/internal/core/ports"
)

// Directory serves clients and assets from MongoDB.
type Directory struct {
	*ClientRepository
	*AssetRepository
	db *mongo.Database
}

var _ ports.Directory = (*Directory)(nil)

func NewDirectory(db *mongo.Database) *Directory {
	assets := NewAssetRepository(db)
	return &Directory{
		ClientRepository: NewClientRepository(db, assets),
		AssetRepository:  assets,
		db:               db,
	}
}

// EnsureIndexes creates the indexes of both collections.
func (d *Directory) EnsureIndexes(ctx context.Context) error {
	return errors.Join(
		d.ClientRepository.EnsureIndexes(ctx),
		d.AssetRepository.EnsureIndexes(ctx),
	)
}

// Ping checks the server connection.
func (d *Directory) Ping(ctx context.Context) error {
	return d.db.Client().Ping(ctx, nil)
}
