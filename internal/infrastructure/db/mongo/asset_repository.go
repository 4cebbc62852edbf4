package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ankatech/investor-admin/internal/core/domain"
)

const collectionAssets = "financial_assets"

type assetDoc struct {
	ID           string               `bson:"_id"`
	Name         string               `bson:"nome"`
	CurrentValue primitive.Decimal128 `bson:"valor_atual"`
}

func (d assetDoc) toDomain() domain.Asset {
	value, err := decimal.NewFromString(d.CurrentValue.String())
	if err != nil {
		value = decimal.Zero
	}
	return domain.Asset{ID: d.ID, Name: d.Name, CurrentValue: value}
}

func assetToDoc(a domain.Asset) (assetDoc, error) {
	value, err := primitive.ParseDecimal128(a.CurrentValue.String())
	if err != nil {
		return assetDoc{}, fmt.Errorf("asset %s value: %w", a.ID, err)
	}
	return assetDoc{ID: a.ID, Name: a.Name, CurrentValue: value}, nil
}

// AssetRepository stores the financial asset catalog.
type AssetRepository struct {
	col *mongo.Collection
}

func NewAssetRepository(db *mongo.Database) *AssetRepository {
	return &AssetRepository{col: db.Collection(collectionAssets)}
}

func (r *AssetRepository) ListAssets(ctx context.Context) ([]domain.Asset, error) {
	return r.find(ctx, bson.M{})
}

// FindByIDs returns the assets whose id is in ids, ordered by name.
func (r *AssetRepository) FindByIDs(ctx context.Context, ids []string) ([]domain.Asset, error) {
	if len(ids) == 0 {
		return []domain.Asset{}, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": ids}})
}

func (r *AssetRepository) find(ctx context.Context, filter bson.M) ([]domain.Asset, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "nome", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find assets: %w", err)
	}
	var docs []assetDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode assets: %w", err)
	}

	out := make([]domain.Asset, len(docs))
	for i, d := range docs {
		out[i] = d.toDomain()
	}
	return out, nil
}

// UpsertMany replaces or inserts each asset by id. It returns the number of
// inserted and modified documents.
func (r *AssetRepository) UpsertMany(ctx context.Context, assets []domain.Asset) (inserted, modified int64, err error) {
	if len(assets) == 0 {
		return 0, 0, nil
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	models := make([]mongo.WriteModel, 0, len(assets))
	for _, a := range assets {
		doc, err := assetToDoc(a)
		if err != nil {
			return 0, 0, err
		}
		models = append(models, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": doc.ID}).
			SetReplacement(doc).
			SetUpsert(true))
	}

	res, err := r.col.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false))
	if err != nil {
		return 0, 0, fmt.Errorf("upsert assets: %w", err)
	}
	return res.UpsertedCount, res.ModifiedCount, nil
}

// EnsureIndexes creates necessary indexes on the assets collection.
func (r *AssetRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: bson.D{{Key: "nome", Value: 1}}})
	return err
}
