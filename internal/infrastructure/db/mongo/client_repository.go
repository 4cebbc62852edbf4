package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ankatech/investor-admin/internal/core/domain"
	"github.com/ankatech/investor-admin/pkg/idx"
)

const collectionClients = "clients"

type clientDoc struct {
	ID        string    `bson:"_id"`
	Name      string    `bson:"nome"`
	Email     string    `bson:"email"`
	Status    string    `bson:"status"`
	AssetIDs  []string  `bson:"ativos_financeiros"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

func (d clientDoc) toDomain() domain.Client {
	status, _, _ := domain.ParseStatus(d.Status)
	return domain.Client{
		ID:       d.ID,
		Name:     d.Name,
		Email:    d.Email,
		Status:   status,
		AssetIDs: domain.NormalizeIDs(d.AssetIDs),
	}
}

// ClientRepository stores clients. Ids are ULIDs assigned on insert.
type ClientRepository struct {
	col    *mongo.Collection
	assets *AssetRepository
}

func NewClientRepository(db *mongo.Database, assets *AssetRepository) *ClientRepository {
	return &ClientRepository{col: db.Collection(collectionClients), assets: assets}
}

func (r *ClientRepository) ListClients(ctx context.Context) ([]domain.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "nome", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find clients: %w", err)
	}
	var docs []clientDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode clients: %w", err)
	}

	out := make([]domain.Client, len(docs))
	for i, d := range docs {
		out[i] = d.toDomain()
	}
	return out, nil
}

// CreateClient inserts a new client document.
func (r *ClientRepository) CreateClient(ctx context.Context, in domain.ClientInput) (*domain.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	now := time.Now().UTC()
	doc := clientDoc{
		ID:        idx.NewAt(now),
		Name:      in.Name,
		Email:     in.Email,
		Status:    string(in.Status),
		AssetIDs:  domain.NormalizeIDs(in.AssetIDs),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert client: %w", err)
	}
	c := doc.toDomain()
	return &c, nil
}

// UpdateClient applies the set fields of patch and returns the stored result.
func (r *ClientRepository) UpdateClient(ctx context.Context, id string, patch domain.ClientPatch) (*domain.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	set := bson.M{"updated_at": time.Now().UTC()}
	if patch.Name != nil {
		set["nome"] = *patch.Name
	}
	if patch.Email != nil {
		set["email"] = *patch.Email
	}
	if patch.Status != nil {
		set["status"] = string(*patch.Status)
	}
	if patch.AssetIDs != nil {
		set["ativos_financeiros"] = domain.NormalizeIDs(*patch.AssetIDs)
	}

	var doc clientDoc
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrClientNotFound
		}
		return nil, fmt.Errorf("update client: %w", err)
	}
	c := doc.toDomain()
	return &c, nil
}

// ListAssetsForClient resolves the client's asset ids against the asset collection.
func (r *ClientRepository) ListAssetsForClient(ctx context.Context, clientID string) ([]domain.Asset, error) {
	findCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc clientDoc
	err := r.col.FindOne(findCtx, bson.M{"_id": clientID}, options.FindOne().SetProjection(bson.M{"ativos_financeiros": 1})).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrClientNotFound
		}
		return nil, fmt.Errorf("find client: %w", err)
	}
	return r.assets.FindByIDs(ctx, doc.AssetIDs)
}

// EnsureIndexes creates necessary indexes on the clients collection.
func (r *ClientRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "nome", Value: 1}}},
		{Keys: bson.D{{Key: "email", Value: 1}}},
		{Keys: bson.D{{Key: "ativos_financeiros", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
