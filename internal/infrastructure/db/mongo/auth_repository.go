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
)

const operatorsCollection = "operators"

// OperatorRepository stores operators of the admin interface.
type OperatorRepository struct {
	coll *mongo.Collection
}

func NewOperatorRepository(db *mongo.Database) *OperatorRepository {
	return &OperatorRepository{coll: db.Collection(operatorsCollection)}
}

type mongoOperator struct {
	Username     string    `bson:"_id"`
	PasswordHash string    `bson:"password_hash"`
	Role         string    `bson:"role"`
	UpdatedAt    time.Time `bson:"updated_at"`
}

// Upsert creates or replaces the operator with the same username.
func (r *OperatorRepository) Upsert(ctx context.Context, user domain.User) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoOperator{
		Username:     user.Username,
		PasswordHash: user.PasswordHash,
		Role:         user.Role,
		UpdatedAt:    time.Now().UTC(),
	}
	_, err := r.coll.ReplaceOne(ctx, bson.M{"_id": user.Username}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert operator: %w", err)
	}
	return nil
}

func (r *OperatorRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mo mongoOperator
	if err := r.coll.FindOne(ctx, bson.M{"_id": username}).Decode(&mo); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find operator: %w", err)
	}

	return &domain.User{
		Username:     mo.Username,
		PasswordHash: mo.PasswordHash,
		Role:         mo.Role,
	}, nil
}
