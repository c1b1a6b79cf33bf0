package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/BenZehavi423/smart-dashboard/pkg/config"
	"github.com/BenZehavi423/smart-dashboard/pkg/model"
)

const (
	CollectionName = "Businesses"
)

// BusinessRepository is the resource lookup/authorization collaborator the
// lock coordinator consults before granting an edit lock.
type BusinessRepository interface {
	FindByName(ctx context.Context, name string) (*model.Business, error)
	CanEdit(ctx context.Context, name, identity string) (bool, error)
}

type mongoBusinessRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoBusinessRepository(cfg *config.Config) BusinessRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBusinessRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoBusinessRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

// FindByName looks a business up by its stable name, which is also the
// resource id used by the lock coordinator.
func (r *mongoBusinessRepository) FindByName(ctx context.Context, name string) (*model.Business, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var business model.Business
	err := r.collection.FindOne(ctx, bson.M{"name": name}).Decode(&business)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find business %q: %w", name, err)
	}

	return &business, nil
}

// CanEdit reports whether the identity is the owner of the business or one of
// its registered editors. Returns ErrNotFound when the business does not exist.
func (r *mongoBusinessRepository) CanEdit(ctx context.Context, name, identity string) (bool, error) {
	business, err := r.FindByName(ctx, name)
	if err != nil {
		return false, err
	}
	return business.CanBeEditedBy(identity), nil
}
