package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	professionalserrors "probook/internal/professionals/errors"
	"probook/pkg/config"
	mongotx "probook/pkg/db/mongo"
	"probook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	CollectionName = "Professionals"
)

type mongoProfessionalRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

type ProfessionalRepository interface {
	Create(ctx context.Context, pro *model.Professional) error
	FindByID(ctx context.Context, id string) (*model.Professional, error)
	Update(ctx context.Context, id string, pro *model.Professional) error

	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

func NewMongoProfessionalRepository(cfg *config.Config) ProfessionalRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoProfessionalRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

// withTimeout leaves a SessionContext untouched; wrapping it would detach
// the operation from its transaction.
func (r *mongoProfessionalRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}

	deadline, hasDeadline := ctx.Deadline()
	if !hasDeadline {
		return context.WithTimeout(ctx, timeout)
	}

	remaining := time.Until(deadline)
	if remaining < timeout {
		return context.WithTimeout(ctx, remaining)
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoProfessionalRepository) Create(ctx context.Context, pro *model.Professional) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if _, err := r.collection.InsertOne(ctx, pro); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s", professionalserrors.ErrDuplicatePhone, pro.Phone)
		}
		return fmt.Errorf("failed to create professional: %w", err)
	}
	return nil
}

func (r *mongoProfessionalRepository) FindByID(ctx context.Context, id string) (*model.Professional, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var pro model.Professional
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&pro)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", professionalserrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find professional: %w", err)
	}
	return &pro, nil
}

func (r *mongoProfessionalRepository) Update(ctx context.Context, id string, pro *model.Professional) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"name":        pro.Name,
		"hourly_rate": pro.HourlyRate,
		"time_zone":   pro.TimeZone,
	}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to update professional: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", professionalserrors.ErrNotFound, id)
	}
	return nil
}
