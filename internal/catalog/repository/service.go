package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	catalogerrors "probook/internal/catalog/errors"
	"probook/pkg/config"
	"probook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Services"
)

type ServiceRepository interface {
	Create(ctx context.Context, svc *model.Service) error
	FindByID(ctx context.Context, id string) (*model.Service, error)
	FindByProfessional(ctx context.Context, professionalID string, activeOnly bool) ([]*model.Service, error)
	Update(ctx context.Context, id string, svc *model.Service) error
	SetActive(ctx context.Context, id string, active bool) error
}

type mongoServiceRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoServiceRepository(cfg *config.Config) ServiceRepository {
	return &mongoServiceRepository{
		cfg:        cfg,
		collection: cfg.Client.Mongo.Database(cfg.MongoDatabaseName).Collection(CollectionName),
	}
}

func (r *mongoServiceRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < timeout {
		return context.WithDeadline(ctx, deadline)
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoServiceRepository) Create(ctx context.Context, svc *model.Service) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if _, err := r.collection.InsertOne(ctx, svc); err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}
	return nil
}

func (r *mongoServiceRepository) FindByID(ctx context.Context, id string) (*model.Service, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var svc model.Service
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&svc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", catalogerrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find service: %w", err)
	}
	return &svc, nil
}

func (r *mongoServiceRepository) FindByProfessional(ctx context.Context, professionalID string, activeOnly bool) ([]*model.Service, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{"professional_id": professionalID}
	if activeOnly {
		filter["is_active"] = true
	}

	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to query services: %w", err)
	}
	defer cursor.Close(ctx)

	var services []*model.Service
	if err = cursor.All(ctx, &services); err != nil {
		return nil, fmt.Errorf("failed to decode services: %w", err)
	}
	return services, nil
}

func (r *mongoServiceRepository) Update(ctx context.Context, id string, svc *model.Service) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"name":             svc.Name,
		"duration_minutes": svc.DurationMinutes,
		"price":            svc.Price,
		"is_active":        svc.IsActive,
	}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to update service: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", catalogerrors.ErrNotFound, id)
	}
	return nil
}

func (r *mongoServiceRepository) SetActive(ctx context.Context, id string, active bool) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"is_active": active}})
	if err != nil {
		return fmt.Errorf("failed to update service: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", catalogerrors.ErrNotFound, id)
	}
	return nil
}
