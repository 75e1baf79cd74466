package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	reviewserrors "probook/internal/reviews/errors"
	"probook/pkg/config"
	"probook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Reviews"
)

type ReviewRepository interface {
	// Create fails with ErrAlreadyReviewed when the reservation has a review.
	Create(ctx context.Context, review *model.Review) error
	FindByReservationID(ctx context.Context, reservationID string) (*model.Review, error)
	FindByProfessional(ctx context.Context, professionalID string, limit int, offset int64) ([]*model.Review, error)
	CountByProfessional(ctx context.Context, professionalID string) (int64, error)
}

type mongoReviewRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoReviewRepository(cfg *config.Config) ReviewRepository {
	return &mongoReviewRepository{
		cfg:        cfg,
		collection: cfg.Client.Mongo.Database(cfg.MongoDatabaseName).Collection(CollectionName),
	}
}

func (r *mongoReviewRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < timeout {
		return context.WithDeadline(ctx, deadline)
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoReviewRepository) Create(ctx context.Context, review *model.Review) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if _, err := r.collection.InsertOne(ctx, review); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s", reviewserrors.ErrAlreadyReviewed, review.ReservationID)
		}
		return fmt.Errorf("failed to create review: %w", err)
	}
	return nil
}

func (r *mongoReviewRepository) FindByReservationID(ctx context.Context, reservationID string) (*model.Review, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var review model.Review
	if err := r.collection.FindOne(ctx, bson.M{"_id": reservationID}).Decode(&review); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", reviewserrors.ErrNotFound, reservationID)
		}
		return nil, fmt.Errorf("failed to find review: %w", err)
	}
	return &review, nil
}

func (r *mongoReviewRepository) FindByProfessional(ctx context.Context, professionalID string, limit int, offset int64) ([]*model.Review, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, bson.M{"professional_id": professionalID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query reviews: %w", err)
	}
	defer cursor.Close(ctx)

	var reviews []*model.Review
	if err = cursor.All(ctx, &reviews); err != nil {
		return nil, fmt.Errorf("failed to decode reviews: %w", err)
	}
	return reviews, nil
}

func (r *mongoReviewRepository) CountByProfessional(ctx context.Context, professionalID string) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{"professional_id": professionalID})
	if err != nil {
		return 0, fmt.Errorf("failed to count reviews: %w", err)
	}
	return count, nil
}
