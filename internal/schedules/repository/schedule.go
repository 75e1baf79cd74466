package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	scheduleserrors "probook/internal/schedules/errors"
	"probook/pkg/config"
	"probook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	CollectionName = "Schedules"
)

type mongoScheduleRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

// ScheduleRepository stores one weekly schedule per professional, keyed by
// the professional's id.
type ScheduleRepository interface {
	Create(ctx context.Context, sc *model.WeeklySchedule) error
	FindByProfessionalID(ctx context.Context, professionalID string) (*model.WeeklySchedule, error)
	ReplaceDays(ctx context.Context, professionalID string, days []model.DaySchedule, timeZone string, at time.Time) error
	SetClosedDates(ctx context.Context, professionalID string, dates []string, at time.Time) error
}

func NewMongoScheduleRepository(cfg *config.Config) ScheduleRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoScheduleRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

// withTimeout wraps the context with a timeout if not already in a transaction.
// A SessionContext is returned unchanged with a no-op cancel function, as it
// cannot be wrapped without breaking transaction semantics.
func (r *mongoScheduleRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}

	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < timeout {
		return context.WithDeadline(ctx, deadline)
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoScheduleRepository) Create(ctx context.Context, sc *model.WeeklySchedule) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	sc.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)
	if _, err := r.collection.InsertOne(ctx, sc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s", scheduleserrors.ErrAlreadyExists, sc.ProfessionalID)
		}
		return fmt.Errorf("failed to create schedule: %w", err)
	}
	return nil
}

func (r *mongoScheduleRepository) FindByProfessionalID(ctx context.Context, professionalID string) (*model.WeeklySchedule, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var sc model.WeeklySchedule
	err := r.collection.FindOne(ctx, bson.M{"_id": professionalID}).Decode(&sc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", scheduleserrors.ErrNotFound, professionalID)
		}
		return nil, fmt.Errorf("failed to find schedule: %w", err)
	}
	return &sc, nil
}

// ReplaceDays overwrites all seven days at once. Days are never removed
// individually; closing a day is IsOpen=false.
func (r *mongoScheduleRepository) ReplaceDays(ctx context.Context, professionalID string, days []model.DaySchedule, timeZone string, at time.Time) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	set := bson.M{
		"days":       days,
		"updated_at": at.UTC().Truncate(time.Millisecond),
	}
	if timeZone != "" {
		set["time_zone"] = timeZone
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": professionalID}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update schedule: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", scheduleserrors.ErrNotFound, professionalID)
	}
	return nil
}

func (r *mongoScheduleRepository) SetClosedDates(ctx context.Context, professionalID string, dates []string, at time.Time) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"closed_dates": dates,
		"updated_at":   at.UTC().Truncate(time.Millisecond),
	}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": professionalID}, update)
	if err != nil {
		return fmt.Errorf("failed to update closed dates: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", scheduleserrors.ErrNotFound, professionalID)
	}
	return nil
}
