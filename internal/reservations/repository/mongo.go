package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	reservationserrors "probook/internal/reservations/errors"
	"probook/pkg/config"
	mongotx "probook/pkg/db/mongo"
	"probook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName      = "Reservations"
	LockCollectionName  = "Reservation_locks"
	lockSequenceField   = "seq"
	lockUpdatedAtField  = "updated_at"
	statusField         = "status"
	professionalIDField = "professional_id"
	clientIDField       = "client_id"
	startAtField        = "start_at"
	endAtField          = "end_at"
)

type mongoReservationRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	locks      *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoReservationRepository(cfg *config.Config) ReservationRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoReservationRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
		locks:      db.Collection(LockCollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

// ctxFor applies a timeout outside transactions. A SessionContext cannot be
// wrapped without losing the session.
func (r *mongoReservationRepository) ctxFor(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return withTimeout(ctx, timeout)
}

// CreateIfFree bumps the professional's guard document before reading, so
// two transactions booking the same professional always write the same
// document and one of them aborts with a write conflict. WithTransaction
// retries the loser, which then sees the winner's insert.
func (r *mongoReservationRepository) CreateIfFree(ctx context.Context, res *model.Reservation) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	return r.txManager.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		_, err := r.locks.UpdateOne(sessCtx,
			bson.M{"_id": res.ProfessionalID},
			bson.M{
				"$inc": bson.M{lockSequenceField: 1},
				"$set": bson.M{lockUpdatedAtField: time.Now().UTC()},
			},
			options.Update().SetUpsert(true),
		)
		if err != nil {
			return fmt.Errorf("failed to acquire professional guard: %w", err)
		}

		count, err := r.collection.CountDocuments(sessCtx, overlapFilter(res.ProfessionalID, res.StartAt, res.EndAt))
		if err != nil {
			return fmt.Errorf("failed to check overlapping reservations: %w", err)
		}
		if count > 0 {
			return reservationserrors.ErrSlotTaken
		}

		if _, err := r.collection.InsertOne(sessCtx, res); err != nil {
			return fmt.Errorf("failed to create reservation: %w", err)
		}
		return nil
	})
}

func (r *mongoReservationRepository) FindByID(ctx context.Context, id string) (*model.Reservation, error) {
	ctx, cancel := r.ctxFor(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var res model.Reservation
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&res); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, reservationserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find reservation: %w", err)
	}
	return &res, nil
}

func (r *mongoReservationRepository) FindActiveOverlapping(ctx context.Context, professionalID string, start, end time.Time) ([]*model.Reservation, error) {
	ctx, cancel := r.ctxFor(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: startAtField, Value: 1}})
	return r.find(ctx, overlapFilter(professionalID, start, end), opts)
}

func (r *mongoReservationRepository) ListByProfessional(ctx context.Context, professionalID string, filter model.ReservationFilter) ([]*model.Reservation, error) {
	ctx, cancel := r.ctxFor(ctx, r.cfg.ReadTimeout)
	defer cancel()

	return r.find(ctx, listFilter(professionalIDField, professionalID, filter), pageOptions(filter))
}

func (r *mongoReservationRepository) CountByProfessional(ctx context.Context, professionalID string, filter model.ReservationFilter) (int64, error) {
	ctx, cancel := r.ctxFor(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, listFilter(professionalIDField, professionalID, filter))
	if err != nil {
		return 0, fmt.Errorf("failed to count reservations: %w", err)
	}
	return count, nil
}

func (r *mongoReservationRepository) ListByClient(ctx context.Context, clientID string, filter model.ReservationFilter) ([]*model.Reservation, error) {
	ctx, cancel := r.ctxFor(ctx, r.cfg.ReadTimeout)
	defer cancel()

	return r.find(ctx, listFilter(clientIDField, clientID, filter), pageOptions(filter))
}

func (r *mongoReservationRepository) CountByClient(ctx context.Context, clientID string, filter model.ReservationFilter) (int64, error) {
	ctx, cancel := r.ctxFor(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, listFilter(clientIDField, clientID, filter))
	if err != nil {
		return 0, fmt.Errorf("failed to count reservations: %w", err)
	}
	return count, nil
}

func (r *mongoReservationRepository) CompareAndSwapStatus(ctx context.Context, id string, from, to model.ReservationStatus, at time.Time) (bool, error) {
	ctx, cancel := r.ctxFor(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, statusField: from},
		bson.M{"$set": bson.M{statusField: to, "updated_at": at.UTC()}},
	)
	if err != nil {
		return false, fmt.Errorf("failed to update reservation status: %w", err)
	}
	return result.ModifiedCount == 1, nil
}

func (r *mongoReservationRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*model.Reservation, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find reservations: %w", err)
	}
	defer cursor.Close(ctx)

	var reservations []*model.Reservation
	if err := cursor.All(ctx, &reservations); err != nil {
		return nil, fmt.Errorf("failed to decode reservations: %w", err)
	}
	return reservations, nil
}

// overlapFilter matches active reservations intersecting the half-open range.
func overlapFilter(professionalID string, start, end time.Time) bson.M {
	return bson.M{
		professionalIDField: professionalID,
		statusField:         bson.M{"$in": model.ActiveStatuses},
		startAtField:        bson.M{"$lt": end},
		endAtField:          bson.M{"$gt": start},
	}
}

func listFilter(field, value string, f model.ReservationFilter) bson.M {
	filter := bson.M{field: value}
	if len(f.Statuses) > 0 {
		filter[statusField] = bson.M{"$in": f.Statuses}
	}
	if f.To != nil {
		filter[startAtField] = bson.M{"$lt": *f.To}
	}
	if f.From != nil {
		filter[endAtField] = bson.M{"$gt": *f.From}
	}
	return filter
}

func pageOptions(f model.ReservationFilter) *options.FindOptions {
	opts := options.Find().SetSort(bson.D{{Key: startAtField, Value: 1}})
	if f.Limit > 0 {
		opts.SetLimit(int64(f.Limit))
	}
	if f.Offset > 0 {
		opts.SetSkip(f.Offset)
	}
	return opts
}
