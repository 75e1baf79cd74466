package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"probook/internal/migrations/mongo/validators"
	"probook/pkg/logger"
)

type collectionDef struct {
	Name      string
	Indexes   []mongo.IndexModel
	Validator bson.M
}

var (
	ProfessionalsIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "phone", Value: 1}}, Options: options.Index().SetUnique(true)},
	}

	ServicesIndexes = []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "professional_id", Value: 1},
			{Key: "is_active", Value: 1},
			{Key: "name", Value: 1},
		}},
	}

	ReservationsIndexes = []mongo.IndexModel{
		// overlap checks and professional listings
		{Keys: bson.D{
			{Key: "professional_id", Value: 1},
			{Key: "status", Value: 1},
			{Key: "start_at", Value: 1},
		}},
		{Keys: bson.D{
			{Key: "client_id", Value: 1},
			{Key: "start_at", Value: 1},
		}},
	}

	ReviewsIndexes = []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "professional_id", Value: 1},
			{Key: "created_at", Value: -1},
		}},
	}
)

// collections lists everything the API expects. Schedules and reservation
// locks are keyed by professional id, so _id is their only index.
func collections() []collectionDef {
	return []collectionDef{
		{Name: "Professionals", Indexes: ProfessionalsIndexes, Validator: validators.ProfessionalValidator},
		{Name: "Schedules", Validator: validators.ScheduleValidator},
		{Name: "Services", Indexes: ServicesIndexes, Validator: validators.ServiceValidator},
		{Name: "Reservations", Indexes: ReservationsIndexes, Validator: validators.ReservationValidator},
		{Name: "Reservation_locks"},
		{Name: "Reviews", Indexes: ReviewsIndexes, Validator: validators.ReviewValidator},
	}
}

func RunMigration(ctx context.Context, client *mongo.Client, dbName string, log *logger.Logger) error {
	db := client.Database(dbName)
	log.Info("Running Mongo migrations", "database", dbName)

	for _, def := range collections() {
		if err := ensureCollection(ctx, db, def.Name, def.Validator, log); err != nil {
			return fmt.Errorf("failed to ensure collection %s: %w", def.Name, err)
		}
		if err := ensureIndexes(ctx, db, def.Name, def.Indexes, log); err != nil {
			return fmt.Errorf("failed to ensure indexes for %s: %w", def.Name, err)
		}
	}

	log.Info("All Mongo migrations applied successfully")
	return nil
}

func ensureCollection(ctx context.Context, db *mongo.Database, name string, validator bson.M, log *logger.Logger) error {
	existing, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return err
	}

	if len(existing) == 0 {
		log.Info("Creating collection", "collection", name)
		opts := options.CreateCollection()
		if validator != nil {
			opts.SetValidator(validator)
		}
		if err := db.CreateCollection(ctx, name, opts); err != nil {
			return fmt.Errorf("failed creating %s: %w", name, err)
		}
		return nil
	}

	if validator == nil {
		return nil
	}
	log.Info("Collection exists, updating validator", "collection", name)
	command := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
	}
	if err := db.RunCommand(ctx, command).Err(); err != nil {
		log.Warn("Failed updating validator", "collection", name, "error", err)
	}
	return nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database, name string, models []mongo.IndexModel, log *logger.Logger) error {
	if len(models) == 0 {
		return nil
	}
	if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
		return err
	}
	log.Info("Ensured indexes", "collection", name, "count", len(models))
	return nil
}
