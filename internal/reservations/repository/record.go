package repository

import (
	"context"
	"fmt"
	"time"

	"stayd/pkg/config"
	"stayd/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	RecordCollectionName = "ReservationRecords"
)

// RecordRepository persists reservation records as the crash-recovery
// source of truth behind the in-memory interval store.
type RecordRepository interface {
	Insert(ctx context.Context, record *model.ReservationRecord) error
	Delete(ctx context.Context, recordID string) error
	UpdatePromoted(ctx context.Context, record *model.ReservationRecord) error
	FindActive(ctx context.Context, now time.Time) ([]*model.ReservationRecord, error)
}

type mongoRecordRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoRecordRepository(cfg *config.Config) RecordRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoRecordRepository{
		cfg:        cfg,
		collection: db.Collection(RecordCollectionName),
	}
}

func (r *mongoRecordRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	deadline, hasDeadline := ctx.Deadline()
	if hasDeadline && time.Until(deadline) < timeout {
		return context.WithTimeout(ctx, time.Until(deadline))
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoRecordRepository) Insert(ctx context.Context, record *model.ReservationRecord) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if _, err := r.collection.InsertOne(ctx, record); err != nil {
		return fmt.Errorf("failed to insert reservation record: %w", err)
	}
	return nil
}

// Delete is idempotent; deleting an already-deleted record is not an error.
func (r *mongoRecordRepository) Delete(ctx context.Context, recordID string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if _, err := r.collection.DeleteOne(ctx, bson.M{"_id": recordID}); err != nil {
		return fmt.Errorf("failed to delete reservation record: %w", err)
	}
	return nil
}

// UpdatePromoted persists the hold-to-confirmed transition, guarded by
// the record version so a stale writer cannot clobber a newer state.
func (r *mongoRecordRepository) UpdatePromoted(ctx context.Context, record *model.ReservationRecord) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	filter := bson.M{
		"_id":     record.ID,
		"version": bson.M{"$lt": record.Version},
	}
	update := bson.M{
		"$set": bson.M{
			"kind":    record.Kind,
			"version": record.Version,
		},
		"$unset": bson.M{
			"expires_at": "",
		},
	}

	if _, err := r.collection.UpdateOne(ctx, filter, update); err != nil {
		return fmt.Errorf("failed to persist record promotion: %w", err)
	}
	return nil
}

// FindActive returns all confirmed records plus holds that have not
// expired, used to warm the interval store at startup.
func (r *mongoRecordRepository) FindActive(ctx context.Context, now time.Time) ([]*model.ReservationRecord, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"$or": []bson.M{
			{"kind": model.KindConfirmed},
			{"kind": model.KindHold, "expires_at": bson.M{"$gt": now}},
		},
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find active records: %w", err)
	}
	defer cursor.Close(ctx)

	var records []*model.ReservationRecord
	if err = cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode active records: %w", err)
	}

	return records, nil
}
