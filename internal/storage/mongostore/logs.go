package mongostore

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/waylog/waylog/internal/models"
	"github.com/waylog/waylog/internal/storage"
)

// logDoc is the persisted shape of a models.LogRecord. The storage key is
// the document _id; the cross-reference ID is a separate indexed field.
type logDoc struct {
	StorageKey    string                      `bson:"_id"`
	ID            string                      `bson:"id"`
	TripID        string                      `bson:"trip_id"`
	UserID        string                      `bson:"user_id"`
	DateTime      time.Time                   `bson:"date_time"`
	DayKey        string                      `bson:"day_key"`
	Category      string                      `bson:"category"`
	IsGroupSource bool                        `bson:"is_group_source"`
	Sealed        bool                        `bson:"sealed"`
	Worktime      *models.WorktimeFields      `bson:"worktime,omitempty"`
	Accommodation *models.AccommodationFields `bson:"accommodation,omitempty"`
	Additional    *models.AdditionalFields    `bson:"additional,omitempty"`
	AppliedTo     []string                    `bson:"applied_to,omitempty"`
	RelatedLogs   []string                    `bson:"related_logs,omitempty"`
	Attachments   []models.Attachment         `bson:"attachments,omitempty"`
	CreatedAt     int64                       `bson:"created_at"`
	UpdatedAt     int64                       `bson:"updated_at"`
}

func toLogDoc(rec *models.LogRecord) logDoc {
	return logDoc{
		StorageKey:    rec.StorageKey,
		ID:            rec.ID,
		TripID:        rec.TripID,
		UserID:        rec.UserID,
		DateTime:      rec.DateTime.UTC(),
		DayKey:        models.DayKey(rec.DateTime),
		Category:      string(rec.Category),
		IsGroupSource: rec.IsGroupSource,
		Sealed:        rec.Sealed,
		Worktime:      rec.Worktime,
		Accommodation: rec.Accommodation,
		Additional:    rec.Additional,
		AppliedTo:     rec.AppliedTo,
		RelatedLogs:   rec.RelatedLogs,
		Attachments:   rec.Attachments,
		CreatedAt:     rec.CreatedAt,
		UpdatedAt:     rec.UpdatedAt,
	}
}

func (d *logDoc) toModel() models.LogRecord {
	return models.LogRecord{
		StorageKey:    d.StorageKey,
		ID:            d.ID,
		TripID:        d.TripID,
		UserID:        d.UserID,
		DateTime:      d.DateTime.UTC(),
		Category:      models.Category(d.Category),
		IsGroupSource: d.IsGroupSource,
		Sealed:        d.Sealed,
		Worktime:      d.Worktime,
		Accommodation: d.Accommodation,
		Additional:    d.Additional,
		AppliedTo:     d.AppliedTo,
		RelatedLogs:   d.RelatedLogs,
		Attachments:   d.Attachments,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

// InsertLog persists a new log record.
func (s *MongoStore) InsertLog(ctx context.Context, rec *models.LogRecord) error {
	if rec.StorageKey == "" {
		rec.StorageKey = uuid.New().String()
	}
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	now := time.Now().Unix()
	if rec.CreatedAt == 0 {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now

	if _, err := s.logs.InsertOne(ctx, toLogDoc(rec)); err != nil {
		return fmt.Errorf("failed to insert log: %w", err)
	}
	return nil
}

// GetLog retrieves a log record by storage key.
func (s *MongoStore) GetLog(ctx context.Context, storageKey string) (*models.LogRecord, error) {
	var doc logDoc
	err := s.logs.FindOne(ctx, bson.M{"_id": storageKey}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, fmt.Errorf("log %s: %w", storageKey, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get log: %w", err)
	}
	rec := doc.toModel()
	return &rec, nil
}

// UpdateLog overwrites an existing log record.
func (s *MongoStore) UpdateLog(ctx context.Context, rec *models.LogRecord) error {
	rec.UpdatedAt = time.Now().Unix()

	res, err := s.logs.ReplaceOne(ctx, bson.M{"_id": rec.StorageKey}, toLogDoc(rec))
	if err != nil {
		return fmt.Errorf("failed to update log: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("log %s: %w", rec.StorageKey, storage.ErrNotFound)
	}
	return nil
}

// DeleteLog removes a log record by storage key.
func (s *MongoStore) DeleteLog(ctx context.Context, storageKey string) error {
	res, err := s.logs.DeleteOne(ctx, bson.M{"_id": storageKey})
	if err != nil {
		return fmt.Errorf("failed to delete log: %w", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("log %s: %w", storageKey, storage.ErrNotFound)
	}
	return nil
}

// QueryLogs returns all log records matching the filter, ordered by day key
// descending and then user ID.
func (s *MongoStore) QueryLogs(ctx context.Context, filter storage.LogFilter) ([]models.LogRecord, error) {
	query := bson.M{}
	if filter.TripID != "" {
		query["trip_id"] = filter.TripID
	}
	if !filter.From.IsZero() || !filter.To.IsZero() {
		day := bson.M{}
		if !filter.From.IsZero() {
			day["$gte"] = models.DayKey(filter.From)
		}
		if !filter.To.IsZero() {
			day["$lte"] = models.DayKey(filter.To)
		}
		query["day_key"] = day
	}
	if filter.Category != "" {
		query["category"] = string(filter.Category)
	}
	if filter.IsGroupSource != nil {
		query["is_group_source"] = *filter.IsGroupSource
	}

	opts := options.Find().SetSort(bson.D{{Key: "day_key", Value: -1}, {Key: "user_id", Value: 1}})
	cur, err := s.logs.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query logs: %w", err)
	}
	defer cur.Close(ctx)

	var docs []logDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode logs: %w", err)
	}

	records := make([]models.LogRecord, 0, len(docs))
	for i := range docs {
		records = append(records, docs[i].toModel())
	}
	return records, nil
}
