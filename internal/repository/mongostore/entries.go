// Package mongostore persists journal entries in MongoDB.
package mongostore

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/AnshRaj112/aura-backend/internal/models"
)

// Collection holds one document per journal entry.
const Collection = "journal_entries"

var _ models.EntryStore = (*EntryStore)(nil)

type EntryStore struct {
	col *mongo.Collection
}

func NewEntryStore(db *mongo.Database) *EntryStore {
	return &EntryStore{col: db.Collection(Collection)}
}

// EnsureIndexes creates the (user_id, date desc) index used by GetEntries.
func (s *EntryStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "user_id", Value: 1},
			{Key: "date", Value: -1},
		},
		Options: options.Index().SetName("idx_user_date"),
	})
	return err
}

func (s *EntryStore) GetEntries(ctx context.Context, userID string) ([]models.JournalEntry, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})

	cursor, err := s.col.Find(ctx, bson.M{"user_id": userID}, findOptions)
	if err != nil {
		return nil, fmt.Errorf("%w: could not fetch journal entries: %w", models.ErrStorage, err)
	}
	defer cursor.Close(ctx)

	var rows []models.JournalRow
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("%w: could not fetch journal entries: %w", models.ErrStorage, err)
	}

	entries := make([]models.JournalEntry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, r.Entry())
	}
	return entries, nil
}

// SaveEntry upserts by id. date and user_id are only written on insert; an id
// owned by another user fails with a duplicate key error.
func (s *EntryStore) SaveEntry(ctx context.Context, entry models.JournalEntry) (models.JournalEntry, error) {
	row := entry.ToRow()

	set := bson.M{
		"title":         row.Title,
		"content":       row.Content,
		"last_modified": row.LastModified,
	}
	unset := bson.M{}
	if row.Mood != nil {
		set["mood"] = *row.Mood
	} else {
		unset["mood"] = ""
	}
	if row.AISummary != nil {
		set["ai_summary"] = *row.AISummary
	} else {
		unset["ai_summary"] = ""
	}

	update := bson.M{
		"$set": set,
		"$setOnInsert": bson.M{
			"user_id": row.UserID,
			"date":    row.Date,
		},
	}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	filter := bson.M{"_id": row.ID, "user_id": row.UserID}
	if _, err := s.col.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true)); err != nil {
		return models.JournalEntry{}, fmt.Errorf("%w: failed to save entry: %w", models.ErrStorage, err)
	}
	return entry, nil
}

func (s *EntryStore) DeleteEntry(ctx context.Context, id string) error {
	if _, err := s.col.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("%w: failed to delete entry: %w", models.ErrStorage, err)
	}
	return nil
}
