package mongostore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/AnshRaj112/aura-backend/internal/models"
)

func TestEntryStore(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ns := "aura." + Collection

	mt.Run("get entries maps rows", func(mt *mtest.T) {
		store := NewEntryStore(mt.DB)
		later := time.Date(2026, 4, 2, 8, 0, 0, 0, time.UTC)
		earlier := later.Add(-24 * time.Hour)

		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bson.D{
				{Key: "_id", Value: "e2"}, {Key: "user_id", Value: "u1"},
				{Key: "title", Value: "Later"}, {Key: "content", Value: "b"},
				{Key: "date", Value: later}, {Key: "last_modified", Value: later},
				{Key: "mood", Value: "sad"}, {Key: "ai_summary", Value: "rainy"},
			},
			bson.D{
				{Key: "_id", Value: "e1"}, {Key: "user_id", Value: "u1"},
				{Key: "title", Value: "Earlier"}, {Key: "content", Value: "a"},
				{Key: "date", Value: earlier}, {Key: "last_modified", Value: earlier},
			},
		))

		entries, err := store.GetEntries(context.Background(), "u1")
		require.NoError(mt, err)
		require.Len(mt, entries, 2)
		assert.Equal(mt, "e2", entries[0].ID)
		assert.Equal(mt, "sad", entries[0].Mood)
		assert.Equal(mt, "rainy", entries[0].AISummary)
		assert.True(mt, later.Equal(entries[0].Date))
		assert.Equal(mt, "e1", entries[1].ID)
		assert.Empty(mt, entries[1].Mood)
	})

	mt.Run("get entries empty", func(mt *mtest.T) {
		store := NewEntryStore(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		entries, err := store.GetEntries(context.Background(), "u1")
		require.NoError(mt, err)
		assert.NotNil(mt, entries)
		assert.Empty(mt, entries)
	})

	mt.Run("get entries error", func(mt *mtest.T) {
		store := NewEntryStore(mt.DB)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 13, Message: "unauthorized"}))

		_, err := store.GetEntries(context.Background(), "u1")
		assert.ErrorIs(mt, err, models.ErrStorage)
	})

	mt.Run("save entry", func(mt *mtest.T) {
		store := NewEntryStore(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}))

		now := time.Now().UTC()
		e := models.JournalEntry{ID: "e1", UserID: "u1", Title: "t", Content: "c", Date: now, LastModified: now}
		saved, err := store.SaveEntry(context.Background(), e)
		require.NoError(mt, err)
		assert.Equal(mt, e, saved)
	})

	mt.Run("save entry owned by another user", func(mt *mtest.T) {
		store := NewEntryStore(mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: "E11000 duplicate key error"}))

		_, err := store.SaveEntry(context.Background(), models.JournalEntry{ID: "e1", UserID: "intruder"})
		assert.ErrorIs(mt, err, models.ErrStorage)
	})

	mt.Run("delete entry", func(mt *mtest.T) {
		store := NewEntryStore(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))

		assert.NoError(mt, store.DeleteEntry(context.Background(), "missing"))
	})

	mt.Run("delete entry error", func(mt *mtest.T) {
		store := NewEntryStore(mt.DB)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 91, Message: "shutting down"}))

		assert.ErrorIs(mt, store.DeleteEntry(context.Background(), "e1"), models.ErrStorage)
	})
}
