package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/AnshRaj112/aura-backend/internal/models"
)

var _ models.EntryStore = (*Store)(nil)

// GetEntries returns all entries owned by userID, most recent date first.
func (s *Store) GetEntries(ctx context.Context, userID string) ([]models.JournalEntry, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT id, user_id, title, content, date, last_modified, mood, ai_summary
		FROM journal_entries
		WHERE user_id = ?
		ORDER BY date DESC`), userID)
	if err != nil {
		return nil, fmt.Errorf("%w: could not fetch journal entries: %w", models.ErrStorage, err)
	}
	defer rows.Close()

	entries := []models.JournalEntry{}
	for rows.Next() {
		var (
			row       models.JournalRow
			mood      sql.NullString
			aiSummary sql.NullString
		)
		if err := rows.Scan(&row.ID, &row.UserID, &row.Title, &row.Content, &row.Date, &row.LastModified, &mood, &aiSummary); err != nil {
			return nil, fmt.Errorf("%w: could not read journal entry: %w", models.ErrStorage, err)
		}
		if mood.Valid {
			row.Mood = &mood.String
		}
		if aiSummary.Valid {
			row.AISummary = &aiSummary.String
		}
		entries = append(entries, row.Entry())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: could not fetch journal entries: %w", models.ErrStorage, err)
	}

	return entries, nil
}

// SaveEntry inserts the entry or updates the row with the same id. The
// creation date and owner of an existing row are never changed.
func (s *Store) SaveEntry(ctx context.Context, entry models.JournalEntry) (models.JournalEntry, error) {
	row := entry.ToRow()
	res, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO journal_entries (id, user_id, title, content, date, last_modified, mood, ai_summary)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			title = excluded.title,
			content = excluded.content,
			last_modified = excluded.last_modified,
			mood = excluded.mood,
			ai_summary = excluded.ai_summary
		WHERE journal_entries.user_id = excluded.user_id`),
		row.ID, row.UserID, row.Title, row.Content, row.Date, row.LastModified, nullable(row.Mood), nullable(row.AISummary),
	)
	if err != nil {
		return models.JournalEntry{}, fmt.Errorf("%w: failed to save entry: %w", models.ErrStorage, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return models.JournalEntry{}, fmt.Errorf("%w: failed to save entry: %s is owned by another user", models.ErrStorage, row.ID)
	}

	return entry, nil
}

// DeleteEntry removes the entry with the given id. Deleting a missing id is not an error.
func (s *Store) DeleteEntry(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM journal_entries WHERE id = ?`), id); err != nil {
		return fmt.Errorf("%w: failed to delete entry: %w", models.ErrStorage, err)
	}
	return nil
}

func nullable(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
