package models

import (
	"time"
)

// JournalEntry is a single journal record authored by one user.
// Date is set once at creation; LastModified is stamped on every save.
type JournalEntry struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	Date         time.Time `json:"date"`
	LastModified time.Time `json:"lastModified"`
	Mood         string    `json:"mood,omitempty"`
	AISummary    string    `json:"aiSummary,omitempty"`
	// Color is reserved. It is never persisted or read back.
	Color string `json:"color,omitempty"`
}

// JournalRow is the backend row shape of a journal entry.
type JournalRow struct {
	ID           string    `bson:"_id" json:"id"`
	UserID       string    `bson:"user_id" json:"user_id"`
	Title        string    `bson:"title" json:"title"`
	Content      string    `bson:"content" json:"content"`
	Date         time.Time `bson:"date" json:"date"`
	LastModified time.Time `bson:"last_modified" json:"last_modified"`
	Mood         *string   `bson:"mood,omitempty" json:"mood,omitempty"`
	AISummary    *string   `bson:"ai_summary,omitempty" json:"ai_summary,omitempty"`
}

// ToRow maps an entry to its row. Empty optional fields become absent.
func (e JournalEntry) ToRow() JournalRow {
	return JournalRow{
		ID:           e.ID,
		UserID:       e.UserID,
		Title:        e.Title,
		Content:      e.Content,
		Date:         e.Date.UTC(),
		LastModified: e.LastModified.UTC(),
		Mood:         optional(e.Mood),
		AISummary:    optional(e.AISummary),
	}
}

// Entry maps a row back to the application shape.
func (r JournalRow) Entry() JournalEntry {
	e := JournalEntry{
		ID:           r.ID,
		UserID:       r.UserID,
		Title:        r.Title,
		Content:      r.Content,
		Date:         r.Date.UTC(),
		LastModified: r.LastModified.UTC(),
	}
	if r.Mood != nil {
		e.Mood = *r.Mood
	}
	if r.AISummary != nil {
		e.AISummary = *r.AISummary
	}
	return e
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
