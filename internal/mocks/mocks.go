// Package mocks holds testify mocks of the models interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/AnshRaj112/aura-backend/internal/models"
)

type EntryStore struct{ mock.Mock }

func (m *EntryStore) GetEntries(ctx context.Context, userID string) ([]models.JournalEntry, error) {
	args := m.Called(ctx, userID)
	entries, _ := args.Get(0).([]models.JournalEntry)
	return entries, args.Error(1)
}

func (m *EntryStore) SaveEntry(ctx context.Context, entry models.JournalEntry) (models.JournalEntry, error) {
	args := m.Called(ctx, entry)
	return args.Get(0).(models.JournalEntry), args.Error(1)
}

func (m *EntryStore) DeleteEntry(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type UserStore struct{ mock.Mock }

func (m *UserStore) CreateUser(ctx context.Context, user models.UserRecord) error {
	return m.Called(ctx, user).Error(0)
}

func (m *UserStore) GetUserByEmail(ctx context.Context, email string) (models.UserRecord, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(models.UserRecord), args.Error(1)
}

func (m *UserStore) GetUserByID(ctx context.Context, id string) (models.UserRecord, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.UserRecord), args.Error(1)
}

type SessionStore struct{ mock.Mock }

func (m *SessionStore) Create(ctx context.Context, userID string) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

func (m *SessionStore) Validate(ctx context.Context, token string) (string, bool, error) {
	args := m.Called(ctx, token)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *SessionStore) Invalidate(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

type Identity struct{ mock.Mock }

func (m *Identity) Register(ctx context.Context, email, name, password string) (models.User, error) {
	args := m.Called(ctx, email, name, password)
	return args.Get(0).(models.User), args.Error(1)
}

func (m *Identity) Login(ctx context.Context, email, password string) (models.User, error) {
	args := m.Called(ctx, email, password)
	return args.Get(0).(models.User), args.Error(1)
}

func (m *Identity) Logout(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *Identity) CurrentUser(ctx context.Context) (*models.User, error) {
	args := m.Called(ctx)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

type Analyzer struct{ mock.Mock }

func (m *Analyzer) AnalyzeEntry(ctx context.Context, content string) models.AnalysisResult {
	return m.Called(ctx, content).Get(0).(models.AnalysisResult)
}

type Generator struct{ mock.Mock }

func (m *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}
