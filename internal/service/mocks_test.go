package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/tarotdesk/share-server-go/internal/model"
)

// Mock repositories

type mockShareLinkRepo struct {
	mock.Mock
}

func (m *mockShareLinkRepo) Create(ctx context.Context, params model.CreateShareLinkParams) (*model.ShareLink, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ShareLink), args.Error(1)
}

func (m *mockShareLinkRepo) FindByID(ctx context.Context, id string) (*model.ShareLink, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ShareLink), args.Error(1)
}

func (m *mockShareLinkRepo) FindByAccessCode(ctx context.Context, code string) (*model.ShareLink, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ShareLink), args.Error(1)
}

func (m *mockShareLinkRepo) ActiveCodeExists(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

func (m *mockShareLinkRepo) SetActive(ctx context.Context, id string, active bool) error {
	args := m.Called(ctx, id, active)
	return args.Error(0)
}

func (m *mockShareLinkRepo) ClearExpiry(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockShareLinkRepo) UpdateSettings(ctx context.Context, id string, params model.UpdateShareLinkParams) (*model.ShareLink, error) {
	args := m.Called(ctx, id, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ShareLink), args.Error(1)
}

func (m *mockShareLinkRepo) RecordView(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockShareLinkRepo) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockShareLinkRepo) ListByRecord(ctx context.Context, recordID string) ([]model.ShareLink, error) {
	args := m.Called(ctx, recordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ShareLink), args.Error(1)
}

func (m *mockShareLinkRepo) ListByClient(ctx context.Context, clientID string) ([]model.ShareLink, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ShareLink), args.Error(1)
}

func (m *mockShareLinkRepo) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

type mockRecordStore struct {
	mock.Mock
}

func (m *mockRecordStore) RecordExists(ctx context.Context, recordID string) (bool, error) {
	args := m.Called(ctx, recordID)
	return args.Bool(0), args.Error(1)
}

func (m *mockRecordStore) ClientExists(ctx context.Context, clientID string) (bool, error) {
	args := m.Called(ctx, clientID)
	return args.Bool(0), args.Error(1)
}

// openRecordStore approves every reference without a mock expectation.
type openRecordStore struct{}

func (openRecordStore) RecordExists(context.Context, string) (bool, error) { return true, nil }
func (openRecordStore) ClientExists(context.Context, string) (bool, error) { return true, nil }

func strPtr(s string) *string { return &s }
func timePtr(t time.Time) *time.Time { return &t }
