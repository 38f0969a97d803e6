package membership

import (
	"context"

	"roster-sync/core/reconcile"
	"roster-sync/feature/roster"

	"github.com/stretchr/testify/mock"
)

type mockMirror struct {
	mock.Mock
}

func (m *mockMirror) ListSubscribers(ctx context.Context) ([]reconcile.MirrorRecord, error) {
	args := m.Called(ctx)
	if records, ok := args.Get(0).([]reconcile.MirrorRecord); ok {
		return records, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockMirror) CreateSubscriber(ctx context.Context, op reconcile.AddSubscriber) error {
	return m.Called(ctx, op).Error(0)
}

func (m *mockMirror) UpdateSubscriber(ctx context.Context, op reconcile.EditSubscriber) error {
	return m.Called(ctx, op).Error(0)
}

func (m *mockMirror) DeleteSubscriber(ctx context.Context, op reconcile.DeleteSubscriber) error {
	return m.Called(ctx, op).Error(0)
}

type stubSource struct {
	rows []roster.Row
	err  error
}

func (s stubSource) LoadRows(ctx context.Context) ([]roster.Row, error) {
	return s.rows, s.err
}

var testColumns = roster.Columns{Email: "Email", Tags: []string{"Team"}}

func testRows() []roster.Row {
	return []roster.Row{
		{ID: "1", Cells: map[string]any{"Email": "a@x.com", "Team": "Core"}},
		{ID: "2", Cells: map[string]any{"Email": "b@x.com"}},
	}
}

func testSubscribers() []reconcile.MirrorRecord {
	return []reconcile.MirrorRecord{
		reconcile.NewMirrorRecord("a@x.com", nil, reconcile.Metadata{"id": "1"}),
		reconcile.NewMirrorRecord("gone@x.com", nil, reconcile.Metadata{"id": "9"}),
	}
}
