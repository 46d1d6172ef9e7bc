package mock

import (
	"context"

	"github.com/fwojciec/clipsave"
)

var _ clipsave.HistoryService = (*HistoryService)(nil)

// HistoryService is a mock implementation of clipsave.HistoryService.
type HistoryService struct {
	CreateRecordFn func(ctx context.Context, r *clipsave.HistoryRecord, content string) error
	FindRecordsFn  func(ctx context.Context, filter clipsave.HistoryFilter) ([]*clipsave.HistoryRecord, error)
}

func (s *HistoryService) CreateRecord(ctx context.Context, r *clipsave.HistoryRecord, content string) error {
	return s.CreateRecordFn(ctx, r, content)
}

func (s *HistoryService) FindRecords(ctx context.Context, filter clipsave.HistoryFilter) ([]*clipsave.HistoryRecord, error) {
	return s.FindRecordsFn(ctx, filter)
}
