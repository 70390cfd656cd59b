package usecase

import (
	"context"

	"github.com/k-negishi/community-events-notifier/internal/domain"
)

// ListEventsUseCase イベント一覧取得ユースケース
type ListEventsUseCase struct {
	store EventStore
}

// NewListEventsUseCase ユースケースを生成
func NewListEventsUseCase(store EventStore) *ListEventsUseCase {
	return &ListEventsUseCase{store: store}
}

// Execute 保存されているドキュメントをそのまま返す
func (uc *ListEventsUseCase) Execute(ctx context.Context) domain.EventsDocument {
	return uc.store.LoadEvents(ctx)
}
