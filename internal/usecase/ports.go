package usecase

import (
	"context"

	"github.com/k-negishi/community-events-notifier/internal/domain"
)

// EventStore イベント一覧ドキュメントを読み書きするポート
type EventStore interface {
	// LoadEvents 読み込めない場合は空ドキュメントを返す
	LoadEvents(ctx context.Context) domain.EventsDocument
	SaveEvents(ctx context.Context, doc domain.EventsDocument) error
}

// EventPublisher 新しいイベントを通知するポート
type EventPublisher interface {
	PublishEventCreated(ctx context.Context, record domain.EventRecord) error
}

// EmailSubscriber メールアドレスを通知先として登録するポート
type EmailSubscriber interface {
	SubscribeEmail(ctx context.Context, email string) (*string, error)
}
