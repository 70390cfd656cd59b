package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/k-negishi/community-events-notifier/internal/domain"
)

// CreateEventUseCase イベント作成・通知ユースケース
type CreateEventUseCase struct {
	store       EventStore
	publisher   EventPublisher
	maxAttempts int
	newID       func() string
	clock       func() time.Time
}

// NewCreateEventUseCase ユースケースを生成
//
// maxAttempts は保存時に domain.ErrWriteConflict が返った場合の最大試行回数。
// 条件付き書き込みを使わないストアでは競合が返らないため1回で終わる。
func NewCreateEventUseCase(store EventStore, publisher EventPublisher, maxAttempts int) *CreateEventUseCase {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &CreateEventUseCase{
		store:       store,
		publisher:   publisher,
		maxAttempts: maxAttempts,
		newID:       uuid.NewString,
		clock:       time.Now,
	}
}

// Execute 入力を検証してイベントを追加保存し、通知を送信する
func (uc *CreateEventUseCase) Execute(ctx context.Context, submission domain.EventSubmission) (domain.EventRecord, error) {
	if err := submission.Validate(); err != nil {
		return domain.EventRecord{}, err
	}

	record := domain.NewEventRecord(submission, uc.newID(), uc.clock())

	if err := uc.appendAndSave(ctx, record); err != nil {
		log.Printf("イベントの保存に失敗しました (id=%s): %v", record.ID, err)
		return domain.EventRecord{}, err
	}

	// 保存済みでも通知に失敗した場合はエラーとして返す
	if err := uc.publisher.PublishEventCreated(ctx, record); err != nil {
		log.Printf("イベントは保存済みですが通知の送信に失敗しました (id=%s): %v", record.ID, err)
		return domain.EventRecord{}, err
	}

	return record, nil
}

// appendAndSave 読み込み・追加・保存。競合時は読み込みからやり直す
func (uc *CreateEventUseCase) appendAndSave(ctx context.Context, record domain.EventRecord) error {
	var err error
	for attempt := 1; attempt <= uc.maxAttempts; attempt++ {
		doc := uc.store.LoadEvents(ctx)
		err = uc.store.SaveEvents(ctx, doc.Append(record))
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrWriteConflict) {
			return err
		}
		log.Printf("イベントドキュメントの更新が競合しました (%d/%d回目)", attempt, uc.maxAttempts)
	}
	return fmt.Errorf("%d回試行しましたが保存できませんでした: %w", uc.maxAttempts, err)
}
