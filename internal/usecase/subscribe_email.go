package usecase

import (
	"context"
	"log"

	"github.com/k-negishi/community-events-notifier/internal/domain"
)

// SubscribeEmailUseCase 通知メール購読ユースケース
type SubscribeEmailUseCase struct {
	subscriber EmailSubscriber
}

// NewSubscribeEmailUseCase ユースケースを生成
func NewSubscribeEmailUseCase(subscriber EmailSubscriber) *SubscribeEmailUseCase {
	return &SubscribeEmailUseCase{subscriber: subscriber}
}

// Execute メールアドレスを購読者として登録し、サービスが返した購読ARNを返す
//
// アドレスの書式は確認しない。確認メールによる検証は通知サービス側で行われる。
func (uc *SubscribeEmailUseCase) Execute(ctx context.Context, email string) (*string, error) {
	if email == "" {
		return nil, &domain.ValidationError{Message: "Email is required"}
	}

	arn, err := uc.subscriber.SubscribeEmail(ctx, email)
	if err != nil {
		log.Printf("購読の登録に失敗しました: %v", err)
		return nil, err
	}
	return arn, nil
}
