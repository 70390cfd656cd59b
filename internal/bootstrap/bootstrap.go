package bootstrap

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	"github.com/k-negishi/community-events-notifier/internal/config"
	"github.com/k-negishi/community-events-notifier/internal/gateway"
	"github.com/k-negishi/community-events-notifier/internal/handler"
	"github.com/k-negishi/community-events-notifier/internal/usecase"
)

// App コールドスタート時に一度だけ構築し、呼び出し間で使い回す依存関係
type App struct {
	Config *config.Config

	ListEvents     *handler.ListEventsHandler
	CreateEvent    *handler.CreateEventHandler
	SubscribeEmail *handler.SubscribeEmailHandler
}

// New 設定を読み込み、AWSクライアントを初期化してハンドラーを組み立てる
func New(ctx context.Context) (*App, error) {
	// SSM・S3・SNSで同じAWS設定を使う
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("AWS設定の読み込みに失敗しました: %v", err)
	}

	cfg, err := config.Load(ctx, awsCfg)
	if err != nil {
		return nil, fmt.Errorf("設定読み込みエラー: %v", err)
	}

	return NewWithClients(cfg, s3.NewFromConfig(awsCfg), sns.NewFromConfig(awsCfg)), nil
}

// NewWithClients 指定したクライアントでハンドラーを組み立てる
func NewWithClients(cfg *config.Config, s3Client gateway.S3API, snsClient gateway.SNSAPI) *App {
	store := gateway.NewS3EventStore(s3Client, cfg.DataBucket, cfg.EventsKey, cfg.ConditionalWrite)
	notifier := gateway.NewSNSNotifier(snsClient, cfg.TopicARN, cfg.EmailSubject)

	maxAttempts := 1
	if cfg.ConditionalWrite {
		maxAttempts = cfg.WriteMaxAttempts
	}

	origin := cfg.AllowOrigin()
	return &App{
		Config:         cfg,
		ListEvents:     handler.NewListEventsHandler(usecase.NewListEventsUseCase(store), origin),
		CreateEvent:    handler.NewCreateEventHandler(usecase.NewCreateEventUseCase(store, notifier, maxAttempts), origin),
		SubscribeEmail: handler.NewSubscribeEmailHandler(usecase.NewSubscribeEmailUseCase(notifier), origin),
	}
}
