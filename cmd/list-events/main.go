package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/k-negishi/community-events-notifier/internal/bootstrap"
)

func main() {
	app, err := bootstrap.New(context.Background())
	if err != nil {
		log.Fatalf("初期化に失敗しました: %v", err)
	}
	if err := app.Config.RequireBucket(); err != nil {
		log.Fatalf("設定エラー: %v", err)
	}

	lambda.Start(app.ListEvents.Handle)
}
