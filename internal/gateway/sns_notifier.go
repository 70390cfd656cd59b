package gateway

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	"github.com/k-negishi/community-events-notifier/internal/domain"
)

// SNSAPI SNSNotifierが利用するSNSクライアントの操作
type SNSAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
	Subscribe(ctx context.Context, params *sns.SubscribeInput, optFns ...func(*sns.Options)) (*sns.SubscribeOutput, error)
}

// SNSNotifier SNSトピックを使用した通知の実装
type SNSNotifier struct {
	client   SNSAPI
	topicARN string
	subject  string
}

// NewSNSNotifier SNS通知クライアントを作成
func NewSNSNotifier(client SNSAPI, topicARN, subject string) *SNSNotifier {
	return &SNSNotifier{
		client:   client,
		topicARN: topicARN,
		subject:  subject,
	}
}

// PublishEventCreated 新しいイベントの内容をトピックに配信
func (n *SNSNotifier) PublishEventCreated(ctx context.Context, record domain.EventRecord) error {
	_, err := n.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(n.topicARN),
		Subject:  aws.String(n.subject),
		Message:  aws.String(buildEventMessage(record)),
	})
	if err != nil {
		return fmt.Errorf("SNS通知の送信に失敗しました: %v", err)
	}
	return nil
}

// SubscribeEmail メールアドレスをトピックの購読者として登録
func (n *SNSNotifier) SubscribeEmail(ctx context.Context, email string) (*string, error) {
	out, err := n.client.Subscribe(ctx, &sns.SubscribeInput{
		TopicArn: aws.String(n.topicARN),
		Protocol: aws.String("email"),
		Endpoint: aws.String(email),
	})
	if err != nil {
		return nil, fmt.Errorf("SNS購読の登録に失敗しました: %v", err)
	}
	return out.SubscriptionArn, nil
}

// buildEventMessage 通知メールの本文を構築
func buildEventMessage(record domain.EventRecord) string {
	lines := []string{
		"New Event Created:",
		"Title: " + record.Title,
		"Date: " + record.Date,
		"Location: " + record.Location,
		"Description: " + record.Description,
	}
	return strings.Join(lines, "\n")
}
