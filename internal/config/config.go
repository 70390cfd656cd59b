package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/joho/godotenv"
)

const (
	defaultEventsKey        = "events/events.json"
	defaultCORSOrigin       = "*"
	defaultEmailSubject     = "Your Daily Newsletter"
	defaultEmailContent     = "This is your newsletter delivered"
	defaultWriteMaxAttempts = 3
)

// SSMParameterGetter Parameter Storeからパラメータを取得するクライアント
type SSMParameterGetter interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// Config アプリケーション設定構造体
type Config struct {
	// S3設定
	DataBucket string
	EventsKey  string

	// SNS設定
	TopicARN     string
	EmailSubject string
	// EmailContent 互換性のため読み込むが通知本文には使用しない
	EmailContent string

	// CORS設定
	CORSOrigin string

	// 条件付き書き込み（ETag）による競合検出
	ConditionalWrite bool
	WriteMaxAttempts int

	// AWS関連（本番環境でのみ使用）
	ssmClient SSMParameterGetter
}

// Load 環境に応じて設定を読み込み
// awsCfg はS3/SNSクライアントと共有し、Lambda環境ではParameter Storeの読み込みに使う
func Load(ctx context.Context, awsCfg aws.Config) (*Config, error) {
	// AWS Lambda環境かどうか判定
	if os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != "" {
		return loadAWSConfig(ctx, awsCfg)
	}
	return loadLocalConfig()
}

// loadLocalConfig ローカル開発環境用の設定読み込み
func loadLocalConfig() (*Config, error) {
	// .envファイルを読み込み（存在する場合のみ）
	if err := godotenv.Load(); err != nil {
		// .envファイルが存在しない場合はエラーにしない
		fmt.Printf("Warning: .envファイルが見つかりません: %v\n", err)
	}

	return fromEnv()
}

// loadAWSConfig AWS Lambda環境用の設定読み込み
func loadAWSConfig(ctx context.Context, awsCfg aws.Config) (*Config, error) {
	cfg, err := fromEnv()
	if err != nil {
		return nil, err
	}
	cfg.ssmClient = ssm.NewFromConfig(awsCfg)

	// Parameter Storeで管理している値があれば上書き
	if err := cfg.loadFromParameterStore(ctx); err != nil {
		return nil, fmt.Errorf("Parameter Storeからの設定読み込みに失敗しました: %v", err)
	}

	return cfg, nil
}

// fromEnv 環境変数から設定を組み立てる
func fromEnv() (*Config, error) {
	conditional, err := getEnvBool("EVENTS_CONDITIONAL_WRITE", false)
	if err != nil {
		return nil, err
	}
	maxAttempts, err := getEnvInt("EVENTS_WRITE_MAX_ATTEMPTS", defaultWriteMaxAttempts)
	if err != nil {
		return nil, err
	}
	if maxAttempts < 1 {
		return nil, fmt.Errorf("EVENTS_WRITE_MAX_ATTEMPTS は1以上を指定してください: %d", maxAttempts)
	}

	return &Config{
		DataBucket:       getEnvOrDefault("DATA_BUCKET", ""),
		EventsKey:        getEnvOrDefault("EVENTS_KEY", defaultEventsKey),
		TopicARN:         getEnvOrDefault("TOPIC_ARN", ""),
		EmailSubject:     getEnvOrDefault("EMAIL_SUBJECT", defaultEmailSubject),
		EmailContent:     getEnvOrDefault("EMAIL_CONTENT", defaultEmailContent),
		CORSOrigin:       getEnvOrDefault("CORS_ORIGIN", defaultCORSOrigin),
		ConditionalWrite: conditional,
		WriteMaxAttempts: maxAttempts,
	}, nil
}

// loadFromParameterStore *_PARAM で指定されたパラメータを読み込み
func (c *Config) loadFromParameterStore(ctx context.Context) error {
	if name := getEnvOrDefault("DATA_BUCKET_PARAM", ""); name != "" {
		bucket, err := c.getParameter(ctx, name, true)
		if err != nil {
			return fmt.Errorf("バケット名の取得に失敗しました: %v", err)
		}
		c.DataBucket = bucket
	}

	if name := getEnvOrDefault("TOPIC_ARN_PARAM", ""); name != "" {
		topic, err := c.getParameter(ctx, name, true)
		if err != nil {
			return fmt.Errorf("トピックARNの取得に失敗しました: %v", err)
		}
		c.TopicARN = topic
	}

	return nil
}

// getParameter Parameter Storeから指定されたパラメータを取得
func (c *Config) getParameter(ctx context.Context, paramName string, withDecryption bool) (string, error) {
	input := &ssm.GetParameterInput{
		Name:           aws.String(paramName),
		WithDecryption: aws.Bool(withDecryption),
	}

	result, err := c.ssmClient.GetParameter(ctx, input)
	if err != nil {
		return "", fmt.Errorf("パラメータ %s の取得に失敗しました: %v", paramName, err)
	}

	if result.Parameter == nil || result.Parameter.Value == nil || *result.Parameter.Value == "" {
		return "", fmt.Errorf("パラメータ %s が空の値です", paramName)
	}

	return *result.Parameter.Value, nil
}

// AllowOrigin Access-Control-Allow-Origin ヘッダーの値
func (c *Config) AllowOrigin() string {
	if c.CORSOrigin == "" || c.CORSOrigin == "*" {
		return "*"
	}
	return "https://" + c.CORSOrigin
}

// RequireBucket イベントドキュメントの保存先が設定されているか確認
func (c *Config) RequireBucket() error {
	if c.DataBucket == "" {
		return fmt.Errorf("DATA_BUCKET環境変数が設定されていません")
	}
	return nil
}

// RequireTopic 通知トピックが設定されているか確認
func (c *Config) RequireTopic() error {
	if c.TopicARN == "" {
		return fmt.Errorf("TOPIC_ARN環境変数が設定されていません")
	}
	return nil
}

// getEnvOrDefault 環境変数を取得し、存在しない場合はデフォルト値を返す
func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	raw := getEnvOrDefault(key, "")
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s の値が不正です: %q", key, raw)
	}
	return v, nil
}

func getEnvInt(key string, defaultValue int) (int, error) {
	raw := getEnvOrDefault(key, "")
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s の値が不正です: %q", key, raw)
	}
	return v, nil
}
