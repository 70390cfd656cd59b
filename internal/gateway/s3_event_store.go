package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/k-negishi/community-events-notifier/internal/domain"
)

// S3API S3EventStoreが利用するS3クライアントの操作
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// loadStatus ドキュメント読み込み結果の種別
type loadStatus int

const (
	loadFound loadStatus = iota
	loadAbsent
	loadTransientError
)

func (s loadStatus) String() string {
	switch s {
	case loadFound:
		return "found"
	case loadAbsent:
		return "absent"
	default:
		return "transient_error"
	}
}

// loadResult 読み込み結果。Found以外は呼び出し側で空ドキュメントとして扱う
// オブジェクトは存在するが解析できない場合も doc.Version にETagを入れる
type loadResult struct {
	status loadStatus
	doc    domain.EventsDocument
	err    error
}

// S3EventStore イベント一覧ドキュメントをS3オブジェクト1つに保存するストア
type S3EventStore struct {
	client      S3API
	bucket      string
	key         string
	conditional bool
}

// NewS3EventStore S3イベントストアを作成
func NewS3EventStore(client S3API, bucket, key string, conditional bool) *S3EventStore {
	return &S3EventStore{
		client:      client,
		bucket:      bucket,
		key:         key,
		conditional: conditional,
	}
}

// LoadEvents ドキュメントを読み込む。読み込めない場合は空ドキュメントを返す
func (s *S3EventStore) LoadEvents(ctx context.Context) domain.EventsDocument {
	result := s.load(ctx)
	if result.status == loadFound {
		return result.doc
	}

	if result.err != nil {
		log.Printf("イベントドキュメントを空として扱います (s3://%s/%s, %s): %v", s.bucket, s.key, result.status, result.err)
	}
	// 壊れたオブジェクトはETagを引き継ぎ、条件付き書き込みでも上書きできるようにする
	doc := domain.NewEventsDocument()
	doc.Version = result.doc.Version
	return doc
}

// load オブジェクトを取得し、結果を種別付きで返す
func (s *S3EventStore) load(ctx context.Context) loadResult {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return loadResult{status: loadAbsent}
		}
		return loadResult{status: loadTransientError, err: fmt.Errorf("S3オブジェクトの取得に失敗しました: %v", err)}
	}
	defer out.Body.Close()

	body, err := io.ReadAll(out.Body)
	if err != nil {
		return loadResult{status: loadTransientError, err: fmt.Errorf("S3オブジェクトの読み込みに失敗しました: %v", err)}
	}

	etag := aws.ToString(out.ETag)
	doc, err := decodeEventsDocument(body)
	if err != nil {
		return loadResult{status: loadTransientError, doc: domain.EventsDocument{Version: etag}, err: err}
	}
	doc.Version = etag

	return loadResult{status: loadFound, doc: doc}
}

// decodeEventsDocument {"events": [...]} 形式以外は不正として扱う
func decodeEventsDocument(body []byte) (domain.EventsDocument, error) {
	var raw struct {
		Events *[]domain.EventRecord `json:"events"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return domain.EventsDocument{}, fmt.Errorf("イベントドキュメントのJSON解析に失敗しました: %v", err)
	}
	if raw.Events == nil {
		return domain.EventsDocument{}, fmt.Errorf("イベントドキュメントにevents配列がありません")
	}

	doc := domain.NewEventsDocument()
	doc.Events = append(doc.Events, *raw.Events...)
	return doc, nil
}

// SaveEvents ドキュメント全体を同じキーに上書き保存
func (s *S3EventStore) SaveEvents(ctx context.Context, doc domain.EventsDocument) error {
	if doc.Events == nil {
		doc.Events = []domain.EventRecord{}
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("イベントドキュメントのJSON変換に失敗しました: %v", err)
	}

	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	}
	if s.conditional {
		if doc.Version != "" {
			input.IfMatch = aws.String(doc.Version)
		} else {
			input.IfNoneMatch = aws.String("*")
		}
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		if s.conditional && isConditionalWriteConflict(err) {
			return fmt.Errorf("s3://%s/%s: %w", s.bucket, s.key, domain.ErrWriteConflict)
		}
		return fmt.Errorf("S3オブジェクトの保存に失敗しました: %v", err)
	}

	return nil
}

// isConditionalWriteConflict If-Match / If-None-Match の前提条件が満たされなかったか
func isConditionalWriteConflict(err error) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.ErrorCode() {
	case "PreconditionFailed", "ConditionalRequestConflict":
		return true
	}
	return false
}
