package domain

import (
	"errors"
	"strings"
	"time"
)

// CreatedAtLayout createdAt の書式（タイムゾーン付きISO-8601、UTC）
const CreatedAtLayout = "2006-01-02T15:04:05.000000-07:00"

// ErrWriteConflict 条件付き書き込みで他の書き込みと競合した
var ErrWriteConflict = errors.New("events document was modified concurrently")

// EventRecord コミュニティイベント1件
type EventRecord struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Date        string `json:"date"`
	Location    string `json:"location"`
	Description string `json:"description"`
	CreatedAt   string `json:"createdAt"`
}

// EventsDocument ストレージに保存されるイベント一覧ドキュメント
type EventsDocument struct {
	Events []EventRecord `json:"events"`

	// Version 読み込み時のオブジェクトETag（未保存なら空）
	Version string `json:"-"`
}

// NewEventsDocument 空のドキュメント {events: []} を作成
func NewEventsDocument() EventsDocument {
	return EventsDocument{Events: []EventRecord{}}
}

// Append イベントを末尾に追加した新しいドキュメントを返す
func (d EventsDocument) Append(record EventRecord) EventsDocument {
	events := make([]EventRecord, 0, len(d.Events)+1)
	events = append(events, d.Events...)
	events = append(events, record)
	return EventsDocument{Events: events, Version: d.Version}
}

// EventSubmission イベント作成リクエストのペイロード
type EventSubmission struct {
	Title       string `json:"title"`
	Date        string `json:"date"`
	Location    string `json:"location"`
	Description string `json:"description"`
}

// Validate 必須項目をすべて確認し、欠けている項目をまとめて報告する
func (s EventSubmission) Validate() error {
	fields := []struct {
		name  string
		value string
	}{
		{"title", s.Title},
		{"date", s.Date},
		{"location", s.Location},
		{"description", s.Description},
	}

	var missing []string
	for _, f := range fields {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return &ValidationError{Message: "Missing fields: " + strings.Join(missing, ", ")}
	}
	return nil
}

// NewEventRecord 検証済みペイロードから新しいイベントを作成
func NewEventRecord(s EventSubmission, id string, now time.Time) EventRecord {
	return EventRecord{
		ID:          id,
		Title:       s.Title,
		Date:        s.Date,
		Location:    s.Location,
		Description: s.Description,
		CreatedAt:   now.UTC().Format(CreatedAtLayout),
	}
}

// ValidationError 入力検証エラー（400として返す）
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
