package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/aws/aws-lambda-go/events"

	"github.com/k-negishi/community-events-notifier/internal/domain"
)

// EventLister イベント一覧を返すユースケース
type EventLister interface {
	Execute(ctx context.Context) domain.EventsDocument
}

// EventCreator イベントを作成するユースケース
type EventCreator interface {
	Execute(ctx context.Context, submission domain.EventSubmission) (domain.EventRecord, error)
}

// EmailSubscription メール購読を登録するユースケース
type EmailSubscription interface {
	Execute(ctx context.Context, email string) (*string, error)
}

type createEventResponse struct {
	Message string             `json:"message"`
	Event   domain.EventRecord `json:"event"`
}

type subscribeRequest struct {
	Email string `json:"email"`
}

type subscribeResponse struct {
	Message         string  `json:"message"`
	SubscriptionArn *string `json:"subscriptionArn"`
}

// ListEventsHandler GET /events
type ListEventsHandler struct {
	responder
	uc EventLister
}

// NewListEventsHandler ハンドラーを作成
func NewListEventsHandler(uc EventLister, allowOrigin string) *ListEventsHandler {
	return &ListEventsHandler{responder: responder{allowOrigin: allowOrigin}, uc: uc}
}

// Handle ドキュメントをそのまま200で返す
func (h *ListEventsHandler) Handle(ctx context.Context, _ events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	doc := h.uc.Execute(ctx)
	return h.respond(http.StatusOK, doc), nil
}

// CreateEventHandler POST /events
type CreateEventHandler struct {
	responder
	uc EventCreator
}

// NewCreateEventHandler ハンドラーを作成
func NewCreateEventHandler(uc EventCreator, allowOrigin string) *CreateEventHandler {
	return &CreateEventHandler{responder: responder{allowOrigin: allowOrigin}, uc: uc}
}

// Handle 入力検証エラーは400、それ以外のエラーは500で返す
func (h *CreateEventHandler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	var submission domain.EventSubmission
	if err := decodeBody(req, &submission); err != nil {
		return h.fail(http.StatusInternalServerError, err), nil
	}

	record, err := h.uc.Execute(ctx, submission)
	if err != nil {
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			return h.fail(http.StatusBadRequest, ve), nil
		}
		return h.fail(http.StatusInternalServerError, err), nil
	}

	return h.respond(http.StatusCreated, createEventResponse{
		Message: "Event created",
		Event:   record,
	}), nil
}

// SubscribeEmailHandler POST /subscribe
type SubscribeEmailHandler struct {
	responder
	uc EmailSubscription
}

// NewSubscribeEmailHandler ハンドラーを作成
func NewSubscribeEmailHandler(uc EmailSubscription, allowOrigin string) *SubscribeEmailHandler {
	return &SubscribeEmailHandler{responder: responder{allowOrigin: allowOrigin}, uc: uc}
}

// Handle 登録を受け付けたら確認待ちとして202を返す
func (h *SubscribeEmailHandler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	var payload subscribeRequest
	if err := decodeBody(req, &payload); err != nil {
		return h.fail(http.StatusInternalServerError, err), nil
	}

	arn, err := h.uc.Execute(ctx, payload.Email)
	if err != nil {
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			return h.fail(http.StatusBadRequest, ve), nil
		}
		return h.fail(http.StatusInternalServerError, err), nil
	}

	return h.respond(http.StatusAccepted, subscribeResponse{
		Message:         "Subscription pending confirmation",
		SubscriptionArn: arn,
	}), nil
}
