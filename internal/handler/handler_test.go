package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/k-negishi/community-events-notifier/internal/domain"
)

// MockEventLister は EventLister のテスト用モック
type MockEventLister struct {
	mock.Mock
}

func (m *MockEventLister) Execute(ctx context.Context) domain.EventsDocument {
	args := m.Called(ctx)
	return args.Get(0).(domain.EventsDocument)
}

// MockEventCreator は EventCreator のテスト用モック
type MockEventCreator struct {
	mock.Mock
}

func (m *MockEventCreator) Execute(ctx context.Context, submission domain.EventSubmission) (domain.EventRecord, error) {
	args := m.Called(ctx, submission)
	return args.Get(0).(domain.EventRecord), args.Error(1)
}

// MockEmailSubscription は EmailSubscription のテスト用モック
type MockEmailSubscription struct {
	mock.Mock
}

func (m *MockEmailSubscription) Execute(ctx context.Context, email string) (*string, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*string), args.Error(1)
}

func assertCommonHeaders(t *testing.T, resp events.APIGatewayProxyResponse, origin string) {
	t.Helper()
	assert.Equal(t, "application/json", resp.Headers["Content-Type"])
	assert.Equal(t, origin, resp.Headers["Access-Control-Allow-Origin"])
	assert.Equal(t, "true", resp.Headers["Access-Control-Allow-Credentials"])
}

// --- ListEvents テスト ---

func TestListEvents_OK(t *testing.T) {
	lister := new(MockEventLister)
	h := NewListEventsHandler(lister, "*")

	doc := domain.EventsDocument{Events: []domain.EventRecord{{ID: "1", Title: "Meetup"}}}
	lister.On("Execute", mock.Anything).Return(doc)

	resp, err := h.Handle(context.Background(), events.APIGatewayProxyRequest{})
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assertCommonHeaders(t, resp, "*")
	assert.JSONEq(t, `{"events":[{"id":"1","title":"Meetup","date":"","location":"","description":"","createdAt":""}]}`, resp.Body)
}

func TestListEvents_Empty(t *testing.T) {
	lister := new(MockEventLister)
	h := NewListEventsHandler(lister, "https://example.com")

	lister.On("Execute", mock.Anything).Return(domain.NewEventsDocument())

	resp, err := h.Handle(context.Background(), events.APIGatewayProxyRequest{})
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assertCommonHeaders(t, resp, "https://example.com")
	assert.JSONEq(t, `{"events":[]}`, resp.Body)
}

// --- CreateEvent テスト ---

func TestCreateEvent_Created(t *testing.T) {
	creator := new(MockEventCreator)
	h := NewCreateEventHandler(creator, "*")

	submission := domain.EventSubmission{Title: "Meetup", Date: "2024-05-01", Location: "Hall", Description: "Talks"}
	record := domain.EventRecord{
		ID: "abc", Title: "Meetup", Date: "2024-05-01", Location: "Hall", Description: "Talks",
		CreatedAt: "2024-01-15T00:00:00.000000+00:00",
	}
	creator.On("Execute", mock.Anything, submission).Return(record, nil)

	resp, err := h.Handle(context.Background(), events.APIGatewayProxyRequest{
		Body: `{"title":"Meetup","date":"2024-05-01","location":"Hall","description":"Talks"}`,
	})
	require.NoError(t, err)
	assert.Equal(t, 201, resp.StatusCode)
	assertCommonHeaders(t, resp, "*")

	var body createEventResponse
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &body))
	assert.Equal(t, "Event created", body.Message)
	assert.Equal(t, record, body.Event)
	creator.AssertExpectations(t)
}

func TestCreateEvent_Base64Body(t *testing.T) {
	creator := new(MockEventCreator)
	h := NewCreateEventHandler(creator, "*")

	submission := domain.EventSubmission{Title: "T", Date: "D", Location: "L", Description: "X"}
	creator.On("Execute", mock.Anything, submission).Return(domain.EventRecord{ID: "1"}, nil)

	raw := `{"title":"T","date":"D","location":"L","description":"X"}`
	resp, err := h.Handle(context.Background(), events.APIGatewayProxyRequest{
		Body:            base64.StdEncoding.EncodeToString([]byte(raw)),
		IsBase64Encoded: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 201, resp.StatusCode)
}

func TestCreateEvent_ValidationError(t *testing.T) {
	creator := new(MockEventCreator)
	h := NewCreateEventHandler(creator, "*")

	creator.On("Execute", mock.Anything, mock.Anything).
		Return(domain.EventRecord{}, &domain.ValidationError{Message: "Missing fields: title, location"})

	resp, err := h.Handle(context.Background(), events.APIGatewayProxyRequest{
		Body: `{"date":"2024-05-01","description":"Talks"}`,
	})
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
	assertCommonHeaders(t, resp, "*")
	assert.JSONEq(t, `{"error":"Missing fields: title, location"}`, resp.Body)
}

func TestCreateEvent_EmptyBodyIsValidatedAsEmptyObject(t *testing.T) {
	creator := new(MockEventCreator)
	h := NewCreateEventHandler(creator, "*")

	creator.On("Execute", mock.Anything, domain.EventSubmission{}).
		Return(domain.EventRecord{}, &domain.ValidationError{Message: "Missing fields: title, date, location, description"})

	resp, err := h.Handle(context.Background(), events.APIGatewayProxyRequest{})
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
	creator.AssertExpectations(t)
}

func TestCreateEvent_InvalidJSONIsInternalError(t *testing.T) {
	creator := new(MockEventCreator)
	h := NewCreateEventHandler(creator, "*")

	resp, err := h.Handle(context.Background(), events.APIGatewayProxyRequest{Body: `{"title":`})
	require.NoError(t, err)
	assert.Equal(t, 500, resp.StatusCode)

	var body errorBody
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &body))
	assert.NotEmpty(t, body.Error)
	creator.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
}

func TestCreateEvent_NonStringFieldIsInternalError(t *testing.T) {
	creator := new(MockEventCreator)
	h := NewCreateEventHandler(creator, "*")

	resp, err := h.Handle(context.Background(), events.APIGatewayProxyRequest{
		Body: `{"title":"T","date":20240501,"location":"L","description":"X"}`,
	})
	require.NoError(t, err)
	assert.Equal(t, 500, resp.StatusCode)
	creator.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
}

func TestCreateEvent_InternalError(t *testing.T) {
	creator := new(MockEventCreator)
	h := NewCreateEventHandler(creator, "*")

	creator.On("Execute", mock.Anything, mock.Anything).Return(domain.EventRecord{}, errors.New("SNS publish failed"))

	resp, err := h.Handle(context.Background(), events.APIGatewayProxyRequest{
		Body: `{"title":"T","date":"D","location":"L","description":"X"}`,
	})
	require.NoError(t, err)
	assert.Equal(t, 500, resp.StatusCode)
	assert.JSONEq(t, `{"error":"SNS publish failed"}`, resp.Body)
}

// --- SubscribeEmail テスト ---

func TestSubscribeEmail_Accepted(t *testing.T) {
	subscription := new(MockEmailSubscription)
	h := NewSubscribeEmailHandler(subscription, "*")

	subscription.On("Execute", mock.Anything, "a@example.com").Return(aws.String("pending confirmation"), nil)

	resp, err := h.Handle(context.Background(), events.APIGatewayProxyRequest{Body: `{"email":"a@example.com"}`})
	require.NoError(t, err)
	assert.Equal(t, 202, resp.StatusCode)
	assertCommonHeaders(t, resp, "*")
	assert.JSONEq(t, `{"message":"Subscription pending confirmation","subscriptionArn":"pending confirmation"}`, resp.Body)
}

func TestSubscribeEmail_AcceptedWithoutArn(t *testing.T) {
	subscription := new(MockEmailSubscription)
	h := NewSubscribeEmailHandler(subscription, "*")

	subscription.On("Execute", mock.Anything, "a@example.com").Return(nil, nil)

	resp, err := h.Handle(context.Background(), events.APIGatewayProxyRequest{Body: `{"email":"a@example.com"}`})
	require.NoError(t, err)
	assert.Equal(t, 202, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &body))
	assert.Contains(t, body, "message")
	assert.Contains(t, body, "subscriptionArn")
	assert.Nil(t, body["subscriptionArn"])
}

func TestSubscribeEmail_MissingEmail(t *testing.T) {
	tests := map[string]string{
		"empty string": `{"email":""}`,
		"missing key":  `{}`,
		"null":         `{"email":null}`,
	}

	for name, reqBody := range tests {
		t.Run(name, func(t *testing.T) {
			subscription := new(MockEmailSubscription)
			h := NewSubscribeEmailHandler(subscription, "*")
			subscription.On("Execute", mock.Anything, "").Return(nil, &domain.ValidationError{Message: "Email is required"})

			resp, err := h.Handle(context.Background(), events.APIGatewayProxyRequest{Body: reqBody})
			require.NoError(t, err)
			assert.Equal(t, 400, resp.StatusCode)
			assert.JSONEq(t, `{"error":"Email is required"}`, resp.Body)
		})
	}
}

func TestSubscribeEmail_InternalError(t *testing.T) {
	subscription := new(MockEmailSubscription)
	h := NewSubscribeEmailHandler(subscription, "*")

	subscription.On("Execute", mock.Anything, "a@example.com").Return(nil, errors.New("SNS throttled"))

	resp, err := h.Handle(context.Background(), events.APIGatewayProxyRequest{Body: `{"email":"a@example.com"}`})
	require.NoError(t, err)
	assert.Equal(t, 500, resp.StatusCode)
	assert.JSONEq(t, `{"error":"SNS throttled"}`, resp.Body)
}

// --- respond テスト ---

func TestRespond_EncodeFailureIsInternalError(t *testing.T) {
	r := responder{allowOrigin: "*"}

	resp := r.respond(200, map[string]any{"bad": make(chan int)})
	assert.Equal(t, 500, resp.StatusCode)
	assertCommonHeaders(t, resp, "*")
	assert.Contains(t, resp.Body, "error")
}
