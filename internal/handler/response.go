package handler

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
)

// errorBody エラーレスポンスの共通形式
type errorBody struct {
	Error string `json:"error"`
}

// responder 共通ヘッダー付きのレスポンスを組み立てる
type responder struct {
	allowOrigin string
}

func (r responder) headers() map[string]string {
	return map[string]string{
		"Content-Type":                     "application/json",
		"Access-Control-Allow-Origin":      r.allowOrigin,
		"Access-Control-Allow-Credentials": "true",
	}
}

// respond bodyをJSONに変換してレスポンスを作成
func (r responder) respond(status int, body any) events.APIGatewayProxyResponse {
	encoded, err := json.Marshal(body)
	if err != nil {
		log.Printf("レスポンスのJSON変換に失敗しました: %v", err)
		return r.fail(http.StatusInternalServerError, fmt.Errorf("レスポンスのJSON変換に失敗しました: %v", err))
	}

	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    r.headers(),
		Body:       string(encoded),
	}
}

// fail エラーメッセージを {error} 形式で返す
func (r responder) fail(status int, err error) events.APIGatewayProxyResponse {
	encoded, _ := json.Marshal(errorBody{Error: err.Error()})
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    r.headers(),
		Body:       string(encoded),
	}
}

// decodeBody リクエストボディをJSONとして解析する。空のボディは {} として扱う
func decodeBody(req events.APIGatewayProxyRequest, v any) error {
	body := req.Body
	if req.IsBase64Encoded && body != "" {
		decoded, err := base64.StdEncoding.DecodeString(body)
		if err != nil {
			return fmt.Errorf("リクエストボディのBase64デコードに失敗しました: %v", err)
		}
		body = string(decoded)
	}
	if body == "" {
		body = "{}"
	}

	return json.Unmarshal([]byte(body), v)
}
