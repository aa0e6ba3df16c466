package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-agent/internal/agent"
	"github.com/i474232898/weather-agent/internal/store"
)

type fakeAgent struct {
	resp agent.Response
}

func (a *fakeAgent) Handle(_ context.Context, query string) agent.Response {
	if a.resp.Text != "" {
		return a.resp
	}
	return agent.Response{Text: "echo: " + query}
}

func newTestApp(deps Deps) *fiber.App {
	app := fiber.New()
	if deps.Agent == nil {
		deps.Agent = &fakeAgent{}
	}
	if deps.Tasks == nil {
		deps.Tasks = store.NewTaskStore(16, time.Hour)
	}
	if deps.AgentName == "" {
		deps.AgentName = "weather-agent"
	}
	RegisterRoutes(app, deps)
	return app
}

func postRPC(t *testing.T, app *fiber.App, body string, headers map[string]string) (*http.Response, rpcResponse) {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	var rpc rpcResponse
	if err := json.Unmarshal(raw, &rpc); err != nil {
		t.Fatalf("unmarshal %s: %v", raw, err)
	}
	return resp, rpc
}

func TestMessageSendRoundTrip(t *testing.T) {
	app := newTestApp(Deps{})

	body := `{
		"jsonrpc": "2.0",
		"id": 1,
		"method": "message/send",
		"params": {
			"message": {
				"role": "user",
				"parts": [{"kind": "text", "text": "weather in London"}]
			}
		}
	}`
	resp, rpc := postRPC(t, app, body, nil)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if rpc.Error != nil {
		t.Fatalf("unexpected rpc error: %+v", rpc.Error)
	}

	result := rpc.Result.(map[string]interface{})
	if result["kind"] != "message" {
		t.Errorf("result kind = %v", result["kind"])
	}
	parts := result["parts"].([]interface{})
	part := parts[0].(map[string]interface{})
	if part["text"] != "echo: weather in London" {
		t.Errorf("part text = %v", part["text"])
	}
}

func TestMessageSendAcceptsTypeField(t *testing.T) {
	app := newTestApp(Deps{})

	// ServiceNow-style clients send "type" instead of "kind".
	body := `{
		"jsonrpc": "2.0",
		"id": 2,
		"method": "message/send",
		"params": {
			"message": {
				"parts": [{"type": "text", "text": "weather in Paris"}]
			}
		}
	}`
	_, rpc := postRPC(t, app, body, nil)

	if rpc.Error != nil {
		t.Fatalf("unexpected rpc error: %+v", rpc.Error)
	}
	result := rpc.Result.(map[string]interface{})
	parts := result["parts"].([]interface{})
	part := parts[0].(map[string]interface{})
	if part["text"] != "echo: weather in Paris" {
		t.Errorf("part text = %v", part["text"])
	}
}

func TestMessageSendCarriesErrorCode(t *testing.T) {
	app := newTestApp(Deps{
		Agent: &fakeAgent{resp: agent.Response{
			Text:      "Location not found.",
			ErrorCode: agent.CodeNotFound,
		}},
	})

	body := `{
		"jsonrpc": "2.0",
		"id": 3,
		"method": "message/send",
		"params": {"message": {"parts": [{"kind": "text", "text": "weather in Atlantis"}]}}
	}`
	_, rpc := postRPC(t, app, body, nil)

	if rpc.Error != nil {
		t.Fatalf("transport errors and agent errors must stay separate: %+v", rpc.Error)
	}
	result := rpc.Result.(map[string]interface{})
	meta := result["metadata"].(map[string]interface{})
	if meta["errorCode"] != agent.CodeNotFound {
		t.Errorf("metadata errorCode = %v", meta["errorCode"])
	}
}

func TestTasksSendGetCancel(t *testing.T) {
	tasks := store.NewTaskStore(16, time.Hour)
	app := newTestApp(Deps{Tasks: tasks})

	sendBody := `{
		"jsonrpc": "2.0",
		"id": 4,
		"method": "tasks/send",
		"params": {
			"id": "task-42",
			"sessionId": "sess-1",
			"message": {"parts": [{"type": "text", "text": "forecast Tokyo"}]}
		}
	}`
	_, rpc := postRPC(t, app, sendBody, nil)
	if rpc.Error != nil {
		t.Fatalf("tasks/send: %+v", rpc.Error)
	}
	result := rpc.Result.(map[string]interface{})
	if result["id"] != "task-42" {
		t.Errorf("task id = %v", result["id"])
	}
	statusMap := result["status"].(map[string]interface{})
	if statusMap["state"] != "completed" {
		t.Errorf("state = %v", statusMap["state"])
	}
	artifacts := result["artifacts"].([]interface{})
	if len(artifacts) != 1 {
		t.Fatalf("artifacts = %d", len(artifacts))
	}

	getBody := `{"jsonrpc": "2.0", "id": 5, "method": "tasks/get", "params": {"id": "task-42"}}`
	_, rpc = postRPC(t, app, getBody, nil)
	if rpc.Error != nil {
		t.Fatalf("tasks/get: %+v", rpc.Error)
	}

	cancelBody := `{"jsonrpc": "2.0", "id": 6, "method": "tasks/cancel", "params": {"id": "task-42"}}`
	_, rpc = postRPC(t, app, cancelBody, nil)
	if rpc.Error != nil {
		t.Fatalf("tasks/cancel: %+v", rpc.Error)
	}
	result = rpc.Result.(map[string]interface{})
	statusMap = result["status"].(map[string]interface{})
	if statusMap["state"] != "canceled" {
		t.Errorf("state after cancel = %v", statusMap["state"])
	}
}

func TestTasksGetUnknownID(t *testing.T) {
	app := newTestApp(Deps{})

	body := `{"jsonrpc": "2.0", "id": 7, "method": "tasks/get", "params": {"id": "missing"}}`
	_, rpc := postRPC(t, app, body, nil)

	if rpc.Error == nil || rpc.Error.Code != codeInvalidParams {
		t.Fatalf("error = %+v, want invalid params", rpc.Error)
	}
}

func TestUnknownMethod(t *testing.T) {
	app := newTestApp(Deps{})

	body := `{"jsonrpc": "2.0", "id": 8, "method": "message/stream", "params": {}}`
	_, rpc := postRPC(t, app, body, nil)

	if rpc.Error == nil || rpc.Error.Code != codeMethodNotFound {
		t.Fatalf("error = %+v, want method not found", rpc.Error)
	}
}

func TestMalformedJSON(t *testing.T) {
	app := newTestApp(Deps{})

	_, rpc := postRPC(t, app, `{"jsonrpc": "2.0",`, nil)

	if rpc.Error == nil || rpc.Error.Code != codeParseError {
		t.Fatalf("error = %+v, want parse error", rpc.Error)
	}
}

func TestMissingMessageParts(t *testing.T) {
	app := newTestApp(Deps{})

	body := `{"jsonrpc": "2.0", "id": 9, "method": "message/send", "params": {"message": {"parts": []}}}`
	_, rpc := postRPC(t, app, body, nil)

	if rpc.Error == nil || rpc.Error.Code != codeInvalidParams {
		t.Fatalf("error = %+v, want invalid params", rpc.Error)
	}
}

func TestAuthToken(t *testing.T) {
	app := newTestApp(Deps{AuthToken: "secret"})
	body := `{"jsonrpc": "2.0", "id": 10, "method": "message/send", "params": {"message": {"parts": [{"kind": "text", "text": "hi"}]}}}`

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("missing token: status = %d, want 401", resp.StatusCode)
	}

	okResp, rpc := postRPC(t, app, body, map[string]string{"Authorization": "Bearer secret"})
	if okResp.StatusCode != http.StatusOK || rpc.Error != nil {
		t.Errorf("valid token: status = %d, error = %+v", okResp.StatusCode, rpc.Error)
	}
}

func TestAgentCardEndpoint(t *testing.T) {
	app := newTestApp(Deps{})

	req := httptest.NewRequest(http.MethodGet, "/.well-known/agent.json", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var card Card
	if err := json.NewDecoder(resp.Body).Decode(&card); err != nil {
		t.Fatalf("decode card: %v", err)
	}
	if len(card.Skills) != 7 {
		t.Errorf("skills = %d, want 7", len(card.Skills))
	}
	if card.URL == "" {
		t.Error("card URL should reflect the request host")
	}
}

func TestHealthEndpoint(t *testing.T) {
	app := newTestApp(Deps{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var body map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status = %v", body["status"])
	}
}
