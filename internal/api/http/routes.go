package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/i474232898/weather-agent/internal/agent"
	"github.com/i474232898/weather-agent/internal/status"
	"github.com/i474232898/weather-agent/internal/store"
)

var validate = validator.New()

// JSON-RPC 2.0 error codes.
const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeInternalError  = -32603
)

// QueryHandler is the core entry point the transport depends on.
type QueryHandler interface {
	Handle(ctx context.Context, query string) agent.Response
}

// Deps bundles everything the transport needs.
type Deps struct {
	Agent     QueryHandler
	Tasks     *store.TaskStore
	Monitor   *status.Monitor
	AuthToken string // empty disables the bearer check
	AgentName string
}

// RegisterRoutes wires the JSON-RPC handler, agent card and health
// endpoints into the Fiber app.
func RegisterRoutes(app *fiber.App, deps Deps) {
	app.Get("/.well-known/agent.json", func(c *fiber.Ctx) error {
		return c.JSON(AgentCard(baseURL(c)))
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		resp := fiber.Map{
			"status": "ok",
			"agent":  deps.AgentName,
		}
		if deps.Monitor != nil {
			report := deps.Monitor.Current()
			resp["weatherProvider"] = report
			if !report.Reachable {
				resp["status"] = "degraded"
			}
		}
		return c.JSON(resp)
	})

	app.Post("/", func(c *fiber.Ctx) error {
		if deps.AuthToken != "" && bearerToken(c) != deps.AuthToken {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error":   true,
				"message": "missing or invalid authorization token",
			})
		}
		return handleRPC(c, deps)
	})
}

type rpcRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *rpcError   `json:"error,omitempty"`
}

// messagePart accepts both the standard A2A "kind" field and the
// ServiceNow variant's "type" field.
type messagePart struct {
	Kind string `json:"kind,omitempty"`
	Type string `json:"type,omitempty"`
	Text string `json:"text,omitempty"`
}

type rpcMessage struct {
	MessageID string        `json:"messageId,omitempty"`
	Role      string        `json:"role,omitempty"`
	Parts     []messagePart `json:"parts" validate:"required,min=1"`
}

// sendParams covers message/send and tasks/send; the task fields are only
// present in the ServiceNow variant.
type sendParams struct {
	ID        string     `json:"id,omitempty"`
	SessionID string     `json:"sessionId,omitempty"`
	Message   rpcMessage `json:"message" validate:"required"`
}

type taskRefParams struct {
	ID string `json:"id" validate:"required"`
}

func handleRPC(c *fiber.Ctx, deps Deps) error {
	var req rpcRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return writeRPC(c, rpcResponse{
			JSONRPC: "2.0",
			Error:   &rpcError{Code: codeParseError, Message: "parse error: " + err.Error()},
		})
	}

	switch req.Method {
	case "message/send":
		return handleSend(c, deps, req, false)
	case "tasks/send":
		return handleSend(c, deps, req, true)
	case "tasks/get":
		return handleTaskGet(c, deps, req)
	case "tasks/cancel":
		return handleTaskCancel(c, deps, req)
	case "":
		return writeRPC(c, rpcResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error:   &rpcError{Code: codeInvalidRequest, Message: "method is required"},
		})
	default:
		return writeRPC(c, rpcResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error:   &rpcError{Code: codeMethodNotFound, Message: "Method not found: " + req.Method},
		})
	}
}

// handleSend answers both message/send and the ServiceNow tasks/send
// variant; the difference is only in the result envelope.
func handleSend(c *fiber.Ctx, deps Deps, req rpcRequest, asTask bool) error {
	var params sendParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return writeRPC(c, rpcResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error:   &rpcError{Code: codeInvalidParams, Message: "invalid params: " + err.Error()},
		})
	}
	if err := validate.Struct(params); err != nil {
		return writeRPC(c, rpcResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error:   &rpcError{Code: codeInvalidParams, Message: "invalid params: " + err.Error()},
		})
	}

	query := textFromParts(params.Message.Parts)

	// The core never raises past its boundary; Handle always yields a
	// response, even on total failure.
	resp := deps.Agent.Handle(c.Context(), query)

	taskID := params.ID
	if taskID == "" {
		taskID = uuid.NewString()
	}
	sessionID := params.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	if deps.Tasks != nil {
		deps.Tasks.Save(store.Task{
			ID:        taskID,
			SessionID: sessionID,
			State:     store.TaskStateCompleted,
			Query:     query,
			Response:  resp,
		})
	}

	if asTask {
		return writeRPC(c, rpcResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result:  taskResult(taskID, sessionID, store.TaskStateCompleted, resp),
		})
	}

	return writeRPC(c, rpcResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: fiber.Map{
			"kind":      "message",
			"messageId": uuid.NewString(),
			"role":      "agent",
			"parts": []fiber.Map{
				{"kind": "text", "text": resp.Text},
			},
			"metadata": messageMetadata(resp),
		},
	})
}

func handleTaskGet(c *fiber.Ctx, deps Deps, req rpcRequest) error {
	params, rpcErr := parseTaskRef(req)
	if rpcErr != nil {
		return writeRPC(c, rpcResponse{JSONRPC: "2.0", ID: req.ID, Error: rpcErr})
	}

	task, err := deps.Tasks.Get(params.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return writeRPC(c, rpcResponse{
				JSONRPC: "2.0",
				ID:      req.ID,
				Error:   &rpcError{Code: codeInvalidParams, Message: "unknown task id: " + params.ID},
			})
		}
		return writeRPC(c, rpcResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error:   &rpcError{Code: codeInternalError, Message: "failed to load task"},
		})
	}

	return writeRPC(c, rpcResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result:  taskResult(task.ID, task.SessionID, task.State, task.Response),
	})
}

func handleTaskCancel(c *fiber.Ctx, deps Deps, req rpcRequest) error {
	params, rpcErr := parseTaskRef(req)
	if rpcErr != nil {
		return writeRPC(c, rpcResponse{JSONRPC: "2.0", ID: req.ID, Error: rpcErr})
	}

	task, err := deps.Tasks.Cancel(params.ID)
	if err != nil {
		return writeRPC(c, rpcResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error:   &rpcError{Code: codeInvalidParams, Message: "unknown task id: " + params.ID},
		})
	}

	return writeRPC(c, rpcResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result:  taskResult(task.ID, task.SessionID, task.State, task.Response),
	})
}

func parseTaskRef(req rpcRequest) (taskRefParams, *rpcError) {
	var params taskRefParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return params, &rpcError{Code: codeInvalidParams, Message: "invalid params: " + err.Error()}
	}
	if err := validate.Struct(params); err != nil {
		return params, &rpcError{Code: codeInvalidParams, Message: "invalid params: " + err.Error()}
	}
	return params, nil
}

func taskResult(id, sessionID string, state store.TaskState, resp agent.Response) fiber.Map {
	return fiber.Map{
		"id":        id,
		"sessionId": sessionID,
		"status":    fiber.Map{"state": string(state)},
		"artifacts": []fiber.Map{
			{
				"parts": []fiber.Map{
					{"type": "text", "text": resp.Text},
				},
			},
		},
		"metadata": messageMetadata(resp),
	}
}

func messageMetadata(resp agent.Response) fiber.Map {
	meta := fiber.Map{}
	if resp.ErrorCode != "" {
		meta["errorCode"] = resp.ErrorCode
	}
	return meta
}

// textFromParts returns the first text part, accepting both part field
// variants.
func textFromParts(parts []messagePart) string {
	for _, part := range parts {
		kind := part.Kind
		if kind == "" {
			kind = part.Type
		}
		if kind == "text" && part.Text != "" {
			return part.Text
		}
	}
	return ""
}

func bearerToken(c *fiber.Ctx) string {
	header := c.Get(fiber.HeaderAuthorization)
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

func writeRPC(c *fiber.Ctx, resp rpcResponse) error {
	return c.JSON(resp)
}

func baseURL(c *fiber.Ctx) string {
	return c.Protocol() + "://" + c.Hostname() + "/"
}
