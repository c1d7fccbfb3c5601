package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/chainguard-dev/chainguard/internal/chainerr"
)

// Gate is consulted before any tool outside AlwaysAllowed executes
// (spec.md §4.2 "Scope gate"). A non-nil *ToolsCallResult short-circuits
// the call without invoking the tool.
type Gate func(ctx context.Context, toolName string) *ToolsCallResult

// Server implements the MCP protocol over stdio.
type Server struct {
	registry *Registry
	info     ServerInfo
	logger   *slog.Logger

	gate          Gate
	alwaysAllowed map[string]bool
	contextMarker string
}

// NewServer creates an MCP server with the given registry and server info.
func NewServer(registry *Registry, info ServerInfo, logger *slog.Logger) *Server {
	return &Server{
		registry:      registry,
		info:          info,
		logger:        logger,
		alwaysAllowed: make(map[string]bool),
	}
}

// SetGate installs the dispatch gate and its always-allowed exemption
// set (spec.md §4.2). Tools named in alwaysAllowed skip the gate.
func (s *Server) SetGate(gate Gate, alwaysAllowed []string) {
	s.gate = gate
	s.alwaysAllowed = make(map[string]bool, len(alwaysAllowed))
	for _, name := range alwaysAllowed {
		s.alwaysAllowed[name] = true
	}
}

// SetContextMarker sets the marker a tool call's ctx argument is compared
// against (spec.md §4.2 "context marker"); a call without a matching ctx
// gets contextRefreshText prepended to its response.
func (s *Server) SetContextMarker(marker string) { s.contextMarker = marker }

// Run reads JSON-RPC requests from stdin and writes responses to stdout.
// It blocks until stdin is closed or the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(os.Stdin)
	// MCP messages can be large (e.g. db_schema results)
	scanner.Buffer(make([]byte, 0, 1024*1024), 10*1024*1024)
	encoder := json.NewEncoder(os.Stdout)

	s.logger.Info("chainguard server started", "name", s.info.Name, "version", s.info.Version)

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		resp := s.handleMessage(ctx, line)
		if resp != nil {
			if err := encoder.Encode(resp); err != nil {
				s.logger.Error("failed to write response", "error", err)
				return fmt.Errorf("writing response: %w", err)
			}
		}
	}

	if err := scanner.Err(); err != nil && err != io.EOF {
		return fmt.Errorf("reading stdin: %w", err)
	}

	s.logger.Info("chainguard server stopped (stdin closed)")
	return nil
}

// handleMessage parses a JSON-RPC request and dispatches to the appropriate handler.
func (s *Server) handleMessage(ctx context.Context, data []byte) *Response {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		s.logger.Error("failed to parse request", "error", err)
		return &Response{
			JSONRPC: "2.0",
			Error: &RPCError{
				Code:    ErrCodeParse,
				Message: "Parse error",
				Data:    err.Error(),
			},
		}
	}

	// Notifications (no ID) don't get a response
	if req.ID == nil && req.Method == "notifications/initialized" {
		s.logger.Info("client initialized")
		return nil
	}
	if req.ID == nil {
		s.logger.Debug("received notification", "method", req.Method)
		return nil
	}

	s.logger.Debug("handling request", "method", req.Method, "id", string(req.ID))

	result, rpcErr := s.dispatch(ctx, &req)
	resp := &Response{
		JSONRPC: "2.0",
		ID:      req.ID,
	}
	if rpcErr != nil {
		resp.Error = rpcErr
	} else {
		resp.Result = result
	}
	return resp
}

// dispatch routes a request to the appropriate handler method.
func (s *Server) dispatch(ctx context.Context, req *Request) (any, *RPCError) {
	switch req.Method {
	case "initialize":
		return s.handleInitialize(req.Params)
	case "tools/list":
		return s.handleToolsList()
	case "tools/call":
		return s.handleToolsCall(ctx, req.Params)
	case "prompts/list":
		return s.handlePromptsList()
	case "prompts/get":
		return s.handlePromptsGet(req.Params)
	case "resources/list":
		return s.handleResourcesList()
	case "resources/read":
		return s.handleResourcesRead(req.Params)
	default:
		return nil, &RPCError{
			Code:    ErrCodeMethodNotFound,
			Message: fmt.Sprintf("method not found: %s", req.Method),
		}
	}
}

// handleInitialize responds to the MCP handshake.
func (s *Server) handleInitialize(params json.RawMessage) (any, *RPCError) {
	var initParams InitializeParams
	if params != nil {
		if err := json.Unmarshal(params, &initParams); err != nil {
			return nil, &RPCError{
				Code:    ErrCodeInvalidParams,
				Message: "Invalid initialize params",
				Data:    err.Error(),
			}
		}
	}

	s.logger.Info("client connecting",
		"client", initParams.ClientInfo.Name,
		"client_version", initParams.ClientInfo.Version,
		"protocol_version", initParams.ProtocolVersion,
	)

	caps := ServerCapability{
		Tools: &ToolsCapability{},
	}
	if s.registry.HasPrompts() {
		caps.Prompts = &PromptsCapability{}
	}
	if s.registry.HasResources() {
		caps.Resources = &ResourcesCapability{}
	}

	return &InitializeResult{
		ProtocolVersion: "2024-11-05",
		Capabilities:    caps,
		ServerInfo:      s.info,
	}, nil
}

// handleToolsList returns all registered tools.
func (s *Server) handleToolsList() (any, *RPCError) {
	return &ToolsListResult{
		Tools: s.registry.List(),
	}, nil
}

// handleToolsCall dispatches a tool call to the registry.
func (s *Server) handleToolsCall(ctx context.Context, params json.RawMessage) (any, *RPCError) {
	var callParams ToolsCallParams
	if err := json.Unmarshal(params, &callParams); err != nil {
		return nil, &RPCError{
			Code:    ErrCodeInvalidParams,
			Message: "Invalid tools/call params",
			Data:    err.Error(),
		}
	}

	tool := s.registry.Get(callParams.Name)
	if tool == nil {
		// An unknown tool name is a diagnostic chunk, not a dispatcher
		// failure (spec.md §4.2 step 5) — it never throws.
		return ErrorResult(fmt.Sprintf("[%s] unknown tool: %s", chainerr.UnknownTool, callParams.Name)), nil
	}

	if s.gate != nil && !s.alwaysAllowed[callParams.Name] {
		if blocked := s.gate(ctx, callParams.Name); blocked != nil {
			s.logger.Warn("tool call blocked by gate", "tool", callParams.Name)
			return blocked, nil
		}
	}

	s.logger.Info("calling tool", "tool", callParams.Name)

	result, err := tool.Execute(ctx, callParams.Arguments)
	if err != nil {
		s.logger.Error("tool execution failed", "tool", callParams.Name, "error", err)
		return ErrorResult(fmt.Sprintf("tool execution failed: %v", err)), nil
	}

	s.applyContextMarker(result, callParams.Arguments)
	return result, nil
}

// contextRefreshText re-teaches the agent the three rules it must keep
// following across tool calls (spec.md §4.2 step 3 "context marker").
// It is prepended whenever a call arrives without a matching ctx field,
// rather than the bare marker token — the agent needs the rules
// restated, not just a reminder that it forgot something.
const contextRefreshText = `[context refresh] You have not echoed the current context marker. Re-reading the rules:
1. Every tool call outside set_scope, projects, config, and the kanban_* tools requires an active scope — call set_scope first.
2. Every file edit must go through track_file so validation, scope membership, and history stay accurate.
3. Before declaring the task finished, call analyze_impact and then finish — the completion gate cannot be skipped.
Echo the ctx field returned by the context tool to stop receiving this reminder.

`

// applyContextMarker implements the context-marker self-healing check
// (spec.md §4.2 step 3): a call whose arguments carry a ctx field equal
// to the configured marker passes through untouched; any other call —
// missing ctx, or an empty, mismatched value — gets contextRefreshText
// prepended to its first text block. Absence of the marker never
// blocks the call, it only earns the reminder.
func (s *Server) applyContextMarker(result *ToolsCallResult, args json.RawMessage) {
	if s.contextMarker == "" || result == nil || len(result.Content) == 0 {
		return
	}
	if hasMatchingContextMarker(args, s.contextMarker) {
		return
	}
	if result.Content[0].Type == "text" {
		result.Content[0].Text = contextRefreshText + result.Content[0].Text
	}
}

// hasMatchingContextMarker reports whether args carries a "ctx" field
// equal to marker. Arguments are a heterogeneous per-tool object, so
// this probes only the one field it cares about rather than requiring
// a full schema decode.
func hasMatchingContextMarker(args json.RawMessage, marker string) bool {
	if len(args) == 0 {
		return false
	}
	var probe struct {
		Ctx string `json:"ctx"`
	}
	if err := json.Unmarshal(args, &probe); err != nil {
		return false
	}
	return probe.Ctx == marker
}

// handlePromptsList returns all registered prompts.
func (s *Server) handlePromptsList() (any, *RPCError) {
	return &PromptsListResult{
		Prompts: s.registry.ListPrompts(),
	}, nil
}

// handlePromptsGet returns a specific prompt by name.
func (s *Server) handlePromptsGet(params json.RawMessage) (any, *RPCError) {
	var getParams PromptsGetParams
	if err := json.Unmarshal(params, &getParams); err != nil {
		return nil, &RPCError{
			Code:    ErrCodeInvalidParams,
			Message: "Invalid prompts/get params",
			Data:    err.Error(),
		}
	}

	prompt := s.registry.GetPrompt(getParams.Name)
	if prompt == nil {
		return nil, &RPCError{
			Code:    ErrCodeMethodNotFound,
			Message: fmt.Sprintf("prompt not found: %s", getParams.Name),
		}
	}

	s.logger.Debug("getting prompt", "prompt", getParams.Name)

	result, err := prompt.Get(getParams.Arguments)
	if err != nil {
		return nil, &RPCError{
			Code:    ErrCodeInternal,
			Message: fmt.Sprintf("prompt error: %v", err),
		}
	}

	return result, nil
}

// handleResourcesList returns all registered resources.
func (s *Server) handleResourcesList() (any, *RPCError) {
	return &ResourcesListResult{
		Resources: s.registry.ListResources(),
	}, nil
}

// handleResourcesRead returns the content of a specific resource.
func (s *Server) handleResourcesRead(params json.RawMessage) (any, *RPCError) {
	var readParams ResourcesReadParams
	if err := json.Unmarshal(params, &readParams); err != nil {
		return nil, &RPCError{
			Code:    ErrCodeInvalidParams,
			Message: "Invalid resources/read params",
			Data:    err.Error(),
		}
	}

	resource := s.registry.GetResource(readParams.URI)
	if resource == nil {
		return nil, &RPCError{
			Code:    ErrCodeMethodNotFound,
			Message: fmt.Sprintf("resource not found: %s", readParams.URI),
		}
	}

	s.logger.Debug("reading resource", "uri", readParams.URI)

	result, err := resource.Read()
	if err != nil {
		return nil, &RPCError{
			Code:    ErrCodeInternal,
			Message: fmt.Sprintf("resource read error: %v", err),
		}
	}

	return result, nil
}
