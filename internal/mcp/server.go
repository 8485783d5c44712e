/*
Package mcp implements the MCP server that exposes the toolkit.

The server speaks JSON-RPC 2.0 over a line-delimited stream (stdio by
default) and supports:
  - initialize: protocol handshake
  - tools/list: every toolkit tool, most used first
  - tools/call: run a tool; successful calls are recorded as uses
  - ping

Notifications (requests without an id) are accepted and never answered.
*/
package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/khanglvm/strapd/internal/learning"
	"github.com/khanglvm/strapd/internal/toolkit"
	"github.com/khanglvm/strapd/internal/usage"
	"github.com/khanglvm/strapd/internal/version"
)

// ProtocolVersion is the MCP revision announced in initialize.
const ProtocolVersion = "2024-11-05"

// JSON-RPC error codes.
const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeToolFailed     = -32000
)

// maxLineSize bounds a single request line.
const maxLineSize = 4 << 20

// Server represents the strapd MCP server.
type Server struct {
	catalog *toolkit.Catalog
	tracker *learning.Tracker
	logger  *zap.Logger

	in    io.Reader
	out   io.Writer
	outMu sync.Mutex
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithIO replaces stdin and stdout.
func WithIO(in io.Reader, out io.Writer) Option {
	return func(s *Server) {
		s.in = in
		s.out = out
	}
}

// NewServer creates a server for catalog. A nil tracker disables ranking
// and usage recording.
func NewServer(catalog *toolkit.Catalog, tracker *learning.Tracker, opts ...Option) *Server {
	s := &Server{
		catalog: catalog,
		tracker: tracker,
		logger:  zap.NewNop(),
		in:      os.Stdin,
		out:     os.Stdout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run serves requests until the input is closed or ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(s.in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := scanner.Bytes()
		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}

		response, err := s.handleRequest(ctx, line)
		if err != nil {
			s.logger.Warn("rejected request", zap.Error(err))
			s.sendError(nil, codeParseError, err.Error())
			continue
		}

		if response != nil {
			s.sendResponse(response)
		}
	}

	return scanner.Err()
}

// MCPRequest represents an incoming MCP JSON-RPC request.
type MCPRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// MCPResponse represents an outgoing MCP JSON-RPC response.
type MCPResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *MCPError   `json:"error,omitempty"`
}

// MCPError represents an MCP error.
type MCPError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func result(id interface{}, value interface{}) *MCPResponse {
	return &MCPResponse{JSONRPC: "2.0", ID: id, Result: value}
}

func failure(id interface{}, code int, message string) *MCPResponse {
	return &MCPResponse{JSONRPC: "2.0", ID: id, Error: &MCPError{Code: code, Message: message}}
}

// handleRequest processes an incoming MCP request. It returns nil for
// notifications.
func (s *Server) handleRequest(ctx context.Context, data []byte) (*MCPResponse, error) {
	var req MCPRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("invalid JSON-RPC request: %w", err)
	}

	if req.ID == nil {
		s.logger.Debug("notification", zap.String("method", req.Method))
		return nil, nil
	}

	if req.JSONRPC != "2.0" {
		return failure(req.ID, codeInvalidRequest, "jsonrpc must be \"2.0\""), nil
	}

	switch req.Method {
	case "initialize":
		return s.handleInitialize(&req), nil
	case "ping":
		return result(req.ID, map[string]interface{}{}), nil
	case "tools/list":
		return s.handleToolsList(&req), nil
	case "tools/call":
		return s.handleToolsCall(ctx, &req), nil
	default:
		return failure(req.ID, codeMethodNotFound, "Method not found"), nil
	}
}

// handleInitialize handles the MCP initialize request.
func (s *Server) handleInitialize(req *MCPRequest) *MCPResponse {
	return result(req.ID, map[string]interface{}{
		"protocolVersion": ProtocolVersion,
		"capabilities": map[string]interface{}{
			"tools": map[string]interface{}{},
		},
		"serverInfo": map[string]interface{}{
			"name":    "strapd",
			"version": version.Version,
		},
	})
}

// snapshot returns the current usage state, or an empty one without a tracker.
func (s *Server) snapshot() usage.State {
	if s.tracker == nil {
		return usage.NewState()
	}
	return s.tracker.Snapshot()
}

// handleToolsList returns every tool, ranked by usage.
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	ranked := usage.Rank(s.catalog.All(), s.snapshot())

	tools := make([]map[string]interface{}, 0, len(ranked))
	for _, tool := range ranked {
		tools = append(tools, map[string]interface{}{
			"name":        tool.Name,
			"title":       tool.Title,
			"description": fmt.Sprintf("[%s] %s", tool.Category, tool.Description),
			"inputSchema": tool.InputSchema(),
		})
	}

	return result(req.ID, map[string]interface{}{"tools": tools})
}

// handleToolsCall executes a tool and records the use on success.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params struct {
		Name      string                 `json:"name"`
		Arguments map[string]interface{} `json:"arguments"`
	}

	if err := json.Unmarshal(req.Params, &params); err != nil {
		return failure(req.ID, codeInvalidParams, fmt.Sprintf("invalid params: %v", err))
	}

	inputs, err := toInputs(params.Arguments)
	if err != nil {
		return failure(req.ID, codeInvalidParams, err.Error())
	}

	out, err := s.catalog.Execute(ctx, params.Name, inputs)
	if err != nil {
		if errors.Is(err, toolkit.ErrUnknownTool) {
			return failure(req.ID, codeInvalidParams, fmt.Sprintf("Unknown tool: %s", params.Name))
		}
		return failure(req.ID, codeToolFailed, err.Error())
	}

	if s.tracker != nil {
		if err := s.tracker.Use(params.Name); err != nil {
			s.logger.Warn("failed to record tool use", zap.String("tool", params.Name), zap.Error(err))
		}
	}

	return result(req.ID, map[string]interface{}{
		"content": []map[string]interface{}{
			{
				"type": "text",
				"text": out.Output,
			},
		},
	})
}

// toInputs converts JSON arguments into string inputs. Numbers keep their
// shortest exact form; objects and arrays are passed as JSON text.
func toInputs(args map[string]interface{}) (toolkit.Inputs, error) {
	inputs := make(toolkit.Inputs, len(args))
	for key, value := range args {
		switch v := value.(type) {
		case nil:
			continue
		case string:
			inputs[key] = v
		case bool:
			inputs[key] = strconv.FormatBool(v)
		case float64:
			inputs[key] = strconv.FormatFloat(v, 'f', -1, 64)
		default:
			data, err := json.Marshal(v)
			if err != nil {
				return nil, fmt.Errorf("argument %s: %w", key, err)
			}
			inputs[key] = string(data)
		}
	}
	return inputs, nil
}

// sendResponse writes a JSON-RPC response as one line.
func (s *Server) sendResponse(resp *MCPResponse) {
	data, err := json.Marshal(resp)
	if err != nil {
		s.logger.Error("failed to encode response", zap.Error(err))
		return
	}

	s.outMu.Lock()
	defer s.outMu.Unlock()

	if _, err := fmt.Fprintln(s.out, string(data)); err != nil {
		s.logger.Warn("failed to write response", zap.Error(err))
	}
}

// sendError writes an error response.
func (s *Server) sendError(id interface{}, code int, message string) {
	s.sendResponse(failure(id, code, message))
}
