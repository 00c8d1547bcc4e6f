package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/richard-senior/knockouts/internal/logger"
	"github.com/richard-senior/knockouts/pkg/protocol"
	"github.com/richard-senior/knockouts/pkg/tools"
	"github.com/richard-senior/knockouts/pkg/transport"
)

// Version is reported to clients in the initialize response
const Version = "1.0.0"

// Server represents an MCP server
type Server struct {
	transport transport.Transport

	mu       sync.Mutex
	handlers map[string]HandlerFunc
	tools    []protocol.Tool
}

// HandlerFunc is a function that handles an MCP request
type HandlerFunc func(params any) (any, error)

// Singleton instance
var (
	instance *Server
	once     sync.Once
)

// GetInstance returns the singleton instance of the Server, creating it over
// stdio if InitInstance has not been called
func GetInstance() *Server {
	if instance == nil {
		logger.Warn("Server instance requested but not initialized, defaulting to stdio")
		return InitInstance(transport.NewStdioTransport())
	}
	return instance
}

// InitInstance initializes the singleton instance of the Server with the specified transport
func InitInstance(t transport.Transport) *Server {
	once.Do(func() {
		instance = New(t)
	})
	return instance
}

// New creates a server with the protocol handlers registered and no tools
func New(t transport.Transport) *Server {
	s := &Server{
		transport: t,
		handlers:  make(map[string]HandlerFunc),
		tools:     []protocol.Tool{},
	}
	s.handlers[string(protocol.MethodInitialize)] = s.handleInitialize
	s.handlers[string(protocol.MethodPing)] = s.handlePing
	s.handlers[string(protocol.MethodToolsList)] = s.handleToolsList
	s.handlers[string(protocol.MethodToolsCall)] = s.handleToolsCall
	s.handlers[string(protocol.MethodShutdown)] = s.handlePing
	return s
}

// RegisterTool registers a tool with the server
func (s *Server) RegisterTool(tool protocol.Tool, handler HandlerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tools = append(s.tools, tool)
	s.handlers[tool.Name] = handler
	logger.Info("Registered tool:", tool.Name)
}

// RegisterToolbox registers every tool of the toolbox
func (s *Server) RegisterToolbox(box *tools.Toolbox) {
	logger.Info("Registering prediction tools...")
	for _, entry := range box.Entries() {
		s.RegisterTool(entry.Tool, HandlerFunc(entry.Handler))
	}
}

// GetTools returns the list of registered tools
func (s *Server) GetTools() []protocol.Tool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]protocol.Tool(nil), s.tools...)
}

func (s *Server) handler(name string) HandlerFunc {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.handlers[name]
}

// Start starts the server and begins processing requests
func (s *Server) Start() error {
	logger.Info("Starting MCP server")

	// Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	errChan := make(chan error, 1)
	go func() {
		errChan <- s.ProcessRequests()
	}()

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		logger.Info("Received signal:", sig)
		return nil
	}
}

// ProcessRequests reads and answers requests until the client disconnects.
// A malformed request gets a parse error response and is otherwise skipped.
func (s *Server) ProcessRequests() error {
	for {
		req, err := s.transport.ReadRequest()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			if errors.Is(err, transport.ErrMalformedRequest) {
				resp := protocol.NewJsonRpcErrorResponse(protocol.ErrParse, err.Error(), nil, nil)
				if err := s.transport.WriteResponse(resp); err != nil {
					return err
				}
				continue
			}
			return err
		}

		// if it is nil then this is not an error, it is just that no response is required
		resp := s.HandleRequest(req)
		if resp == nil {
			continue
		}

		if err := s.transport.WriteResponse(resp); err != nil {
			return err
		}
	}
}

// HandleRequest processes a request and returns a response, or nil for notifications
func (s *Server) HandleRequest(req *protocol.JsonRpcRequest) *protocol.JsonRpcResponse {
	logger.Info(">> ", req.Method)

	if strings.HasPrefix(req.Method, "notifications/") {
		logger.Info("Received notification:", req.Method)
		return nil
	}

	resp := &protocol.JsonRpcResponse{
		JsonRPC: protocol.JsonRpcVersion,
		ID:      req.ID,
	}

	// Tools are only reachable through tools/call
	handler := s.handler(req.Method)
	if handler == nil || s.isTool(req.Method) {
		resp.Error = &protocol.JsonRpcError{
			Code:    protocol.ErrMethodNotFound,
			Message: fmt.Sprintf("Method not found: %s", req.Method),
		}
		return resp
	}

	var params any
	if len(req.Params) > 0 {
		params = req.Params
	}
	result, err := handler(params)
	if err != nil {
		var rpcErr *protocol.JsonRpcError
		if errors.As(err, &rpcErr) {
			resp.Error = rpcErr
		} else {
			resp.Error = &protocol.JsonRpcError{
				Code:    protocol.ErrToolExecutionFailed,
				Message: err.Error(),
			}
		}
		return resp
	}

	resultBytes, err := json.Marshal(result)
	if err != nil {
		resp.Error = &protocol.JsonRpcError{
			Code:    protocol.ErrInternal,
			Message: "Failed to marshal result: " + err.Error(),
		}
		return resp
	}
	logger.Debug("Full response:", string(resultBytes))
	resp.Result = resultBytes
	return resp
}

func (s *Server) isTool(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, tool := range s.tools {
		if tool.Name == name {
			return true
		}
	}
	return false
}

// handleToolsList handles the tools/list method
func (s *Server) handleToolsList(params any) (any, error) {
	logger.Info("Handling tools/list request")
	return protocol.ToolsResponse{Tools: s.GetTools()}, nil
}

func (s *Server) handlePing(params any) (any, error) {
	return struct{}{}, nil
}

// handleInitialize handles the initialize method
func (s *Server) handleInitialize(params any) (any, error) {
	protocolVersion := protocol.DefaultProtocolVersion
	if raw, ok := params.(json.RawMessage); ok {
		var initParams struct {
			ProtocolVersion string `json:"protocolVersion"`
		}
		if err := json.Unmarshal(raw, &initParams); err != nil {
			logger.Warn("Failed to parse initialize params:", err)
		} else if initParams.ProtocolVersion != "" {
			protocolVersion = initParams.ProtocolVersion
		}
	}
	logger.Info("Handling initialize request with", len(s.GetTools()), "tools, protocol version", protocolVersion)

	capabilities := map[string]any{}
	if len(s.GetTools()) > 0 {
		capabilities["tools"] = map[string]any{
			"listChanged": false,
		}
	}

	type serverInfo struct {
		Name    string `json:"name"`
		Version string `json:"version"`
	}
	return struct {
		ProtocolVersion string         `json:"protocolVersion"`
		Capabilities    map[string]any `json:"capabilities"`
		ServerInfo      serverInfo     `json:"serverInfo"`
	}{
		ProtocolVersion: protocolVersion,
		Capabilities:    capabilities,
		ServerInfo:      serverInfo{Name: "knockouts", Version: Version},
	}, nil
}

// handleToolsCall runs a registered tool and wraps its JSON output in a text content block
func (s *Server) handleToolsCall(params any) (any, error) {
	raw, ok := params.(json.RawMessage)
	if !ok {
		return nil, &protocol.JsonRpcError{Code: protocol.ErrInvalidParams, Message: "missing tools/call parameters"}
	}

	var call struct {
		Name      string         `json:"name"`
		Arguments map[string]any `json:"arguments"`
	}
	if err := json.Unmarshal(raw, &call); err != nil {
		return nil, &protocol.JsonRpcError{Code: protocol.ErrInvalidParams, Message: "invalid tools/call parameters: " + err.Error()}
	}
	logger.Info("Tool call requested for:", call.Name)

	if !s.isTool(call.Name) {
		return nil, &protocol.JsonRpcError{Code: protocol.ErrInvalidParams, Message: "tool not found: " + call.Name}
	}

	output, err := s.handler(call.Name)(call.Arguments)
	if err != nil {
		logger.Warn("Tool execution failed:", call.Name, err)
		return protocol.ToolCallResult{
			Content: []protocol.ContentBlock{{Type: "text", Text: err.Error()}},
			IsError: true,
		}, nil
	}

	text, err := json.MarshalIndent(output, "", " ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s output: %w", call.Name, err)
	}
	return protocol.ToolCallResult{
		Content: []protocol.ContentBlock{{Type: "text", Text: string(text)}},
	}, nil
}
