// Package rpc exposes the engine over HTTP JSON-RPC. Requests use the
// envelope {"method": "...", "params": [{...}]} and responses carry a
// result object with a status field.
package rpc

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net"
	"net/http"
	"time"
)

// Server handles HTTP JSON-RPC requests.
type Server struct {
	registry *MethodRegistry
	engine   EngineService
	version  string
	started  time.Time

	httpServer *http.Server
}

// NewServer creates an RPC server bound to the given engine and registers
// all methods.
func NewServer(engine EngineService, version string) *Server {
	server := &Server{
		registry: NewMethodRegistry(),
		engine:   engine,
		version:  version,
		started:  time.Now(),
	}
	server.registerAllMethods()
	return server
}

// Registry exposes the method registry, mainly for tests.
func (s *Server) Registry() *MethodRegistry {
	return s.registry
}

// Start listens on addr and serves until Shutdown is called.
func (s *Server) Start(addr string, readTimeout, writeTimeout time.Duration) error {
	mux := http.NewServeMux()
	mux.Handle("/", s)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	log.Printf("JSON-RPC server listening on %s", addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops the server, draining in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.Header().Set("Content-Type", "application/json")

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.writeResponse(w, nil, RpcErrorInternal("Failed to read request body"))
		return
	}
	defer r.Body.Close()

	var request Request
	if err := json.Unmarshal(body, &request); err != nil {
		s.writeResponse(w, nil, NewRpcError(RpcPARSE_ERROR, "jsonInvalid", "Invalid JSON: "+err.Error()))
		return
	}
	if request.Method == "" {
		s.writeResponse(w, nil, NewRpcError(RpcJSON_RPC, "missingCommand", "Missing method field"))
		return
	}

	// Params is an array with at most one object.
	var params json.RawMessage
	if len(request.Params) > 0 {
		params = request.Params[0]
	}

	// The role comes from the direct peer address. Forwarding headers are
	// client controlled and must never influence authorization.
	clientIP := remoteHost(r)
	ctx := &RpcContext{
		Context:  r.Context(),
		Role:     roleFor(clientIP),
		ClientIP: clientIP,
	}

	result, rpcErr := s.executeMethod(request.Method, params, ctx)
	s.writeResponse(w, result, rpcErr)
}

// executeMethod dispatches to the registered handler.
func (s *Server) executeMethod(method string, params json.RawMessage, ctx *RpcContext) (interface{}, *RpcError) {
	handler, exists := s.registry.Get(method)
	if !exists {
		return nil, RpcErrorMethodNotFound(method)
	}
	if ctx.Role < handler.RequiredRole() {
		return nil, RpcErrorForbidden(method)
	}
	return handler.Handle(ctx, params)
}

// writeResponse writes the response envelope. Errors live inside the
// result object next to status, so clients always parse one shape.
func (s *Server) writeResponse(w http.ResponseWriter, result interface{}, rpcErr *RpcError) {
	response := make(map[string]interface{})

	if rpcErr != nil {
		response["result"] = map[string]interface{}{
			"status":        "error",
			"error":         rpcErr.ErrorString,
			"error_code":    rpcErr.Code,
			"error_message": rpcErr.Message,
		}
	} else {
		if resultMap, ok := result.(map[string]interface{}); ok {
			resultMap["status"] = "success"
			response["result"] = resultMap
		} else {
			response["result"] = map[string]interface{}{
				"status": "success",
				"data":   result,
			}
		}
	}

	responseData, err := json.Marshal(response)
	if err != nil {
		log.Printf("Failed to marshal response: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write(responseData)
}

// roleFor grants admin to loopback clients only.
func roleFor(clientIP string) Role {
	ip := net.ParseIP(clientIP)
	if ip != nil && ip.IsLoopback() {
		return RoleAdmin
	}
	return RoleGuest
}

// remoteHost extracts the host of the direct peer.
func remoteHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
