package rpc

import (
	"context"
	"encoding/json"
)

// Role-based access control for RPC methods. Admin methods are only
// reachable when the server was started with admin enabled for the
// client's address.
type Role int

const (
	RoleGuest Role = iota
	RoleAdmin
)

// RpcContext contains request-specific information.
type RpcContext struct {
	Context context.Context
	Role    Role

	// ClientIP is the direct peer address. Forwarding headers are not
	// consulted; they are client controlled.
	ClientIP string
}

// MethodHandler is implemented by every RPC method.
type MethodHandler interface {
	Handle(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError)
	RequiredRole() Role
}

// MethodRegistry maps method names to handlers.
type MethodRegistry struct {
	methods map[string]MethodHandler
}

func NewMethodRegistry() *MethodRegistry {
	return &MethodRegistry{
		methods: make(map[string]MethodHandler),
	}
}

func (r *MethodRegistry) Register(name string, handler MethodHandler) {
	r.methods[name] = handler
}

func (r *MethodRegistry) Get(name string) (MethodHandler, bool) {
	handler, exists := r.methods[name]
	return handler, exists
}

func (r *MethodRegistry) List() []string {
	methods := make([]string, 0, len(r.methods))
	for name := range r.methods {
		methods = append(methods, name)
	}
	return methods
}

// Request is the accepted JSON-RPC envelope.
// Format: {"method": "method_name", "params": [{...}]}
type Request struct {
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params,omitempty"`
}
