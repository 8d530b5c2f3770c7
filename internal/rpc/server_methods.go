package rpc

import (
	"encoding/json"
	"time"
)

// PingMethod tests connectivity.
type PingMethod struct{}

func (m *PingMethod) Handle(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
	return map[string]interface{}{}, nil
}

func (m *PingMethod) RequiredRole() Role { return RoleGuest }

// VersionMethod reports the build version.
type VersionMethod struct {
	version string
}

func (m *VersionMethod) Handle(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
	return map[string]interface{}{
		"version": m.version,
	}, nil
}

func (m *VersionMethod) RequiredRole() Role { return RoleGuest }

// ServerInfoMethod reports server status.
type ServerInfoMethod struct {
	server *Server
}

func (m *ServerInfoMethod) Handle(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
	cfg, err := m.server.engine.FeeConfig(ctx.Context)
	if err != nil {
		return nil, RpcErrorFromEngine(err)
	}
	return map[string]interface{}{
		"version":        m.server.version,
		"uptime_seconds": int64(time.Since(m.server.started).Seconds()),
		"fee_rate_bps":   cfg.RateBps,
		"fee_recipient":  cfg.Recipient.String(),
		"methods":        m.server.registry.List(),
	}, nil
}

func (m *ServerInfoMethod) RequiredRole() Role { return RoleGuest }
