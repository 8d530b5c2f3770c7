package rpc

import (
	"context"
	"encoding/json"

	"github.com/hbkwon/voucherd/internal/core/types"
)

// accountPairParams is shared by the operator management methods.
type accountPairParams struct {
	Caller  string `json:"caller"`
	Account string `json:"account"`
}

// OperatorAddMethod grants operator privileges to an account.
type OperatorAddMethod struct {
	engine EngineService
}

func (m *OperatorAddMethod) Handle(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
	var request accountPairParams
	if rpcErr := decodeParams(params, &request); rpcErr != nil {
		return nil, rpcErr
	}
	caller, rpcErr := parseAccount("caller", request.Caller)
	if rpcErr != nil {
		return nil, rpcErr
	}
	operator, rpcErr := parseAccount("account", request.Account)
	if rpcErr != nil {
		return nil, rpcErr
	}
	if err := m.engine.AddOperator(ctx.Context, caller, operator); err != nil {
		return nil, RpcErrorFromEngine(err)
	}
	return map[string]interface{}{"operator": operator.String()}, nil
}

func (m *OperatorAddMethod) RequiredRole() Role { return RoleAdmin }

// OperatorRemoveMethod revokes operator privileges.
type OperatorRemoveMethod struct {
	engine EngineService
}

func (m *OperatorRemoveMethod) Handle(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
	var request accountPairParams
	if rpcErr := decodeParams(params, &request); rpcErr != nil {
		return nil, rpcErr
	}
	caller, rpcErr := parseAccount("caller", request.Caller)
	if rpcErr != nil {
		return nil, rpcErr
	}
	operator, rpcErr := parseAccount("account", request.Account)
	if rpcErr != nil {
		return nil, rpcErr
	}
	if err := m.engine.RemoveOperator(ctx.Context, caller, operator); err != nil {
		return nil, RpcErrorFromEngine(err)
	}
	return map[string]interface{}{"operator": operator.String()}, nil
}

func (m *OperatorRemoveMethod) RequiredRole() Role { return RoleAdmin }

// OperatorCheckMethod reports whether an account is an operator.
type OperatorCheckMethod struct {
	engine EngineService
}

func (m *OperatorCheckMethod) Handle(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
	var request struct {
		Account string `json:"account"`
	}
	if rpcErr := decodeParams(params, &request); rpcErr != nil {
		return nil, rpcErr
	}
	account, rpcErr := parseAccount("account", request.Account)
	if rpcErr != nil {
		return nil, rpcErr
	}
	isOperator, err := m.engine.IsOperator(ctx.Context, account)
	if err != nil {
		return nil, RpcErrorFromEngine(err)
	}
	return map[string]interface{}{
		"account":     account.String(),
		"is_operator": isOperator,
	}, nil
}

func (m *OperatorCheckMethod) RequiredRole() Role { return RoleGuest }

// FeeSetMethod updates the fee configuration.
type FeeSetMethod struct {
	engine EngineService
}

func (m *FeeSetMethod) Handle(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
	var request struct {
		Caller    string `json:"caller"`
		RateBps   uint32 `json:"rate_bps"`
		Recipient string `json:"recipient"`
	}
	if rpcErr := decodeParams(params, &request); rpcErr != nil {
		return nil, rpcErr
	}
	caller, rpcErr := parseAccount("caller", request.Caller)
	if rpcErr != nil {
		return nil, rpcErr
	}
	recipient, rpcErr := parseAccount("recipient", request.Recipient)
	if rpcErr != nil {
		return nil, rpcErr
	}
	if err := m.engine.SetFee(ctx.Context, caller, request.RateBps, recipient); err != nil {
		return nil, RpcErrorFromEngine(err)
	}
	return map[string]interface{}{
		"rate_bps":  request.RateBps,
		"recipient": recipient.String(),
	}, nil
}

func (m *FeeSetMethod) RequiredRole() Role { return RoleAdmin }

// FeeInfoMethod reports the current fee configuration.
type FeeInfoMethod struct {
	engine EngineService
}

func (m *FeeInfoMethod) Handle(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
	cfg, err := m.engine.FeeConfig(ctx.Context)
	if err != nil {
		return nil, RpcErrorFromEngine(err)
	}
	return map[string]interface{}{
		"rate_bps":  cfg.RateBps,
		"recipient": cfg.Recipient.String(),
	}, nil
}

func (m *FeeInfoMethod) RequiredRole() Role { return RoleGuest }

// whitelistParams is shared by the whitelist methods.
type whitelistParams struct {
	Caller  string `json:"caller,omitempty"`
	Asset   string `json:"asset"`
	TokenID uint64 `json:"token_id"`
	Account string `json:"account"`
}

// WhitelistAddMethod whitelists an account for an asset and token id.
type WhitelistAddMethod struct {
	engine EngineService
}

func (m *WhitelistAddMethod) Handle(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
	return handleWhitelistChange(ctx, params, m.engine.AddWhitelist)
}

func (m *WhitelistAddMethod) RequiredRole() Role { return RoleAdmin }

// WhitelistRemoveMethod removes an account from a whitelist.
type WhitelistRemoveMethod struct {
	engine EngineService
}

func (m *WhitelistRemoveMethod) Handle(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
	return handleWhitelistChange(ctx, params, m.engine.RemoveWhitelist)
}

func (m *WhitelistRemoveMethod) RequiredRole() Role { return RoleAdmin }

func handleWhitelistChange(ctx *RpcContext, params json.RawMessage, op func(context.Context, types.AccountID, types.AccountID, types.TokenID, types.AccountID) error) (interface{}, *RpcError) {
	var request whitelistParams
	if rpcErr := decodeParams(params, &request); rpcErr != nil {
		return nil, rpcErr
	}
	caller, rpcErr := parseAccount("caller", request.Caller)
	if rpcErr != nil {
		return nil, rpcErr
	}
	asset, rpcErr := parseAccount("asset", request.Asset)
	if rpcErr != nil {
		return nil, rpcErr
	}
	account, rpcErr := parseAccount("account", request.Account)
	if rpcErr != nil {
		return nil, rpcErr
	}
	if err := op(ctx.Context, caller, asset, types.TokenID(request.TokenID), account); err != nil {
		return nil, RpcErrorFromEngine(err)
	}
	return map[string]interface{}{
		"asset":    asset.String(),
		"token_id": request.TokenID,
		"account":  account.String(),
	}, nil
}

// WhitelistCheckMethod reports whitelist membership.
type WhitelistCheckMethod struct {
	engine EngineService
}

func (m *WhitelistCheckMethod) Handle(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
	var request whitelistParams
	if rpcErr := decodeParams(params, &request); rpcErr != nil {
		return nil, rpcErr
	}
	asset, rpcErr := parseAccount("asset", request.Asset)
	if rpcErr != nil {
		return nil, rpcErr
	}
	account, rpcErr := parseAccount("account", request.Account)
	if rpcErr != nil {
		return nil, rpcErr
	}
	whitelisted, err := m.engine.IsWhitelisted(ctx.Context, asset, types.TokenID(request.TokenID), account)
	if err != nil {
		return nil, RpcErrorFromEngine(err)
	}
	return map[string]interface{}{
		"asset":       asset.String(),
		"token_id":    request.TokenID,
		"account":     account.String(),
		"whitelisted": whitelisted,
	}, nil
}

func (m *WhitelistCheckMethod) RequiredRole() Role { return RoleGuest }
