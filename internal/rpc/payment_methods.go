package rpc

import (
	"encoding/json"
)

// PaymentFundMethod credits stable-asset units to an account.
type PaymentFundMethod struct {
	engine EngineService
}

func (m *PaymentFundMethod) Handle(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
	var request struct {
		To     string `json:"to"`
		Amount uint64 `json:"amount"`
	}
	if rpcErr := decodeParams(params, &request); rpcErr != nil {
		return nil, rpcErr
	}
	to, rpcErr := parseAccount("to", request.To)
	if rpcErr != nil {
		return nil, rpcErr
	}
	if err := m.engine.FundPayment(ctx.Context, to, request.Amount); err != nil {
		return nil, RpcErrorFromEngine(err)
	}
	return map[string]interface{}{
		"to":     to.String(),
		"amount": request.Amount,
	}, nil
}

func (m *PaymentFundMethod) RequiredRole() Role { return RoleAdmin }

// PaymentApproveMethod sets a stable-asset spending allowance.
type PaymentApproveMethod struct {
	engine EngineService
}

func (m *PaymentApproveMethod) Handle(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
	var request struct {
		Owner   string `json:"owner"`
		Spender string `json:"spender"`
		Amount  uint64 `json:"amount"`
	}
	if rpcErr := decodeParams(params, &request); rpcErr != nil {
		return nil, rpcErr
	}
	owner, rpcErr := parseAccount("owner", request.Owner)
	if rpcErr != nil {
		return nil, rpcErr
	}
	spender, rpcErr := parseAccount("spender", request.Spender)
	if rpcErr != nil {
		return nil, rpcErr
	}
	if err := m.engine.ApprovePayment(ctx.Context, owner, spender, request.Amount); err != nil {
		return nil, RpcErrorFromEngine(err)
	}
	return map[string]interface{}{
		"owner":   owner.String(),
		"spender": spender.String(),
		"amount":  request.Amount,
	}, nil
}

func (m *PaymentApproveMethod) RequiredRole() Role { return RoleAdmin }

// PaymentBalanceMethod reports a stable-asset balance.
type PaymentBalanceMethod struct {
	engine EngineService
}

func (m *PaymentBalanceMethod) Handle(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
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
	balance, err := m.engine.PaymentBalanceOf(ctx.Context, account)
	if err != nil {
		return nil, RpcErrorFromEngine(err)
	}
	return map[string]interface{}{
		"account": account.String(),
		"balance": balance,
	}, nil
}

func (m *PaymentBalanceMethod) RequiredRole() Role { return RoleGuest }

// PaymentAllowanceMethod reports a stable-asset allowance.
type PaymentAllowanceMethod struct {
	engine EngineService
}

func (m *PaymentAllowanceMethod) Handle(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
	var request struct {
		Owner   string `json:"owner"`
		Spender string `json:"spender"`
	}
	if rpcErr := decodeParams(params, &request); rpcErr != nil {
		return nil, rpcErr
	}
	owner, rpcErr := parseAccount("owner", request.Owner)
	if rpcErr != nil {
		return nil, rpcErr
	}
	spender, rpcErr := parseAccount("spender", request.Spender)
	if rpcErr != nil {
		return nil, rpcErr
	}
	allowance, err := m.engine.PaymentAllowance(ctx.Context, owner, spender)
	if err != nil {
		return nil, RpcErrorFromEngine(err)
	}
	return map[string]interface{}{
		"owner":     owner.String(),
		"spender":   spender.String(),
		"allowance": allowance,
	}, nil
}

func (m *PaymentAllowanceMethod) RequiredRole() Role { return RoleGuest }
