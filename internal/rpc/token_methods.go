package rpc

import (
	"encoding/json"

	"github.com/hbkwon/voucherd/internal/core/types"
)

// MintMethod credits freshly issued tokens, operator authorized.
type MintMethod struct {
	engine EngineService
}

func (m *MintMethod) Handle(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
	var request struct {
		Caller   string `json:"caller"`
		To       string `json:"to"`
		TokenID  uint64 `json:"token_id"`
		Amount   uint64 `json:"amount"`
		Metadata string `json:"metadata,omitempty"`
	}
	if rpcErr := decodeParams(params, &request); rpcErr != nil {
		return nil, rpcErr
	}
	caller, rpcErr := parseAccount("caller", request.Caller)
	if rpcErr != nil {
		return nil, rpcErr
	}
	to, rpcErr := parseAccount("to", request.To)
	if rpcErr != nil {
		return nil, rpcErr
	}
	if err := m.engine.MintByOperator(ctx.Context, caller, to, request.Amount, types.TokenID(request.TokenID), request.Metadata); err != nil {
		return nil, RpcErrorFromEngine(err)
	}
	return map[string]interface{}{
		"to":       to.String(),
		"token_id": request.TokenID,
		"amount":   request.Amount,
	}, nil
}

func (m *MintMethod) RequiredRole() Role { return RoleAdmin }

// MintSignedMethod credits tokens authorized by a recipient-bound
// operator signature. The fee split is applied by the engine.
type MintSignedMethod struct {
	engine EngineService
}

func (m *MintSignedMethod) Handle(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
	var request struct {
		To             string `json:"to"`
		TokenID        uint64 `json:"token_id"`
		Amount         uint64 `json:"amount"`
		Nonce          uint64 `json:"nonce"`
		Metadata       string `json:"metadata,omitempty"`
		Signature      string `json:"signature"`
		ReferencePrice uint64 `json:"reference_price,omitempty"`
	}
	if rpcErr := decodeParams(params, &request); rpcErr != nil {
		return nil, rpcErr
	}
	to, rpcErr := parseAccount("to", request.To)
	if rpcErr != nil {
		return nil, rpcErr
	}
	signature, rpcErr := parseSignature(request.Signature)
	if rpcErr != nil {
		return nil, rpcErr
	}
	if err := m.engine.MintBySignature(ctx.Context, to, request.Amount, types.TokenID(request.TokenID), request.Nonce, request.Metadata, signature, request.ReferencePrice); err != nil {
		return nil, RpcErrorFromEngine(err)
	}
	return map[string]interface{}{
		"to":       to.String(),
		"token_id": request.TokenID,
		"amount":   request.Amount,
		"nonce":    request.Nonce,
	}, nil
}

func (m *MintSignedMethod) RequiredRole() Role { return RoleGuest }

// TransferSignedMethod moves tokens authorized by the sender's signature.
type TransferSignedMethod struct {
	engine EngineService
}

func (m *TransferSignedMethod) Handle(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
	var request struct {
		From      string `json:"from"`
		To        string `json:"to"`
		TokenID   uint64 `json:"token_id"`
		Amount    uint64 `json:"amount"`
		Nonce     uint64 `json:"nonce"`
		Signature string `json:"signature"`
	}
	if rpcErr := decodeParams(params, &request); rpcErr != nil {
		return nil, rpcErr
	}
	from, rpcErr := parseAccount("from", request.From)
	if rpcErr != nil {
		return nil, rpcErr
	}
	to, rpcErr := parseAccount("to", request.To)
	if rpcErr != nil {
		return nil, rpcErr
	}
	signature, rpcErr := parseSignature(request.Signature)
	if rpcErr != nil {
		return nil, rpcErr
	}
	if err := m.engine.TransferBySignature(ctx.Context, from, to, types.TokenID(request.TokenID), request.Amount, request.Nonce, signature); err != nil {
		return nil, RpcErrorFromEngine(err)
	}
	return map[string]interface{}{
		"from":     from.String(),
		"to":       to.String(),
		"token_id": request.TokenID,
		"amount":   request.Amount,
	}, nil
}

func (m *TransferSignedMethod) RequiredRole() Role { return RoleGuest }

// ApprovalSetMethod grants or revokes an account-wide custody approval.
type ApprovalSetMethod struct {
	engine EngineService
}

func (m *ApprovalSetMethod) Handle(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
	var request struct {
		Holder   string `json:"holder"`
		Operator string `json:"operator"`
		Approved bool   `json:"approved"`
	}
	if rpcErr := decodeParams(params, &request); rpcErr != nil {
		return nil, rpcErr
	}
	holder, rpcErr := parseAccount("holder", request.Holder)
	if rpcErr != nil {
		return nil, rpcErr
	}
	operator, rpcErr := parseAccount("operator", request.Operator)
	if rpcErr != nil {
		return nil, rpcErr
	}
	if err := m.engine.SetApprovalForAll(ctx.Context, holder, operator, request.Approved); err != nil {
		return nil, RpcErrorFromEngine(err)
	}
	return map[string]interface{}{
		"holder":   holder.String(),
		"operator": operator.String(),
		"approved": request.Approved,
	}, nil
}

func (m *ApprovalSetMethod) RequiredRole() Role { return RoleAdmin }

// BalanceMethod reports the token balance of an account.
type BalanceMethod struct {
	engine EngineService
}

func (m *BalanceMethod) Handle(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
	var request struct {
		Account string `json:"account"`
		TokenID uint64 `json:"token_id"`
	}
	if rpcErr := decodeParams(params, &request); rpcErr != nil {
		return nil, rpcErr
	}
	account, rpcErr := parseAccount("account", request.Account)
	if rpcErr != nil {
		return nil, rpcErr
	}
	balance, err := m.engine.BalanceOf(ctx.Context, account, types.TokenID(request.TokenID))
	if err != nil {
		return nil, RpcErrorFromEngine(err)
	}
	return map[string]interface{}{
		"account":  account.String(),
		"token_id": request.TokenID,
		"balance":  balance,
	}, nil
}

func (m *BalanceMethod) RequiredRole() Role { return RoleGuest }

// TotalSupplyMethod reports the total supply of a token id.
type TotalSupplyMethod struct {
	engine EngineService
}

func (m *TotalSupplyMethod) Handle(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
	var request struct {
		TokenID uint64 `json:"token_id"`
	}
	if rpcErr := decodeParams(params, &request); rpcErr != nil {
		return nil, rpcErr
	}
	supply, err := m.engine.TotalSupply(ctx.Context, types.TokenID(request.TokenID))
	if err != nil {
		return nil, RpcErrorFromEngine(err)
	}
	return map[string]interface{}{
		"token_id":     request.TokenID,
		"total_supply": supply,
	}, nil
}

func (m *TotalSupplyMethod) RequiredRole() Role { return RoleGuest }

// NonceCheckMethod reports whether a signer nonce has been consumed.
type NonceCheckMethod struct {
	engine EngineService
}

func (m *NonceCheckMethod) Handle(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
	var request struct {
		Signer string `json:"signer"`
		Nonce  uint64 `json:"nonce"`
	}
	if rpcErr := decodeParams(params, &request); rpcErr != nil {
		return nil, rpcErr
	}
	signer, rpcErr := parseAccount("signer", request.Signer)
	if rpcErr != nil {
		return nil, rpcErr
	}
	consumed, err := m.engine.NonceConsumed(ctx.Context, signer, request.Nonce)
	if err != nil {
		return nil, RpcErrorFromEngine(err)
	}
	return map[string]interface{}{
		"signer":   signer.String(),
		"nonce":    request.Nonce,
		"consumed": consumed,
	}, nil
}

func (m *NonceCheckMethod) RequiredRole() Role { return RoleGuest }

// ApprovalCheckMethod reports an account-wide custody approval.
type ApprovalCheckMethod struct {
	engine EngineService
}

func (m *ApprovalCheckMethod) Handle(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
	var request struct {
		Holder   string `json:"holder"`
		Operator string `json:"operator"`
	}
	if rpcErr := decodeParams(params, &request); rpcErr != nil {
		return nil, rpcErr
	}
	holder, rpcErr := parseAccount("holder", request.Holder)
	if rpcErr != nil {
		return nil, rpcErr
	}
	operator, rpcErr := parseAccount("operator", request.Operator)
	if rpcErr != nil {
		return nil, rpcErr
	}
	approved, err := m.engine.IsApprovedForAll(ctx.Context, holder, operator)
	if err != nil {
		return nil, RpcErrorFromEngine(err)
	}
	return map[string]interface{}{
		"holder":   holder.String(),
		"operator": operator.String(),
		"approved": approved,
	}, nil
}

func (m *ApprovalCheckMethod) RequiredRole() Role { return RoleGuest }
