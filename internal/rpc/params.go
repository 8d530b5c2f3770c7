package rpc

import (
	"encoding/hex"
	"encoding/json"

	"github.com/hbkwon/voucherd/internal/core/types"
)

// decodeParams unmarshals the single params object into dst. A missing
// params object leaves dst zeroed.
func decodeParams(params json.RawMessage, dst interface{}) *RpcError {
	if params == nil {
		return nil
	}
	if err := json.Unmarshal(params, dst); err != nil {
		return RpcErrorInvalidParams("Invalid parameters: " + err.Error())
	}
	return nil
}

// parseAccount parses a hex account field.
func parseAccount(field, value string) (types.AccountID, *RpcError) {
	if value == "" {
		return types.AccountID{}, RpcErrorInvalidParams("Missing field: " + field)
	}
	account, err := types.ParseAccountID(value)
	if err != nil {
		return types.AccountID{}, RpcErrorInvalidParams("Invalid " + field + ": " + err.Error())
	}
	return account, nil
}

// parseSignature decodes a hex compact signature.
func parseSignature(value string) ([]byte, *RpcError) {
	if value == "" {
		return nil, RpcErrorInvalidParams("Missing field: signature")
	}
	sig, err := hex.DecodeString(value)
	if err != nil {
		return nil, RpcErrorInvalidParams("Invalid signature: " + err.Error())
	}
	return sig, nil
}
