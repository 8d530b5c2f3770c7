package rpc

import (
	"errors"
	"fmt"

	"github.com/hbkwon/voucherd/internal/core/access"
	"github.com/hbkwon/voucherd/internal/core/fees"
	"github.com/hbkwon/voucherd/internal/core/ledger"
	"github.com/hbkwon/voucherd/internal/core/market"
	"github.com/hbkwon/voucherd/internal/core/stable"
)

// RpcError is the error object embedded in error responses.
type RpcError struct {
	Code        int    `json:"error_code"`
	ErrorString string `json:"error"`
	Message     string `json:"error_message,omitempty"`
}

func (e RpcError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.ErrorString
}

// RPC error codes. Negative codes follow JSON-RPC 2.0, positive codes are
// domain rejections.
const (
	RpcJSON_RPC         = -32600
	RpcMETHOD_NOT_FOUND = -32601
	RpcINVALID_PARAMS   = -32602
	RpcINTERNAL         = -32603
	RpcPARSE_ERROR      = -32700

	RpcUNAUTHORIZED           = 1
	RpcINVALID_FEE_RATE       = 2
	RpcASSET_NOT_VERIFIED     = 3
	RpcNOT_WHITELISTED        = 4
	RpcNOT_SELLER             = 5
	RpcINSUFFICIENT_LISTED    = 6
	RpcINSUFFICIENT_BALANCE   = 7
	RpcINSUFFICIENT_ALLOWANCE = 8
	RpcINVALID_SIGNATURE      = 9
	RpcNONCE_REUSED           = 10
	RpcLISTING_NOT_FOUND      = 11
	RpcCUSTODY_NOT_APPROVED   = 12
	RpcINVALID_AMOUNT         = 13
	RpcFORBIDDEN              = 20
)

func NewRpcError(code int, errorString, message string) *RpcError {
	return &RpcError{Code: code, ErrorString: errorString, Message: message}
}

func RpcErrorMethodNotFound(method string) *RpcError {
	return NewRpcError(RpcMETHOD_NOT_FOUND, "methodNotFound", fmt.Sprintf("Method '%s' not found", method))
}

func RpcErrorInvalidParams(message string) *RpcError {
	return NewRpcError(RpcINVALID_PARAMS, "invalidParams", message)
}

func RpcErrorInternal(message string) *RpcError {
	return NewRpcError(RpcINTERNAL, "internal", message)
}

func RpcErrorForbidden(method string) *RpcError {
	return NewRpcError(RpcFORBIDDEN, "forbidden", fmt.Sprintf("Method '%s' requires admin privileges", method))
}

// rejections maps domain sentinel errors to their RPC error objects.
var rejections = []struct {
	sentinel error
	code     int
	name     string
}{
	{access.ErrUnauthorized, RpcUNAUTHORIZED, "unauthorized"},
	{fees.ErrInvalidFeeRate, RpcINVALID_FEE_RATE, "invalidFeeRate"},
	{fees.ErrInvalidFeeRecipient, RpcINVALID_FEE_RATE, "invalidFeeRecipient"},
	{market.ErrAssetNotVerified, RpcASSET_NOT_VERIFIED, "assetNotVerified"},
	{market.ErrNotWhitelisted, RpcNOT_WHITELISTED, "notWhitelisted"},
	{market.ErrNotSeller, RpcNOT_SELLER, "notSeller"},
	{market.ErrInsufficientListedQuantity, RpcINSUFFICIENT_LISTED, "insufficientListedQuantity"},
	{market.ErrListingNotFound, RpcLISTING_NOT_FOUND, "listingNotFound"},
	{market.ErrCustodyNotApproved, RpcCUSTODY_NOT_APPROVED, "custodyNotApproved"},
	{market.ErrPriceOverflow, RpcINVALID_AMOUNT, "priceOverflow"},
	{market.ErrInvalidAmount, RpcINVALID_AMOUNT, "invalidAmount"},
	{ledger.ErrInvalidSignature, RpcINVALID_SIGNATURE, "invalidSignature"},
	{ledger.ErrNonceReused, RpcNONCE_REUSED, "nonceReused"},
	{ledger.ErrInsufficientBalance, RpcINSUFFICIENT_BALANCE, "insufficientBalance"},
	{ledger.ErrInvalidAmount, RpcINVALID_AMOUNT, "invalidAmount"},
	{ledger.ErrBalanceOverflow, RpcINVALID_AMOUNT, "balanceOverflow"},
	{stable.ErrInsufficientBalance, RpcINSUFFICIENT_BALANCE, "insufficientPaymentBalance"},
	{stable.ErrBalanceOverflow, RpcINVALID_AMOUNT, "paymentBalanceOverflow"},
	{stable.ErrInsufficientAllowance, RpcINSUFFICIENT_ALLOWANCE, "insufficientAllowance"},
}

// RpcErrorFromEngine translates a rejection surfaced by the engine into its
// RPC error. Unknown errors map to internal.
func RpcErrorFromEngine(err error) *RpcError {
	for _, r := range rejections {
		if errors.Is(err, r.sentinel) {
			return NewRpcError(r.code, r.name, err.Error())
		}
	}
	return RpcErrorInternal(err.Error())
}
