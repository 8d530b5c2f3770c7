package rpc

import (
	"encoding/json"

	"github.com/hbkwon/voucherd/internal/core/types"
)

// MarketVerifyMethod marks a voucher asset as tradable.
type MarketVerifyMethod struct {
	engine EngineService
}

func (m *MarketVerifyMethod) Handle(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
	var request struct {
		Caller string `json:"caller"`
		Asset  string `json:"asset"`
	}
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
	if err := m.engine.VerifyVoucherContract(ctx.Context, caller, asset); err != nil {
		return nil, RpcErrorFromEngine(err)
	}
	return map[string]interface{}{"asset": asset.String()}, nil
}

func (m *MarketVerifyMethod) RequiredRole() Role { return RoleAdmin }

// MarketVerifiedMethod reports whether an asset is tradable.
type MarketVerifiedMethod struct {
	engine EngineService
}

func (m *MarketVerifiedMethod) Handle(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
	var request struct {
		Asset string `json:"asset"`
	}
	if rpcErr := decodeParams(params, &request); rpcErr != nil {
		return nil, rpcErr
	}
	asset, rpcErr := parseAccount("asset", request.Asset)
	if rpcErr != nil {
		return nil, rpcErr
	}
	verified, err := m.engine.VoucherContractVerified(ctx.Context, asset)
	if err != nil {
		return nil, RpcErrorFromEngine(err)
	}
	return map[string]interface{}{
		"asset":    asset.String(),
		"verified": verified,
	}, nil
}

func (m *MarketVerifiedMethod) RequiredRole() Role { return RoleGuest }

// MarketPlaceMethod lists tokens for sale, moving them into market custody.
type MarketPlaceMethod struct {
	engine EngineService
}

func (m *MarketPlaceMethod) Handle(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
	var request struct {
		Seller    string `json:"seller"`
		Asset     string `json:"asset"`
		TokenID   uint64 `json:"token_id"`
		Amount    uint64 `json:"amount"`
		UnitPrice uint64 `json:"unit_price"`
	}
	if rpcErr := decodeParams(params, &request); rpcErr != nil {
		return nil, rpcErr
	}
	seller, rpcErr := parseAccount("seller", request.Seller)
	if rpcErr != nil {
		return nil, rpcErr
	}
	asset, rpcErr := parseAccount("asset", request.Asset)
	if rpcErr != nil {
		return nil, rpcErr
	}
	if err := m.engine.Place(ctx.Context, seller, types.TokenID(request.TokenID), request.Amount, asset, request.UnitPrice); err != nil {
		return nil, RpcErrorFromEngine(err)
	}
	return map[string]interface{}{
		"seller":     seller.String(),
		"token_id":   request.TokenID,
		"amount":     request.Amount,
		"unit_price": request.UnitPrice,
	}, nil
}

func (m *MarketPlaceMethod) RequiredRole() Role { return RoleAdmin }

// MarketUnplaceMethod returns listed tokens to the seller.
type MarketUnplaceMethod struct {
	engine EngineService
}

func (m *MarketUnplaceMethod) Handle(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
	var request struct {
		Caller    string `json:"caller"`
		ListingID uint64 `json:"listing_id"`
		Amount    uint64 `json:"amount"`
	}
	if rpcErr := decodeParams(params, &request); rpcErr != nil {
		return nil, rpcErr
	}
	caller, rpcErr := parseAccount("caller", request.Caller)
	if rpcErr != nil {
		return nil, rpcErr
	}
	if err := m.engine.UnPlace(ctx.Context, caller, request.ListingID, request.Amount); err != nil {
		return nil, RpcErrorFromEngine(err)
	}
	return map[string]interface{}{
		"listing_id": request.ListingID,
		"amount":     request.Amount,
	}, nil
}

func (m *MarketUnplaceMethod) RequiredRole() Role { return RoleAdmin }

// MarketPurchaseMethod settles a purchase against a listing.
type MarketPurchaseMethod struct {
	engine EngineService
}

func (m *MarketPurchaseMethod) Handle(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
	var request struct {
		Buyer     string `json:"buyer"`
		ListingID uint64 `json:"listing_id"`
		Amount    uint64 `json:"amount"`
	}
	if rpcErr := decodeParams(params, &request); rpcErr != nil {
		return nil, rpcErr
	}
	buyer, rpcErr := parseAccount("buyer", request.Buyer)
	if rpcErr != nil {
		return nil, rpcErr
	}
	if err := m.engine.PurchaseInUSDT(ctx.Context, buyer, request.ListingID, request.Amount); err != nil {
		return nil, RpcErrorFromEngine(err)
	}
	return map[string]interface{}{
		"buyer":      buyer.String(),
		"listing_id": request.ListingID,
		"amount":     request.Amount,
	}, nil
}

func (m *MarketPurchaseMethod) RequiredRole() Role { return RoleAdmin }

// MarketListingMethod returns a listing by id.
type MarketListingMethod struct {
	engine EngineService
}

func (m *MarketListingMethod) Handle(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
	var request struct {
		ListingID uint64 `json:"listing_id"`
	}
	if rpcErr := decodeParams(params, &request); rpcErr != nil {
		return nil, rpcErr
	}
	listing, err := m.engine.GetListing(ctx.Context, request.ListingID)
	if err != nil {
		return nil, RpcErrorFromEngine(err)
	}
	return map[string]interface{}{
		"listing_id": listing.ID,
		"asset":      listing.Asset.String(),
		"token_id":   uint64(listing.TokenID),
		"quantity":   listing.Quantity,
		"unit_price": listing.UnitPrice,
		"seller":     listing.Seller.String(),
	}, nil
}

func (m *MarketListingMethod) RequiredRole() Role { return RoleGuest }
