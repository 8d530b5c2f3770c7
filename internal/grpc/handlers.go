package grpc

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/hbkwon/voucherd/internal/core/ledger"
	"github.com/hbkwon/voucherd/internal/core/market"
	"github.com/hbkwon/voucherd/internal/core/types"
)

// GetBalanceRequest asks for a token balance.
type GetBalanceRequest struct {
	Account types.AccountID
	TokenID types.TokenID
}

// GetBalanceResponse carries the balance.
type GetBalanceResponse struct {
	Balance uint64
}

// GetBalance retrieves a token balance.
func (s *Server) GetBalance(ctx context.Context, req *GetBalanceRequest) (*GetBalanceResponse, error) {
	if s.engine == nil {
		return nil, status.Error(codes.Internal, "engine not available")
	}
	balance, err := s.engine.BalanceOf(ctx, req.Account, req.TokenID)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return &GetBalanceResponse{Balance: balance}, nil
}

// GetSupplyRequest asks for the total supply of a token id.
type GetSupplyRequest struct {
	TokenID types.TokenID
}

// GetSupplyResponse carries the supply.
type GetSupplyResponse struct {
	TotalSupply uint64
}

// GetSupply retrieves the total supply of a token id.
func (s *Server) GetSupply(ctx context.Context, req *GetSupplyRequest) (*GetSupplyResponse, error) {
	if s.engine == nil {
		return nil, status.Error(codes.Internal, "engine not available")
	}
	supply, err := s.engine.TotalSupply(ctx, req.TokenID)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return &GetSupplyResponse{TotalSupply: supply}, nil
}

// GetFeeResponse carries the current fee configuration.
type GetFeeResponse struct {
	RateBps   uint32
	Recipient types.AccountID
}

// GetFee retrieves the current fee configuration.
func (s *Server) GetFee(ctx context.Context) (*GetFeeResponse, error) {
	if s.engine == nil {
		return nil, status.Error(codes.Internal, "engine not available")
	}
	cfg, err := s.engine.FeeConfig(ctx)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return &GetFeeResponse{RateBps: cfg.RateBps, Recipient: cfg.Recipient}, nil
}

// GetListingRequest asks for a marketplace listing.
type GetListingRequest struct {
	ListingID uint64
}

// GetListingResponse carries the listing.
type GetListingResponse struct {
	Listing market.Listing
}

// GetListing retrieves a marketplace listing by id.
func (s *Server) GetListing(ctx context.Context, req *GetListingRequest) (*GetListingResponse, error) {
	if s.engine == nil {
		return nil, status.Error(codes.Internal, "engine not available")
	}
	listing, err := s.engine.GetListing(ctx, req.ListingID)
	if err != nil {
		if errors.Is(err, market.ErrListingNotFound) {
			return nil, status.Error(codes.NotFound, "listing not found")
		}
		return nil, status.Error(codes.Internal, err.Error())
	}
	return &GetListingResponse{Listing: listing}, nil
}

// SubmitMintRequest carries a signature-authorized issuance.
type SubmitMintRequest struct {
	To             types.AccountID
	TokenID        types.TokenID
	Amount         uint64
	Nonce          uint64
	Metadata       string
	Signature      []byte
	ReferencePrice uint64
}

// SubmitMint applies a signature-authorized issuance.
func (s *Server) SubmitMint(ctx context.Context, req *SubmitMintRequest) error {
	if s.engine == nil {
		return status.Error(codes.Internal, "engine not available")
	}
	err := s.engine.MintBySignature(ctx, req.To, req.Amount, req.TokenID, req.Nonce, req.Metadata, req.Signature, req.ReferencePrice)
	if err != nil {
		return submissionError(err)
	}
	return nil
}

// SubmitTransferRequest carries a signature-authorized transfer.
type SubmitTransferRequest struct {
	From      types.AccountID
	To        types.AccountID
	TokenID   types.TokenID
	Amount    uint64
	Nonce     uint64
	Signature []byte
}

// SubmitTransfer applies a signature-authorized transfer.
func (s *Server) SubmitTransfer(ctx context.Context, req *SubmitTransferRequest) error {
	if s.engine == nil {
		return status.Error(codes.Internal, "engine not available")
	}
	err := s.engine.TransferBySignature(ctx, req.From, req.To, req.TokenID, req.Amount, req.Nonce, req.Signature)
	if err != nil {
		return submissionError(err)
	}
	return nil
}

// submissionError maps engine rejections onto gRPC status codes.
func submissionError(err error) error {
	switch {
	case errors.Is(err, ledger.ErrInvalidSignature):
		return status.Error(codes.Unauthenticated, err.Error())
	case errors.Is(err, ledger.ErrNonceReused):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, ledger.ErrInsufficientBalance):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, ledger.ErrInvalidAmount), errors.Is(err, ledger.ErrBalanceOverflow):
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
