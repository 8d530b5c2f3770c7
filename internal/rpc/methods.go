package rpc

// registerAllMethods registers the complete method set. Called by
// NewServer.
func (s *Server) registerAllMethods() {
	// Server information
	s.registry.Register("ping", &PingMethod{})
	s.registry.Register("version", &VersionMethod{version: s.version})
	s.registry.Register("server_info", &ServerInfoMethod{server: s})

	// Administration
	s.registry.Register("operator_add", &OperatorAddMethod{engine: s.engine})
	s.registry.Register("operator_remove", &OperatorRemoveMethod{engine: s.engine})
	s.registry.Register("operator_check", &OperatorCheckMethod{engine: s.engine})
	s.registry.Register("fee_set", &FeeSetMethod{engine: s.engine})
	s.registry.Register("fee_info", &FeeInfoMethod{engine: s.engine})
	s.registry.Register("whitelist_add", &WhitelistAddMethod{engine: s.engine})
	s.registry.Register("whitelist_remove", &WhitelistRemoveMethod{engine: s.engine})
	s.registry.Register("whitelist_check", &WhitelistCheckMethod{engine: s.engine})

	// Token ledger
	s.registry.Register("mint", &MintMethod{engine: s.engine})
	s.registry.Register("mint_signed", &MintSignedMethod{engine: s.engine})
	s.registry.Register("transfer_signed", &TransferSignedMethod{engine: s.engine})
	s.registry.Register("approval_set", &ApprovalSetMethod{engine: s.engine})
	s.registry.Register("approval_check", &ApprovalCheckMethod{engine: s.engine})
	s.registry.Register("balance", &BalanceMethod{engine: s.engine})
	s.registry.Register("total_supply", &TotalSupplyMethod{engine: s.engine})
	s.registry.Register("nonce_check", &NonceCheckMethod{engine: s.engine})

	// Marketplace
	s.registry.Register("market_verify", &MarketVerifyMethod{engine: s.engine})
	s.registry.Register("market_verified", &MarketVerifiedMethod{engine: s.engine})
	s.registry.Register("market_place", &MarketPlaceMethod{engine: s.engine})
	s.registry.Register("market_unplace", &MarketUnplaceMethod{engine: s.engine})
	s.registry.Register("market_purchase", &MarketPurchaseMethod{engine: s.engine})
	s.registry.Register("market_listing", &MarketListingMethod{engine: s.engine})

	// Payment rail
	s.registry.Register("payment_fund", &PaymentFundMethod{engine: s.engine})
	s.registry.Register("payment_approve", &PaymentApproveMethod{engine: s.engine})
	s.registry.Register("payment_balance", &PaymentBalanceMethod{engine: s.engine})
	s.registry.Register("payment_allowance", &PaymentAllowanceMethod{engine: s.engine})
}
