package ledger

// Package ledger hosts the stable, minimal DTOs shared with the chain
// gateway, the service that holds the bank key and the BankVC contract
// binding. Keep these small and versioned independently from any internal
// models.

// ContractVersion identifies the contract schema version for compatibility checks.
// Bump on breaking changes to the shapes below; consumers can pin or roll forward.
const ContractVersion = "v0.1.0"

// TransferReceipt is the outcome of a successfully mined bank-authorized
// transfer.
type TransferReceipt struct {
	TxReference string `json:"tx_reference"`
	BlockNumber uint64 `json:"block_number"`
	GasUsed     string `json:"gas_used"`
}

// VerifyOutcome is the result of an access verification: credential validity,
// ownership match, and the current internal-ledger balance. No funds move.
type VerifyOutcome struct {
	Valid        bool   `json:"valid"`
	OwnerMatches bool   `json:"owner_matches"`
	Balance      string `json:"balance"`
}
