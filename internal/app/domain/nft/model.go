// Package nft defines achievement badge records. Minting is simulated; no
// chain interaction happens anywhere in this repository.
package nft

import "time"

// Badge is a minted achievement record for a wallet.
type Badge struct {
	ID              string
	Wallet          string
	TokenID         int64
	ContractAddress string
	AchievementType string
	Metadata        map[string]interface{}
	MintedAt        time.Time
}
