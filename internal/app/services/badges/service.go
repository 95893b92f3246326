// Package badges simulates achievement NFT minting. No chain call happens;
// mints are persisted locally with placeholder chain identifiers.
package badges

import (
	"context"
	"time"

	"github.com/gridchain/puzzle_layer/internal/app/domain/nft"
	"github.com/gridchain/puzzle_layer/internal/app/domain/user"
	"github.com/gridchain/puzzle_layer/internal/app/storage"
	apperrors "github.com/gridchain/puzzle_layer/internal/errors"
	"github.com/gridchain/puzzle_layer/pkg/logger"
)

// Placeholder chain identifiers until real contract integration lands.
const (
	FakeContractAddress = "0xFAKE_CONTRACT_ADDRESS"
	FakeTxHash          = "0xFAKE_TX_HASH"
)

// Service mints and lists achievement badges.
type Service struct {
	store storage.BadgeStore
	log   *logger.Logger

	now func() time.Time
}

// New constructs a badge service.
func New(store storage.BadgeStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("badges")
	}
	return &Service{
		store: store,
		log:   log,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// MintResult carries the simulated chain receipt.
type MintResult struct {
	TxHash   string
	TokenID  int64
	Contract string
}

// Mint records a badge for the wallet. The token id is derived from the
// clock, standing in for the id a real contract would assign.
func (s *Service) Mint(ctx context.Context, wallet, achievement string, metadata map[string]interface{}) (MintResult, error) {
	if achievement == "" {
		return MintResult{}, apperrors.Validation("achievement is required")
	}

	tokenID := s.now().UnixMilli()
	badge, err := s.store.CreateBadge(ctx, nft.Badge{
		Wallet:          user.NormalizeWallet(wallet),
		TokenID:         tokenID,
		ContractAddress: FakeContractAddress,
		AchievementType: achievement,
		Metadata:        metadata,
		MintedAt:        s.now(),
	})
	if err != nil {
		return MintResult{}, apperrors.Internal("failed to mint nft", err)
	}

	s.log.WithFields(map[string]interface{}{
		"wallet":      badge.Wallet,
		"achievement": badge.AchievementType,
	}).Info("badge minted")

	return MintResult{TxHash: FakeTxHash, TokenID: badge.TokenID, Contract: badge.ContractAddress}, nil
}

// List returns the wallet's badges in mint order.
func (s *Service) List(ctx context.Context, wallet string) ([]nft.Badge, error) {
	listed, err := s.store.ListBadges(ctx, wallet)
	if err != nil {
		return nil, apperrors.Internal("failed to list badges", err)
	}
	return listed, nil
}
