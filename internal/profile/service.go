package profile

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/cryptobio/cryptobio-backend/internal/pkg/cache"
	"github.com/cryptobio/cryptobio-backend/internal/pkg/model"
	"github.com/cryptobio/cryptobio-backend/internal/pkg/reject"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const lookupCacheTtl = 5 * time.Minute

// ProfileUpdate carries the dashboard's editable fields. Username and
// wallet address are deliberately absent: both are immutable after
// creation and updates are keyed by the caller's own wallet only.
type ProfileUpdate struct {
	DisplayName   string
	Bio           string
	AvatarUrl     string
	TwitterUrl    string
	PayoutAddress string
	TipAmounts    []int64
}

// Store is the profile store client consumed by the wizard, the dashboard
// and the tipping page. Lookups return nil for both "record absent" and
// "store unreachable"; the distinction is logged but not surfaced, which
// mirrors how every caller treats the result.
type Store interface {
	FindByUsername(ctx context.Context, username string) *model.Profile
	FindByWallet(ctx context.Context, wallet string) *model.Profile
	UsernameAvailable(ctx context.Context, username string) bool
	Create(ctx context.Context, p *model.Profile) (*model.Profile, *reject.ProblemWithTrace)
	UpdateByWallet(ctx context.Context, wallet string, updates ProfileUpdate) *model.Profile
}

type Service struct {
	Db  *gorm.DB
	Rdb *redis.Client
}

func (s *Service) FindByUsername(ctx context.Context, username string) *model.Profile {
	username = strings.ToLower(username)
	return s.findOne(ctx, usernameCacheKey(username), "username = ?", username)
}

func (s *Service) FindByWallet(ctx context.Context, wallet string) *model.Profile {
	wallet = strings.ToLower(wallet)
	return s.findOne(ctx, walletCacheKey(wallet), "wallet_address = ?", wallet)
}

func (s *Service) findOne(ctx context.Context, cacheKey, query string, arg string) *model.Profile {
	if s.Rdb != nil {
		var cached model.Profile
		hit, err := cache.Get(ctx, s.Rdb, cacheKey, &cached)
		if err != nil {
			log.Warn().Err(err).Str("key", cacheKey).Msg("Profile cache read failed")
		} else if hit {
			return &cached
		}
	}

	var p model.Profile
	result := s.Db.WithContext(ctx).Where(query, arg).First(&p)
	if result.Error != nil {
		if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
			log.Warn().Err(result.Error).Msg("Profile lookup failed")
		}
		return nil
	}

	if s.Rdb != nil {
		if err := cache.Set(ctx, s.Rdb, cacheKey, &p, lookupCacheTtl); err != nil {
			log.Warn().Err(err).Str("key", cacheKey).Msg("Profile cache write failed")
		}
	}
	return &p
}

// UsernameAvailable reports whether no profile row owns the name. A store
// error reads as available; Create's uniqueness constraint stays the race
// guard either way.
func (s *Service) UsernameAvailable(ctx context.Context, username string) bool {
	username = strings.ToLower(username)

	var count int64
	result := s.Db.WithContext(ctx).
		Model(&model.Profile{}).
		Where("username = ?", username).
		Count(&count)
	if result.Error != nil {
		log.Warn().Err(result.Error).Str("username", username).Msg("Availability check failed")
		return true
	}
	return count == 0
}

func (s *Service) Create(ctx context.Context, p *model.Profile) (*model.Profile, *reject.ProblemWithTrace) {
	p.Username = strings.ToLower(p.Username)
	p.WalletAddress = strings.ToLower(p.WalletAddress)
	if p.PayoutAddress == "" {
		p.PayoutAddress = p.WalletAddress
	}
	p.PayoutAddress = strings.ToLower(p.PayoutAddress)
	p.TipAmounts = FilterTipAmounts(p.TipAmounts)

	result := s.Db.WithContext(ctx).Create(p)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return nil, &reject.ProblemWithTrace{
				Problem: reject.UsernameTakenProblem(),
				Cause:   result.Error,
			}
		}
		return nil, &reject.ProblemWithTrace{
			Problem: reject.UnexpectedProblem(result.Error),
			Cause:   result.Error,
		}
	}

	return p, nil
}

// UpdateByWallet persists the dashboard's editable fields for the record
// matching the caller's own wallet. Returns nil on any failure; the
// editor simply shows the save as not having happened.
func (s *Service) UpdateByWallet(ctx context.Context, wallet string, updates ProfileUpdate) *model.Profile {
	wallet = strings.ToLower(wallet)

	values := map[string]any{
		"display_name":   updates.DisplayName,
		"bio":            updates.Bio,
		"avatar_url":     updates.AvatarUrl,
		"twitter_url":    updates.TwitterUrl,
		"tip_amounts":    FilterTipAmounts(updates.TipAmounts),
		"payout_address": strings.ToLower(updates.PayoutAddress),
		"updated_at":     time.Now().UTC(),
	}

	result := s.Db.WithContext(ctx).
		Model(&model.Profile{}).
		Where("wallet_address = ?", wallet).
		Updates(values)
	if result.Error != nil || result.RowsAffected == 0 {
		if result.Error != nil {
			log.Warn().Err(result.Error).Msg("Profile update failed")
		}
		return nil
	}

	s.evict(ctx, wallet)

	var p model.Profile
	if err := s.Db.WithContext(ctx).Where("wallet_address = ?", wallet).First(&p).Error; err != nil {
		log.Warn().Err(err).Msg("Profile reload after update failed")
		return nil
	}
	return &p
}

func (s *Service) evict(ctx context.Context, wallet string) {
	if s.Rdb == nil {
		return
	}

	keys := []string{walletCacheKey(wallet)}
	var p model.Profile
	if err := s.Db.WithContext(ctx).Where("wallet_address = ?", wallet).First(&p).Error; err == nil {
		keys = append(keys, usernameCacheKey(p.Username))
	}
	if err := cache.Delete(ctx, s.Rdb, keys...); err != nil {
		log.Warn().Err(err).Msg("Profile cache eviction failed")
	}
}

func usernameCacheKey(username string) string {
	return "profile:username:" + username
}

func walletCacheKey(wallet string) string {
	return "profile:wallet:" + wallet
}
