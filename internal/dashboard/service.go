package dashboard

import (
	"context"
	"net/http"
	"sync"

	"github.com/cryptobio/cryptobio-backend/internal/pkg/reject"
	"github.com/cryptobio/cryptobio-backend/internal/pkg/utils"
	"github.com/cryptobio/cryptobio-backend/internal/profile"
)

const (
	notLoaded     string = "error.dashboard.not-loaded"
	saveInFlight  string = "error.dashboard.save-in-flight"
	payoutInvalid string = "error.dashboard.invalid-payout-address"
)

var fallbackTipAmounts = []int64{5, 10, 25}

// Draft is the editable copy of the profile, kept separate from the
// persisted record until saved. The live preview reads this, so unsaved
// edits are visible immediately.
type Draft struct {
	DisplayName   string  `json:"displayName"`
	Bio           string  `json:"bio"`
	AvatarUrl     string  `json:"avatarUrl"`
	TwitterUrl    string  `json:"twitterUrl"`
	PayoutAddress string  `json:"payoutAddress"`
	TipAmounts    []int64 `json:"tipAmounts"`
}

// View is the editor snapshot: identity fields from the loaded record
// plus the current draft and save-state flags.
type View struct {
	Username      string `json:"username"`
	WalletAddress string `json:"walletAddress"`
	Draft         Draft  `json:"draft"`
	PayoutValid   bool   `json:"payoutValid"`
	Saving        bool   `json:"saving"`
	Saved         bool   `json:"saved"`
}

type editor struct {
	username string
	wallet   string
	draft    Draft
	saving   bool
	saved    bool
}

type Service struct {
	mu      sync.Mutex
	editors map[string]*editor
	store   profile.Store
}

func NewService(store profile.Store) *Service {
	return &Service{
		editors: make(map[string]*editor),
		store:   store,
	}
}

// Load resolves the caller's profile and (re)initializes the draft from
// the persisted record. A wallet without a profile is redirected to the
// wizard. Loading twice with no intervening edit yields identical drafts.
func (s *Service) Load(ctx context.Context, wallet string) (*View, string) {
	p := s.store.FindByWallet(ctx, wallet)
	if p == nil {
		return nil, "/create"
	}

	tipAmounts := append([]int64{}, p.TipAmounts...)
	if len(tipAmounts) == 0 {
		tipAmounts = append([]int64{}, fallbackTipAmounts...)
	}
	payout := p.PayoutAddress
	if payout == "" {
		payout = p.WalletAddress
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	e := &editor{
		username: p.Username,
		wallet:   p.WalletAddress,
		draft: Draft{
			DisplayName:   p.DisplayName,
			Bio:           p.Bio,
			AvatarUrl:     p.AvatarUrl,
			TwitterUrl:    p.TwitterUrl,
			PayoutAddress: payout,
			TipAmounts:    tipAmounts,
		},
	}
	s.editors[wallet] = e
	return e.view(), ""
}

// UpdateDraft replaces the editable fields. Only the in-memory draft
// changes; nothing is persisted until Save.
func (s *Service) UpdateDraft(wallet string, draft Draft) (*View, *reject.ProblemWithTrace) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.editors[wallet]
	if !ok {
		return nil, notLoadedProblem()
	}

	draft.TipAmounts = append([]int64{}, draft.TipAmounts...)
	e.draft = draft
	e.saved = false
	return e.view(), nil
}

// UseWalletAddress copies the connected wallet into the payout field.
func (s *Service) UseWalletAddress(wallet string) (*View, *reject.ProblemWithTrace) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.editors[wallet]
	if !ok {
		return nil, notLoadedProblem()
	}

	e.draft.PayoutAddress = wallet
	e.saved = false
	return e.view(), nil
}

// Save persists the draft. It is refused while the payout address is
// malformed or while another save is still in flight.
func (s *Service) Save(ctx context.Context, wallet string) (*View, *reject.ProblemWithTrace) {
	s.mu.Lock()
	e, ok := s.editors[wallet]
	if !ok {
		s.mu.Unlock()
		return nil, notLoadedProblem()
	}
	if e.saving {
		s.mu.Unlock()
		return nil, &reject.ProblemWithTrace{
			Problem: reject.NewProblem().
				WithTitle("A save is already in flight").
				WithStatus(http.StatusConflict).
				WithCode(saveInFlight).
				Build(),
		}
	}
	if e.draft.PayoutAddress != "" && !utils.IsHexAddress(e.draft.PayoutAddress) {
		s.mu.Unlock()
		return nil, &reject.ProblemWithTrace{
			Problem: reject.NewProblem().
				WithTitle("Payout address is not a valid address").
				WithStatus(http.StatusBadRequest).
				WithCode(payoutInvalid).
				Build(),
		}
	}

	e.saving = true
	payout := e.draft.PayoutAddress
	if payout == "" {
		payout = wallet
	}
	updates := profile.ProfileUpdate{
		DisplayName:   e.draft.DisplayName,
		Bio:           e.draft.Bio,
		AvatarUrl:     e.draft.AvatarUrl,
		TwitterUrl:    e.draft.TwitterUrl,
		PayoutAddress: payout,
		TipAmounts:    append([]int64{}, e.draft.TipAmounts...),
	}
	s.mu.Unlock()

	updated := s.store.UpdateByWallet(ctx, wallet, updates)

	s.mu.Lock()
	defer s.mu.Unlock()
	e.saving = false
	e.saved = updated != nil
	return e.view(), nil
}

// Preview returns the live preview source: the in-memory draft, not the
// persisted record.
func (s *Service) Preview(wallet string) (*View, *reject.ProblemWithTrace) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.editors[wallet]
	if !ok {
		return nil, notLoadedProblem()
	}
	return e.view(), nil
}

func (e *editor) view() *View {
	return &View{
		Username:      e.username,
		WalletAddress: e.wallet,
		Draft: Draft{
			DisplayName:   e.draft.DisplayName,
			Bio:           e.draft.Bio,
			AvatarUrl:     e.draft.AvatarUrl,
			TwitterUrl:    e.draft.TwitterUrl,
			PayoutAddress: e.draft.PayoutAddress,
			TipAmounts:    append([]int64{}, e.draft.TipAmounts...),
		},
		PayoutValid: e.draft.PayoutAddress == "" || utils.IsHexAddress(e.draft.PayoutAddress),
		Saving:      e.saving,
		Saved:       e.saved,
	}
}

func notLoadedProblem() *reject.ProblemWithTrace {
	return &reject.ProblemWithTrace{
		Problem: reject.NewProblem().
			WithTitle("Dashboard not loaded").
			WithStatus(http.StatusConflict).
			WithCode(notLoaded).
			Build(),
	}
}
