package wizard

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/cryptobio/cryptobio-backend/internal/pkg/model"
	"github.com/cryptobio/cryptobio-backend/internal/pkg/reject"
	"github.com/cryptobio/cryptobio-backend/internal/profile"
)

// DefaultDebounce is the idle time after the last username keystroke
// before the availability check fires.
const DefaultDebounce = 500 * time.Millisecond

var defaultTipAmounts = []int64{5, 10, 25}

const (
	stepUsername = 1
	stepDetails  = 2
	stepAmounts  = 3
)

const stepNotReady string = "error.wizard.step-not-ready"

// State is the wizard snapshot handed back after every mutation.
type State struct {
	Step           int                `json:"step"`
	Username       string             `json:"username"`
	UsernameStatus AvailabilityStatus `json:"usernameStatus"`
	DisplayName    string             `json:"displayName"`
	Bio            string             `json:"bio"`
	AvatarUrl      string             `json:"avatarUrl"`
	TwitterUrl     string             `json:"twitterUrl"`
	TipAmounts     []int64            `json:"tipAmounts"`
	Error          string             `json:"error,omitempty"`
}

type session struct {
	step        int
	username    string
	status      AvailabilityStatus
	displayName string
	bio         string
	avatarUrl   string
	twitterUrl  string
	tipAmounts  []int64
	errText     string
	checker     *availabilityChecker
}

// Service holds one in-progress creation session per connected wallet.
// A wallet that already owns a profile never enters the wizard; it gets
// a redirect to the dashboard instead.
type Service struct {
	mu       sync.Mutex
	sessions map[string]*session
	store    profile.Store
	debounce time.Duration
}

func NewService(store profile.Store, debounce time.Duration) *Service {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Service{
		sessions: make(map[string]*session),
		store:    store,
		debounce: debounce,
	}
}

// Start opens (or resumes) the wizard for a wallet. The returned redirect
// is non-empty when the wallet already owns a profile.
func (s *Service) Start(ctx context.Context, wallet string) (*State, string) {
	if existing := s.store.FindByWallet(ctx, wallet); existing != nil {
		return nil, "/dashboard"
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.ensureSessionLocked(wallet)
	return sess.snapshot(), ""
}

// SetUsername applies the keystroke filter and schedules a debounced
// availability check for the filtered value.
func (s *Service) SetUsername(wallet string, input string) *State {
	filtered := profile.NormalizeUsername(input)

	s.mu.Lock()
	sess := s.ensureSessionLocked(wallet)
	sess.username = filtered
	checker := sess.checker
	snapshot := sess.snapshot()
	s.mu.Unlock()

	checker.Schedule(filtered)
	return snapshot
}

// Advance moves to the next step. Leaving step 1 requires an available
// username; the wizard never advances past the tip-amount step.
func (s *Service) Advance(wallet string) (*State, *reject.ProblemWithTrace) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.ensureSessionLocked(wallet)
	if sess.step == stepUsername && sess.status != StatusAvailable {
		return nil, &reject.ProblemWithTrace{
			Problem: reject.NewProblem().
				WithTitle("Username not confirmed available").
				WithStatus(http.StatusConflict).
				WithCode(stepNotReady).
				Build(),
		}
	}
	if sess.step < stepAmounts {
		sess.step++
	}
	return sess.snapshot(), nil
}

func (s *Service) SetDetails(wallet, displayName, bio, avatarUrl, twitterUrl string) *State {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.ensureSessionLocked(wallet)
	sess.displayName = displayName
	sess.bio = bio
	sess.avatarUrl = avatarUrl
	sess.twitterUrl = twitterUrl
	return sess.snapshot()
}

// SetAmounts stores the raw tip amounts as entered. Non-positive entries
// survive until submission, where they are filtered out.
func (s *Service) SetAmounts(wallet string, amounts []int64) *State {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.ensureSessionLocked(wallet)
	sess.tipAmounts = append([]int64{}, amounts...)
	return sess.snapshot()
}

// Submit creates the profile. The payout address defaults to the creating
// wallet and an empty display name falls back to the username. A store
// error keeps the session on step 3 so the user can retry.
func (s *Service) Submit(ctx context.Context, wallet string) (*model.Profile, string, *reject.ProblemWithTrace) {
	s.mu.Lock()
	sess := s.ensureSessionLocked(wallet)
	if sess.step != stepAmounts || !profile.ValidUsername(sess.username) {
		snapshotProblem := &reject.ProblemWithTrace{
			Problem: reject.NewProblem().
				WithTitle("Wizard is not ready to submit").
				WithStatus(http.StatusConflict).
				WithCode(stepNotReady).
				Build(),
		}
		s.mu.Unlock()
		return nil, "", snapshotProblem
	}

	displayName := sess.displayName
	if displayName == "" {
		displayName = sess.username
	}

	p := &model.Profile{
		Username:      sess.username,
		WalletAddress: wallet,
		PayoutAddress: wallet,
		DisplayName:   displayName,
		Bio:           sess.bio,
		AvatarUrl:     sess.avatarUrl,
		TwitterUrl:    sess.twitterUrl,
		TipAmounts:    profile.FilterTipAmounts(sess.tipAmounts),
	}
	s.mu.Unlock()

	created, problem := s.store.Create(ctx, p)
	if problem != nil {
		s.mu.Lock()
		if sess, ok := s.sessions[wallet]; ok {
			sess.errText = problem.Problem.Title
		}
		s.mu.Unlock()
		return nil, "", problem
	}

	s.mu.Lock()
	delete(s.sessions, wallet)
	s.mu.Unlock()

	return created, "/dashboard", nil
}

func (s *Service) Snapshot(wallet string) *State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ensureSessionLocked(wallet).snapshot()
}

func (s *Service) ensureSessionLocked(wallet string) *session {
	sess, ok := s.sessions[wallet]
	if ok {
		return sess
	}

	sess = &session{
		step:       stepUsername,
		status:     StatusIdle,
		tipAmounts: append([]int64{}, defaultTipAmounts...),
	}
	sess.checker = newAvailabilityChecker(
		s.debounce,
		func(username string) bool {
			return s.store.UsernameAvailable(context.Background(), username)
		},
		func(username string, status AvailabilityStatus) {
			s.applyStatus(wallet, username, status)
		},
	)
	s.sessions[wallet] = sess
	return sess
}

func (s *Service) applyStatus(wallet, username string, status AvailabilityStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[wallet]
	if !ok || sess.username != username {
		return
	}
	sess.status = status
}

func (sess *session) snapshot() *State {
	return &State{
		Step:           sess.step,
		Username:       sess.username,
		UsernameStatus: sess.status,
		DisplayName:    sess.displayName,
		Bio:            sess.bio,
		AvatarUrl:      sess.avatarUrl,
		TwitterUrl:     sess.twitterUrl,
		TipAmounts:     append([]int64{}, sess.tipAmounts...),
		Error:          sess.errText,
	}
}
