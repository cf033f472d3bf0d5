package tipping

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/cryptobio/cryptobio-backend/internal/pkg/model"
	"github.com/cryptobio/cryptobio-backend/internal/pkg/reject"
	"github.com/cryptobio/cryptobio-backend/internal/pkg/utils"
	"github.com/cryptobio/cryptobio-backend/internal/profile"
	"github.com/cryptobio/cryptobio-backend/internal/wallet"
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type Status string

const (
	StatusIdle      Status = "idle"
	StatusSwitching Status = "switching"
	StatusSending   Status = "sending"
	StatusSuccess   Status = "success"
	StatusError     Status = "error"
)

// Pending phases in priority order: a network switch outranks waiting on
// the wallet signature, which outranks waiting on chain confirmation.
const (
	PhaseSwitching          = "switching"
	PhaseWalletConfirmation = "wallet-confirmation"
	PhaseChainConfirmation  = "chain-confirmation"
)

const (
	sessionNotFound string = "error.tip.session-not-found"
	amountInvalid   string = "error.tip.invalid-amount"
)

// DefaultSettleDelay is the pause after a successful network switch
// before the transfer is attempted, giving the wallet time to settle.
const DefaultSettleDelay = time.Second

type Config struct {
	FeePercent  int64
	FeeAddress  string // fee-recipient; declared but not used by the transfer path
	TargetChain uint64
	Token       common.Address
	SettleDelay time.Duration
}

// Snapshot is the session state as rendered to the page.
type Snapshot struct {
	Id             string `json:"id"`
	Username       string `json:"username"`
	Status         Status `json:"status"`
	Pending        bool   `json:"pending"`
	PendingPhase   string `json:"pendingPhase,omitempty"`
	SelectedAmount string `json:"selectedAmount,omitempty"`
	ErrorMessage   string `json:"errorMessage,omitempty"`
	TxHash         string `json:"txHash,omitempty"`
}

type tipSession struct {
	id       string
	username string
	profile  *model.Profile

	status         Status
	selectedAmount string
	errorMessage   string
	txHash         *common.Hash

	// busy covers the whole send flow; the phase flags refine it into
	// the priority-ordered pending signal the page renders.
	busy           bool
	switching      bool
	submitPending  bool
	confirmPending bool
}

type statusPublisher interface {
	Publish(topic string, event any)
}

// Service drives the public tipping page. One session per page load; all
// interactive controls that would start a new send are refused while any
// pending signal holds. That refusal is the only concurrency guard in the
// system, and it is a UI guard, not a transactional one.
type Service struct {
	mu       sync.Mutex
	sessions map[string]*tipSession

	store  profile.Store
	bridge *usdcContractBridge
	hub    statusPublisher
	cfg    Config
}

func NewService(store profile.Store, provider wallet.Provider, hub statusPublisher, cfg Config) *Service {
	if cfg.SettleDelay <= 0 {
		cfg.SettleDelay = DefaultSettleDelay
	}
	return &Service{
		sessions: make(map[string]*tipSession),
		store:    store,
		bridge:   &usdcContractBridge{provider: provider, token: cfg.Token},
		hub:      hub,
		cfg:      cfg,
	}
}

// OpenSession resolves the username and opens a tip session for the page.
// A miss is terminal: no session is created and no further transitions
// exist.
func (s *Service) OpenSession(ctx context.Context, username string) (*Snapshot, *reject.ProblemWithTrace) {
	p := s.store.FindByUsername(ctx, username)
	if p == nil {
		return nil, &reject.ProblemWithTrace{Problem: reject.ProfileNotFoundProblem()}
	}

	sess := &tipSession{
		id:       uuid.New().String(),
		username: p.Username,
		profile:  p,
		status:   StatusIdle,
	}

	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()

	return sess.snapshot(), nil
}

// Send runs one tip attempt to completion: optional network switch,
// balance guard, transfer submission, receipt wait. The returned snapshot
// is terminal (success or error) unless a validation problem blocked the
// attempt before it started.
func (s *Service) Send(ctx context.Context, sessionId, visitorWallet, amount string) (*Snapshot, *reject.ProblemWithTrace) {
	// A malformed amount blocks locally; no session transition, no
	// network call.
	units, parseErr := wallet.ParseAmount(amount)
	if parseErr != nil {
		return nil, &reject.ProblemWithTrace{
			Problem: reject.NewProblem().
				WithTitle("Tip amount must be a positive number").
				WithStatus(http.StatusBadRequest).
				WithCode(amountInvalid).
				Build(),
			Cause: parseErr,
		}
	}

	s.mu.Lock()
	sess, ok := s.sessions[sessionId]
	if !ok {
		s.mu.Unlock()
		return nil, sessionNotFoundProblem()
	}
	if sess.pending() {
		s.mu.Unlock()
		return nil, &reject.ProblemWithTrace{Problem: reject.TipInFlightProblem()}
	}
	sess.busy = true
	sess.selectedAmount = amount
	sess.errorMessage = ""
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		sess.busy = false
		s.mu.Unlock()
	}()

	if !utils.IsHexAddress(visitorWallet) {
		return s.fail(sess, "Please connect your wallet first"), nil
	}
	visitor := common.HexToAddress(visitorWallet)

	if snapshot := s.ensureTargetChain(ctx, sess); snapshot != nil {
		return snapshot, nil
	}

	// Balance guard: only a known balance can refuse the send. An
	// unreadable balance falls through to the wallet, as the page does
	// when the balance has not loaded yet.
	if balance, err := s.bridge.balance(ctx, visitor); err == nil && balance.Cmp(units) < 0 {
		msg := fmt.Sprintf(
			"Insufficient USDC. You have $%s but need $%s.",
			wallet.FormatAmount(balance), wallet.FormatAmount(units))
		return s.fail(sess, msg), nil
	} else if err != nil {
		log.Warn().Err(err).Msg("Balance read failed, deferring to wallet")
	}

	s.transition(sess, func() {
		sess.status = StatusSending
		sess.submitPending = true
	})

	// The transfer carries only the creator's net share; the withheld
	// platform fee is not transferred anywhere by this flow.
	dest := sess.profile.PayoutAddress
	if dest == "" {
		dest = sess.profile.WalletAddress
	}
	creatorUnits := CreatorShare(units, s.cfg.FeePercent)

	hash, err := s.bridge.transfer(ctx, visitor, common.HexToAddress(dest), creatorUnits)
	if err != nil {
		s.transition(sess, func() { sess.submitPending = false })
		return s.fail(sess, classifyTransferError(err)), nil
	}

	s.transition(sess, func() {
		sess.txHash = &hash
		sess.submitPending = false
		sess.confirmPending = true
	})

	receipt, err := s.bridge.waitForReceipt(ctx, hash)
	s.transition(sess, func() { sess.confirmPending = false })
	if err != nil {
		return s.fail(sess, classifyTransferError(err)), nil
	}
	if receipt.Status != wallet.ReceiptStatusSuccessful {
		return s.fail(sess, "Transaction failed"), nil
	}

	s.transition(sess, func() {
		sess.status = StatusSuccess
		sess.selectedAmount = ""
	})
	return s.snapshotOf(sess), nil
}

// ensureTargetChain moves the session through switching when the wallet
// is on the wrong network. A refused switch never reaches sending.
func (s *Service) ensureTargetChain(ctx context.Context, sess *tipSession) *Snapshot {
	chainId, err := s.bridge.provider.ChainID(ctx)
	if err == nil && chainId == s.cfg.TargetChain {
		return nil
	}

	s.transition(sess, func() {
		sess.status = StatusSwitching
		sess.switching = true
	})

	if err := s.bridge.provider.SwitchChain(ctx, s.cfg.TargetChain); err != nil {
		s.transition(sess, func() { sess.switching = false })
		return s.fail(sess, "Please switch to Base network in your wallet")
	}

	// Give the wallet a moment to settle on the new network.
	time.Sleep(s.cfg.SettleDelay)

	s.transition(sess, func() { sess.switching = false })
	return nil
}

// Reset returns a terminal session to idle: selection and error text are
// cleared and the transaction handle detached so a new one can be made.
func (s *Service) Reset(sessionId string) (*Snapshot, *reject.ProblemWithTrace) {
	s.mu.Lock()
	sess, ok := s.sessions[sessionId]
	if !ok {
		s.mu.Unlock()
		return nil, sessionNotFoundProblem()
	}
	if sess.pending() {
		s.mu.Unlock()
		return nil, &reject.ProblemWithTrace{Problem: reject.TipInFlightProblem()}
	}
	sess.status = StatusIdle
	sess.selectedAmount = ""
	sess.errorMessage = ""
	sess.txHash = nil
	snapshot := sess.snapshot()
	s.mu.Unlock()

	s.publish(snapshot)
	return snapshot, nil
}

func (s *Service) GetSnapshot(sessionId string) (*Snapshot, *reject.ProblemWithTrace) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionId]
	if !ok {
		return nil, sessionNotFoundProblem()
	}
	return sess.snapshot(), nil
}

func (s *Service) transition(sess *tipSession, mutate func()) {
	s.mu.Lock()
	mutate()
	snapshot := sess.snapshot()
	s.mu.Unlock()

	s.publish(snapshot)
}

func (s *Service) fail(sess *tipSession, message string) *Snapshot {
	s.mu.Lock()
	sess.status = StatusError
	sess.errorMessage = message
	snapshot := sess.snapshot()
	s.mu.Unlock()

	s.publish(snapshot)
	return snapshot
}

func (s *Service) snapshotOf(sess *tipSession) *Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sess.snapshot()
}

func (s *Service) publish(snapshot *Snapshot) {
	if s.hub == nil {
		return
	}
	s.hub.Publish(snapshot.Id, snapshot)
}

func (sess *tipSession) pending() bool {
	return sess.busy || sess.switching || sess.submitPending || sess.confirmPending
}

func (sess *tipSession) pendingPhase() string {
	switch {
	case sess.switching:
		return PhaseSwitching
	case sess.submitPending:
		return PhaseWalletConfirmation
	case sess.confirmPending:
		return PhaseChainConfirmation
	default:
		return ""
	}
}

func (sess *tipSession) snapshot() *Snapshot {
	snapshot := &Snapshot{
		Id:             sess.id,
		Username:       sess.username,
		Status:         sess.status,
		Pending:        sess.switching || sess.submitPending || sess.confirmPending,
		PendingPhase:   sess.pendingPhase(),
		SelectedAmount: sess.selectedAmount,
		ErrorMessage:   sess.errorMessage,
	}
	if sess.txHash != nil {
		snapshot.TxHash = sess.txHash.Hex()
	}
	return snapshot
}

// classifyTransferError normalizes wallet and RPC error text the way the
// page does: a balance phrase, a user-rejection phrase, otherwise the raw
// message truncated.
func classifyTransferError(err error) string {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "exceeds balance"):
		return "Insufficient USDC balance. Please add USDC to your wallet."
	case strings.Contains(msg, "user rejected"):
		return "Transaction cancelled"
	default:
		if len(msg) > 100 {
			msg = msg[:100]
		}
		return msg
	}
}

func sessionNotFoundProblem() *reject.ProblemWithTrace {
	return &reject.ProblemWithTrace{
		Problem: reject.NewProblem().
			WithTitle("Tip session not found").
			WithStatus(http.StatusNotFound).
			WithCode(sessionNotFound).
			Build(),
	}
}
