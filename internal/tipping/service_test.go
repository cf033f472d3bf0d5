package tipping

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cryptobio/cryptobio-backend/internal/pkg/model"
	"github.com/cryptobio/cryptobio-backend/internal/pkg/reject"
	"github.com/cryptobio/cryptobio-backend/internal/profile"
	"github.com/cryptobio/cryptobio-backend/internal/wallet"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testChain   uint64 = 8453
	wrongChain  uint64 = 1
	visitorAddr        = "0x00000000000000000000000000000000000000aa"
	creatorAddr        = "0x00000000000000000000000000000000000000bb"
	payoutAddr         = "0x00000000000000000000000000000000000000cc"
)

var testToken = common.HexToAddress("0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913")

type fakeStore struct {
	profiles map[string]*model.Profile
}

func (f *fakeStore) FindByUsername(_ context.Context, username string) *model.Profile {
	return f.profiles[strings.ToLower(username)]
}

func (f *fakeStore) FindByWallet(_ context.Context, _ string) *model.Profile { return nil }

func (f *fakeStore) UsernameAvailable(_ context.Context, _ string) bool { return true }

func (f *fakeStore) Create(_ context.Context, p *model.Profile) (*model.Profile, *reject.ProblemWithTrace) {
	return p, nil
}

func (f *fakeStore) UpdateByWallet(_ context.Context, _ string, _ profile.ProfileUpdate) *model.Profile {
	return nil
}

type sendCall struct {
	from common.Address
	to   common.Address
	data []byte
}

type fakeProvider struct {
	mu  sync.Mutex
	ops []string

	chainId    uint64
	switchErr  error
	balance    *big.Int
	balanceErr error
	sendHash   common.Hash
	sendErr    error
	sendCalls  []sendCall
	sendGate   chan struct{}
	receipt    *wallet.Receipt
	receiptErr error
}

func (f *fakeProvider) record(op string) {
	f.mu.Lock()
	f.ops = append(f.ops, op)
	f.mu.Unlock()
}

func (f *fakeProvider) opLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string{}, f.ops...)
}

func (f *fakeProvider) ChainID(_ context.Context) (uint64, error) {
	f.record("chainid")
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.chainId, nil
}

func (f *fakeProvider) SwitchChain(_ context.Context, chainId uint64) error {
	f.record("switch")
	if f.switchErr != nil {
		return f.switchErr
	}
	f.mu.Lock()
	f.chainId = chainId
	f.mu.Unlock()
	return nil
}

func (f *fakeProvider) TokenBalance(_ context.Context, _, _ common.Address) (*big.Int, error) {
	f.record("balance")
	if f.balanceErr != nil {
		return nil, f.balanceErr
	}
	return f.balance, nil
}

func (f *fakeProvider) SendTransaction(_ context.Context, from, to common.Address, data []byte) (common.Hash, error) {
	f.record("send")
	if f.sendGate != nil {
		<-f.sendGate
	}
	if f.sendErr != nil {
		return common.Hash{}, f.sendErr
	}
	f.mu.Lock()
	f.sendCalls = append(f.sendCalls, sendCall{from: from, to: to, data: data})
	f.mu.Unlock()
	return f.sendHash, nil
}

func (f *fakeProvider) WaitForReceipt(_ context.Context, hash common.Hash) (*wallet.Receipt, error) {
	f.record("receipt")
	if f.receiptErr != nil {
		return nil, f.receiptErr
	}
	if f.receipt != nil {
		return f.receipt, nil
	}
	return &wallet.Receipt{TxHash: hash, Status: wallet.ReceiptStatusSuccessful}, nil
}

type fakeHub struct {
	mu        sync.Mutex
	snapshots []Snapshot
}

func (h *fakeHub) Publish(_ string, event any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.snapshots = append(h.snapshots, *event.(*Snapshot))
}

func (h *fakeHub) statuses() []Status {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []Status
	for _, s := range h.snapshots {
		out = append(out, s.Status)
	}
	return out
}

func newTestService(p *fakeProvider, hub statusPublisher) *Service {
	store := &fakeStore{
		profiles: map[string]*model.Profile{
			"alex": {
				Username:      "alex",
				WalletAddress: creatorAddr,
				PayoutAddress: payoutAddr,
				DisplayName:   "Alex Rivera",
				TipAmounts:    model.TipAmounts{5, 10, 25},
			},
			"nopayout": {
				Username:      "nopayout",
				WalletAddress: creatorAddr,
			},
		},
	}
	return NewService(store, p, hub, Config{
		FeePercent:  1,
		TargetChain: testChain,
		Token:       testToken,
		SettleDelay: time.Millisecond,
	})
}

func openSession(t *testing.T, s *Service, username string) string {
	t.Helper()
	snapshot, problem := s.OpenSession(context.Background(), username)
	require.Nil(t, problem)
	require.Equal(t, StatusIdle, snapshot.Status)
	return snapshot.Id
}

func TestOpenSessionUnknownUsernameIsTerminal(t *testing.T) {
	s := newTestService(&fakeProvider{chainId: testChain}, nil)

	_, problem := s.OpenSession(context.Background(), "ghost")
	require.NotNil(t, problem)
	assert.Equal(t, 404, problem.Problem.Status)
}

func TestOpenSessionNormalizesUsernameCase(t *testing.T) {
	s := newTestService(&fakeProvider{chainId: testChain}, nil)

	snapshot, problem := s.OpenSession(context.Background(), "ALEX")
	require.Nil(t, problem)
	assert.Equal(t, "alex", snapshot.Username)
}

func TestSendTransfersCreatorShareToPayoutAddress(t *testing.T) {
	p := &fakeProvider{chainId: testChain, balance: wallet.Units(100)}
	s := newTestService(p, nil)
	id := openSession(t, s, "alex")

	snapshot, problem := s.Send(context.Background(), id, visitorAddr, "10")
	require.Nil(t, problem)
	assert.Equal(t, StatusSuccess, snapshot.Status)
	assert.Empty(t, snapshot.SelectedAmount)

	require.Len(t, p.sendCalls, 1)
	call := p.sendCalls[0]
	assert.Equal(t, common.HexToAddress(visitorAddr), call.from)
	assert.Equal(t, testToken, call.to)

	expected, err := wallet.PackTransfer(common.HexToAddress(payoutAddr), big.NewInt(9_900_000))
	require.NoError(t, err)
	assert.Equal(t, expected, call.data)

	assert.NotContains(t, p.opLog(), "switch")
}

func TestSendFallsBackToWalletAddressWithoutPayout(t *testing.T) {
	p := &fakeProvider{chainId: testChain, balance: wallet.Units(100)}
	s := newTestService(p, nil)
	id := openSession(t, s, "nopayout")

	_, problem := s.Send(context.Background(), id, visitorAddr, "5")
	require.Nil(t, problem)

	expected, err := wallet.PackTransfer(common.HexToAddress(creatorAddr), big.NewInt(4_950_000))
	require.NoError(t, err)
	require.Len(t, p.sendCalls, 1)
	assert.Equal(t, expected, p.sendCalls[0].data)
}

func TestSendSwitchesNetworkBeforeSending(t *testing.T) {
	p := &fakeProvider{chainId: wrongChain, balance: wallet.Units(100)}
	hub := &fakeHub{}
	s := newTestService(p, hub)
	id := openSession(t, s, "alex")

	snapshot, problem := s.Send(context.Background(), id, visitorAddr, "10")
	require.Nil(t, problem)
	assert.Equal(t, StatusSuccess, snapshot.Status)

	ops := p.opLog()
	switchIdx := indexOf(ops, "switch")
	sendIdx := indexOf(ops, "send")
	require.GreaterOrEqual(t, switchIdx, 0)
	require.GreaterOrEqual(t, sendIdx, 0)
	assert.Less(t, switchIdx, sendIdx)

	statuses := hub.statuses()
	assert.Contains(t, statuses, StatusSwitching)
	assert.Less(t, indexOfStatus(statuses, StatusSwitching), indexOfStatus(statuses, StatusSending))
}

func TestSwitchFailureNeverReachesSending(t *testing.T) {
	p := &fakeProvider{chainId: wrongChain, switchErr: errors.New("user rejected the request")}
	s := newTestService(p, nil)
	id := openSession(t, s, "alex")

	snapshot, problem := s.Send(context.Background(), id, visitorAddr, "10")
	require.Nil(t, problem)
	assert.Equal(t, StatusError, snapshot.Status)
	assert.Equal(t, "Please switch to Base network in your wallet", snapshot.ErrorMessage)
	assert.NotContains(t, p.opLog(), "send")
}

func TestInsufficientBalanceGuardBlocksTransfer(t *testing.T) {
	p := &fakeProvider{chainId: testChain, balance: big.NewInt(3_000_000)}
	s := newTestService(p, nil)
	id := openSession(t, s, "alex")

	snapshot, problem := s.Send(context.Background(), id, visitorAddr, "5")
	require.Nil(t, problem)
	assert.Equal(t, StatusError, snapshot.Status)
	assert.Equal(t, "Insufficient USDC. You have $3.00 but need $5.00.", snapshot.ErrorMessage)
	assert.NotContains(t, p.opLog(), "send")
}

func TestUnknownBalanceDefersToWallet(t *testing.T) {
	p := &fakeProvider{chainId: testChain, balanceErr: errors.New("rpc down")}
	s := newTestService(p, nil)
	id := openSession(t, s, "alex")

	snapshot, problem := s.Send(context.Background(), id, visitorAddr, "5")
	require.Nil(t, problem)
	assert.Equal(t, StatusSuccess, snapshot.Status)
	assert.Contains(t, p.opLog(), "send")
}

func TestSendWithoutWalletReportsError(t *testing.T) {
	p := &fakeProvider{chainId: testChain}
	s := newTestService(p, nil)
	id := openSession(t, s, "alex")

	snapshot, problem := s.Send(context.Background(), id, "", "10")
	require.Nil(t, problem)
	assert.Equal(t, StatusError, snapshot.Status)
	assert.Equal(t, "Please connect your wallet first", snapshot.ErrorMessage)
	assert.Empty(t, p.opLog())
}

func TestInvalidAmountBlocksLocally(t *testing.T) {
	p := &fakeProvider{chainId: testChain}
	s := newTestService(p, nil)
	id := openSession(t, s, "alex")

	for _, amount := range []string{"abc", "0", "-1", ""} {
		_, problem := s.Send(context.Background(), id, visitorAddr, amount)
		require.NotNil(t, problem, "amount %q", amount)
		assert.Equal(t, 400, problem.Problem.Status)
	}

	snapshot, problem := s.GetSnapshot(id)
	require.Nil(t, problem)
	assert.Equal(t, StatusIdle, snapshot.Status)
	assert.Empty(t, p.opLog())
}

func TestTransferErrorClassification(t *testing.T) {
	tests := []struct {
		name    string
		sendErr error
		want    string
	}{
		{
			"balance phrase",
			errors.New("execution reverted: transfer amount exceeds balance"),
			"Insufficient USDC balance. Please add USDC to your wallet.",
		},
		{
			"rejection phrase",
			errors.New("user rejected the request"),
			"Transaction cancelled",
		},
		{
			"other errors truncate",
			errors.New(strings.Repeat("x", 150)),
			strings.Repeat("x", 100),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &fakeProvider{chainId: testChain, balance: wallet.Units(100), sendErr: tt.sendErr}
			s := newTestService(p, nil)
			id := openSession(t, s, "alex")

			snapshot, problem := s.Send(context.Background(), id, visitorAddr, "10")
			require.Nil(t, problem)
			assert.Equal(t, StatusError, snapshot.Status)
			assert.Equal(t, tt.want, snapshot.ErrorMessage)
		})
	}
}

func TestFailedReceiptReportsError(t *testing.T) {
	p := &fakeProvider{
		chainId: testChain,
		balance: wallet.Units(100),
		receipt: &wallet.Receipt{Status: 0},
	}
	s := newTestService(p, nil)
	id := openSession(t, s, "alex")

	snapshot, problem := s.Send(context.Background(), id, visitorAddr, "10")
	require.Nil(t, problem)
	assert.Equal(t, StatusError, snapshot.Status)
	assert.Equal(t, "Transaction failed", snapshot.ErrorMessage)
}

func TestResetReturnsTerminalSessionToIdle(t *testing.T) {
	p := &fakeProvider{chainId: testChain, balance: wallet.Units(100)}
	s := newTestService(p, nil)
	id := openSession(t, s, "alex")

	snapshot, problem := s.Send(context.Background(), id, visitorAddr, "10")
	require.Nil(t, problem)
	require.Equal(t, StatusSuccess, snapshot.Status)
	require.NotEmpty(t, snapshot.TxHash)

	snapshot, problem = s.Reset(id)
	require.Nil(t, problem)
	assert.Equal(t, StatusIdle, snapshot.Status)
	assert.Empty(t, snapshot.SelectedAmount)
	assert.Empty(t, snapshot.ErrorMessage)
	assert.Empty(t, snapshot.TxHash)
}

func TestConcurrentSendIsRefused(t *testing.T) {
	gate := make(chan struct{})
	p := &fakeProvider{chainId: testChain, balance: wallet.Units(100), sendGate: gate}
	s := newTestService(p, nil)
	id := openSession(t, s, "alex")

	done := make(chan *Snapshot, 1)
	go func() {
		snapshot, _ := s.Send(context.Background(), id, visitorAddr, "10")
		done <- snapshot
	}()

	require.Eventually(t, func() bool {
		snapshot, problem := s.GetSnapshot(id)
		return problem == nil && snapshot.PendingPhase == PhaseWalletConfirmation
	}, time.Second, time.Millisecond)

	_, problem := s.Send(context.Background(), id, visitorAddr, "5")
	require.NotNil(t, problem)
	assert.Equal(t, 409, problem.Problem.Status)

	close(gate)
	snapshot := <-done
	assert.Equal(t, StatusSuccess, snapshot.Status)
	assert.Len(t, p.sendCalls, 1)
}

func indexOf(ops []string, op string) int {
	for i, o := range ops {
		if o == op {
			return i
		}
	}
	return -1
}

func indexOfStatus(statuses []Status, status Status) int {
	for i, s := range statuses {
		if s == status {
			return i
		}
	}
	return -1
}
