package factory

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"contest-platform/badges"
	"contest-platform/escrow"
	"contest-platform/events"
	"contest-platform/feemanager"
	"contest-platform/ledger"
	"contest-platform/tokenvalidator"

	"cosmossdk.io/math"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const (
	owner       = "owner"
	treasury    = "treasury"
	recovery    = "recovery"
	factoryAcct = "factory"
	feeAcct     = "feemanager/collector"
	creator     = "alice"

	// localhost network, 200 bp = 2%
	testNetworkID = uint64(31337)
)

type harness struct {
	clock   time.Time
	book    *ledger.Ledger
	fees    *feemanager.Manager
	tokens  *tokenvalidator.Validator
	badges  *badges.Tracker
	sink    *events.Recorder
	factory *Factory
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{clock: time.Unix(1_700_000_000, 0)}
	now := func() time.Time { return h.clock }

	h.book = ledger.New()
	h.sink = events.NewRecorder()
	h.fees = feemanager.NewManager(owner, feeAcct, treasury, h.book, h.sink)
	h.tokens = tokenvalidator.New(owner, now)
	h.badges = badges.NewTracker(h.sink, now)

	require.NoError(t, h.tokens.Register(owner, tokenvalidator.TokenInfo{
		Asset:        "usdc",
		Name:         "USD Coin",
		Symbol:       "USDC",
		Decimals:     6,
		IsStablecoin: true,
		PriceUSD:     decimal.NewFromInt(1),
		LiquidityUSD: decimal.NewFromInt(5_000_000),
	}))

	h.factory = New(Config{
		Owner:     owner,
		Account:   factoryAcct,
		Recovery:  recovery,
		NetworkID: testNetworkID,
		Bank:      h.book,
		Fees:      h.fees,
		Tokens:    h.tokens,
		Badges:    h.badges,
		Sink:      h.sink,
		Now:       now,
	})
	return h
}

func (h *harness) advance(d time.Duration) { h.clock = h.clock.Add(d) }

func nativeParams(prize, value int64) CreateParams {
	return CreateParams{
		Creator:    creator,
		Token:      ledger.NativeAsset,
		TotalPrize: math.NewInt(prize),
		Template:   escrow.TemplateWinnerTakesAll,
		Duration:   24 * time.Hour,
		Metadata:   "test contest",
		Value:      math.NewInt(value),
	}
}

func (h *harness) eventOfType(t *testing.T, eventType string) events.Record {
	t.Helper()
	var found events.Record
	require.Eventually(t, func() bool {
		for _, record := range h.sink.Records() {
			if record.Type == eventType {
				found = record
				return true
			}
		}
		return false
	}, time.Second, time.Millisecond, "no %s record", eventType)
	return found
}

func TestCreateNativeContest(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.book.Mint(creator, ledger.NativeAsset, math.NewInt(1020)))

	esc, err := h.factory.CreateContest(nativeParams(1000, 1020))
	require.NoError(t, err)

	require.Equal(t, uint64(1), esc.Params().ContestID)
	require.Equal(t, "escrow/1", esc.Account())
	require.Equal(t, math.NewInt(1000), h.book.BalanceOf(esc.Account(), ledger.NativeAsset))
	require.Equal(t, math.NewInt(20), h.book.BalanceOf(feeAcct, ledger.NativeAsset))
	require.True(t, h.book.BalanceOf(creator, ledger.NativeAsset).IsZero())
	require.Equal(t, math.NewInt(20), h.fees.AvailableFees(ledger.NativeAsset))

	require.Equal(t, 1, h.factory.EscrowsCount())
	require.Equal(t, uint64(1), h.factory.LastID())
	require.Equal(t, 1, h.badges.Stats(creator).ContestsCreated)

	created := h.eventOfType(t, "contest_created")
	payload := created.Event.(events.ContestCreated)
	require.Equal(t, math.NewInt(20), payload.Fee)
}

func TestCreateNativeContestExactValue(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.book.Mint(creator, ledger.NativeAsset, math.NewInt(1020)))

	_, err := h.factory.CreateContest(nativeParams(1000, 1020))
	require.NoError(t, err)
}

func TestCreateNativeContestInsufficientValue(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.book.Mint(creator, ledger.NativeAsset, math.NewInt(2000)))

	// 2% fee on 1000 needs 1020 attached; 1019 is short.
	_, err := h.factory.CreateContest(nativeParams(1000, 1019))
	require.ErrorIs(t, err, ErrInsufficientValue)
	require.Zero(t, h.factory.EscrowsCount())
}

func TestCreateNativeContestUnfundedCreator(t *testing.T) {
	h := newHarness(t)

	// Declared value is fine but the balance cannot back it.
	_, err := h.factory.CreateContest(nativeParams(1000, 1020))
	require.ErrorIs(t, err, ErrPaymentFailed)
	require.Zero(t, h.factory.EscrowsCount())
	require.True(t, h.book.BalanceOf(feeAcct, ledger.NativeAsset).IsZero())
}

func TestCreateNativeContestExcessRefunded(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.book.Mint(creator, ledger.NativeAsset, math.NewInt(1100)))

	_, err := h.factory.CreateContest(nativeParams(1000, 1100))
	require.NoError(t, err)

	// Only prize plus fee left the balance; the excess never moved.
	require.Equal(t, math.NewInt(80), h.book.BalanceOf(creator, ledger.NativeAsset))

	refund := h.eventOfType(t, "excess_refunded")
	payload := refund.Event.(events.ExcessRefunded)
	require.Equal(t, math.NewInt(80), payload.Amount)
}

func TestCreateTokenContest(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.book.Mint(creator, "usdc", math.NewInt(1020)))
	require.NoError(t, h.book.Approve(creator, factoryAcct, "usdc", math.NewInt(1020)))

	params := nativeParams(1000, 0)
	params.Token = "usdc"
	params.Value = math.ZeroInt()

	esc, err := h.factory.CreateContest(params)
	require.NoError(t, err)
	require.Equal(t, math.NewInt(1000), h.book.BalanceOf(esc.Account(), "usdc"))
	require.Equal(t, math.NewInt(20), h.book.BalanceOf(feeAcct, "usdc"))
	require.True(t, h.book.Allowance(creator, factoryAcct, "usdc").IsZero())
}

func TestCreateTokenContestRejectsValue(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.book.Mint(creator, "usdc", math.NewInt(1020)))
	require.NoError(t, h.book.Approve(creator, factoryAcct, "usdc", math.NewInt(1020)))
	require.NoError(t, h.book.Mint(creator, ledger.NativeAsset, math.NewInt(10)))

	params := nativeParams(1000, 10)
	params.Token = "usdc"

	_, err := h.factory.CreateContest(params)
	require.ErrorIs(t, err, ErrValueNotNeeded)
}

func TestCreateTokenContestInsufficientAllowance(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.book.Mint(creator, "usdc", math.NewInt(1020)))
	require.NoError(t, h.book.Approve(creator, factoryAcct, "usdc", math.NewInt(1000)))

	params := nativeParams(1000, 0)
	params.Token = "usdc"

	_, err := h.factory.CreateContest(params)
	require.ErrorIs(t, err, ErrPaymentFailed)
}

func TestCreateWithUnknownToken(t *testing.T) {
	h := newHarness(t)

	params := nativeParams(1000, 0)
	params.Token = "shadytoken"

	_, err := h.factory.CreateContest(params)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestCreateValidation(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.book.Mint(creator, ledger.NativeAsset, math.NewInt(10_000)))

	params := nativeParams(0, 100)
	params.TotalPrize = math.ZeroInt()
	_, err := h.factory.CreateContest(params)
	require.ErrorIs(t, err, ErrPrizeNotPositive)

	params = nativeParams(1000, 1020)
	params.Duration = 30 * time.Minute
	_, err = h.factory.CreateContest(params)
	require.ErrorIs(t, err, ErrInvalidDuration)

	params = nativeParams(1000, 1020)
	params.Duration = 366 * 24 * time.Hour
	_, err = h.factory.CreateContest(params)
	require.ErrorIs(t, err, ErrInvalidDuration)

	// 270 days is well within bounds.
	params = nativeParams(1000, 1020)
	params.Duration = 270 * 24 * time.Hour
	_, err = h.factory.CreateContest(params)
	require.NoError(t, err)
}

func TestCreationCooldown(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.book.Mint(creator, ledger.NativeAsset, math.NewInt(5000)))

	_, err := h.factory.CreateContest(nativeParams(1000, 1020))
	require.NoError(t, err)

	_, err = h.factory.CreateContest(nativeParams(1000, 1020))
	require.ErrorIs(t, err, ErrWaitBetweenContests)

	h.advance(CreationCooldown)
	_, err = h.factory.CreateContest(nativeParams(1000, 1020))
	require.NoError(t, err)
}

func TestFailedPaymentDoesNotStartCooldown(t *testing.T) {
	h := newHarness(t)

	_, err := h.factory.CreateContest(nativeParams(1000, 1020))
	require.ErrorIs(t, err, ErrPaymentFailed)

	require.NoError(t, h.book.Mint(creator, ledger.NativeAsset, math.NewInt(1020)))
	_, err = h.factory.CreateContest(nativeParams(1000, 1020))
	require.NoError(t, err)
}

func TestFailedPaymentDoesNotAdvanceId(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.book.Mint(creator, ledger.NativeAsset, math.NewInt(1020)))

	first, err := h.factory.CreateContest(nativeParams(1000, 1020))
	require.NoError(t, err)
	require.Equal(t, uint64(1), first.Params().ContestID)

	// The balance is drained, so the next attempt fails at payment and must
	// leave the id counter untouched.
	h.advance(CreationCooldown)
	_, err = h.factory.CreateContest(nativeParams(1000, 1020))
	require.ErrorIs(t, err, ErrPaymentFailed)
	require.Equal(t, uint64(1), h.factory.LastID())

	require.NoError(t, h.book.Mint(creator, ledger.NativeAsset, math.NewInt(1020)))
	h.advance(CreationCooldown)
	second, err := h.factory.CreateContest(nativeParams(1000, 1020))
	require.NoError(t, err)
	require.Equal(t, uint64(2), second.Params().ContestID)
	require.Equal(t, "escrow/2", second.Account())
}

func TestScheduledStart(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.book.Mint(creator, ledger.NativeAsset, math.NewInt(1020)))

	params := nativeParams(1000, 1020)
	params.StartTime = h.clock.Add(2 * time.Hour)
	esc, err := h.factory.CreateContest(params)
	require.NoError(t, err)

	// Funded but not yet running.
	info := esc.GetContestInfo()
	require.False(t, info.IsActive)
	require.False(t, info.IsEnded)
	require.Equal(t, params.StartTime, info.StartTime)
	require.Equal(t, params.StartTime.Add(params.Duration), info.EndTime)
	require.Equal(t, math.NewInt(1000), info.Balance)

	h.advance(3 * time.Hour)
	require.True(t, esc.GetContestInfo().IsActive)

	err = esc.DeclareWinners(creator, []string{"bob"}, []int{1})
	require.ErrorIs(t, err, escrow.ErrContestStillActive)

	h.advance(24 * time.Hour)
	require.NoError(t, esc.DeclareWinners(creator, []string{"bob"}, []int{1}))
}

func TestScheduledStartMustBeInFuture(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.book.Mint(creator, ledger.NativeAsset, math.NewInt(1020)))

	params := nativeParams(1000, 1020)
	params.StartTime = h.clock.Add(-time.Minute)
	_, err := h.factory.CreateContest(params)
	require.ErrorIs(t, err, ErrInvalidStartTime)

	params.StartTime = h.clock
	_, err = h.factory.CreateContest(params)
	require.ErrorIs(t, err, ErrInvalidStartTime)
	require.Zero(t, h.factory.EscrowsCount())
}

func TestConcurrentCreationHonorsCooldown(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.book.Mint(creator, ledger.NativeAsset, math.NewInt(100_000)))

	const attempts = 16
	var wg sync.WaitGroup
	var created int64
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := h.factory.CreateContest(nativeParams(1000, 1020)); err == nil {
				atomic.AddInt64(&created, 1)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, int64(1), created)
	require.Equal(t, 1, h.factory.EscrowsCount())
	require.Equal(t, uint64(1), h.factory.LastID())
}

func TestActiveCount(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.book.Mint(creator, ledger.NativeAsset, math.NewInt(5000)))

	require.Zero(t, h.factory.ActiveCount())

	esc, err := h.factory.CreateContest(nativeParams(1000, 1020))
	require.NoError(t, err)
	require.Equal(t, 1, h.factory.ActiveCount())

	require.NoError(t, h.factory.CancelContest(creator, esc.Params().ContestID, "done"))
	require.Zero(t, h.factory.ActiveCount())

	// A second contest drops out of the count once its clock runs out.
	h.advance(CreationCooldown)
	_, err = h.factory.CreateContest(nativeParams(1000, 1020))
	require.NoError(t, err)
	require.Equal(t, 1, h.factory.ActiveCount())
	h.advance(25 * time.Hour)
	require.Zero(t, h.factory.ActiveCount())
}

func TestBannedCreatorCannotCreate(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.book.Mint(creator, ledger.NativeAsset, math.NewInt(1020)))
	require.NoError(t, h.fees.BanCreator(owner, creator, "spam"))

	_, err := h.factory.CreateContest(nativeParams(1000, 1020))
	require.ErrorIs(t, err, ErrCreatorBanned)

	require.NoError(t, h.fees.UnbanCreator(owner, creator))
	_, err = h.factory.CreateContest(nativeParams(1000, 1020))
	require.NoError(t, err)
}

func TestEmergencyStop(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.book.Mint(creator, ledger.NativeAsset, math.NewInt(2100)))

	require.ErrorIs(t, h.factory.SetEmergencyStop("stranger", true), ErrOnlyOwner)
	require.NoError(t, h.factory.SetEmergencyStop(owner, true))
	require.True(t, h.factory.EmergencyStopped())

	_, err := h.factory.CreateContest(nativeParams(1000, 1020))
	require.ErrorIs(t, err, ErrEmergencyMode)

	require.NoError(t, h.factory.SetEmergencyStop(owner, false))
	_, err = h.factory.CreateContest(nativeParams(1000, 1020))
	require.NoError(t, err)
}

func TestHighFeeEmitsWarning(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.fees.SetNetworkFee(owner, testNetworkID, 1500, ""))
	require.NoError(t, h.book.Mint(creator, ledger.NativeAsset, math.NewInt(1150)))

	_, err := h.factory.CreateContest(nativeParams(1000, 1150))
	require.NoError(t, err)

	warning := h.eventOfType(t, "network_warning")
	payload := warning.Event.(events.NetworkWarning)
	require.Equal(t, 1500, payload.FeeBP)
}

func TestContestLookup(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.book.Mint(creator, ledger.NativeAsset, math.NewInt(1020)))

	esc, err := h.factory.CreateContest(nativeParams(1000, 1020))
	require.NoError(t, err)

	byID, ok := h.factory.Contest(esc.Params().ContestID)
	require.True(t, ok)
	require.Same(t, esc, byID)

	_, ok = h.factory.Contest(99)
	require.False(t, ok)

	byIndex, err := h.factory.GetEscrow(0)
	require.NoError(t, err)
	require.Same(t, esc, byIndex)

	_, err = h.factory.GetEscrow(1)
	require.ErrorIs(t, err, ErrContestNotFound)
	_, err = h.factory.GetEscrow(-1)
	require.ErrorIs(t, err, ErrContestNotFound)
}

func TestCancelContest(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.book.Mint(creator, ledger.NativeAsset, math.NewInt(1020)))

	esc, err := h.factory.CreateContest(nativeParams(1000, 1020))
	require.NoError(t, err)
	id := esc.Params().ContestID

	require.ErrorIs(t, h.factory.CancelContest(creator, 99, "missing"), ErrContestNotFound)
	require.ErrorIs(t, h.factory.CancelContest("stranger", id, "nope"), escrow.ErrOnlyCreator)

	require.NoError(t, h.factory.CancelContest(creator, id, "changed plans"))
	require.Equal(t, math.NewInt(1000), h.book.BalanceOf(creator, ledger.NativeAsset))
	require.Equal(t, 1, h.badges.Stats(creator).ContestsCancelled)
}

func TestEmergencyWithdrawFlow(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.book.Mint(creator, ledger.NativeAsset, math.NewInt(1020)))

	esc, err := h.factory.CreateContest(nativeParams(1000, 1020))
	require.NoError(t, err)
	id := esc.Params().ContestID

	info, err := h.factory.GetEmergencyInfo(id)
	require.NoError(t, err)
	require.False(t, info.IsStale)
	require.False(t, info.CanEmergencyWithdraw)

	_, err = h.factory.EmergencyWithdrawFromEscrow(owner, id, "too early")
	require.ErrorIs(t, err, escrow.ErrNotStale)

	h.advance(24*time.Hour + escrow.StaleThreshold + time.Hour)

	info, err = h.factory.GetEmergencyInfo(id)
	require.NoError(t, err)
	require.True(t, info.IsStale)
	require.True(t, info.CanEmergencyWithdraw)
	require.GreaterOrEqual(t, info.DaysSinceEnd, int64(180))

	_, err = h.factory.EmergencyWithdrawFromEscrow("stranger", id, "sweep")
	require.ErrorIs(t, err, ErrOnlyOwner)

	amount, err := h.factory.EmergencyWithdrawFromEscrow(owner, id, "stale sweep")
	require.NoError(t, err)
	require.Equal(t, math.NewInt(1000), amount)
	require.Equal(t, math.NewInt(1000), h.book.BalanceOf(recovery, ledger.NativeAsset))
}

func TestRecoverFactoryFunds(t *testing.T) {
	h := newHarness(t)

	_, err := h.factory.RecoverFactoryFunds(owner, ledger.NativeAsset)
	require.ErrorIs(t, err, ErrNothingToRecover)

	require.NoError(t, h.book.Mint(factoryAcct, ledger.NativeAsset, math.NewInt(77)))

	_, err = h.factory.RecoverFactoryFunds("stranger", ledger.NativeAsset)
	require.ErrorIs(t, err, ErrOnlyOwner)

	amount, err := h.factory.RecoverFactoryFunds(owner, ledger.NativeAsset)
	require.NoError(t, err)
	require.Equal(t, math.NewInt(77), amount)
	require.Equal(t, math.NewInt(77), h.book.BalanceOf(recovery, ledger.NativeAsset))
}
