package application_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/escrow-network/escrow-daemon/internal/core/application"
	"github.com/escrow-network/escrow-daemon/internal/core/domain"
	"github.com/escrow-network/escrow-daemon/internal/core/ports"
	platforminmemory "github.com/escrow-network/escrow-daemon/internal/infrastructure/platform/inmemory"
	"github.com/escrow-network/escrow-daemon/internal/infrastructure/storage/db/inmemory"
)

const (
	creator = "creator"
	alice   = "alice"
	bob     = "bob"
	carol   = "carol"
)

func newTestService(
	t *testing.T,
) (*application.Service, *platforminmemory.Client, ports.RepoManager) {
	t.Helper()

	repoManager := inmemory.NewRepoManager()
	platform := platforminmemory.NewClient()
	svc, err := application.NewService(repoManager, platform, 0, 0, 100)
	require.NoError(t, err)
	t.Cleanup(svc.Close)
	return svc, platform, repoManager
}

func newDeal(
	t *testing.T, svc *application.Service,
) *application.DealInfo {
	t.Helper()

	deal, err := svc.NewDeal(context.Background(), creator, domain.DealTypeP2P)
	require.NoError(t, err)
	return deal
}

// Scenario A: first deal gets sequence number 1, two distinct arrivals
// reach quorum, and doubled join deliveries still revoke the invite link
// exactly once.
func TestDealCreationAndQuorum(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, platform, _ := newTestService(t)

	deal := newDeal(t, svc)
	require.Equal(t, uint64(1), deal.SequenceNumber)
	require.NotEmpty(t, deal.SessionId)
	require.NotEmpty(t, deal.InviteLink)

	// Every arrival signal delivered twice, simulating the platform firing
	// via two detection mechanisms.
	for i := 0; i < 2; i++ {
		require.NoError(
			t, svc.OnParticipantArrived(ctx, deal.SessionId, alice, false),
		)
	}
	for i := 0; i < 2; i++ {
		require.NoError(
			t, svc.OnParticipantArrived(ctx, deal.SessionId, bob, false),
		)
	}

	session, err := svc.GetSession(ctx, deal.SessionId)
	require.NoError(t, err)
	require.True(t, session.IsRoleSelectionOpen())
	require.Equal(t, []string{alice, bob}, session.Participants)
	require.False(t, session.InviteOpen)

	venue, ok := platform.Venue(deal.SessionId)
	require.True(t, ok)
	require.True(t, venue.InviteRevoked)
	require.Len(
		t, platform.MessagesByTemplate(deal.SessionId, application.TemplateInviteRevoked), 1,
	)

	// The role prompt went out once and got pinned.
	prompts := platform.MessagesByTemplate(deal.SessionId, application.TemplateRolePrompt)
	require.Len(t, prompts, 1)
	require.Contains(t, venue.Pinned, prompts[0].Ref)

	// Greetings, one per physical join.
	require.Len(
		t, platform.MessagesByTemplate(deal.SessionId, application.TemplateParticipantJoined), 2,
	)

}

func TestSequenceNumbersPerDealType(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, _, _ := newTestService(t)

	first, err := svc.NewDeal(ctx, creator, domain.DealTypeP2P)
	require.NoError(t, err)
	second, err := svc.NewDeal(ctx, creator, domain.DealTypeP2P)
	require.NoError(t, err)
	other, err := svc.NewDeal(ctx, creator, domain.DealTypeOther)
	require.NoError(t, err)

	require.Equal(t, uint64(1), first.SequenceNumber)
	require.Equal(t, uint64(2), second.SequenceNumber)
	require.Equal(t, uint64(1), other.SequenceNumber)
}

// Scenario B: one-shot role choice and mutual exclusion through the
// button handler.
func TestRoleSelection(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, platform, _ := newTestService(t)
	deal := newDeal(t, svc)
	joinBoth(t, svc, deal.SessionId)

	outcome, err := svc.OnButtonPressed(
		ctx, deal.SessionId, alice, application.ActionClaimBuyer,
	)
	require.NoError(t, err)
	require.Equal(t, application.ClaimConfirmed, outcome)

	outcome, err = svc.OnButtonPressed(
		ctx, deal.SessionId, alice, application.ActionClaimSeller,
	)
	require.NoError(t, err)
	require.Equal(t, application.ClaimAlreadyChosenBySelf, outcome)

	outcome, err = svc.OnButtonPressed(
		ctx, deal.SessionId, bob, application.ActionClaimBuyer,
	)
	require.NoError(t, err)
	require.Equal(t, application.ClaimRoleTaken, outcome)

	outcome, err = svc.OnButtonPressed(
		ctx, deal.SessionId, bob, application.ActionClaimSeller,
	)
	require.NoError(t, err)
	require.Equal(t, application.ClaimConfirmed, outcome)

	session, err := svc.GetSession(ctx, deal.SessionId)
	require.NoError(t, err)
	require.True(t, session.IsSettlementPending())

	// Address request goes out once, on the both-roles edge.
	require.Len(
		t, platform.MessagesByTemplate(deal.SessionId, application.TemplateAddressRequest), 1,
	)
}

func TestRoleSelectionRejectsOutsiders(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, _, _ := newTestService(t)
	deal := newDeal(t, svc)
	joinBoth(t, svc, deal.SessionId)

	// A late joiner is an observer, never role-eligible.
	require.NoError(t, svc.OnParticipantArrived(ctx, deal.SessionId, carol, false))

	outcome, err := svc.OnButtonPressed(
		ctx, deal.SessionId, carol, application.ActionClaimSeller,
	)
	require.NoError(t, err)
	require.Equal(t, application.ClaimNotEligible, outcome)

	_, err = svc.OnButtonPressed(ctx, deal.SessionId, alice, "claim-arbiter")
	require.ErrorIs(t, err, application.ErrUnknownAction)
}

// Two participants clicking the same role button within the same instant:
// exactly one confirmation.
func TestConcurrentClaims(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, _, _ := newTestService(t)
	deal := newDeal(t, svc)
	joinBoth(t, svc, deal.SessionId)

	outcomes := make([]application.ClaimOutcome, 2)
	var wg sync.WaitGroup
	wg.Add(2)
	for i, participant := range []string{alice, bob} {
		go func(i int, participant string) {
			defer wg.Done()
			outcome, err := svc.OnButtonPressed(
				ctx, deal.SessionId, participant, application.ActionClaimBuyer,
			)
			require.NoError(t, err)
			outcomes[i] = outcome
		}(i, participant)
	}
	wg.Wait()

	var confirmed, taken int
	for _, outcome := range outcomes {
		switch outcome {
		case application.ClaimConfirmed:
			confirmed++
		case application.ClaimRoleTaken:
			taken++
		}
	}
	require.Equal(t, 1, confirmed)
	require.Equal(t, 1, taken)
}

// Scenario C: address shape check, one-shot submission, terminal ready
// edge.
func TestSettlementCollection(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, platform, _ := newTestService(t)
	deal := newDeal(t, svc)
	joinBoth(t, svc, deal.SessionId)
	claimRoles(t, svc, deal.SessionId)

	outcome, err := svc.SubmitAddress(ctx, deal.SessionId, alice, "abc")
	require.NoError(t, err)
	require.Equal(t, application.SubmitMalformed, outcome)

	address := strings.Repeat("x", 34)
	outcome, err = svc.SubmitAddress(ctx, deal.SessionId, alice, address)
	require.NoError(t, err)
	require.Equal(t, application.SubmitAccepted, outcome)

	outcome, err = svc.SubmitAddress(
		ctx, deal.SessionId, alice, strings.Repeat("y", 34),
	)
	require.NoError(t, err)
	require.Equal(t, application.SubmitAlreadySubmitted, outcome)

	outcome, err = svc.SubmitAddress(
		ctx, deal.SessionId, carol, strings.Repeat("z", 34),
	)
	require.NoError(t, err)
	require.Equal(t, application.SubmitWrongRoleOrNoRole, outcome)

	outcome, err = svc.SubmitAddress(
		ctx, deal.SessionId, bob, strings.Repeat("z", 34),
	)
	require.NoError(t, err)
	require.Equal(t, application.SubmitAccepted, outcome)

	session, err := svc.GetSession(ctx, deal.SessionId)
	require.NoError(t, err)
	require.True(t, session.IsEscrowReady())

	// The ready summary fires once even if the seller's submission is
	// redelivered.
	outcome, err = svc.SubmitAddress(
		ctx, deal.SessionId, bob, strings.Repeat("z", 34),
	)
	require.NoError(t, err)
	require.Equal(t, application.SubmitAlreadySubmitted, outcome)
	require.Len(
		t, platform.MessagesByTemplate(deal.SessionId, application.TemplateEscrowReady), 1,
	)
}

func TestCommandRouting(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, _, _ := newTestService(t)
	deal := newDeal(t, svc)
	joinBoth(t, svc, deal.SessionId)
	claimRoles(t, svc, deal.SessionId)

	err := svc.OnCommandReceived(
		ctx, deal.SessionId, alice,
		application.CommandSubmitAddress, []string{strings.Repeat("x", 34)},
	)
	require.NoError(t, err)

	err = svc.OnCommandReceived(
		ctx, deal.SessionId, alice, application.CommandSubmitAddress, nil,
	)
	require.ErrorIs(t, err, application.ErrInvalidArgs)

	err = svc.OnCommandReceived(ctx, deal.SessionId, alice, "self-destruct", nil)
	require.ErrorIs(t, err, application.ErrUnknownCommand)

	err = svc.OnCommandReceived(
		ctx, "", creator, application.CommandBeginSession, []string{"other"},
	)
	require.NoError(t, err)
}

func TestUnknownSession(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, _, _ := newTestService(t)

	err := svc.OnParticipantArrived(ctx, "missing", alice, false)
	require.ErrorIs(t, err, application.ErrSessionNotFound)

	_, err = svc.GetSession(ctx, "missing")
	require.ErrorIs(t, err, application.ErrSessionNotFound)
}

// A failed venue creation must not leave a session record behind and must
// give the sequence number back.
func TestVenueCreationFailure(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repoManager := inmemory.NewRepoManager()
	svc, err := application.NewService(
		repoManager, failingPlatform{}, 0, 0, 100,
	)
	require.NoError(t, err)
	defer svc.Close()

	_, err = svc.NewDeal(ctx, creator, domain.DealTypeP2P)
	require.ErrorIs(t, err, application.ErrVenueCreationFailed)

	sessions, err := repoManager.SessionRepository().GetAllSessions(ctx)
	require.NoError(t, err)
	require.Empty(t, sessions)

	counter, err := repoManager.CounterRepository().GetCounter(
		ctx, domain.DealTypeP2P,
	)
	require.NoError(t, err)
	require.Equal(t, uint64(1), counter.Next)
}

func TestAbandonmentSweep(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repoManager := inmemory.NewRepoManager()
	platform := platforminmemory.NewClient()
	svc, err := application.NewService(
		repoManager, platform, time.Hour, time.Hour, 100,
	)
	require.NoError(t, err)
	defer svc.Close()

	deal, err := svc.NewDeal(ctx, creator, domain.DealTypeP2P)
	require.NoError(t, err)
	require.NoError(t, svc.OnParticipantArrived(ctx, deal.SessionId, alice, false))

	// Backdate the session past the expiry, then force a sweep.
	err = repoManager.SessionRepository().UpdateSession(
		ctx, deal.SessionId, func(s *domain.Session) (*domain.Session, error) {
			s.CreatedAt = time.Now().Add(-2 * time.Hour).Unix()
			return s, nil
		},
	)
	require.NoError(t, err)

	svc.SweepOnce(ctx)

	session, err := svc.GetSession(ctx, deal.SessionId)
	require.NoError(t, err)
	require.True(t, session.IsAbandoned())

	// Abandoned sessions stop accepting events but keep their record.
	require.NoError(t, svc.OnParticipantArrived(ctx, deal.SessionId, bob, false))
	session, err = svc.GetSession(ctx, deal.SessionId)
	require.NoError(t, err)
	require.Len(t, session.Participants, 1)
}

func joinBoth(t *testing.T, svc *application.Service, sessionId string) {
	t.Helper()

	ctx := context.Background()
	require.NoError(t, svc.OnParticipantArrived(ctx, sessionId, alice, false))
	require.NoError(t, svc.OnParticipantArrived(ctx, sessionId, bob, false))
}

func claimRoles(t *testing.T, svc *application.Service, sessionId string) {
	t.Helper()

	ctx := context.Background()
	outcome, err := svc.OnButtonPressed(
		ctx, sessionId, alice, application.ActionClaimBuyer,
	)
	require.NoError(t, err)
	require.Equal(t, application.ClaimConfirmed, outcome)

	outcome, err = svc.OnButtonPressed(
		ctx, sessionId, bob, application.ActionClaimSeller,
	)
	require.NoError(t, err)
	require.Equal(t, application.ClaimConfirmed, outcome)
}

type failingPlatform struct{}

func (failingPlatform) CreateVenue(
	context.Context, domain.DealType, uint64, string,
) (*ports.VenueInfo, error) {
	return nil, fmt.Errorf("platform is down")
}

func (failingPlatform) SendMessage(
	context.Context, string, string, map[string]string,
) (string, error) {
	return "", fmt.Errorf("platform is down")
}

func (failingPlatform) PinMessage(context.Context, string, string) error {
	return fmt.Errorf("platform is down")
}

func (failingPlatform) RevokeJoinCapability(context.Context, string) error {
	return fmt.Errorf("platform is down")
}
