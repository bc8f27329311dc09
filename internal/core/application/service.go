package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/escrow-network/escrow-daemon/internal/core/domain"
	"github.com/escrow-network/escrow-daemon/internal/core/ports"
)

// Service is the session orchestrator. It receives inbound platform events,
// folds them into the session record through a single atomic repository
// mutation, and only then emits outbound actions. Per-session serialization
// comes entirely from the repository: the service itself holds no locks and
// handlers for different sessions run fully in parallel.
type Service struct {
	repoManager ports.RepoManager
	platform    ports.PlatformClient
	dispatcher  *dispatcher

	sessionExpiry time.Duration
	sweepInterval time.Duration
	stopSweeper   chan struct{}
}

// NewService returns a Service wired to the given store and platform
// adapter. When sessionExpiry is positive a background sweeper moves
// sessions stuck below quorum past the expiry to the terminal Abandoned
// status.
func NewService(
	repoManager ports.RepoManager,
	platform ports.PlatformClient,
	sessionExpiry, sweepInterval time.Duration,
	sendsPerSecond int,
) (*Service, error) {
	if repoManager == nil {
		return nil, fmt.Errorf("missing repo manager")
	}
	if platform == nil {
		return nil, fmt.Errorf("missing platform client")
	}
	if sessionExpiry > 0 && sweepInterval <= 0 {
		return nil, fmt.Errorf("sweep interval must be positive when session expiry is set")
	}

	svc := &Service{
		repoManager:   repoManager,
		platform:      platform,
		dispatcher:    newDispatcher(platform, sendsPerSecond),
		sessionExpiry: sessionExpiry,
		sweepInterval: sweepInterval,
		stopSweeper:   make(chan struct{}),
	}

	if sessionExpiry > 0 {
		go svc.sweepAbandonedSessions()
	}
	return svc, nil
}

// Close stops the background sweeper.
func (s *Service) Close() {
	close(s.stopSweeper)
}

// NewDeal allocates the next sequence number for the deal type, asks the
// platform to create a venue labeled with it and persists the session
// record. If venue creation fails no record is persisted and the sequence
// number is released on a best-effort basis.
func (s *Service) NewDeal(
	ctx context.Context, creatorId string, dealType domain.DealType,
) (*DealInfo, error) {
	seqNum, err := s.repoManager.CounterRepository().NextSequence(ctx, dealType)
	if err != nil {
		log.WithError(err).Error("failed to allocate sequence number")
		return nil, ErrServiceUnavailable
	}

	venue, err := s.dispatcher.createVenue(ctx, dealType, seqNum, creatorId)
	if err != nil {
		log.WithError(err).WithField("deal_type", dealType.String()).
			Error("platform failed to create venue")
		s.releaseSequence(ctx, dealType, seqNum)
		return nil, ErrVenueCreationFailed
	}

	session := domain.NewSession(venue.VenueId, dealType, seqNum, creatorId)
	if err := s.repoManager.SessionRepository().AddSession(ctx, session); err != nil {
		log.WithError(err).WithField("session", venue.VenueId).
			Error("failed to persist new session")
		return nil, ErrServiceUnavailable
	}

	log.WithFields(log.Fields{
		"session":  session.Id,
		"deal":     dealType.String(),
		"sequence": seqNum,
	}).Info("deal created")

	s.dispatcher.send(ctx, session.Id, TemplateVenueCreated, map[string]string{
		"sequence":    fmt.Sprintf("%d", seqNum),
		"deal_type":   dealType.String(),
		"invite_link": venue.InviteLink,
	})

	return &DealInfo{
		SessionId:      session.Id,
		DealType:       dealType,
		SequenceNumber: seqNum,
		InviteLink:     venue.InviteLink,
	}, nil
}

// OnParticipantArrived folds a join signal into the session. Duplicate
// deliveries of the same physical join are no-ops. The arrival that
// completes the quorum opens role selection, retires the invite link and
// posts the pinned role prompt, each at most once.
func (s *Service) OnParticipantArrived(
	ctx context.Context, sessionId, participantId string, isAutomation bool,
) error {
	var delta domain.MembershipDelta
	var revokeInvite bool

	err := s.repoManager.SessionRepository().UpdateSession(
		ctx, sessionId, func(session *domain.Session) (*domain.Session, error) {
			d, err := session.RecordArrival(participantId, isAutomation)
			if err != nil {
				return nil, err
			}
			delta = d
			if delta.QuorumReached {
				session.OpenRoleSelection()
				revokeInvite = session.CloseInvite()
			}
			return session, nil
		},
	)
	if err != nil {
		if errors.Is(err, domain.ErrSessionAbandoned) {
			return nil
		}
		return s.storeError(err, sessionId, "failed to record arrival")
	}

	if !delta.Added {
		return nil
	}

	s.dispatcher.send(ctx, sessionId, TemplateParticipantJoined, map[string]string{
		"participant": participantId,
	})

	if delta.QuorumReached {
		s.onQuorumReached(ctx, sessionId, revokeInvite)
	}
	return nil
}

// onQuorumReached emits the side effects of the quorum edge: invite
// revocation plus security notice, and the pinned buyer/seller prompt. The
// guarded mutation already fired, so these run at most once per session;
// adapter failures are logged and never block session progress.
func (s *Service) onQuorumReached(
	ctx context.Context, sessionId string, revokeInvite bool,
) {
	g := &errgroup.Group{}

	if revokeInvite {
		g.Go(func() error {
			if err := s.dispatcher.revokeJoinCapability(ctx, sessionId); err != nil {
				log.WithError(err).WithField("session", sessionId).
					Warn("failed to revoke invite link")
				return nil
			}
			s.dispatcher.send(ctx, sessionId, TemplateInviteRevoked, nil)
			return nil
		})
	}

	g.Go(func() error {
		ref, err := s.dispatcher.send(ctx, sessionId, TemplateRolePrompt, nil)
		if err != nil {
			return nil
		}
		if err := s.dispatcher.pin(ctx, sessionId, ref); err != nil {
			log.WithError(err).WithField("session", sessionId).
				Warn("failed to pin role prompt")
		}
		return nil
	})

	g.Wait()
}

// OnButtonPressed handles the buyer/seller claim buttons. The outcome is
// returned for the adapter to translate into a user-facing notice.
func (s *Service) OnButtonPressed(
	ctx context.Context, sessionId, participantId, action string,
) (ClaimOutcome, error) {
	var role domain.Role
	switch action {
	case ActionClaimBuyer:
		role = domain.RoleBuyer
	case ActionClaimSeller:
		role = domain.RoleSeller
	default:
		return ClaimNotEligible, ErrUnknownAction
	}
	return s.claimRole(ctx, sessionId, participantId, role)
}

func (s *Service) claimRole(
	ctx context.Context, sessionId, participantId string, role domain.Role,
) (ClaimOutcome, error) {
	var bothHeld bool

	err := s.repoManager.SessionRepository().UpdateSession(
		ctx, sessionId, func(session *domain.Session) (*domain.Session, error) {
			held, err := session.ClaimRole(participantId, role)
			if err != nil {
				return nil, err
			}
			bothHeld = held
			return session, nil
		},
	)
	if err != nil {
		if outcome, ok := claimOutcomeForError(err); ok {
			return outcome, nil
		}
		return ClaimNotEligible, s.storeError(err, sessionId, "failed to claim role")
	}

	log.WithFields(log.Fields{
		"session":     sessionId,
		"participant": participantId,
		"role":        string(role),
	}).Info("role confirmed")

	s.dispatcher.send(ctx, sessionId, TemplateRoleConfirmed, map[string]string{
		"participant": participantId,
		"role":        string(role),
	})

	if bothHeld {
		s.dispatcher.send(ctx, sessionId, TemplateAddressRequest, nil)
	}
	return ClaimConfirmed, nil
}

// OnCommandReceived routes the textual commands of interest. begin-session
// expects the deal type as first argument; submit-address expects the
// address.
func (s *Service) OnCommandReceived(
	ctx context.Context, sessionId, participantId, command string, args []string,
) error {
	switch command {
	case CommandBeginSession:
		dealType := domain.DealTypeP2P
		if len(args) > 0 && strings.EqualFold(args[0], domain.DealTypeOther.String()) {
			dealType = domain.DealTypeOther
		}
		_, err := s.NewDeal(ctx, participantId, dealType)
		return err
	case CommandSubmitAddress:
		if len(args) < 1 {
			return ErrInvalidArgs
		}
		_, err := s.SubmitAddress(ctx, sessionId, participantId, args[0])
		return err
	default:
		return ErrUnknownCommand
	}
}

// SubmitAddress records the settlement address of the submitting role
// holder. The submission completing both addresses moves the session to
// EscrowReady and posts the final summary.
func (s *Service) SubmitAddress(
	ctx context.Context, sessionId, participantId, address string,
) (SubmitOutcome, error) {
	var bothPresent bool

	err := s.repoManager.SessionRepository().UpdateSession(
		ctx, sessionId, func(session *domain.Session) (*domain.Session, error) {
			both, err := session.SubmitAddress(participantId, address)
			if err != nil {
				return nil, err
			}
			bothPresent = both
			return session, nil
		},
	)
	if err != nil {
		if outcome, ok := submitOutcomeForError(err); ok {
			return outcome, nil
		}
		return SubmitWrongRoleOrNoRole,
			s.storeError(err, sessionId, "failed to record settlement address")
	}

	s.dispatcher.send(ctx, sessionId, TemplateAddressRecorded, map[string]string{
		"participant": participantId,
	})

	if bothPresent {
		log.WithField("session", sessionId).Info("escrow ready")
		ref, err := s.dispatcher.send(ctx, sessionId, TemplateEscrowReady, nil)
		if err == nil {
			if err := s.dispatcher.pin(ctx, sessionId, ref); err != nil {
				log.WithError(err).WithField("session", sessionId).
					Warn("failed to pin escrow summary")
			}
		}
	}
	return SubmitAccepted, nil
}

// GetSession returns the stored session, for inspection surfaces.
func (s *Service) GetSession(
	ctx context.Context, sessionId string,
) (*domain.Session, error) {
	session, err := s.repoManager.SessionRepository().GetSession(ctx, sessionId)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, ErrServiceUnavailable
	}
	return session, nil
}

func (s *Service) releaseSequence(
	ctx context.Context, dealType domain.DealType, seqNum uint64,
) {
	if err := s.repoManager.CounterRepository().ReleaseSequence(
		ctx, dealType, seqNum,
	); err != nil {
		log.WithError(err).WithFields(log.Fields{
			"deal":     dealType.String(),
			"sequence": seqNum,
		}).Debug("could not release sequence number, leaving a gap")
	}
}

func (s *Service) storeError(err error, sessionId, msg string) error {
	if errors.Is(err, domain.ErrSessionNotFound) {
		return ErrSessionNotFound
	}
	log.WithError(err).WithField("session", sessionId).Error(msg)
	return ErrServiceUnavailable
}

func claimOutcomeForError(err error) (ClaimOutcome, bool) {
	switch {
	case errors.Is(err, domain.ErrRoleAlreadyChosen):
		return ClaimAlreadyChosenBySelf, true
	case errors.Is(err, domain.ErrRoleTaken):
		return ClaimRoleTaken, true
	case errors.Is(err, domain.ErrParticipantNotEligible),
		errors.Is(err, domain.ErrInvalidRole),
		errors.Is(err, domain.ErrSessionAbandoned):
		return ClaimNotEligible, true
	default:
		return 0, false
	}
}

func submitOutcomeForError(err error) (SubmitOutcome, bool) {
	switch {
	case errors.Is(err, domain.ErrMalformedAddress):
		return SubmitMalformed, true
	case errors.Is(err, domain.ErrAddressAlreadySubmitted):
		return SubmitAlreadySubmitted, true
	case errors.Is(err, domain.ErrNoRoleHeld),
		errors.Is(err, domain.ErrSessionAbandoned):
		return SubmitWrongRoleOrNoRole, true
	default:
		return 0, false
	}
}
