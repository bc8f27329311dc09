package application

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/escrow-network/escrow-daemon/internal/core/domain"
)

// sweepAbandonedSessions periodically moves sessions stuck below quorum
// past the configured expiry to the terminal Abandoned status. Without it,
// one-participant sessions would persist live forever. Records are never
// deleted.
func (s *Service) sweepAbandonedSessions() {
	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopSweeper:
			return
		case <-ticker.C:
			s.SweepOnce(context.Background())
		}
	}
}

// SweepOnce runs a single abandonment pass. It is called by the background
// loop and exposed for operational tooling and tests.
func (s *Service) SweepOnce(ctx context.Context) {
	sessions, err := s.repoManager.SessionRepository().
		GetSessionsAwaitingQuorum(ctx)
	if err != nil {
		log.WithError(err).Warn("abandonment sweep failed to list sessions")
		return
	}

	now := time.Now()
	for _, session := range sessions {
		if session.Age(now) < s.sessionExpiry {
			continue
		}

		var abandoned bool
		if err := s.repoManager.SessionRepository().UpdateSession(
			ctx, session.Id, func(sess *domain.Session) (*domain.Session, error) {
				// Re-check under the mutation: a joiner may have completed
				// the quorum since the scan.
				if !sess.IsAwaitingQuorum() || sess.Age(now) < s.sessionExpiry {
					return sess, nil
				}
				abandoned = sess.Abandon()
				return sess, nil
			},
		); err != nil {
			log.WithError(err).WithField("session", session.Id).
				Warn("failed to abandon expired session")
			continue
		}

		if abandoned {
			log.WithFields(log.Fields{
				"session":  session.Id,
				"sequence": session.SequenceNumber,
			}).Info("session abandoned after expiry")
		}
	}
}
