package main

import (
	"context"

	"github.com/urfave/cli/v2"

	"github.com/escrow-network/escrow-daemon/internal/core/domain"
)

var listsessions = cli.Command{
	Name:   "listsessions",
	Usage:  "list all stored sessions",
	Action: listSessionsAction,
}

type sessionSummary struct {
	Id             string `json:"id"`
	DealType       string `json:"deal_type"`
	SequenceNumber uint64 `json:"sequence_number"`
	Status         string `json:"status"`
	Participants   int    `json:"participants"`
	InviteOpen     bool   `json:"invite_open"`
	CreatedAt      int64  `json:"created_at"`
}

func listSessionsAction(ctx *cli.Context) error {
	repoManager, cleanup, err := getRepoManager(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	sessions, err := repoManager.SessionRepository().GetAllSessions(
		context.Background(),
	)
	if err != nil {
		return err
	}

	summaries := make([]sessionSummary, 0, len(sessions))
	for _, s := range sessions {
		summaries = append(summaries, sessionSummary{
			Id:             s.Id,
			DealType:       s.DealType.String(),
			SequenceNumber: s.SequenceNumber,
			Status:         statusString(s),
			Participants:   len(s.Participants),
			InviteOpen:     s.InviteOpen,
			CreatedAt:      s.CreatedAt,
		})
	}

	printJSON(summaries)
	return nil
}

func statusString(s *domain.Session) string {
	if s.IsAbandoned() {
		return "abandoned"
	}
	switch s.Status.Code {
	case domain.SessionStatusCodeAwaitingQuorum:
		return "awaiting_quorum"
	case domain.SessionStatusCodeRoleSelectionOpen:
		return "role_selection_open"
	case domain.SessionStatusCodeSettlementPending:
		return "settlement_pending"
	case domain.SessionStatusCodeEscrowReady:
		return "escrow_ready"
	default:
		return "undefined"
	}
}
