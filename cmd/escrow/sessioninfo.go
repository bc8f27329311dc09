package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/escrow-network/escrow-daemon/internal/core/domain"
)

var sessioninfo = cli.Command{
	Name:      "sessioninfo",
	Usage:     "show the full record of one session",
	ArgsUsage: "<session id>",
	Action:    sessionInfoAction,
}

type settlementView struct {
	Address   string `json:"address"`
	SetBy     string `json:"set_by"`
	Timestamp int64  `json:"timestamp"`
}

type sessionView struct {
	sessionSummary
	CreatorId   string                    `json:"creator_id"`
	Members     []string                  `json:"members"`
	Observers   []string                  `json:"observers,omitempty"`
	Roles       map[string]string         `json:"roles,omitempty"`
	Settlements map[string]settlementView `json:"settlements,omitempty"`
	UpdatedAt   int64                     `json:"updated_at"`
	AbandonedAt int64                     `json:"abandoned_at,omitempty"`
}

func sessionInfoAction(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return fmt.Errorf("exactly one session id is required")
	}
	sessionId := ctx.Args().First()

	repoManager, cleanup, err := getRepoManager(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	session, err := repoManager.SessionRepository().GetSession(
		context.Background(), sessionId,
	)
	if err != nil {
		return err
	}

	printJSON(toSessionView(session))
	return nil
}

func toSessionView(s *domain.Session) sessionView {
	view := sessionView{
		sessionSummary: sessionSummary{
			Id:             s.Id,
			DealType:       s.DealType.String(),
			SequenceNumber: s.SequenceNumber,
			Status:         statusString(s),
			Participants:   len(s.Participants),
			InviteOpen:     s.InviteOpen,
			CreatedAt:      s.CreatedAt,
		},
		CreatorId:   s.CreatorId,
		Members:     s.Participants,
		Observers:   s.Observers,
		UpdatedAt:   s.UpdatedAt,
		AbandonedAt: s.AbandonedAt,
	}

	if len(s.Roles) > 0 {
		view.Roles = make(map[string]string, len(s.Roles))
		for role, holder := range s.Roles {
			view.Roles[string(role)] = holder
		}
	}
	if len(s.Settlements) > 0 {
		view.Settlements = make(map[string]settlementView, len(s.Settlements))
		for role, settlement := range s.Settlements {
			view.Settlements[string(role)] = settlementView{
				Address:   settlement.Address,
				SetBy:     settlement.SetBy,
				Timestamp: settlement.Timestamp,
			}
		}
	}
	return view
}
