package main

import (
	"context"

	"github.com/urfave/cli/v2"

	"github.com/escrow-network/escrow-daemon/internal/core/domain"
)

var counters = cli.Command{
	Name:   "counters",
	Usage:  "show the sequence counters per deal type",
	Action: countersAction,
}

func countersAction(ctx *cli.Context) error {
	repoManager, cleanup, err := getRepoManager(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	out := map[string]uint64{}
	for _, dealType := range []domain.DealType{
		domain.DealTypeP2P, domain.DealTypeOther,
	} {
		counter, err := repoManager.CounterRepository().GetCounter(
			context.Background(), dealType,
		)
		if err != nil {
			return err
		}
		out[dealType.String()] = counter.Next
	}

	printJSON(out)
	return nil
}
