package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/escrow-network/escrow-daemon/internal/core/ports"
	dbbadger "github.com/escrow-network/escrow-daemon/internal/infrastructure/storage/db/badger"
)

func main() {
	app := cli.NewApp()

	app.Version = "0.1.0"
	app.Name = "escrow operator CLI"
	app.Usage = "Offline inspection of an escrowd datadir"
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:     "datadir",
			Usage:    "path to the escrowd data directory (daemon must be stopped)",
			Required: true,
		},
	}
	app.Commands = append(
		app.Commands,
		&listsessions,
		&sessioninfo,
		&counters,
	)

	if err := app.Run(os.Args); err != nil {
		fatal(err)
	}
}

func getRepoManager(ctx *cli.Context) (ports.RepoManager, func(), error) {
	dbDir := filepath.Join(ctx.String("datadir"), "db")
	if _, err := os.Stat(dbDir); err != nil {
		return nil, nil, fmt.Errorf("cannot open datadir: %w", err)
	}

	repoManager, err := dbbadger.NewRepoManager(dbDir, nil)
	if err != nil {
		return nil, nil, err
	}
	return repoManager, func() { repoManager.Close() }, nil
}

func printJSON(v interface{}) {
	buf, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fatal(err)
	}
	fmt.Println(string(buf))
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "[escrow] %v\n", err)
	os.Exit(1)
}
