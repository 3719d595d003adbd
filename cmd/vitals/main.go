package main

import (
	"errors"
	"os"

	"github.com/felixgeelhaar/vitals/internal/infrastructure/cli"
	inframcp "github.com/felixgeelhaar/vitals/internal/infrastructure/mcp"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cli.RootCmd.Version = version
	inframcp.Version, inframcp.BuildCommit, inframcp.BuildDate = version, commit, date

	if err := cli.Execute(); err != nil {
		var cliErr *cli.CLIError
		if errors.As(err, &cliErr) {
			os.Exit(cliErr.ExitCode)
		}
		os.Exit(1)
	}
}
