package main

import (
	"os"

	"github.com/nguyentantai21042004/minutes-flow/internal/cli"
	"github.com/nguyentantai21042004/minutes-flow/internal/output"
)

func main() {
	deps := &cli.Dependencies{}
	if err := cli.NewRootCmd(deps).Execute(); err != nil {
		formatter := output.NewFormatter(os.Stderr)
		formatter.Error(err.Error())
		os.Exit(1)
	}
}
