package main

//go-build: CGO_ENABLED=0

import (
	"flag"
	"os"

	"github.com/golang/glog"

	"github.com/robotalks/openrover/pkg/cli"
)

func main() {
	// glog requires flag.Parse before logging; cobra parses the real args.
	flag.CommandLine.Parse(nil)
	err := cli.Execute()
	glog.Flush()
	if err != nil {
		os.Exit(1)
	}
}
