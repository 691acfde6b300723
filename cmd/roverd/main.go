package main

//go-build: CGO_ENABLED=0

import (
	"flag"

	"github.com/golang/glog"

	fx "github.com/robotalks/openrover/pkg/framework"
	"github.com/robotalks/openrover/pkg/rover"
)

func init() {
	rover.SetupFlags()
}

func main() {
	flag.Parse()
	defer glog.Flush()

	r, err := rover.NewConfig().NewRover()
	if err != nil {
		glog.Exit(err)
	}
	err = fx.NewRunner().HandleSignals().Go(r).Wait()
	r.Close()
	if err != nil {
		glog.Exit(err)
	}
}
