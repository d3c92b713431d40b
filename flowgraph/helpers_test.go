package flowgraph_test

import (
	"io"

	"github.com/nats-radio/flowcore/instrument"
	"github.com/nats-radio/flowcore/rconfig"
	"github.com/nats-radio/flowcore/rlog"
)

// newEnv builds the ambient logger/instrumentation pair every block
// in these scenarios needs, discarding log output so test runs stay
// quiet.
func newEnv() (*rlog.Logger, *instrument.Registry) {
	return rlog.New("scenario", io.Discard, 0), instrument.NewRegistry(false)
}

func testConfig() rconfig.Config {
	cfg := rconfig.Default()
	cfg.HousekeepInterval = 0
	return cfg
}
