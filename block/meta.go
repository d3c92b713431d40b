package block

import (
	"github.com/nats-radio/flowcore/instrument"
	"github.com/nats-radio/flowcore/rlog"
)

// Meta carries the non-port, non-kernel state named in spec §3: display
// name, instance name, the `blocking` hint of §4.2, plus the ambient
// logger/counters this block logs and instruments through.
type Meta struct {
	DisplayName  string
	InstanceName string
	Blocking     bool

	Log      *rlog.Logger
	Counters *instrument.BlockCounters
}
