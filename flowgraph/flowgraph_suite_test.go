// Package flowgraph_test exercises the end-to-end scenarios of
// spec §8 (S1, S2, S3, S4, S5, S6) against a running flowgraph, built
// from the fixture kernels in internal/testblocks.
package flowgraph_test

import (
	"testing"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

func TestFlowgraph(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, t.Name())
}
