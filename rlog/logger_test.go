package rlog_test

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nats-radio/flowcore/rlog"
)

func TestLinesCarrySeverityAndName(t *testing.T) {
	var buf bytes.Buffer
	l := rlog.New("fg-test", &buf, 0)
	l.Infof("starting %d blocks", 3)
	l.Warnf("slow reader")
	l.Errorf("kernel failed: %v", "boom")
	l.Stop()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	require.True(t, strings.HasPrefix(lines[0], "I "))
	require.True(t, strings.HasPrefix(lines[1], "W "))
	require.True(t, strings.HasPrefix(lines[2], "E "))
	require.Contains(t, lines[0], "[fg-test]")
	require.Contains(t, lines[0], "starting 3 blocks")
}

func TestSynchronousModeFlushesEveryLine(t *testing.T) {
	var buf bytes.Buffer
	l := rlog.New("x", &buf, 0)
	l.Infof("one")
	require.Contains(t, buf.String(), "one")
}

func TestStopIsIdempotent(t *testing.T) {
	var buf bytes.Buffer
	l := rlog.New("x", &buf, 0)
	l.Infof("bye")
	l.Stop()
	l.Stop()
	require.Contains(t, buf.String(), "bye")
}

func TestConcurrentWritersDoNotInterleave(t *testing.T) {
	var buf bytes.Buffer
	l := rlog.New("x", &buf, 0)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				l.Infof("wwwwwwwwwwwwwwwwwwwwwwww")
			}
		}()
	}
	wg.Wait()
	l.Stop()

	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		require.Contains(t, line, "wwwwwwwwwwwwwwwwwwwwwwww")
	}
}
