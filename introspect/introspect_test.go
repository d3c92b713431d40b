package introspect_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nats-radio/flowcore/introspect"
	"github.com/nats-radio/flowcore/port"
)

type fakeBlock struct {
	stream, message []port.Erased
}

func (f *fakeBlock) StreamPorts() []port.Erased  { return f.stream }
func (f *fakeBlock) MessagePorts() []port.Erased { return f.message }

func TestDescribeGroupsPortsByKind(t *testing.T) {
	b := &fakeBlock{
		stream: []port.Erased{
			port.NewStreamIn[float32]("in"),
			port.NewStreamOut[float32]("out"),
		},
		message: []port.Erased{
			port.NewMessageIn("freq", 1),
			port.NewMessageOut("status"),
		},
	}
	d := introspect.Describe("src0", "VectorSource", b)
	require.Equal(t, "src0", d.InstanceName)
	require.Equal(t, "VectorSource", d.TypeName)
	require.Equal(t, []introspect.PortDescription{{Name: "in", ElemType: "float32"}}, d.StreamIn)
	require.Equal(t, []introspect.PortDescription{{Name: "out", ElemType: "float32"}}, d.StreamOut)
	require.Equal(t, []string{"freq"}, d.MessageIn)
	require.Equal(t, []string{"status"}, d.MessageOut)
}

func TestBlockDescriptionRoundTrip(t *testing.T) {
	d := introspect.BlockDescription{
		InstanceName: "head0",
		TypeName:     "Head",
		StreamIn:     []introspect.PortDescription{{Name: "in", ElemType: "float32"}},
		StreamOut:    []introspect.PortDescription{{Name: "out", ElemType: "float32"}},
		MessageIn:    []string{"n"},
	}
	b, err := d.MarshalText()
	require.NoError(t, err)

	var got introspect.BlockDescription
	require.NoError(t, got.UnmarshalText(b))
	require.Equal(t, d, got)
}

func TestFlowgraphDescriptionRoundTrip(t *testing.T) {
	d := introspect.FlowgraphDescription{
		Id: "fg-1",
		Blocks: []introspect.BlockDescription{
			{InstanceName: "src0", TypeName: "NullSource"},
			{InstanceName: "snk0", TypeName: "VectorSink"},
		},
		StreamEdges: []introspect.StreamEdgeDescription{
			{FromBlock: "src0", FromPort: "out", ToBlock: "snk0", ToPort: "in"},
		},
		MessageEdges: []introspect.MessageEdgeDescription{
			{FromBlock: "src0", FromPort: "status", ToBlock: "snk0", ToPort: "ctrl"},
		},
	}
	b, err := d.MarshalText()
	require.NoError(t, err)

	var got introspect.FlowgraphDescription
	require.NoError(t, got.UnmarshalText(b))
	require.Equal(t, d, got)
}
