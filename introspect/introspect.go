// Package introspect implements the pure-data description types of
// spec §4.6 and their JSON round-trip, read directly off a
// block.Block/flowgraph construction rather than duplicated state kept
// in sync by hand.
package introspect

import "github.com/nats-radio/flowcore/port"

// PortDescription names one stream port and the Go type flowing
// through it (spec §4.6: "element type tags").
type PortDescription struct {
	Name     string `json:"name"`
	ElemType string `json:"elem_type"`
}

// BlockDescription is spec §4.6's per-block description: instance
// name, type name, and every port grouped by kind.
type BlockDescription struct {
	InstanceName string            `json:"instance_name"`
	TypeName     string            `json:"type_name"`
	StreamIn     []PortDescription `json:"stream_in"`
	StreamOut    []PortDescription `json:"stream_out"`
	MessageIn    []string          `json:"message_in"`
	MessageOut   []string          `json:"message_out"`
}

// describable is the minimal surface introspect needs from a
// block.Block, avoided as a direct dependency so this package stays
// free to describe anything with ports, not just block.Block.
type describable interface {
	StreamPorts() []port.Erased
	MessagePorts() []port.Erased
}

// Describe builds a BlockDescription from a block's registries.
func Describe(instanceName, typeName string, b describable) BlockDescription {
	d := BlockDescription{InstanceName: instanceName, TypeName: typeName}
	for _, p := range b.StreamPorts() {
		pd := PortDescription{Name: p.Descriptor().Name}
		if t := p.Descriptor().ElemType; t != nil {
			pd.ElemType = t.String()
		}
		switch p.Descriptor().Kind {
		case port.KindStreamIn:
			d.StreamIn = append(d.StreamIn, pd)
		case port.KindStreamOut:
			d.StreamOut = append(d.StreamOut, pd)
		}
	}
	for _, p := range b.MessagePorts() {
		switch p.Descriptor().Kind {
		case port.KindMessageIn:
			d.MessageIn = append(d.MessageIn, p.Descriptor().Name)
		case port.KindMessageOut:
			d.MessageOut = append(d.MessageOut, p.Descriptor().Name)
		}
	}
	return d
}

// StreamEdgeDescription names one resolved stream edge by
// (block, port) pairs on each side.
type StreamEdgeDescription struct {
	FromBlock string `json:"from_block"`
	FromPort  string `json:"from_port"`
	ToBlock   string `json:"to_block"`
	ToPort    string `json:"to_port"`
}

// MessageEdgeDescription names one resolved message edge.
type MessageEdgeDescription struct {
	FromBlock string `json:"from_block"`
	FromPort  string `json:"from_port"`
	ToBlock   string `json:"to_block"`
	ToPort    string `json:"to_port"`
}

// FlowgraphDescription is spec §4.6's whole-graph description: ordered
// blocks plus both edge lists.
type FlowgraphDescription struct {
	Id           string                   `json:"id"`
	Blocks       []BlockDescription       `json:"blocks"`
	StreamEdges  []StreamEdgeDescription  `json:"stream_edges"`
	MessageEdges []MessageEdgeDescription `json:"message_edges"`
}
