package introspect

import jsoniter "github.com/json-iterator/go"

// json uses the same jsoniter configuration as package pmt's codec
// (spec §6 names JSON as the wire format and defines no separate
// introspection format, so description types round-trip through the
// identical machinery).
var json = jsoniter.ConfigCompatibleWithStandardLibrary

// plainBlock and plainFlowgraph carry the same fields without the
// text-marshaling methods, so encoding them does not re-enter
// MarshalText/UnmarshalText.
type (
	plainBlock     BlockDescription
	plainFlowgraph FlowgraphDescription
)

func (d BlockDescription) MarshalText() ([]byte, error)      { return json.Marshal(plainBlock(d)) }
func (d *BlockDescription) UnmarshalText(b []byte) error     { return json.Unmarshal(b, (*plainBlock)(d)) }
func (d FlowgraphDescription) MarshalText() ([]byte, error)  { return json.Marshal(plainFlowgraph(d)) }
func (d *FlowgraphDescription) UnmarshalText(b []byte) error { return json.Unmarshal(b, (*plainFlowgraph)(d)) }
