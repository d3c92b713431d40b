package pmt

import (
	"bytes"
	"encoding/base64"
	stdjson "encoding/json"
	"fmt"
	"strconv"

	jsoniter "github.com/json-iterator/go"
)

// json is the shared jsoniter configuration, matching the
// teacher's own choice (stats/common_statsd.go) of
// ConfigCompatibleWithStandardLibrary so that struct-tag semantics
// stay identical to encoding/json for any embedding application.
var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ToJSON implements the Pmt JSON encoding of spec §6: scalar variants
// are `{"<Variant>": value}` objects; Null/Ok/InvalidValue/Finished
// are bare JSON strings. Any never serializes.
func ToJSON(p Pmt) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeJSON(&buf, p); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeJSON(buf *bytes.Buffer, p Pmt) error {
	switch p.kind {
	case KindNull, KindOk, KindInvalidValue, KindFinished:
		return encodeLeaf(buf, p.kind.String())
	case KindBool:
		return wrapScalar(buf, "Bool", p.b)
	case KindU32:
		return wrapScalar(buf, "U32", uint32(p.n))
	case KindU64:
		return wrapScalar(buf, "U64", p.n)
	case KindUsize:
		return wrapScalar(buf, "Usize", p.n)
	case KindF32:
		return wrapScalar(buf, "F32", float32(p.f))
	case KindF64:
		return wrapScalar(buf, "F64", p.f)
	case KindString:
		return wrapScalar(buf, "String", p.s)
	case KindBlob:
		return wrapScalar(buf, "Blob", base64.StdEncoding.EncodeToString(p.blob))
	case KindVecF32:
		buf.WriteString(`{"VecF32":`)
		if err := encodeLeaf(buf, p.vf32); err != nil {
			return err
		}
		buf.WriteByte('}')
		return nil
	case KindVecU64:
		buf.WriteString(`{"VecU64":`)
		if err := encodeLeaf(buf, p.vu64); err != nil {
			return err
		}
		buf.WriteByte('}')
		return nil
	case KindVecPmt:
		buf.WriteString(`{"VecPmt":[`)
		for i, v := range p.vpmt {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSON(buf, v); err != nil {
				return err
			}
		}
		buf.WriteString(`]}`)
		return nil
	case KindMapStrPmt:
		buf.WriteString(`{"MapStrPmt":{`)
		first := true
		var err error
		p.m.Range(func(key string, v Pmt) bool {
			if !first {
				buf.WriteByte(',')
			}
			first = false
			if err = encodeLeaf(buf, key); err != nil {
				return false
			}
			buf.WriteByte(':')
			err = writeJSON(buf, v)
			return err == nil
		})
		if err != nil {
			return err
		}
		buf.WriteString(`}}`)
		return nil
	case KindAny:
		return fmt.Errorf("pmt: Any does not serialize to JSON")
	}
	return fmt.Errorf("pmt: unknown kind %v", p.kind)
}

func wrapScalar(buf *bytes.Buffer, variant string, v any) error {
	buf.WriteByte('{')
	if err := encodeLeaf(buf, variant); err != nil {
		return err
	}
	buf.WriteByte(':')
	if err := encodeLeaf(buf, v); err != nil {
		return err
	}
	buf.WriteByte('}')
	return nil
}

func encodeLeaf(buf *bytes.Buffer, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	buf.Write(b)
	return nil
}

// FromJSON parses the encoding produced by ToJSON, plus the lenient
// forms spec §6 calls out explicitly (a bare string for String).
func FromJSON(data []byte) (Pmt, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return Pmt{}, err
	}
	return fromAny(v)
}

func fromAny(v any) (Pmt, error) {
	switch t := v.(type) {
	case string:
		switch t {
		case "Null":
			return Null(), nil
		case "Ok":
			return Ok(), nil
		case "InvalidValue":
			return InvalidValue(), nil
		case "Finished":
			return Finished(), nil
		default:
			return String(t), nil
		}
	case map[string]any:
		if len(t) != 1 {
			return Pmt{}, fmt.Errorf("pmt: object must have exactly one variant key, got %d", len(t))
		}
		for variant, raw := range t {
			return fromVariant(variant, raw)
		}
	}
	return Pmt{}, fmt.Errorf("pmt: unsupported JSON shape %T", v)
}

func fromVariant(variant string, raw any) (Pmt, error) {
	switch variant {
	case "Bool":
		b, ok := raw.(bool)
		if !ok {
			return Pmt{}, fmt.Errorf("pmt: Bool expects a JSON boolean")
		}
		return Bool(b), nil
	case "U32":
		n, err := jsonUint(raw)
		if err != nil {
			return Pmt{}, err
		}
		return U32(uint32(n)), nil
	case "U64":
		n, err := jsonUint(raw)
		if err != nil {
			return Pmt{}, err
		}
		return U64(n), nil
	case "Usize":
		n, err := jsonUint(raw)
		if err != nil {
			return Pmt{}, err
		}
		return Usize(n), nil
	case "F32":
		f, err := jsonFloat(raw)
		if err != nil {
			return Pmt{}, err
		}
		return F32(float32(f)), nil
	case "F64":
		f, err := jsonFloat(raw)
		if err != nil {
			return Pmt{}, err
		}
		return F64(f), nil
	case "String":
		s, ok := raw.(string)
		if !ok {
			return Pmt{}, fmt.Errorf("pmt: String expects a JSON string")
		}
		return String(s), nil
	case "Blob":
		s, ok := raw.(string)
		if !ok {
			return Pmt{}, fmt.Errorf("pmt: Blob expects a base64 JSON string")
		}
		b, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return Pmt{}, err
		}
		return Blob(b), nil
	case "VecF32":
		arr, ok := raw.([]any)
		if !ok {
			return Pmt{}, fmt.Errorf("pmt: VecF32 expects a JSON array")
		}
		out := make([]float32, len(arr))
		for i, e := range arr {
			f, err := jsonFloat(e)
			if err != nil {
				return Pmt{}, err
			}
			out[i] = float32(f)
		}
		return VecF32(out), nil
	case "VecU64":
		arr, ok := raw.([]any)
		if !ok {
			return Pmt{}, fmt.Errorf("pmt: VecU64 expects a JSON array")
		}
		out := make([]uint64, len(arr))
		for i, e := range arr {
			n, err := jsonUint(e)
			if err != nil {
				return Pmt{}, err
			}
			out[i] = n
		}
		return VecU64(out), nil
	case "VecPmt":
		arr, ok := raw.([]any)
		if !ok {
			return Pmt{}, fmt.Errorf("pmt: VecPmt expects a JSON array")
		}
		out := make([]Pmt, len(arr))
		for i, e := range arr {
			p, err := fromAny(e)
			if err != nil {
				return Pmt{}, err
			}
			out[i] = p
		}
		return VecPmt(out), nil
	case "MapStrPmt":
		obj, ok := raw.(map[string]any)
		if !ok {
			return Pmt{}, fmt.Errorf("pmt: MapStrPmt expects a JSON object")
		}
		m := NewOrderedMap()
		for k, e := range obj {
			p, err := fromAny(e)
			if err != nil {
				return Pmt{}, err
			}
			m.Set(k, p)
		}
		return MapStrPmt(m), nil
	case "Any":
		return Pmt{}, fmt.Errorf("pmt: Any does not deserialize from JSON")
	}
	return Pmt{}, fmt.Errorf("pmt: unknown variant %q", variant)
}

func jsonUint(v any) (uint64, error) {
	switch n := v.(type) {
	case jsoniter.Number:
		return strconv.ParseUint(n.String(), 10, 64)
	case stdjson.Number:
		return strconv.ParseUint(n.String(), 10, 64)
	case float64:
		return uint64(n), nil
	}
	return 0, fmt.Errorf("pmt: expected a JSON number, got %T", v)
}

func jsonFloat(v any) (float64, error) {
	switch n := v.(type) {
	case jsoniter.Number:
		return strconv.ParseFloat(n.String(), 64)
	case stdjson.Number:
		return strconv.ParseFloat(n.String(), 64)
	case float64:
		return n, nil
	}
	return 0, fmt.Errorf("pmt: expected a JSON number, got %T", v)
}
