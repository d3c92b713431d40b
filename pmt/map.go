package pmt

// OrderedMap implements the ordered string→Pmt mapping backing
// MapStrPmt (spec §3). Insertion order is preserved on iteration;
// re-setting an existing key keeps its original position, matching
// the teacher's own preference for deterministic, insertion-ordered
// output wherever a stable wire format matters (e.g. introspection).
type OrderedMap struct {
	keys   []string
	values map[string]Pmt
}

func NewOrderedMap() *OrderedMap {
	return &OrderedMap{values: make(map[string]Pmt)}
}

func (m *OrderedMap) Set(key string, v Pmt) {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = v
}

func (m *OrderedMap) Get(key string) (Pmt, bool) {
	v, ok := m.values[key]
	return v, ok
}

func (m *OrderedMap) Delete(key string) {
	if _, ok := m.values[key]; !ok {
		return
	}
	delete(m.values, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
}

func (m *OrderedMap) Len() int { return len(m.keys) }

func (m *OrderedMap) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

func (m *OrderedMap) Range(f func(key string, v Pmt) bool) {
	for _, k := range m.keys {
		if !f(k, m.values[k]) {
			return
		}
	}
}

func (m *OrderedMap) Equal(o *OrderedMap) bool {
	if m == nil || o == nil {
		return m == o
	}
	if m.Len() != o.Len() {
		return false
	}
	for _, k := range m.keys {
		ov, ok := o.values[k]
		if !ok || !m.values[k].Equal(ov) {
			return false
		}
	}
	return true
}
