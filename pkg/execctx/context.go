package execctx

import (
	"encoding/json"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// ExecutionContext is the root semantic container threaded through a
// single workflow run (§3, §4.1). Its zero value is not usable; construct
// with New.
type ExecutionContext struct {
	doc []byte
}

// New returns an empty ExecutionContext whose top level is a mapping.
func New() *ExecutionContext {
	return &ExecutionContext{doc: []byte("{}")}
}

// NewFromMap seeds an ExecutionContext from an already-decoded map, as
// done by the input mapper when it hands off to the executor (§6).
func NewFromMap(initial map[string]interface{}) (*ExecutionContext, error) {
	if initial == nil {
		return New(), nil
	}
	raw, err := json.Marshal(initial)
	if err != nil {
		return nil, err
	}
	return &ExecutionContext{doc: raw}, nil
}

// Put writes value at path, creating intermediate containers as needed
// (§4.1: "creates the required container, sequence if the next segment
// parses as a non-negative integer, else mapping"; "extends a sequence
// with nulls when setting an out-of-range index" — both behaviors are
// sjson.SetBytes's native semantics).
func (c *ExecutionContext) Put(path string, value interface{}) error {
	if path == "" {
		return ErrEmptyPath
	}
	next, err := sjson.SetBytes(c.doc, path, value)
	if err != nil {
		return err
	}
	c.doc = next
	return nil
}

// Get reads path, returning (value, true) if present, or (nil, false) if
// any intermediate segment is missing or traverses a non-container — the
// "absent" result distinguished from an explicit null (§4.1).
//
// containsKey(null) ambiguity (§9, preserved deliberately): gjson reports
// a JSON null as Exists()==true, so Get returns (nil, true) for an
// explicit null, making it indistinguishable here from a present null
// value — which is exactly the ambiguity spec §9 calls out.
func (c *ExecutionContext) Get(path string) (interface{}, bool) {
	if path == "" {
		return nil, false
	}
	res := gjson.GetBytes(c.doc, path)
	if !res.Exists() {
		return nil, false
	}
	return res.Value(), true
}

// ContainsKey reports whether Get(path) would yield a non-absent value.
func (c *ExecutionContext) ContainsKey(path string) bool {
	_, ok := c.Get(path)
	return ok
}

// Remove deletes the value at path and returns it, or (nil, false) if
// absent.
func (c *ExecutionContext) Remove(path string) (interface{}, bool) {
	val, ok := c.Get(path)
	if !ok {
		return nil, false
	}
	next, err := sjson.DeleteBytes(c.doc, path)
	if err != nil {
		return nil, false
	}
	c.doc = next
	return val, true
}

// DeepCopy returns an independent ExecutionContext; mutating the copy
// never affects the original and vice versa. Because the document is
// stored as a self-contained JSON byte slice, a byte-slice copy already
// satisfies the deep-copy invariant (§4.1): no nested mapping or sequence
// is shared between copies.
func (c *ExecutionContext) DeepCopy() *ExecutionContext {
	cp := make([]byte, len(c.doc))
	copy(cp, c.doc)
	return &ExecutionContext{doc: cp}
}

// AsMap decodes the context into a plain map, used to populate
// observability contextSnapshots (§3).
func (c *ExecutionContext) AsMap() map[string]interface{} {
	out := map[string]interface{}{}
	_ = json.Unmarshal(c.doc, &out)
	return out
}

// Raw returns the underlying JSON document. Callers must not mutate the
// returned slice.
func (c *ExecutionContext) Raw() []byte {
	return c.doc
}
