package core

import (
	"fmt"

	"github.com/vellumpdf/vellum/internal/filters"
)

// Decoded returns the stream body with its /Filter chain applied. The
// result is cached on the stream; the raw bytes are left untouched.
func (s *Stream) Decoded() ([]byte, error) {
	if s.decoded != nil {
		return s.decoded, nil
	}
	names, parms, err := s.filterChain()
	if err != nil {
		return nil, err
	}
	data := s.Raw
	for i, name := range names {
		data, err = filters.Decode(name, data, parms[i])
		if err != nil {
			return nil, fmt.Errorf("decoding stream %s: %w", s.ID, err)
		}
	}
	s.decoded = data
	return data, nil
}

// filterChain normalizes /Filter and /DecodeParms, which may each be a
// single value or an array, into parallel slices.
func (s *Stream) filterChain() ([]string, []filters.Params, error) {
	var names []string
	switch f := Deref(s.Dict.Get("Filter")).(type) {
	case nil, Null:
	case Name:
		names = []string{string(f)}
	case Array:
		for i := range f {
			n, ok := f.Get(i).(Name)
			if !ok {
				return nil, nil, fmt.Errorf("stream %s: /Filter entry %d is not a name", s.ID, i)
			}
			names = append(names, string(n))
		}
	default:
		return nil, nil, fmt.Errorf("stream %s: /Filter is not a name or array", s.ID)
	}

	parms := make([]filters.Params, len(names))
	switch dp := Deref(s.Dict.Get("DecodeParms")).(type) {
	case Dict:
		if len(parms) > 0 {
			parms[0] = filterParams(dp)
		}
	case Array:
		for i := 0; i < len(dp) && i < len(parms); i++ {
			if d, ok := dp.Get(i).(Dict); ok {
				parms[i] = filterParams(d)
			}
		}
	}
	return names, parms, nil
}

func filterParams(d Dict) filters.Params {
	p := make(filters.Params)
	for _, key := range d.Keys() {
		if n, ok := d.GetInt(key); ok {
			p[key] = int(n)
		}
	}
	return p
}

// UncompressAll resolves every known object and replaces each stream
// body with its decoded form, dropping the filter entries. A stream
// that fails to decode keeps its raw bytes and gets a warning.
func UncompressAll(t *ObjectTable) {
	t.ResolveAll()
	for _, id := range t.IDs() {
		ind, ok := t.indirects[id]
		if !ok {
			continue
		}
		v, ok := ind.Resolved()
		if !ok {
			continue
		}
		s, ok := v.(*Stream)
		if !ok || !s.Dict.Has("Filter") {
			continue
		}
		decoded, err := s.Decoded()
		if err != nil {
			t.rep.Warnf(0, "cannot decompress stream %s: %v", id, err)
			continue
		}
		s.Raw = decoded
		s.decoded = decoded
		s.Dict.Delete("Filter")
		s.Dict.Delete("DecodeParms")
		s.Dict["Length"] = Int(len(decoded))
	}
}
