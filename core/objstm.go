package core

import (
	"golang.org/x/exp/slices"
)

// expandObjectStreams materializes the members of the given object
// stream containers into the table. Damage to a single container is
// reported and the container skipped; the other containers still load.
func expandObjectStreams(t *ObjectTable, containers map[int][]int) {
	rep := t.Reporter()

	nums := make([]int, 0, len(containers))
	for num := range containers {
		nums = append(nums, num)
	}
	slices.Sort(nums)

	for _, num := range nums {
		id := ObjectID{Number: num}
		obj := t.FindIndirect(id).Value()
		s, ok := obj.(*Stream)
		if !ok {
			rep.Errorf(0, "object stream %s is not a stream", id)
			continue
		}
		if typ, _ := s.Dict.GetName("Type"); typ != "ObjStm" {
			rep.Errorf(0, "object stream %s has type %q, expected /ObjStm", id, typ)
			continue
		}
		expandObjectStream(t, s)
	}
}

// expandObjectStream parses one container: a header of object-number
// and offset pairs, then the member objects themselves relative to the
// /First boundary. Members are stored as resolved values; they carry no
// endobj keyword and no streams of their own.
func expandObjectStream(t *ObjectTable, s *Stream) {
	rep := t.Reporter()
	data, err := s.Decoded()
	if err != nil {
		rep.Errorf(0, "cannot decode object stream %s: %v", s.ID, err)
		return
	}
	first, ok := s.Dict.GetInt("First")
	if !ok {
		rep.Errorf(0, "object stream %s missing /First", s.ID)
		return
	}

	lx := NewLexer(data)
	type member struct {
		num    int
		offset int
	}
	var members []member
	for {
		numTok := lx.NextTokenDefault()
		if numTok.Type != TokenInteger {
			break
		}
		offTok := lx.NextTokenDefault()
		if offTok.Type != TokenInteger {
			break
		}
		members = append(members, member{
			num:    atoiBytes(numTok.Value),
			offset: int(first) + atoiBytes(offTok.Value),
		})
	}

	p := NewParser(lx, t, rep)
	for _, m := range members {
		lx.Seek(m.offset)
		obj, err := p.ParseValue()
		if err != nil {
			rep.Errorf(m.offset, "cannot load object %d 0 from object stream %s: %v",
				m.num, s.ID, err)
			obj = Null{}
		}
		t.StoreResolved(ObjectID{Number: m.num}, obj)
	}
}
