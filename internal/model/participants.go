package model

import (
	"encoding/json"
	"slices"
)

// ParticipantSet is a set of user ids with O(1) membership tests that also
// remembers insertion order for display. The zero value is an empty set.
type ParticipantSet struct {
	order []uint
	index map[uint]struct{}
}

// NewParticipantSet builds a set from ids, dropping duplicates and keeping
// the first occurrence's position.
func NewParticipantSet(ids ...uint) ParticipantSet {
	s := ParticipantSet{index: make(map[uint]struct{}, len(ids))}
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

func (s ParticipantSet) Has(id uint) bool {
	_, ok := s.index[id]
	return ok
}

// Add inserts id and reports whether it was absent.
func (s *ParticipantSet) Add(id uint) bool {
	if s.Has(id) {
		return false
	}
	if s.index == nil {
		s.index = make(map[uint]struct{})
	}
	s.index[id] = struct{}{}
	s.order = append(s.order, id)
	return true
}

// Remove deletes id and reports whether it was present.
func (s *ParticipantSet) Remove(id uint) bool {
	if !s.Has(id) {
		return false
	}
	delete(s.index, id)
	s.order = slices.DeleteFunc(s.order, func(v uint) bool { return v == id })
	return true
}

func (s ParticipantSet) Len() int {
	return len(s.order)
}

// IDs returns the members in display order. The slice is a copy.
func (s ParticipantSet) IDs() []uint {
	return slices.Clone(s.order)
}

// Equal reports whether the set holds exactly the given ids, ignoring order
// and duplicates in ids.
func (s ParticipantSet) Equal(ids ...uint) bool {
	other := NewParticipantSet(ids...)
	if other.Len() != s.Len() {
		return false
	}
	for _, id := range other.order {
		if !s.Has(id) {
			return false
		}
	}
	return true
}

// Without returns the members other than id, in display order.
func (s ParticipantSet) Without(id uint) []uint {
	out := make([]uint, 0, len(s.order))
	for _, v := range s.order {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func (s ParticipantSet) MarshalJSON() ([]byte, error) {
	if s.order == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(s.order)
}

func (s *ParticipantSet) UnmarshalJSON(data []byte) error {
	var ids []uint
	if err := json.Unmarshal(data, &ids); err != nil {
		return err
	}
	*s = NewParticipantSet(ids...)
	return nil
}
