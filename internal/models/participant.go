package models

import (
	"errors"
	"fmt"
	"strings"
)

// Participant is a person sharing expenses, identified by name.
type Participant string

// ParticipantSet is the ordered set of participants known at configuration
// time. Order is significant: the first participant absorbs rounding drift
// in even splits.
type ParticipantSet struct {
	names []Participant
	index map[Participant]int
}

// NewParticipantSet builds a set from names, preserving order.
// Names are trimmed; blank and duplicate names are rejected.
func NewParticipantSet(names ...string) (ParticipantSet, error) {
	if len(names) == 0 {
		return ParticipantSet{}, errors.New("at least one participant is required")
	}

	set := ParticipantSet{
		names: make([]Participant, 0, len(names)),
		index: make(map[Participant]int, len(names)),
	}
	for _, raw := range names {
		name := Participant(strings.TrimSpace(raw))
		if name == "" {
			return ParticipantSet{}, errors.New("participant name cannot be blank")
		}
		if _, dup := set.index[name]; dup {
			return ParticipantSet{}, fmt.Errorf("duplicate participant: %s", name)
		}
		set.index[name] = len(set.names)
		set.names = append(set.names, name)
	}
	return set, nil
}

// MustParticipantSet is like NewParticipantSet but panics on error.
// Intended for tests and static configuration.
func MustParticipantSet(names ...string) ParticipantSet {
	set, err := NewParticipantSet(names...)
	if err != nil {
		panic(err)
	}
	return set
}

// Contains reports whether p is a member of the set.
func (s ParticipantSet) Contains(p Participant) bool {
	_, ok := s.index[p]
	return ok
}

// Members returns the participants in enumeration order.
func (s ParticipantSet) Members() []Participant {
	out := make([]Participant, len(s.names))
	copy(out, s.names)
	return out
}

// Strings returns the participant names in enumeration order.
func (s ParticipantSet) Strings() []string {
	out := make([]string, len(s.names))
	for i, p := range s.names {
		out[i] = string(p)
	}
	return out
}

// Len returns the number of participants.
func (s ParticipantSet) Len() int {
	return len(s.names)
}

// Position returns the enumeration index of p, or -1 if p is not a member.
func (s ParticipantSet) Position(p Participant) int {
	if i, ok := s.index[p]; ok {
		return i
	}
	return -1
}
