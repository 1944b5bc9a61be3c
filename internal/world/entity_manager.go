package world

import (
	"github.com/sasha-s/go-deadlock"
)

// Group tags a set of entities.
type Group uint8

const (
	GroupEverything Group = iota
	GroupPlayers
	groupCount
)

func (g Group) String() string {
	switch g {
	case GroupEverything:
		return "everything"
	case GroupPlayers:
		return "players"
	default:
		return "unknown"
	}
}

// ParseGroup is the inverse of Group.String.
func ParseGroup(s string) (Group, bool) {
	for g := range groupCount {
		if g.String() == s {
			return g, true
		}
	}
	return 0, false
}

// EntityGroups keeps entities in insertion order per group. Every entity
// is a member of GroupEverything.
type EntityGroups struct {
	groups [groupCount][]Entity
	mu     deadlock.RWMutex
}

// NewEntityGroups creates empty groups.
func NewEntityGroups() *EntityGroups {
	return &EntityGroups{}
}

// Add registers e under group and under GroupEverything.
func (eg *EntityGroups) Add(group Group, e Entity) {
	eg.mu.Lock()
	defer eg.mu.Unlock()
	eg.groups[GroupEverything] = append(eg.groups[GroupEverything], e)
	if group != GroupEverything && group < groupCount {
		eg.groups[group] = append(eg.groups[group], e)
	}
}

// Group returns a copy of the members of g.
func (eg *EntityGroups) Group(g Group) []Entity {
	if g >= groupCount {
		return nil
	}
	eg.mu.RLock()
	defer eg.mu.RUnlock()

	result := make([]Entity, len(eg.groups[g]))
	copy(result, eg.groups[g])
	return result
}

// GroupsOf lists the groups e belongs to, GroupEverything first.
func (eg *EntityGroups) GroupsOf(e Entity) []Group {
	eg.mu.RLock()
	defer eg.mu.RUnlock()
	var out []Group
	for g := range groupCount {
		for _, m := range eg.groups[g] {
			if m == e {
				out = append(out, g)
				break
			}
		}
	}
	return out
}

// Len returns the number of distinct entities.
func (eg *EntityGroups) Len() int {
	eg.mu.RLock()
	defer eg.mu.RUnlock()
	return len(eg.groups[GroupEverything])
}
