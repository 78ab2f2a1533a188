package domain

import "strings"

// MappingSet indexes one carrier's status mappings by lowercased raw
// status for batch classification over deal history.
type MappingSet struct {
	byRaw map[string]StatusMapping
}

func NewMappingSet(mappings []StatusMapping) MappingSet {
	set := MappingSet{byRaw: make(map[string]StatusMapping, len(mappings))}
	for _, mapping := range mappings {
		set.byRaw[strings.ToLower(mapping.RawStatus)] = mapping
	}
	return set
}

// Resolve returns the mapping for a raw status, nil when unmapped.
func (s MappingSet) Resolve(rawStatus string) *StatusMapping {
	if s.byRaw == nil {
		return nil
	}
	mapping, ok := s.byRaw[strings.ToLower(strings.TrimSpace(rawStatus))]
	if !ok {
		return nil
	}
	return &mapping
}
