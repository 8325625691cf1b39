package filters

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// PrincipalKind tags the shape of a principal selection.
type PrincipalKind int

const (
	PrincipalAll PrincipalKind = iota
	PrincipalSingle
	PrincipalMultiple
)

// AllValue is the sentinel accepted wherever "no restriction" is meant.
const AllValue = "all"

// PrincipalSelection is either all principals, a single one, or a set of them.
// The zero value selects all principals.
type PrincipalSelection struct {
	kind PrincipalKind
	ids  []string
}

// AllPrincipals selects every principal.
func AllPrincipals() PrincipalSelection {
	return PrincipalSelection{}
}

// SinglePrincipal selects one principal. An empty or "all" id selects all.
func SinglePrincipal(id string) PrincipalSelection {
	id = strings.TrimSpace(id)
	if id == "" || id == AllValue {
		return AllPrincipals()
	}
	return PrincipalSelection{kind: PrincipalSingle, ids: []string{id}}
}

// MultiplePrincipals selects a set of principals. The set is sorted and de-duplicated;
// it collapses to Single or All when fewer than two ids remain.
func MultiplePrincipals(ids ...string) PrincipalSelection {
	set := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if id == AllValue {
			return AllPrincipals()
		}
		set = append(set, id)
	}
	slices.Sort(set)
	set = slices.Compact(set)

	switch len(set) {
	case 0:
		return AllPrincipals()
	case 1:
		return SinglePrincipal(set[0])
	}
	return PrincipalSelection{kind: PrincipalMultiple, ids: set}
}

func (p PrincipalSelection) Kind() PrincipalKind { return p.kind }

// IDs returns a copy of the selected ids; nil for All.
func (p PrincipalSelection) IDs() []string {
	if p.kind == PrincipalAll {
		return nil
	}
	return slices.Clone(p.ids)
}

// Matches reports whether the entity owned by id is selected.
func (p PrincipalSelection) Matches(id string) bool {
	if p.kind == PrincipalAll {
		return true
	}
	return slices.Contains(p.ids, id)
}

func (p PrincipalSelection) Equal(o PrincipalSelection) bool {
	return p.kind == o.kind && slices.Equal(p.ids, o.ids)
}

func (p PrincipalSelection) String() string {
	switch p.kind {
	case PrincipalSingle:
		return p.ids[0]
	case PrincipalMultiple:
		return strings.Join(p.ids, ",")
	}
	return AllValue
}

// MarshalJSON encodes All as "all", Single as its id and Multiple as an array.
func (p PrincipalSelection) MarshalJSON() ([]byte, error) {
	switch p.kind {
	case PrincipalSingle:
		return json.Marshal(p.ids[0])
	case PrincipalMultiple:
		return json.Marshal(p.ids)
	}
	return json.Marshal(AllValue)
}

func (p *PrincipalSelection) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*p = SinglePrincipal(single)
		return nil
	}

	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("%w: principal must be a string or an array of strings", ErrInvalidValue)
	}
	*p = MultiplePrincipals(many...)
	return nil
}
