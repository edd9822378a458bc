package dissect

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// implicitAppendSeed orders members of an append group that have no explicit
// position ahead of all explicitly positioned ones.
const implicitAppendSeed = math.MinInt32

type appendValue struct {
	order int
	value string
}

type association struct {
	name, value string
}

// results turns raw matches into the output field map. Plain keys are written
// first, then append groups, then associations; later writes win on collision.
func (p *Pattern) results(matches []rawMatch) map[string]string {
	out := make(map[string]string, len(matches))
	if !p.needsPostProcessing {
		for _, m := range matches {
			if !m.key.IsSkip() {
				out[m.key.Name()] = m.value
			}
		}
		return out
	}

	var (
		groups      = make(map[string][]appendValue)
		groupOrder  []string
		refs        = make(map[string]*association)
		refOrder    []string
		implicitPos = implicitAppendSeed
	)

	addToGroup := func(name string, order int, value string) {
		if _, ok := groups[name]; !ok {
			groupOrder = append(groupOrder, name)
		}
		groups[name] = append(groups[name], appendValue{order: order, value: value})
	}
	refFor := func(name string) *association {
		ref, ok := refs[name]
		if !ok {
			ref = &association{}
			refs[name] = ref
			refOrder = append(refOrder, name)
		}
		return ref
	}

	for _, m := range matches {
		key := m.key
		if key.IsSkip() {
			continue
		}
		switch key.Modifier() {
		case ModifierNone:
			if _, ok := p.appendNames[key.Name()]; ok {
				addToGroup(key.Name(), implicitPos, m.value)
				implicitPos++
				continue
			}
			out[key.Name()] = m.value
		case ModifierAppend:
			addToGroup(key.Name(), implicitPos, m.value)
			implicitPos++
		case ModifierAppendWithOrder:
			pos, _ := key.AppendPosition()
			addToGroup(key.Name(), pos, m.value)
		case ModifierFieldName:
			refFor(key.Name()).name = m.value
		case ModifierFieldValue:
			refFor(key.Name()).value = m.value
		default:
			panic(fmt.Sprintf("dissect: unknown modifier %d", int(key.Modifier())))
		}
	}

	for _, name := range groupOrder {
		members := groups[name]
		sort.SliceStable(members, func(i, j int) bool {
			return members[i].order < members[j].order
		})
		values := make([]string, len(members))
		for i, member := range members {
			values[i] = member.value
		}
		out[name] = strings.Join(values, p.appendSeparator)
	}

	for _, name := range refOrder {
		ref := refs[name]
		out[ref.name] = ref.value
	}

	return out
}
