package ledger

import "github.com/kosztorapp/kosztor/internal/model"

// DropTarget identifies where a moved element landed. Exactly one
// variant applies per move gesture; resolve it once, then dispatch.
type DropTarget struct {
	kind      dropKind
	groupID   int
	elementID string
}

type dropKind int

const (
	dropNone dropKind = iota
	dropGroup
	dropElement
)

// GroupTarget is a drop on a group header: the element joins that group
// at the end.
func GroupTarget(groupID int) DropTarget {
	return DropTarget{kind: dropGroup, groupID: groupID}
}

// ElementTarget is a drop on another element, identified by client id.
func ElementTarget(clientID string) DropTarget {
	return DropTarget{kind: dropElement, elementID: clientID}
}

// NoTarget is a drop with nothing under it; moves to it are no-ops.
func NoTarget() DropTarget {
	return DropTarget{kind: dropNone}
}

// Move applies one move gesture to the element list and returns the new
// list. Semantics:
//
//   - target group header: the active element's group becomes that
//     group; its position is appended within the group,
//   - target element in the same group: reorder within the group only
//     (remove at old index, insert at new index),
//   - target element in a different group: the active element adopts
//     the target's group and is inserted at the target's index there,
//   - no target, unknown ids, or a tax active element: no-op.
//
// Element count and identities are conserved; untouched groups keep
// their relative order.
func Move(els []model.Element, activeID string, target DropTarget) []model.Element {
	if target.kind == dropNone {
		return els
	}

	activeIdx := indexByClientID(els, activeID)
	if activeIdx < 0 || els[activeIdx].IsTax {
		return els
	}

	switch target.kind {
	case dropGroup:
		out := make([]model.Element, len(els))
		copy(out, els)
		moved := out[activeIdx]
		moved.Group = target.groupID
		out = append(out[:activeIdx], out[activeIdx+1:]...)
		return append(out, moved)

	case dropElement:
		overIdx := indexByClientID(els, target.elementID)
		if overIdx < 0 || activeID == target.elementID {
			return els
		}
		active, over := els[activeIdx], els[overIdx]
		if active.Group == over.Group {
			return moveWithinGroup(els, active.Group, activeID, target.elementID)
		}
		return moveAcrossGroups(els, activeID, target.elementID, over.Group)
	}

	return els
}

// moveWithinGroup reorders the active element to the target's index
// inside one group, leaving every other group's sequence untouched.
func moveWithinGroup(els []model.Element, group int, activeID, overID string) []model.Element {
	var groupEls, otherEls []model.Element
	for _, el := range els {
		if el.Group == group {
			groupEls = append(groupEls, el)
		} else {
			otherEls = append(otherEls, el)
		}
	}

	oldIdx := indexByClientID(groupEls, activeID)
	newIdx := indexByClientID(groupEls, overID)
	moved := groupEls[oldIdx]
	groupEls = append(groupEls[:oldIdx], groupEls[oldIdx+1:]...)
	groupEls = append(groupEls[:newIdx], append([]model.Element{moved}, groupEls[newIdx:]...)...)

	return append(otherEls, groupEls...)
}

// moveAcrossGroups reclassifies the active element into the target's
// group, inserted at the target's index there.
func moveAcrossGroups(els []model.Element, activeID, overID string, targetGroup int) []model.Element {
	var destEls, otherEls []model.Element
	var moved model.Element
	for _, el := range els {
		switch {
		case el.ClientID == activeID:
			moved = el
			moved.Group = targetGroup
		case el.Group == targetGroup:
			destEls = append(destEls, el)
		default:
			otherEls = append(otherEls, el)
		}
	}

	insertIdx := indexByClientID(destEls, overID)
	destEls = append(destEls[:insertIdx], append([]model.Element{moved}, destEls[insertIdx:]...)...)

	return append(otherEls, destEls...)
}

func indexByClientID(els []model.Element, clientID string) int {
	for i, el := range els {
		if el.ClientID == clientID {
			return i
		}
	}
	return -1
}
