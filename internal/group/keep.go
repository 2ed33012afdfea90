package group

import (
	"path/filepath"
	"sort"

	"github.com/dupetools/dupes/internal/types"
)

// SelectKeeper decides which member of g survives. Members are viewed
// through a stable sort by the order criterion (timestamps ascending,
// names lexicographic; ties keep arrival order), and the keep policy
// takes the first or last of that sorted view. The group's Keep field is
// set to the chosen member's position in g.Members and returned.
func SelectKeeper(g *Group, keep types.KeepPolicy, order types.OrderBy) int {
	idx := make([]int, len(g.Members))
	for i := range idx {
		idx[i] = i
	}

	sort.SliceStable(idx, func(a, b int) bool {
		return less(g.Members[idx[a]], g.Members[idx[b]], order)
	})

	pos := 0
	if keep == types.KeepLast {
		pos = len(idx) - 1
	}

	g.Keep = idx[pos]
	return g.Keep
}

// SortGroups orders groups for display by their kept member (or anchor,
// when no keep index is set), using the same criterion vocabulary as
// SelectKeeper. A stable sort keeps detection order between equals.
func SortGroups(groups []Group, order types.OrderBy) {
	sort.SliceStable(groups, func(i, j int) bool {
		return less(keptMember(groups[i]), keptMember(groups[j]), order)
	})
}

func keptMember(g Group) types.Candidate {
	if g.Keep >= 0 && g.Keep < len(g.Members) {
		return g.Members[g.Keep]
	}
	return g.Members[0]
}

// less compares candidates under an order criterion. Name comparisons
// use the base name, matching how users read the report.
func less(a, b types.Candidate, order types.OrderBy) bool {
	switch order {
	case types.OrderCreated:
		return a.CreatedAt.Before(b.CreatedAt)
	case types.OrderName:
		return filepath.Base(a.Path) < filepath.Base(b.Path)
	default:
		return a.ModTime.Before(b.ModTime)
	}
}
