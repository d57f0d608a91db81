package playbyplay

import "sort"

// InferTeams guesses (away, home) team ids from location tags on the actions.
// The team tagged "h" more often is home; on a tie the team tagged "v" more
// often is away; on a further tie the lower id is away.
func InferTeams(actions []RawAction) (away, home int64, ok bool) {
	seen := map[int64]*[2]int{} // [h, v]
	for _, a := range actions {
		id := int64(a.TeamID)
		if id <= 0 {
			continue
		}
		counts, found := seen[id]
		if !found {
			counts = &[2]int{}
			seen[id] = counts
		}
		switch a.Location {
		case "h":
			counts[0]++
		case "v":
			counts[1]++
		}
	}
	if len(seen) != 2 {
		return 0, 0, false
	}

	ids := make([]int64, 0, 2)
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	a, b := ids[0], ids[1]
	ca, cb := seen[a], seen[b]

	switch {
	case ca[0] > cb[0]:
		return b, a, true
	case cb[0] > ca[0]:
		return a, b, true
	case ca[1] > cb[1]:
		return a, b, true
	case cb[1] > ca[1]:
		return b, a, true
	}
	return a, b, true
}
