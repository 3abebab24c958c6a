package rules

import "sort"

// Resolve collapses competing actions into one winner per supplement.
// Actions are ordered by priority level descending; a hold at any level
// beats everything else for that supplement. Ties at the same level keep
// the first action in evaluation order so results are deterministic.
func Resolve(actions []SupplementAction) map[string]SupplementAction {
	grouped := make(map[string][]SupplementAction)
	for _, a := range actions {
		grouped[a.SupplementID] = append(grouped[a.SupplementID], a)
	}

	winners := make(map[string]SupplementAction, len(grouped))
	for id, group := range grouped {
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].Level > group[j].Level
		})

		winner := group[0]
		for _, a := range group {
			if a.Kind == ActionHold {
				winner = a
				break
			}
		}
		winners[id] = winner
	}
	return winners
}
