package dataquality

import "github.com/smallbiznis/reviewvault/internal/record"

// ValidateBatch finds review ids repeated within one file. The first occurrence of
// an id is kept; every later occurrence is reported by its 0-based index, in
// ascending order, with ErrDuplicateReviewID in the per-row error map. Rows with an
// empty id take no part in duplicate detection.
func ValidateBatch(rows []record.Raw) ([]int, map[int][]string) {
	seen := make(map[string]struct{}, len(rows))
	dups := []int{}
	perRow := map[int][]string{}

	for idx, row := range rows {
		id := value(row.Trimmed(ColReviewID))
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			dups = append(dups, idx)
			perRow[idx] = append(perRow[idx], ErrDuplicateReviewID)
			continue
		}
		seen[id] = struct{}{}
	}
	return dups, perRow
}
