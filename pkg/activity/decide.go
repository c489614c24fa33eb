package activity

import (
	"sort"

	"github.com/codeGROOVE-dev/streakwatch/pkg/types"
)

// Decide aggregates classified commit and pull-request events into a
// single verdict. The user is active iff either sequence is non-empty.
// Matched events are merged and ordered by timestamp.
func Decide(commits, prs []types.RawEvent, window types.Window) types.Verdict {
	matched := make([]types.RawEvent, 0, len(commits)+len(prs))
	matched = append(matched, commits...)
	matched = append(matched, prs...)
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.Before(matched[j].CreatedAt)
	})

	return types.Verdict{
		Active:  len(matched) > 0,
		Matched: matched,
		Window:  window,
	}
}
