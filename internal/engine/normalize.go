package engine

import (
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/rshade/energyprophet/internal/units"
)

// NormalizeShares maps targetShares onto catalogIDs and rescales the result
// to sum to 1.
//
// Every catalog id appears in the result, spelled as in catalogIDs. Ids in
// targetShares are matched case-insensitively; unknown ids are ignored and ids
// differing only in case are summed. Negative and non-finite shares count as
// 0. When nothing positive remains every id gets 1/len(catalogIDs).
//
// The function is idempotent within floating-point tolerance.
func NormalizeShares(targetShares map[string]float64, catalogIDs []string) map[string]float64 {
	out := make(map[string]float64, len(catalogIDs))
	ids := make([]string, 0, len(catalogIDs))
	canonical := make(map[string]string, len(catalogIDs))
	for _, id := range catalogIDs {
		key := strings.ToLower(id)
		if _, dup := canonical[key]; dup {
			continue
		}
		canonical[key] = id
		ids = append(ids, id)
		out[id] = 0
	}
	if len(ids) == 0 {
		return out
	}

	for id, share := range targetShares {
		name, ok := canonical[strings.ToLower(id)]
		if !ok {
			continue
		}
		if share < 0 || math.IsNaN(share) || math.IsInf(share, 0) {
			share = 0
		}
		out[name] += share
	}

	values := make([]float64, len(ids))
	for i, id := range ids {
		values[i] = out[id]
	}
	total := units.Sum(values)

	// Large finite shares can overflow the sum; rescale by the largest first.
	if math.IsInf(total, 1) {
		largest := floats.Max(values)
		for i, id := range ids {
			out[id] /= largest
			values[i] = out[id]
		}
		total = units.Sum(values)
	}

	if total == 0 {
		equal := 1 / float64(len(ids))
		for _, id := range ids {
			out[id] = equal
		}
		return out
	}

	for _, id := range ids {
		out[id] /= total
	}
	return out
}
