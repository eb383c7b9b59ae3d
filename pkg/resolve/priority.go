package resolve

import "github.com/packforge/combiner/pkg/model"

// Holders builds, across every pack, the set of packs that contain each
// entity name.
func Holders(packs []*model.Pack) map[string]Holder {
	out := map[string]Holder{}
	for _, p := range packs {
		for name, e := range p.Entities {
			if out[name] == nil {
				out[name] = Holder{}
			}
			out[name][p.DisplayName] = e
		}
	}
	return out
}

type entityStats struct {
	countPacks   int
	maxEvos      int
	maxPreEvos   int
	hasActiveReq bool
	maxRemaining int
}

// evosFrom/evosTo count, within one pack, the outgoing/incoming evolution
// edges touching entityName.
func evosFrom(p *model.Pack, entityName string) int {
	n := 0
	for _, edge := range p.Evolutions {
		if edge.From == entityName {
			n++
		}
	}
	return n
}

func evosTo(p *model.Pack, entityName string) int {
	n := 0
	for _, edge := range p.Evolutions {
		if edge.To == entityName {
			n++
		}
	}
	return n
}

// computeStats derives the priority-ordering tuple fields for entityName
// given which names have already been selected in this run (selected is
// keyed by entity internal_name, shared across packs since the same
// logical creature may appear under several pack-local Entity objects).
func computeStats(entityName string, holder Holder, packByName map[string]*model.Pack, selected map[string]bool) entityStats {
	var s entityStats
	s.countPacks = len(holder)

	for packName := range holder {
		p := packByName[packName]
		evos := evosFrom(p, entityName)
		preEvos := evosTo(p, entityName)
		if evos > s.maxEvos {
			s.maxEvos = evos
		}
		if preEvos > s.maxPreEvos {
			s.maxPreEvos = preEvos
		}

		fulfilled := 0
		for _, edge := range p.Evolutions {
			if edge.From != entityName {
				continue
			}
			if selected[edge.To] {
				fulfilled++
				s.hasActiveReq = true
			}
		}
		remaining := evos - fulfilled
		if remaining > s.maxRemaining {
			s.maxRemaining = remaining
		}
	}
	return s
}

// less implements the priority tuple ordering:
// (count_packs_containing, -has_active_request, -max_remaining_requests,
// -max_evos, -(max_pre_evos + max_evos)), ascending.
func (a entityStats) less(b entityStats) bool {
	if a.countPacks != b.countPacks {
		return a.countPacks < b.countPacks
	}
	ah, bh := boolRank(a.hasActiveReq), boolRank(b.hasActiveReq)
	if ah != bh {
		return ah > bh // "-has_active_request": active-request entities sort first
	}
	if a.maxRemaining != b.maxRemaining {
		return a.maxRemaining > b.maxRemaining
	}
	if a.maxEvos != b.maxEvos {
		return a.maxEvos > b.maxEvos
	}
	aTotal, bTotal := a.maxPreEvos+a.maxEvos, b.maxPreEvos+b.maxEvos
	return aTotal > bTotal
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}

// nextByPriority picks the remaining entity name with the lowest priority
// tuple, recomputing dynamic stats against the current selected set. Ties
// break on name so repeated runs resolve in the same order.
func nextByPriority(remaining map[string]bool, holders map[string]Holder, packByName map[string]*model.Pack, selected map[string]bool) string {
	var best string
	var bestStats entityStats
	first := true
	for name := range remaining {
		stats := computeStats(name, holders[name], packByName, selected)
		switch {
		case first || stats.less(bestStats):
			best, bestStats, first = name, stats, false
		case !bestStats.less(stats) && name < best:
			best = name
		}
	}
	return best
}

func packsByName(packs []*model.Pack) map[string]*model.Pack {
	out := make(map[string]*model.Pack, len(packs))
	for _, p := range packs {
		out[p.DisplayName] = p
	}
	return out
}
