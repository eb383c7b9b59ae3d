package ingest

import "github.com/packforge/combiner/pkg/model"

// ComputeEvolutionRequests tallies, for each entity that names an evolution
// result, how many such requests it has outstanding and how many were
// already fulfilled by a selected species-additions edge. pipeline.Resolve
// runs it before resolution, to seed the counters the two-pack rules read,
// and again after selection so RequestTransferred reflects the final pick.
func ComputeEvolutionRequests(pack *model.Pack) {
	for _, e := range pack.Entities {
		e.Requested = 0
		e.RequestTransferred = 0
	}
	for _, edge := range pack.Evolutions {
		from, ok := pack.Entities[edge.From]
		if !ok {
			continue
		}
		from.Requested++
		if !edge.IsAddition {
			continue
		}
		to, ok := pack.Entities[edge.To]
		if ok && to.Selected {
			from.RequestTransferred++
		}
	}
}
