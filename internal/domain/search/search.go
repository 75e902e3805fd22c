// Package search finds short player chains with a best-first search over the
// implicit adjacency graph of a snapshot.
package search

import (
	"context"

	"github.com/okian/cujulink/internal/domain/link"
	"github.com/okian/cujulink/internal/domain/model"
)

// Link is one step of a found chain with the periods that justify it.
type Link struct {
	From    string
	To      string
	Overlap link.Overlap
}

// Result of a search. Path and Links are empty when Found is false.
type Result struct {
	Found    bool
	Path     []string
	Links    []Link
	Expanded int
}

// Find searches for a chain of canonical keys from start to end.
//
// Every edge costs 1 and the frontier is ordered by f = g + h, then g, then key,
// where h is minus the number of periods the candidate shares with end. The
// heuristic is not admissible, so the returned chain is short but not
// guaranteed minimal. A player is finalized on its first pop and each player is
// expanded at most once.
//
// Unknown start or end players yield Found=false. The only error is ctx's.
func Find(ctx context.Context, snap *model.Snapshot, start, end string, mode model.Mode) (Result, error) {
	startRec, ok := snap.Get(start)
	if !ok {
		return Result{}, nil
	}
	endRec, ok := snap.Get(end)
	if !ok {
		return Result{}, nil
	}
	if start == end {
		return Result{Found: true, Path: []string{start}, Links: []Link{}}, nil
	}

	keys := snap.Keys()
	hCache := make(map[string]int, len(keys))
	h := func(key string, rec *model.PlayerRecord) int {
		if v, ok := hCache[key]; ok {
			return v
		}
		// Every shared period counts toward the estimate, whatever the link mode.
		v := -link.CommonPeriods(rec, endRec, model.ModeBoth).Count()
		hCache[key] = v
		return v
	}

	best := map[string]int{start: 0}
	visited := make(map[string]struct{}, len(keys))
	var open frontier
	open.push(&entry{f: h(start, startRec), g: 0, key: start, trail: &trail{key: start}})

	res := Result{}
	for open.len() > 0 {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		cur := open.pop()
		if _, seen := visited[cur.key]; seen {
			continue
		}
		visited[cur.key] = struct{}{}
		res.Expanded++

		if cur.key == end {
			res.Found = true
			res.Path = cur.trail.keys()
			res.Links = links(snap, res.Path, mode)
			return res, nil
		}

		curRec, _ := snap.Get(cur.key)
		g := cur.g + 1
		for _, k := range keys {
			// Keys on the current path were all expanded, so visited covers them.
			if _, seen := visited[k]; seen || k == cur.key {
				continue
			}
			rec, _ := snap.Get(k)
			if !link.IsAdjacent(curRec, rec, mode) {
				continue
			}
			if known, ok := best[k]; ok && g >= known {
				continue
			}
			best[k] = g
			open.push(&entry{f: g + h(k, rec), g: g, key: k, trail: &trail{key: k, prev: cur.trail}})
		}
	}
	return res, nil
}

// links recomputes the overlap of each consecutive pair of path.
func links(snap *model.Snapshot, path []string, mode model.Mode) []Link {
	out := make([]Link, 0, len(path)-1)
	for i := 0; i+1 < len(path); i++ {
		a, _ := snap.Get(path[i])
		b, _ := snap.Get(path[i+1])
		out = append(out, Link{From: path[i], To: path[i+1], Overlap: link.CommonPeriods(a, b, mode)})
	}
	return out
}
