// Package graph builds the file → route link graph and computes PageRank.
package graph

import (
	"math"
	"sort"

	"github.com/phobologic/linkcheck/internal/model"
)

// Resolver maps a raw reference target to the route it resolves to.
type Resolver func(target string) (route string, ok bool)

// Build creates one RouteLink per resolved route, listing the distinct source
// files that reference it and the total number of references. Links are
// sorted by route.
func Build(refs []model.Reference, resolve Resolver) []model.RouteLink {
	type acc struct {
		sources map[string]struct{}
		count   int
	}
	byRoute := make(map[string]*acc)

	for i := range refs {
		route, ok := resolve(refs[i].Target)
		if !ok {
			continue
		}
		a := byRoute[route]
		if a == nil {
			a = &acc{sources: make(map[string]struct{})}
			byRoute[route] = a
		}
		a.sources[refs[i].File] = struct{}{}
		a.count++
	}

	links := make([]model.RouteLink, 0, len(byRoute))
	for route, a := range byRoute {
		links = append(links, model.RouteLink{
			Route:   route,
			Sources: sortedKeys(a.sources),
			Count:   a.count,
		})
	}

	// Sort for deterministic output
	sort.Slice(links, func(i, j int) bool {
		return links[i].Route < links[j].Route
	})

	return links
}

// Rank applies PageRank over the source-file → route graph, stores each
// route's score in its RouteLink, and sorts links by rank descending.
func Rank(links []model.RouteLink) {
	if len(links) == 0 {
		return
	}

	outEdges := make(map[string][]string)
	outDegree := make(map[string]int)
	nodes := make(map[string]struct{})

	for i := range links {
		l := &links[i]
		nodes[l.Route] = struct{}{}
		for _, src := range l.Sources {
			nodes[src] = struct{}{}
			outEdges[src] = append(outEdges[src], l.Route)
			outDegree[src]++
		}
	}

	ranks := pageRank(nodes, outEdges, outDegree, 0.85, 100, 1e-6)

	for i := range links {
		links[i].Rank = ranks[links[i].Route]
	}

	sort.SliceStable(links, func(i, j int) bool {
		if links[i].Rank != links[j].Rank {
			return links[i].Rank > links[j].Rank
		}
		return links[i].Route < links[j].Route
	})
}

// Unreferenced returns the static and docs routes no reference resolves to,
// in inventory order. The root route is never reported.
func Unreferenced(inv *model.Inventory, links []model.RouteLink) []string {
	linked := make(map[string]struct{}, len(links))
	for i := range links {
		linked[links[i].Route] = struct{}{}
	}
	var out []string
	for _, r := range inv.Known() {
		if r == "/" {
			continue
		}
		if _, ok := linked[r]; !ok {
			out = append(out, r)
		}
	}
	return out
}

func pageRank(
	nodes map[string]struct{},
	outEdges map[string][]string,
	outDegree map[string]int,
	alpha float64,
	maxIter int,
	tol float64,
) map[string]float64 {
	n := len(nodes)
	if n == 0 {
		return nil
	}

	rank := make(map[string]float64, n)
	initial := 1.0 / float64(n)
	for node := range nodes {
		rank[node] = initial
	}

	teleport := (1.0 - alpha) / float64(n)

	for iter := 0; iter < maxIter; iter++ {
		newRank := make(map[string]float64, n)

		// Routes are sinks; their mass is spread evenly.
		var danglingSum float64
		for node := range nodes {
			if outDegree[node] == 0 {
				danglingSum += rank[node]
			}
		}
		danglingContrib := alpha * danglingSum / float64(n)

		for node := range nodes {
			newRank[node] = teleport + danglingContrib
		}

		for src, targets := range outEdges {
			contrib := alpha * rank[src] / float64(outDegree[src])
			for _, tgt := range targets {
				newRank[tgt] += contrib
			}
		}

		var diff float64
		for node := range nodes {
			diff += math.Abs(newRank[node] - rank[node])
		}

		rank = newRank

		if diff < tol {
			break
		}
	}

	return rank
}

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
