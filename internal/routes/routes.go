// Package routes builds the route inventory of a file-based-routing site.
package routes

import (
	"fmt"
	"io"
	"strings"

	"github.com/phobologic/linkcheck/internal/config"
	"github.com/phobologic/linkcheck/internal/discover"
	"github.com/phobologic/linkcheck/internal/model"
)

// Build walks the routing root for entry points and loads the slugs of every
// dynamic namespace. Unreadable slug sources are reported on stderr and leave
// their namespace partially or entirely empty.
func Build(w *discover.Walker, cfg *config.Config, stderr io.Writer) (*model.Inventory, error) {
	inv := model.NewInventory(cfg.NamespaceNames())

	files, err := w.Files(cfg.RoutingDir, discover.ByName(cfg.EntryPoint))
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", cfg.RoutingDir, err)
	}

	for _, f := range files {
		route, ok := FromEntryPoint(cfg.RoutingDir, cfg.EntryPoint, f)
		if !ok {
			continue
		}
		addRoute(inv, cfg.DocsPrefix, route)
	}

	for _, ns := range cfg.Namespaces {
		set := inv.Dynamic[ns.Name]
		for _, src := range ns.Sources {
			slugs, err := LoadSlugs(w.Root(), src, ns.Field)
			if err != nil {
				_, _ = fmt.Fprintf(stderr, "Warning: %s: %v\n", src, err)
				continue
			}
			for _, s := range slugs {
				set.Add(s)
			}
		}
	}

	return inv, nil
}

func addRoute(inv *model.Inventory, docsPrefix, route string) {
	first := firstSegment(route)
	if _, dynamic := inv.Dynamic[first]; dynamic && route != "/"+first {
		// Instances come from the namespace's data sources.
		return
	}
	inv.Static.Add(route)
	if docsPrefix != "" && first == docsPrefix {
		inv.Docs.Add(route)
	}
}

// FromEntryPoint derives the route served by the entry-point file rel
// (slash-separated, relative to the project root).
//
// Route groups such as "(marketing)" and parallel-route slots such as
// "@modal" do not contribute a segment. Files under private folders
// ("_components") or dynamic segments ("[id]") are not addressable and
// report ok == false.
func FromEntryPoint(routingDir, entryPoint, rel string) (route string, ok bool) {
	rel = strings.ReplaceAll(rel, "\\", "/")
	prefix := strings.Trim(routingDir, "/") + "/"
	if !strings.HasPrefix(rel, prefix) {
		return "", false
	}
	rel = strings.TrimPrefix(rel, prefix)
	if rel == entryPoint {
		return "/", true
	}
	if !strings.HasSuffix(rel, "/"+entryPoint) {
		return "", false
	}
	rel = strings.TrimSuffix(rel, "/"+entryPoint)

	var segs []string
	for _, seg := range strings.Split(rel, "/") {
		switch {
		case seg == "":
			continue
		case strings.HasPrefix(seg, "(") && strings.HasSuffix(seg, ")"):
			continue
		case strings.HasPrefix(seg, "@"):
			continue
		case strings.HasPrefix(seg, "_"), strings.HasPrefix(seg, "["):
			return "", false
		}
		segs = append(segs, seg)
	}
	if len(segs) == 0 {
		return "/", true
	}
	return "/" + strings.Join(segs, "/"), true
}

func firstSegment(route string) string {
	route = strings.TrimPrefix(route, "/")
	if i := strings.IndexByte(route, '/'); i >= 0 {
		return route[:i]
	}
	return route
}
