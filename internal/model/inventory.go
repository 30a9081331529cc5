package model

import "strings"

// RouteSet is an insertion-ordered set of route paths.
type RouteSet struct {
	order []string
	index map[string]struct{}
}

// NewRouteSet returns an empty set.
func NewRouteSet() *RouteSet {
	return &RouteSet{index: make(map[string]struct{})}
}

// Add inserts p if it is not already present.
func (s *RouteSet) Add(p string) {
	if _, ok := s.index[p]; ok {
		return
	}
	s.index[p] = struct{}{}
	s.order = append(s.order, p)
}

// Has reports whether p is in the set.
func (s *RouteSet) Has(p string) bool {
	if s == nil {
		return false
	}
	_, ok := s.index[p]
	return ok
}

// Len returns the number of members.
func (s *RouteSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}

// Items returns members in insertion order. The slice must not be modified.
func (s *RouteSet) Items() []string {
	if s == nil {
		return nil
	}
	return s.order
}

// Inventory holds every route the site exposes.
//
// Static contains all file-tree routes, including those under the docs
// prefix, which are also recorded in Docs. Dynamic maps a namespace such as
// "blog" to the slugs enumerated from its data sources.
type Inventory struct {
	Static  *RouteSet
	Docs    *RouteSet
	Dynamic map[string]*RouteSet

	namespaces []string
}

// NewInventory returns an empty inventory with the given dynamic namespaces.
func NewInventory(namespaces []string) *Inventory {
	inv := &Inventory{
		Static:  NewRouteSet(),
		Docs:    NewRouteSet(),
		Dynamic: make(map[string]*RouteSet, len(namespaces)),
	}
	for _, ns := range namespaces {
		ns = strings.Trim(ns, "/")
		if ns == "" {
			continue
		}
		if _, ok := inv.Dynamic[ns]; ok {
			continue
		}
		inv.Dynamic[ns] = NewRouteSet()
		inv.namespaces = append(inv.namespaces, ns)
	}
	return inv
}

// Namespaces returns the dynamic namespaces in declaration order.
func (inv *Inventory) Namespaces() []string {
	return inv.namespaces
}

// HasSlug reports whether slug is a known member of namespace ns.
func (inv *Inventory) HasSlug(ns, slug string) bool {
	return inv.Dynamic[ns].Has(slug)
}

// Known returns every static and docs route in enumeration order, static
// first, without duplicates.
func (inv *Inventory) Known() []string {
	out := make([]string, 0, inv.Static.Len()+inv.Docs.Len())
	out = append(out, inv.Static.Items()...)
	for _, p := range inv.Docs.Items() {
		if !inv.Static.Has(p) {
			out = append(out, p)
		}
	}
	return out
}

// IsKnown reports whether p is a static or docs route.
func (inv *Inventory) IsKnown(p string) bool {
	return inv.Static.Has(p) || inv.Docs.Has(p)
}
