package gridreg

import (
	"fmt"
)

// Registrar is the generic parallel I/O layer this registry feeds. A
// registered Grid owns its coordinate and triplet storage from the moment
// RegisterGrid returns.
type Registrar interface {
	RegisterGrid(g *Grid) error
}

// naming is one external naming contract for a grid registration
type naming struct {
	gridName  string
	dimName   string
	latName   string
	lonName   string
	decompTag string
}

// The mesh-native contract names entities the way the mesh file does; the
// host-native contract names cell centers the way the host model's physics
// and history output expect. Both cell registrations are computed from the
// identical local coordinate data on purpose.
var (
	cellMeshNaming = naming{"mesh_cells", "nCells", "latCell", "lonCell", "cells_decomp"}
	cellHostNaming = naming{"physgrid", "ncol", "lat", "lon", "physgrid_decomp"}
	edgeNaming     = naming{"mesh_edges", "nEdges", "latEdge", "lonEdge", "edges_decomp"}
	vertexNaming   = naming{"mesh_vertices", "nVertices", "latVertex", "lonVertex", "vertices_decomp"}
)

// Registry builds and registers the unstructured grids for all three node
// kinds. It holds no state beyond the target Registrar; all grid storage
// transfers to the registered Grid objects.
type Registry struct {
	IO Registrar
}

func NewRegistry(io Registrar) *Registry {
	return &Registry{IO: io}
}

// RegisterAll registers four grids: cell centers under both the mesh-native
// and host-native naming contracts, then edges and vertices. Each input
// NodeSet is consumed: after return its slices are released and it must not
// be read or mutated again.
func (r *Registry) RegisterAll(cells, edges, vertices *NodeSet) error {
	if err := r.registerNodeSet(cells, cellMeshNaming, cellHostNaming); err != nil {
		return err
	}
	if err := r.registerNodeSet(edges, edgeNaming); err != nil {
		return err
	}
	return r.registerNodeSet(vertices, vertexNaming)
}

// registerNodeSet registers one node set under each supplied naming
// contract, then releases the set's input buffers.
func (r *Registry) registerNodeSet(ns *NodeSet, names ...naming) error {
	if err := ns.Check(); err != nil {
		return fmt.Errorf("grid registration: %w", err)
	}
	for _, n := range names {
		lat, lon := buildAxes(ns, n)
		g := &Grid{
			Name:         n.gridName,
			DecompTag:    n.decompTag,
			Lat:          lat,
			Lon:          lon,
			Triplets:     BuildTriplets(ns.GlobalIDs),
			Unstructured: true,
			BlockIndexed: false,
		}
		if err := r.IO.RegisterGrid(g); err != nil {
			return fmt.Errorf("registering grid %q: %w", n.gridName, err)
		}
	}
	ns.release()
	return nil
}

// AttributesToCopy reports which attributes of the named grid a dependent
// grid should inherit: none. The host-native cell grid uses a different
// dimension convention, so the area attribute must not be propagated under
// its current dimension name.
func AttributesToCopy(gridName string) (string, []string) {
	return gridName, []string{}
}

// MemoryRegistrar is an in-process Registrar for tests and inspection
// tooling. Registration order is preserved; duplicate names are rejected.
type MemoryRegistrar struct {
	grids map[string]*Grid
	order []string
}

func NewMemoryRegistrar() *MemoryRegistrar {
	return &MemoryRegistrar{grids: make(map[string]*Grid)}
}

func (m *MemoryRegistrar) RegisterGrid(g *Grid) error {
	if _, dup := m.grids[g.Name]; dup {
		return fmt.Errorf("grid %q already registered", g.Name)
	}
	m.grids[g.Name] = g
	m.order = append(m.order, g.Name)
	return nil
}

// Grid returns the registered grid with the given name, or nil.
func (m *MemoryRegistrar) Grid(name string) *Grid {
	return m.grids[name]
}

// Names returns registered grid names in registration order.
func (m *MemoryRegistrar) Names() []string {
	return append([]string(nil), m.order...)
}
