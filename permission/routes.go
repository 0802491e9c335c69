package permission

import (
	"errors"
	"path"
	"sort"
	"strings"
	"sync"
)

// Console route paths.
const (
	PathHome          = "/"
	PathLogin         = "/login"
	PathUnauthorized  = "/no-autorizado"
	PathProductos     = "/productos"
	PathEmpleados     = "/empleados"
	PathUsuarios      = "/usuarios"
	PathPedidos       = "/pedidos"
	PathDetallePedido = "/detalles-pedido"
)

// RoleAdmin is the role that gates catalogue and staff management.
const RoleAdmin = "ADMIN"

// Routes maps console paths to their requirement. Paths that were never
// registered resolve to the fallback path, mirroring a catch-all route.
type Routes struct {
	mu       sync.RWMutex
	routes   map[string]Requirement
	fallback string
	frozen   bool
}

// NewRoutes returns an empty table whose unknown paths fall back to fallback.
func NewRoutes(fallback string) *Routes {
	return &Routes{
		routes:   make(map[string]Requirement),
		fallback: cleanPath(fallback),
	}
}

// DefaultRoutes returns the frozen route table of the back-office console.
func DefaultRoutes() *Routes {
	r := NewRoutes(PathHome)
	for p, req := range map[string]Requirement{
		PathHome:          Authenticated(),
		PathLogin:         Public(),
		PathUnauthorized:  Public(),
		PathProductos:     RequireRole(RoleAdmin),
		PathEmpleados:     RequireRole(RoleAdmin),
		PathUsuarios:      RequireRole(RoleAdmin),
		PathPedidos:       Authenticated(),
		PathDetallePedido: Authenticated(),
	} {
		// Paths above are distinct and the table is fresh.
		_ = r.Register(p, req)
	}
	r.Freeze()
	return r
}

// Register adds a route. Must be called before [Routes.Freeze].
func (r *Routes) Register(p string, req Requirement) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return errors.New("routes frozen")
	}
	p = cleanPath(p)
	if p == "" {
		return errors.New("route path cannot be empty")
	}
	if _, exists := r.routes[p]; exists {
		return errors.New("route already registered: " + p)
	}
	r.routes[p] = req
	return nil
}

// Freeze prevents further registrations.
func (r *Routes) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frozen = true
}

// Resolve returns the canonical path and requirement for p. Unknown paths
// resolve to the fallback route; ok is false in that case.
func (r *Routes) Resolve(p string) (resolved string, req Requirement, ok bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p = cleanPath(p)
	if req, ok := r.routes[p]; ok {
		return p, req, true
	}
	return r.fallback, r.routes[r.fallback], false
}

// Paths returns the registered paths in sorted order.
func (r *Routes) Paths() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.routes))
	for p := range r.routes {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

func cleanPath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return path.Clean(p)
}
