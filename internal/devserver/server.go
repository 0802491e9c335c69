package devserver

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-logr/logr"

	"github.com/agosto18/cafeauth/backoffice"
	"github.com/agosto18/cafeauth/internal/rate"
	"github.com/agosto18/cafeauth/jwt"
	"github.com/agosto18/cafeauth/password"
	"github.com/agosto18/cafeauth/permission"
)

const maxRequestBytes = 1 << 20

// Config configures a [Server].
type Config struct {
	// Secret signs credentials with HS256.
	Secret []byte
	TTL    time.Duration
	Issuer string
	// Password sets the argon2id cost. The zero value uses the lowest
	// accepted cost.
	Password password.Config
	// Throttle, when set, refuses logins after repeated failures.
	Throttle *rate.Limiter
}

// DefaultConfig returns a Config with a fixed development secret.
func DefaultConfig() Config {
	return Config{
		Secret: []byte("cafeauth-development-secret-change-me"),
		TTL:    8 * time.Hour,
		Issuer: "cafe-backoffice",
	}
}

// Server is the development backend.
type Server struct {
	issuer   *jwt.Issuer
	hasher   *password.Argon2
	throttle *rate.Limiter
	log      logr.Logger

	users          *userTable
	productos      *table[backoffice.Producto]
	empleados      *table[backoffice.Empleado]
	pedidos        *table[backoffice.Pedido]
	detallesPedido *table[backoffice.DetallePedido]

	metrics *serverMetrics
	router  chi.Router
}

// New returns an empty Server. Call [Server.Seed] for sample data.
func New(cfg Config, log logr.Logger) (*Server, error) {
	issuer, err := jwt.NewIssuer(jwt.IssuerConfig{
		TTL:           cfg.TTL,
		SigningMethod: jwt.MethodHS256,
		PrivateKey:    cfg.Secret,
		Issuer:        cfg.Issuer,
	})
	if err != nil {
		return nil, err
	}

	pwCfg := cfg.Password
	if pwCfg == (password.Config{}) {
		pwCfg = password.LowCostConfig()
	}
	hasher, err := password.NewArgon2(pwCfg)
	if err != nil {
		return nil, err
	}

	s := &Server{
		issuer:         issuer,
		hasher:         hasher,
		throttle:       cfg.Throttle,
		log:            log,
		users:          newUserTable(),
		productos:      newTable(func(p *backoffice.Producto) *int64 { return &p.IDProducto }),
		empleados:      newTable(func(e *backoffice.Empleado) *int64 { return &e.IDEmpleado }),
		pedidos:        newTable(func(p *backoffice.Pedido) *int64 { return &p.IDPedido }),
		detallesPedido: newTable(func(d *backoffice.DetallePedido) *int64 { return &d.IDDetalle }),
		metrics:        newServerMetrics(),
	}
	s.router = s.routes()
	return s, nil
}

// Handler returns the HTTP handler serving /api and /metrics.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Issuer returns the credential issuer, so tests can mint credentials the
// server accepts.
func (s *Server) Issuer() *jwt.Issuer {
	return s.issuer
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(s.logRequests)

	r.Method(http.MethodGet, "/metrics", s.metrics.handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/authenticate", s.authenticate)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)
			mountTable(r, backoffice.PathPedidos, s.pedidos)
			mountTable(r, backoffice.PathDetallesPedido, s.detallesPedido)

			r.Group(func(r chi.Router) {
				r.Use(s.requireRole(permission.RoleAdmin))
				mountTable(r, backoffice.PathProductos, s.productos)
				mountTable(r, backoffice.PathEmpleados, s.empleados)
				s.mountUsuarios(r)
				r.Get(backoffice.PathRoles, func(w http.ResponseWriter, _ *http.Request) {
					writeJSON(w, http.StatusOK, roles())
				})
			})
		})
	})
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		elapsed := time.Since(start)

		route := ""
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			route = rctx.RoutePattern()
		}
		s.metrics.observe(route, r.Method, ww.Status(), elapsed)
		s.log.V(1).Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"route", route,
			"status", ww.Status(),
			"duration", elapsed,
			"requestID", chimw.GetReqID(r.Context()),
		)
	})
}

type authenticateRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type authenticateResponse struct {
	Token string             `json:"token"`
	User  backoffice.Usuario `json:"user"`
}

func (s *Server) authenticate(w http.ResponseWriter, r *http.Request) {
	var req authenticateRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	username := strings.TrimSpace(req.Username)
	addr := clientAddr(r)
	if !s.allowLogin(w, r, username, addr) {
		return
	}

	acct, ok := s.users.findByUsername(username)
	if !ok {
		s.failLogin(r, "unknown_user", username, addr)
		writeError(w, http.StatusUnauthorized, "invalid username or password")
		return
	}
	match, err := s.hasher.Verify(req.Password, acct.hash)
	if err != nil || !match {
		s.failLogin(r, "bad_password", username, addr)
		writeError(w, http.StatusUnauthorized, "invalid username or password")
		return
	}

	s.upgradeHash(acct, req.Password)

	token, err := s.issuer.Issue(acct.usuario.Username, jwt.PrefixedRole(roleNames[acct.roleID]))
	if err != nil {
		s.log.Error(err, "failed to issue credential")
		writeError(w, http.StatusInternalServerError, "could not issue credential")
		return
	}

	if s.throttle != nil {
		if err := s.throttle.Reset(r.Context(), username); err != nil {
			s.log.Error(err, "failed to reset login throttle", "username", username)
		}
	}
	s.metrics.login("success")
	s.log.Info("issued credential", "username", acct.usuario.Username, "role", roleNames[acct.roleID])
	writeJSON(w, http.StatusOK, authenticateResponse{Token: token, User: acct.usuario})
}

// upgradeHash rehashes the password of an account stored under weaker
// cost parameters than the server's. Failures keep the old hash.
func (s *Server) upgradeHash(acct *account, pw string) {
	stale, err := s.hasher.NeedsUpgrade(acct.hash)
	if err != nil || !stale {
		return
	}
	hash, err := s.hasher.Hash(pw)
	if err != nil {
		s.log.Error(err, "failed to rehash password", "username", acct.usuario.Username)
		return
	}
	if s.users.replaceHash(acct.usuario.ID, acct.hash, hash) {
		s.log.V(1).Info("upgraded password hash", "username", acct.usuario.Username)
	}
}

// allowLogin answers 429 when the throttle refuses the attempt. A throttle
// that cannot reach Redis lets the attempt through.
func (s *Server) allowLogin(w http.ResponseWriter, r *http.Request, username, addr string) bool {
	if s.throttle == nil {
		return true
	}
	err := s.throttle.Allow(r.Context(), username, addr)
	switch {
	case err == nil:
		return true
	case errors.Is(err, rate.ErrRateLimited):
		s.metrics.login("throttled")
		if wait := s.throttle.RetryAfter(r.Context(), username, addr); wait > 0 {
			w.Header().Set("Retry-After", strconv.Itoa(int(wait.Round(time.Second)/time.Second)))
		}
		writeError(w, http.StatusTooManyRequests, err.Error())
		return false
	default:
		s.log.Error(err, "login throttle unavailable")
		return true
	}
}

func (s *Server) failLogin(r *http.Request, outcome, username, addr string) {
	s.metrics.login(outcome)
	if s.throttle == nil {
		return
	}
	if err := s.throttle.Fail(r.Context(), username, addr); err != nil {
		s.log.Error(err, "failed to record login failure", "username", username)
	}
}

func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func mountTable[T any](r chi.Router, path string, t *table[T]) {
	r.Route(path, func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, t.list())
		})
		r.Post("/", func(w http.ResponseWriter, r *http.Request) {
			var v T
			if err := decodeBody(r, &v); err != nil {
				writeError(w, http.StatusBadRequest, "invalid request body")
				return
			}
			writeJSON(w, http.StatusCreated, t.insert(v))
		})
		r.Get("/{id}", func(w http.ResponseWriter, r *http.Request) {
			id, ok := pathID(w, r)
			if !ok {
				return
			}
			v, found := t.get(id)
			if !found {
				writeError(w, http.StatusNotFound, "not found")
				return
			}
			writeJSON(w, http.StatusOK, v)
		})
		r.Put("/{id}", func(w http.ResponseWriter, r *http.Request) {
			id, ok := pathID(w, r)
			if !ok {
				return
			}
			var v T
			if err := decodeBody(r, &v); err != nil {
				writeError(w, http.StatusBadRequest, "invalid request body")
				return
			}
			updated, found := t.update(id, v)
			if !found {
				writeError(w, http.StatusNotFound, "not found")
				return
			}
			writeJSON(w, http.StatusOK, updated)
		})
		r.Delete("/{id}", func(w http.ResponseWriter, r *http.Request) {
			id, ok := pathID(w, r)
			if !ok {
				return
			}
			if !t.remove(id) {
				writeError(w, http.StatusNotFound, "not found")
				return
			}
			w.WriteHeader(http.StatusNoContent)
		})
	})
}

func (s *Server) mountUsuarios(r chi.Router) {
	r.Route(backoffice.PathUsuarios, func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, s.users.list())
		})
		r.Post("/", func(w http.ResponseWriter, r *http.Request) {
			var in backoffice.UsuarioInput
			if err := decodeBody(r, &in); err != nil {
				writeError(w, http.StatusBadRequest, "invalid request body")
				return
			}
			u, err := s.AddUser(in)
			if err != nil {
				writeError(w, statusFor(err), err.Error())
				return
			}
			writeJSON(w, http.StatusCreated, u)
		})
		r.Get("/{id}", func(w http.ResponseWriter, r *http.Request) {
			id, ok := pathID(w, r)
			if !ok {
				return
			}
			u, found := s.users.get(id)
			if !found {
				writeError(w, http.StatusNotFound, "not found")
				return
			}
			writeJSON(w, http.StatusOK, u)
		})
		r.Put("/{id}", func(w http.ResponseWriter, r *http.Request) {
			id, ok := pathID(w, r)
			if !ok {
				return
			}
			var in backoffice.UsuarioInput
			if err := decodeBody(r, &in); err != nil {
				writeError(w, http.StatusBadRequest, "invalid request body")
				return
			}
			u, found, err := s.updateUser(id, in)
			if !found {
				writeError(w, http.StatusNotFound, "not found")
				return
			}
			if err != nil {
				writeError(w, statusFor(err), err.Error())
				return
			}
			writeJSON(w, http.StatusOK, u)
		})
		r.Delete("/{id}", func(w http.ResponseWriter, r *http.Request) {
			id, ok := pathID(w, r)
			if !ok {
				return
			}
			if !s.users.remove(id) {
				writeError(w, http.StatusNotFound, "not found")
				return
			}
			w.WriteHeader(http.StatusNoContent)
		})
	})
}

// AddUser creates an account. The first role in in.Roles is used; none
// means MESERO.
func (s *Server) AddUser(in backoffice.UsuarioInput) (backoffice.Usuario, error) {
	in.Username = strings.TrimSpace(in.Username)
	if in.Username == "" {
		return backoffice.Usuario{}, errUsernameRequired
	}
	if in.Password == "" {
		return backoffice.Usuario{}, errPasswordRequired
	}
	roleID, err := roleFor(in)
	if err != nil {
		return backoffice.Usuario{}, err
	}
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return backoffice.Usuario{}, err
	}
	return s.users.insert(in, hash, roleID)
}

func (s *Server) updateUser(id int64, in backoffice.UsuarioInput) (backoffice.Usuario, bool, error) {
	in.Username = strings.TrimSpace(in.Username)
	if in.Username == "" {
		return backoffice.Usuario{}, true, errUsernameRequired
	}
	roleID, err := roleFor(in)
	if err != nil {
		return backoffice.Usuario{}, true, err
	}
	hash := ""
	if in.Password != "" {
		if hash, err = s.hasher.Hash(in.Password); err != nil {
			return backoffice.Usuario{}, true, err
		}
	}
	return s.users.update(id, in, hash, roleID)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, errDuplicateUser):
		return http.StatusConflict
	case errors.Is(err, errUnknownRole), errors.Is(err, errPasswordRequired), errors.Is(err, errUsernameRequired),
		errors.Is(err, password.ErrPasswordTooShort), errors.Is(err, password.ErrPasswordTooLong):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

func decodeBody(r *http.Request, v any) error {
	return json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxRequestBytes)).Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}
