package devserver

import (
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/agosto18/cafeauth/backoffice"
)

// Role ids known to the backend.
const (
	RoleIDAdmin  int64 = 1
	RoleIDMesero int64 = 2
)

var roleNames = map[int64]string{
	RoleIDAdmin:  "ADMIN",
	RoleIDMesero: "MESERO",
}

var (
	errUnknownRole      = errors.New("unknown role")
	errDuplicateUser    = errors.New("username already taken")
	errPasswordRequired = errors.New("password required")
	errUsernameRequired = errors.New("username required")
)

type account struct {
	usuario backoffice.Usuario
	hash    string
	roleID  int64
}

type userTable struct {
	mu   sync.RWMutex
	byID map[int64]*account
	next int64
}

func newUserTable() *userTable {
	return &userTable{byID: make(map[int64]*account)}
}

func roleFor(in backoffice.UsuarioInput) (int64, error) {
	if len(in.Roles) == 0 {
		return RoleIDMesero, nil
	}
	id := in.Roles[0].ID
	if _, ok := roleNames[id]; !ok {
		return 0, errUnknownRole
	}
	return id, nil
}

func (t *userTable) findByUsername(username string) (*account, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, a := range t.byID {
		if strings.EqualFold(a.usuario.Username, username) {
			cp := *a
			return &cp, true
		}
	}
	return nil, false
}

func (t *userTable) insert(in backoffice.UsuarioInput, hash string, roleID int64) (backoffice.Usuario, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, a := range t.byID {
		if strings.EqualFold(a.usuario.Username, in.Username) {
			return backoffice.Usuario{}, errDuplicateUser
		}
	}

	t.next++
	a := &account{
		usuario: usuarioFrom(t.next, in, roleID),
		hash:    hash,
		roleID:  roleID,
	}
	t.byID[t.next] = a
	return a.usuario, nil
}

// update replaces the account's fields. An empty hash keeps the old password.
func (t *userTable) update(id int64, in backoffice.UsuarioInput, hash string, roleID int64) (backoffice.Usuario, bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	a, ok := t.byID[id]
	if !ok {
		return backoffice.Usuario{}, false, nil
	}
	for otherID, other := range t.byID {
		if otherID != id && strings.EqualFold(other.usuario.Username, in.Username) {
			return backoffice.Usuario{}, true, errDuplicateUser
		}
	}

	a.usuario = usuarioFrom(id, in, roleID)
	a.roleID = roleID
	if hash != "" {
		a.hash = hash
	}
	return a.usuario, true, nil
}

// replaceHash swaps the account's hash only if it still equals old, so a
// password changed meanwhile is kept.
func (t *userTable) replaceHash(id int64, old, hash string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	a, ok := t.byID[id]
	if !ok || a.hash != old {
		return false
	}
	a.hash = hash
	return true
}

func (t *userTable) get(id int64) (backoffice.Usuario, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	a, ok := t.byID[id]
	if !ok {
		return backoffice.Usuario{}, false
	}
	return a.usuario, true
}

func (t *userTable) list() []backoffice.Usuario {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]backoffice.Usuario, 0, len(t.byID))
	for _, a := range t.byID {
		out = append(out, a.usuario)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (t *userTable) remove(id int64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.byID[id]; !ok {
		return false
	}
	delete(t.byID, id)
	return true
}

func usuarioFrom(id int64, in backoffice.UsuarioInput, roleID int64) backoffice.Usuario {
	return backoffice.Usuario{
		ID:       id,
		Username: in.Username,
		Nombre:   in.Nombre,
		Apellido: in.Apellido,
		Email:    in.Email,
		Roles:    []backoffice.Rol{{ID: roleID, Name: roleNames[roleID]}},
	}
}

func roles() []backoffice.Rol {
	out := make([]backoffice.Rol, 0, len(roleNames))
	for id, name := range roleNames {
		out = append(out, backoffice.Rol{ID: id, Name: name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
