package backoffice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/agosto18/cafeauth"
)

// Resource paths.
const (
	PathProductos      = "/productos"
	PathEmpleados      = "/empleados"
	PathPedidos        = "/pedidos"
	PathDetallesPedido = "/detalle-pedidos"
	PathUsuarios       = "/usuarios"
	PathRoles          = "/roles"
)

const maxBodyBytes = 4 << 20

// Client calls the back-office API.
type Client struct {
	baseURL string
	http    *http.Client
}

// New returns a Client for baseURL using hc. A nil hc uses
// http.DefaultClient, which attaches no credential.
func New(baseURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: hc}
}

// FromAuth returns a Client that sends requests through auth's authorizing
// HTTP client.
func FromAuth(auth *cafeauth.Client) *Client {
	return New(auth.BaseURL(), auth.HTTPClient())
}

func (c *Client) Productos() Resource[Producto, Producto] {
	return Resource[Producto, Producto]{client: c, path: PathProductos}
}

func (c *Client) Empleados() Resource[Empleado, Empleado] {
	return Resource[Empleado, Empleado]{client: c, path: PathEmpleados}
}

func (c *Client) Pedidos() Resource[Pedido, Pedido] {
	return Resource[Pedido, Pedido]{client: c, path: PathPedidos}
}

func (c *Client) DetallesPedido() Resource[DetallePedido, DetallePedido] {
	return Resource[DetallePedido, DetallePedido]{client: c, path: PathDetallesPedido}
}

func (c *Client) Usuarios() Resource[Usuario, UsuarioInput] {
	return Resource[Usuario, UsuarioInput]{client: c, path: PathUsuarios}
}

func (c *Client) Roles() Resource[Rol, Rol] {
	return Resource[Rol, Rol]{client: c, path: PathRoles}
}

// Resource is one REST collection. Out is what the API returns; In is
// what it accepts on create and update.
type Resource[Out, In any] struct {
	client *Client
	path   string
}

// Path returns the collection path.
func (r Resource[Out, In]) Path() string { return r.path }

func (r Resource[Out, In]) List(ctx context.Context) ([]Out, error) {
	var out []Out
	if err := r.client.do(ctx, http.MethodGet, r.path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r Resource[Out, In]) Get(ctx context.Context, id int64) (Out, error) {
	var out Out
	err := r.client.do(ctx, http.MethodGet, r.item(id), nil, &out)
	return out, err
}

func (r Resource[Out, In]) Create(ctx context.Context, in In) (Out, error) {
	var out Out
	err := r.client.do(ctx, http.MethodPost, r.path, in, &out)
	return out, err
}

func (r Resource[Out, In]) Update(ctx context.Context, id int64, in In) (Out, error) {
	var out Out
	err := r.client.do(ctx, http.MethodPut, r.item(id), in, &out)
	return out, err
}

func (r Resource[Out, In]) Delete(ctx context.Context, id int64) error {
	return r.client.do(ctx, http.MethodDelete, r.item(id), nil, nil)
}

func (r Resource[Out, In]) item(id int64) string {
	return r.path + "/" + strconv.FormatInt(id, 10)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("read %s %s: %w", method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Method: method, Path: path, StatusCode: resp.StatusCode, Message: errorMessage(data)}
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func errorMessage(data []byte) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(data, &body) != nil {
		return strings.TrimSpace(string(data))
	}
	if body.Message != "" {
		return body.Message
	}
	return body.Error
}
