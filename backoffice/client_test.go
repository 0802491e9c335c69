package backoffice_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-logr/logr"
	"golang.org/x/oauth2"

	"github.com/agosto18/cafeauth"
	"github.com/agosto18/cafeauth/backoffice"
	"github.com/agosto18/cafeauth/internal/devserver"
	"github.com/agosto18/cafeauth/middleware"
)

func seededAPI(t *testing.T, username string) *backoffice.Client {
	t.Helper()
	srv, err := devserver.New(devserver.DefaultConfig(), logr.Discard())
	if err != nil {
		t.Fatalf("devserver: %v", err)
	}
	if err := srv.Seed(); err != nil {
		t.Fatalf("seed: %v", err)
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	role := "ROLE_MESERO"
	if username == devserver.AdminUsername {
		role = "ROLE_ADMIN"
	}
	token, err := srv.Issuer().Issue(username, role)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	hc := &http.Client{Transport: middleware.Chain(nil,
		middleware.Authorize(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})),
	)}
	return backoffice.New(ts.URL+"/api/", hc)
}

func TestListSeededResources(t *testing.T) {
	api := seededAPI(t, devserver.AdminUsername)
	ctx := context.Background()

	productos, err := api.Productos().List(ctx)
	if err != nil || len(productos) != 2 || productos[0].Nombre != "Espresso" {
		t.Fatalf("productos: %+v, %v", productos, err)
	}
	empleados, err := api.Empleados().List(ctx)
	if err != nil || len(empleados) != 2 {
		t.Fatalf("empleados: %+v, %v", empleados, err)
	}
	detalles, err := api.DetallesPedido().List(ctx)
	if err != nil || len(detalles) != 2 {
		t.Fatalf("detalles: %+v, %v", detalles, err)
	}
	if detalles[0].Pedido.IDPedido == 0 || detalles[0].Producto.IDProducto != productos[0].IDProducto {
		t.Fatalf("detalle refs not populated: %+v", detalles[0])
	}
	usuarios, err := api.Usuarios().List(ctx)
	if err != nil || len(usuarios) != 2 || usuarios[0].Roles[0].Name != "ADMIN" {
		t.Fatalf("usuarios: %+v, %v", usuarios, err)
	}
}

func TestPedidoLifecycle(t *testing.T) {
	api := seededAPI(t, devserver.MeseroUsername)
	ctx := context.Background()

	created, err := api.Pedidos().Create(ctx, backoffice.Pedido{
		Empleado:   backoffice.EmpleadoRef{IDEmpleado: 1},
		Producto:   backoffice.ProductoRef{IDProducto: 2},
		NumMesa:    7,
		NomCliente: "Pablo",
		Total:      2.5,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.IDPedido == 0 || created.Empleado.IDEmpleado != 1 {
		t.Fatalf("unexpected pedido %+v", created)
	}

	if err := api.Pedidos().Delete(ctx, created.IDPedido); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := api.Pedidos().Delete(ctx, created.IDPedido); !errors.Is(err, backoffice.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMeseroDeniedAdminResources(t *testing.T) {
	api := seededAPI(t, devserver.MeseroUsername)

	_, err := api.Empleados().List(context.Background())
	if !errors.Is(err, cafeauth.ErrAuthorizationDenied) {
		t.Fatalf("expected denied, got %v", err)
	}
	var statusErr *backoffice.StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusForbidden || statusErr.Message != "role ADMIN required" {
		t.Fatalf("unexpected status error %+v", statusErr)
	}
}

func TestRequestShape(t *testing.T) {
	var (
		gotMethod string
		gotPath   string
		gotType   string
		gotBody   map[string]any
	)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath, gotType = r.Method, r.URL.Path, r.Header.Get("Content-Type")
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(data)
	}))
	defer ts.Close()

	api := backoffice.New(ts.URL, nil)
	in := backoffice.DetallePedido{
		Pedido:   backoffice.PedidoRef{IDPedido: 3},
		Producto: backoffice.ProductoRef{IDProducto: 9},
		Cantidad: 2,
	}
	if _, err := api.DetallesPedido().Update(context.Background(), 5, in); err != nil {
		t.Fatalf("update: %v", err)
	}

	if gotMethod != http.MethodPut || gotPath != "/detalle-pedidos/5" || gotType != "application/json" {
		t.Fatalf("unexpected request %s %s (%s)", gotMethod, gotPath, gotType)
	}
	pedido, ok := gotBody["pedido"].(map[string]any)
	if !ok || pedido["id_pedido"] != float64(3) {
		t.Fatalf("expected nested pedido ref, got %v", gotBody)
	}
}

func TestStatusErrorMatching(t *testing.T) {
	tests := []struct {
		status    int
		denied    bool
		notFound  bool
		wantError string
	}{
		{http.StatusUnauthorized, true, false, "GET /pedidos: 401 Unauthorized"},
		{http.StatusForbidden, true, false, "GET /pedidos: 403 Forbidden"},
		{http.StatusNotFound, false, true, "GET /pedidos: 404 Not Found"},
		{http.StatusInternalServerError, false, false, "GET /pedidos: 500 Internal Server Error"},
	}

	for _, tc := range tests {
		err := error(&backoffice.StatusError{Method: http.MethodGet, Path: "/pedidos", StatusCode: tc.status})
		if errors.Is(err, cafeauth.ErrAuthorizationDenied) != tc.denied {
			t.Fatalf("%d: denied mismatch", tc.status)
		}
		if errors.Is(err, backoffice.ErrNotFound) != tc.notFound {
			t.Fatalf("%d: not found mismatch", tc.status)
		}
		if err.Error() != tc.wantError {
			t.Fatalf("%d: unexpected message %q", tc.status, err.Error())
		}
	}
}

func TestErrorBodyMessage(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"precio must be positive"}`))
	}))
	defer ts.Close()

	_, err := backoffice.New(ts.URL, nil).Productos().Create(context.Background(), backoffice.Producto{})
	var statusErr *backoffice.StatusError
	if !errors.As(err, &statusErr) || statusErr.Message != "precio must be positive" {
		t.Fatalf("expected backend message, got %v", err)
	}
}
