package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/agosto18/cafeauth/backoffice"
	"github.com/agosto18/cafeauth/cmd/cafectl/internal/config"
	"github.com/agosto18/cafeauth/permission"
)

// resourceSpec describes one back-office collection as a command group.
type resourceSpec[Out, In any] struct {
	use     string
	short   string
	aliases []string
	// route is the console screen that must admit the session first.
	route    string
	resource func(*backoffice.Client) backoffice.Resource[Out, In]
	header   []string
	row      func(Out) []string
	// readOnly collections only support list.
	readOnly bool
}

func resourceCommands() []*cobra.Command {
	return []*cobra.Command{
		newResourceCommand(resourceSpec[backoffice.Producto, backoffice.Producto]{
			use:      "productos",
			short:    "Manage menu items",
			aliases:  []string{"producto"},
			route:    permission.PathProductos,
			resource: (*backoffice.Client).Productos,
			header:   []string{"ID", "NOMBRE", "CATEGORIA", "PRECIO", "ESTADO"},
			row: func(p backoffice.Producto) []string {
				return []string{id(p.IDProducto), p.Nombre, p.Categoria, money(p.Precio), p.EstadoProducto}
			},
		}),
		newResourceCommand(resourceSpec[backoffice.Empleado, backoffice.Empleado]{
			use:      "empleados",
			short:    "Manage staff",
			aliases:  []string{"empleado"},
			route:    permission.PathEmpleados,
			resource: (*backoffice.Client).Empleados,
			header:   []string{"ID", "NOMBRE", "PUESTO", "EMAIL"},
			row: func(e backoffice.Empleado) []string {
				return []string{id(e.IDEmpleado), e.Nombre + " " + e.Apellido, e.Puesto, e.Email}
			},
		}),
		newResourceCommand(resourceSpec[backoffice.Pedido, backoffice.Pedido]{
			use:      "pedidos",
			short:    "Manage table orders",
			aliases:  []string{"pedido"},
			route:    permission.PathPedidos,
			resource: (*backoffice.Client).Pedidos,
			header:   []string{"ID", "MESA", "CLIENTE", "EMPLEADO", "TOTAL"},
			row: func(p backoffice.Pedido) []string {
				return []string{id(p.IDPedido), strconv.Itoa(p.NumMesa), p.NomCliente, id(p.Empleado.IDEmpleado), money(p.Total)}
			},
		}),
		newResourceCommand(resourceSpec[backoffice.DetallePedido, backoffice.DetallePedido]{
			use:      "detalles-pedido",
			short:    "Manage order lines",
			aliases:  []string{"detalles"},
			route:    permission.PathDetallePedido,
			resource: (*backoffice.Client).DetallesPedido,
			header:   []string{"ID", "PEDIDO", "PRODUCTO", "CANTIDAD", "SUBTOTAL", "ESTADO"},
			row: func(d backoffice.DetallePedido) []string {
				return []string{
					id(d.IDDetalle), id(d.Pedido.IDPedido), id(d.Producto.IDProducto),
					strconv.Itoa(d.Cantidad), money(d.Subtotal), d.EstadoDetalle,
				}
			},
		}),
		newResourceCommand(resourceSpec[backoffice.Usuario, backoffice.UsuarioInput]{
			use:      "usuarios",
			short:    "Manage console accounts",
			aliases:  []string{"usuario"},
			route:    permission.PathUsuarios,
			resource: (*backoffice.Client).Usuarios,
			header:   []string{"ID", "USERNAME", "NOMBRE", "EMAIL", "ROLES"},
			row: func(u backoffice.Usuario) []string {
				names := make([]string, 0, len(u.Roles))
				for _, r := range u.Roles {
					names = append(names, r.Name)
				}
				return []string{id(u.ID), u.Username, u.Nombre + " " + u.Apellido, u.Email, strings.Join(names, ", ")}
			},
		}),
		// Roles are only managed from the usuarios screen.
		newResourceCommand(resourceSpec[backoffice.Rol, backoffice.Rol]{
			use:      "roles",
			short:    "List account roles",
			route:    permission.PathUsuarios,
			resource: (*backoffice.Client).Roles,
			header:   []string{"ID", "NAME"},
			row: func(r backoffice.Rol) []string {
				return []string{id(r.ID), r.Name}
			},
			readOnly: true,
		}),
	}
}

func newResourceCommand[Out, In any](spec resourceSpec[Out, In]) *cobra.Command {
	group := &cobra.Command{
		Use:     spec.use,
		Short:   spec.short,
		Aliases: spec.aliases,
	}

	group.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List " + spec.use,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := spec.open(cmd.Context())
			if err != nil {
				return err
			}
			items, err := res.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(items) == 0 {
				pterm.Info.WithWriter(cmd.OutOrStdout()).Printfln("No %s", spec.use)
				return nil
			}
			data := pterm.TableData{spec.header}
			for _, item := range items {
				data = append(data, spec.row(item))
			}
			return pterm.DefaultTable.WithWriter(cmd.OutOrStdout()).WithHasHeader().WithData(data).Render()
		},
	})

	if spec.readOnly {
		return group
	}

	group.AddCommand(&cobra.Command{
		Use:   "get <id>",
		Short: "Show one of " + spec.use,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			itemID, err := parseID(args[0])
			if err != nil {
				return err
			}
			res, err := spec.open(cmd.Context())
			if err != nil {
				return err
			}
			item, err := res.Get(cmd.Context(), itemID)
			if err != nil {
				return err
			}
			data := pterm.TableData{spec.header, spec.row(item)}
			return pterm.DefaultTable.WithWriter(cmd.OutOrStdout()).WithHasHeader().WithData(data).Render()
		},
	})

	group.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete one of " + spec.use,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			itemID, err := parseID(args[0])
			if err != nil {
				return err
			}
			res, err := spec.open(cmd.Context())
			if err != nil {
				return err
			}
			if err := res.Delete(cmd.Context(), itemID); err != nil {
				return err
			}
			pterm.Success.WithWriter(cmd.OutOrStdout()).Printfln("Deleted %s %d", strings.TrimSuffix(spec.use, "s"), itemID)
			return nil
		},
	})

	return group
}

// open checks the console route for the current session before any API
// call is made, the same way the screen would.
func (spec resourceSpec[Out, In]) open(ctx context.Context) (backoffice.Resource[Out, In], error) {
	cfg := config.MustFromContext(ctx)
	dest, err := cfg.Auth.Navigate(ctx, spec.route)
	if err != nil {
		return backoffice.Resource[Out, In]{}, err
	}
	switch dest.Decision {
	case permission.RedirectLogin:
		return backoffice.Resource[Out, In]{}, errNotLoggedIn
	case permission.RedirectUnauthorized:
		return backoffice.Resource[Out, In]{}, fmt.Errorf("access to %s denied for this account", dest.Requested)
	}
	return spec.resource(cfg.API), nil
}

func parseID(s string) (int64, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return v, nil
}

func id(v int64) string {
	return strconv.FormatInt(v, 10)
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
