package devserver

import (
	"time"

	"github.com/agosto18/cafeauth/backoffice"
)

// Seeded accounts.
const (
	AdminUsername  = "admin"
	AdminPassword  = "admin-password"
	MeseroUsername = "mesero"
	MeseroPassword = "mesero-password"
)

// Seed adds an ADMIN and a MESERO account and a few rows per resource.
func (s *Server) Seed() error {
	if _, err := s.AddUser(backoffice.UsuarioInput{
		Username: AdminUsername, Password: AdminPassword,
		Nombre: "Ana", Apellido: "Ruiz", Email: "ana@cafe.test",
	}.WithRole(RoleIDAdmin)); err != nil {
		return err
	}
	if _, err := s.AddUser(backoffice.UsuarioInput{
		Username: MeseroUsername, Password: MeseroPassword,
		Nombre: "Luis", Apellido: "Paz", Email: "luis@cafe.test",
	}.WithRole(RoleIDMesero)); err != nil {
		return err
	}

	today := time.Now().Format("2006-01-02")
	espresso := s.productos.insert(backoffice.Producto{
		Nombre: "Espresso", Descripcion: "Café corto", Precio: 1.8, Categoria: "Bebidas calientes",
		EstadoProducto: "Disponible", Tamano: "Pequeño", FechaRegistro: today, Alergenos: "Ninguno",
	})
	croissant := s.productos.insert(backoffice.Producto{
		Nombre: "Croissant", Descripcion: "Hojaldre de mantequilla", Precio: 2.5, Categoria: "Bollería",
		EstadoProducto: "Disponible", Tamano: "Mediano", FechaRegistro: today, Alergenos: "Gluten, lácteos",
	})
	luis := s.empleados.insert(backoffice.Empleado{
		Nombre: "Luis", Apellido: "Paz", Genero: "Masculino", Email: "luis@cafe.test",
		Telefono: "555-0101", Puesto: "Mesero", Salario: 1200,
	})
	s.empleados.insert(backoffice.Empleado{
		Nombre: "Ana", Apellido: "Ruiz", Genero: "Femenino", Email: "ana@cafe.test",
		Telefono: "555-0100", Puesto: "Gerente", Salario: 2100,
	})
	pedido := s.pedidos.insert(backoffice.Pedido{
		Empleado:     backoffice.EmpleadoRef{IDEmpleado: luis.IDEmpleado},
		Producto:     backoffice.ProductoRef{IDProducto: espresso.IDProducto},
		NumMesa:      4,
		NomCliente:   "Marta",
		NotaEspecial: "Sin azúcar",
		Total:        4.3,
	})
	s.detallesPedido.insert(backoffice.DetallePedido{
		Pedido: backoffice.PedidoRef{IDPedido: pedido.IDPedido}, Producto: backoffice.ProductoRef{IDProducto: espresso.IDProducto},
		Cantidad: 1, Subtotal: 1.8, FechaDetalle: today, EstadoDetalle: "Servido",
	})
	s.detallesPedido.insert(backoffice.DetallePedido{
		Pedido: backoffice.PedidoRef{IDPedido: pedido.IDPedido}, Producto: backoffice.ProductoRef{IDProducto: croissant.IDProducto},
		Cantidad: 1, Subtotal: 2.5, FechaDetalle: today, EstadoDetalle: "Pendiente",
	})
	return nil
}
