package backoffice

// Producto is a menu item.
type Producto struct {
	IDProducto     int64   `json:"id_producto,omitempty"`
	Nombre         string  `json:"nombre"`
	Descripcion    string  `json:"descripcion"`
	Precio         float64 `json:"precio"`
	Categoria      string  `json:"categoria"`
	EstadoProducto string  `json:"estado_producto"`
	Tamano         string  `json:"tamaño"`
	FechaRegistro  string  `json:"fecha_registro,omitempty"`
	Alergenos      string  `json:"alergenos"`
}

// Empleado is a staff member.
type Empleado struct {
	IDEmpleado int64   `json:"id_empleado,omitempty"`
	Nombre     string  `json:"nombre"`
	Apellido   string  `json:"apellido"`
	Genero     string  `json:"genero"`
	Email      string  `json:"email"`
	Telefono   string  `json:"telefono"`
	Puesto     string  `json:"puesto"`
	Salario    float64 `json:"salario"`
}

type EmpleadoRef struct {
	IDEmpleado int64 `json:"id_empleado"`
}

type ProductoRef struct {
	IDProducto int64 `json:"id_producto"`
}

type PedidoRef struct {
	IDPedido int64 `json:"id_pedido"`
}

// Pedido is a table order.
type Pedido struct {
	IDPedido     int64       `json:"id_pedido,omitempty"`
	Empleado     EmpleadoRef `json:"empleado"`
	Producto     ProductoRef `json:"producto"`
	NumMesa      int         `json:"num_mesa"`
	NomCliente   string      `json:"nom_cliente"`
	NotaEspecial string      `json:"nota_especial"`
	Total        float64     `json:"total"`
}

// DetallePedido is one line of an order.
type DetallePedido struct {
	IDDetalle     int64       `json:"id_detalle,omitempty"`
	Pedido        PedidoRef   `json:"pedido"`
	Producto      ProductoRef `json:"producto"`
	Cantidad      int         `json:"cantidad"`
	Subtotal      float64     `json:"subtotal"`
	NotaDetalle   string      `json:"nota_detalle"`
	FechaDetalle  string      `json:"fecha_detalle,omitempty"`
	EstadoDetalle string      `json:"estado_detalle"`
	Descuento     float64     `json:"descuento"`
}

// Rol is a role as listed by the API.
type Rol struct {
	ID   int64  `json:"id"`
	Name string `json:"name,omitempty"`
}

// Usuario is a console account. The API never returns passwords.
type Usuario struct {
	ID       int64  `json:"id,omitempty"`
	Username string `json:"username"`
	Nombre   string `json:"nombre"`
	Apellido string `json:"apellido"`
	Email    string `json:"email"`
	Roles    []Rol  `json:"roles,omitempty"`
}

type RolRef struct {
	ID int64 `json:"id"`
}

// UsuarioInput is the create and update payload for usuarios. Password is
// sent only when set.
type UsuarioInput struct {
	Username string   `json:"username"`
	Password string   `json:"password,omitempty"`
	Nombre   string   `json:"nombre"`
	Apellido string   `json:"apellido"`
	Email    string   `json:"email"`
	Roles    []RolRef `json:"roles"`
}

// WithRole returns a copy of in assigned to the single role id.
func (in UsuarioInput) WithRole(id int64) UsuarioInput {
	in.Roles = []RolRef{{ID: id}}
	return in
}
