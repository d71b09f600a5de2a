package entity

import "time"

// Product representa un producto del catálogo. El motor de inventario solo lo lee;
// el alta y la edición pertenecen al catálogo.
type Product struct {
	ID        string
	Name      string
	Brand     string
	Category  string
	Unit      string // un, kg, l
	Price     int64  // precio de venta en centavos
	Active    bool
	Barcode   string // EAN-13
	CreatedAt time.Time
	UpdatedAt time.Time
}
