package orders

import "time"

type Order struct {
	ID        int64     `json:"id"`
	BuyerID   int64     `json:"user_id"` // 0 once the buyer account is deleted
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// Line is one product within an order. VendorID is the product's owner.
type Line struct {
	OrderID   int64  `json:"order_id"`
	ProductID int64  `json:"product_id"`
	VendorID  int64  `json:"vendor_id"`
	Quantity  int    `json:"quantity"`
	Status    Status `json:"status"`
}

type Detail struct {
	Order
	Products []Line `json:"products"`
}

// LineView is returned by the per-line vendor actions.
type LineView struct {
	OrderID     int64  `json:"order_id"`
	BuyerID     int64  `json:"user_id"`
	BuyerName   string `json:"name"`
	Address     string `json:"address"`
	OrderStatus Status `json:"order_status"`
	ProductID   int64  `json:"product_id"`
	Quantity    int    `json:"quantity"`
	Status      Status `json:"product_status"`
}

type Buyer struct {
	ID      int64
	Name    string
	Address string
}

type CartLine struct {
	ProductID int64
	Quantity  int
}

// ProductStock is a product row read under lock.
type ProductStock struct {
	ID       int64
	VendorID int64
	Stock    int
}
