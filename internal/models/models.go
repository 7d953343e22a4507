package models

import (
	"time"
)

type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleFarmer Role = "farmer"
)

type Category string

const (
	CategoryVegetables Category = "Vegetables"
	CategoryFruits     Category = "Fruits"
	CategoryDairy      Category = "Dairy"
)

var Categories = []Category{CategoryVegetables, CategoryFruits, CategoryDairy}

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusDelivered OrderStatus = "delivered"
)

type User struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Location string `json:"location"`
	Role     Role   `json:"role"`
}

// Product is a catalog entry. Seq is assigned by the store and orders
// products by creation.
type Product struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Category    Category `json:"category"`
	Price       float64  `json:"price"`
	Unit        string   `json:"unit"`
	Quantity    int      `json:"quantity"`
	Description string   `json:"description"`
	Image       string   `json:"image"`
	FarmerID    string   `json:"farmerId"`
	FarmerName  string   `json:"farmerName"`
	Location    string   `json:"location"`
	Seq         uint64   `json:"seq,omitempty"`
}

// CartItem is a copy of a Product taken when it was put in the cart.
type CartItem struct {
	Product
	CartQuantity int `json:"cartQuantity"`
}

func (i CartItem) LineTotal() float64 {
	return i.Price * float64(i.CartQuantity)
}

type Order struct {
	ID      string      `json:"id"`
	BuyerID string      `json:"buyerId"`
	Items   []CartItem  `json:"items"`
	Total   float64     `json:"total"`
	Status  OrderStatus `json:"status"`
	Date    time.Time   `json:"date"`
}

type Message struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"senderId"`
	ReceiverID string    `json:"receiverId"`
	Text       string    `json:"text"`
	Timestamp  time.Time `json:"timestamp"`
}
