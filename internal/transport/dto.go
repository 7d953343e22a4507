package transport

import "github.com/Skotchmaster/farmconnect/internal/models"

type LoginRequest struct {
	Role models.Role `json:"role" validate:"required,oneof=buyer farmer"`
	Name string      `json:"name" validate:"required,max=100"`
}

type UpdateUserRequest struct {
	Name     string `json:"name"     validate:"required,max=100"`
	Email    string `json:"email"    validate:"required,email"`
	Location string `json:"location" validate:"max=200"`
}

type ProductRequest struct {
	Name        string          `json:"name"        validate:"required,max=200"`
	Category    models.Category `json:"category"    validate:"omitempty,oneof=Vegetables Fruits Dairy"`
	Price       float64         `json:"price"       validate:"gte=0"`
	Unit        string          `json:"unit"        validate:"max=20"`
	Quantity    int             `json:"quantity"    validate:"gte=0"`
	Description string          `json:"description" validate:"max=2000"`
	Image       string          `json:"image"`
	Location    string          `json:"location"    validate:"max=200"`
}

type AddToCartRequest struct {
	ProductID string `json:"productId" validate:"required"`
}

type UpdateOrderStatusRequest struct {
	Status models.OrderStatus `json:"status" validate:"required,oneof=pending delivered"`
}

type SendMessageRequest struct {
	ReceiverID string `json:"receiverId" validate:"required"`
	Text       string `json:"text"       validate:"required,max=2000"`
}

type CatalogQuery struct {
	Search   string `query:"q"`
	Category string `query:"category" validate:"omitempty,oneof=All Vegetables Fruits Dairy"`
	Sort     string `query:"sort"     validate:"omitempty,oneof=name price newest"`
}

type FarmerProduct struct {
	models.Product
	LowStock bool `json:"lowStock"`
}

type Conversation struct {
	PartnerID   string          `json:"partnerId"`
	PartnerName string          `json:"partnerName"`
	LastMessage *models.Message `json:"lastMessage,omitempty"`
}

type CartResponse struct {
	Items []models.CartItem `json:"items"`
	Count int               `json:"count"`
	Total float64           `json:"total"`
}

type RecipeResponse struct {
	ProductID string `json:"productId"`
	Recipe    string `json:"recipe"`
}

type SyncResponse struct {
	Synced int `json:"synced"`
}
