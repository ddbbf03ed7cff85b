package api

import "time"

// Credentials is the login request body.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration is the register request body.
type Registration struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
}

// TokenResponse is the login response body.
type TokenResponse struct {
	Token     string `json:"token"`
	TokenType string `json:"tokenType"`
}

// Profile is the authenticated user's account as the backend stores it.
type Profile struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Address is a saved delivery address.
type Address struct {
	ID           int64  `json:"id"`
	FullName     string `json:"fullName"`
	Phone        string `json:"phone"`
	AddressLine1 string `json:"addressLine1"`
	AddressLine2 string `json:"addressLine2,omitempty"`
	City         string `json:"city"`
	State        string `json:"state"`
	Pincode      string `json:"pincode"`
	AddressType  string `json:"addressType"`
	IsDefault    bool   `json:"isDefault"`
}

// OrderLine is one bag entry sent with an order.
type OrderLine struct {
	ItemID   int64 `json:"itemId"`
	Quantity int   `json:"quantity"`
}

// OrderRequest is the place-order request body.
type OrderRequest struct {
	Items           []OrderLine `json:"items"`
	DeliveryAddress string      `json:"deliveryAddress"`
	PaymentMethod   string      `json:"paymentMethod"`
	TotalAmount     float64     `json:"totalAmount"`
}

// Order is an order as returned by the backend.
type Order struct {
	ID              string      `json:"id"`
	OrderNumber     string      `json:"orderNumber"`
	Status          string      `json:"status"`
	PaymentMethod   string      `json:"paymentMethod"`
	DeliveryAddress string      `json:"deliveryAddress"`
	TotalAmount     float64     `json:"totalAmount"`
	OrderItems      []OrderLine `json:"orderItems"`
	CreatedAt       time.Time   `json:"createdAt"`
}
