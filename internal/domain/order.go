package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Currency of every amount the storefront handles.
const Currency = "Ksh"

func init() {
	// the API expects plain JSON numbers for amounts
	decimal.MarshalJSONWithoutQuotes = true
}

type PaymentMethod string

const (
	PaymentCashOnDelivery PaymentMethod = "cod"
	PaymentMpesa          PaymentMethod = "mpesa"
	PaymentCard           PaymentMethod = "card"
)

var PaymentMethods = []PaymentMethod{PaymentCashOnDelivery, PaymentMpesa, PaymentCard}

func (m PaymentMethod) Valid() bool {
	for _, v := range PaymentMethods {
		if m == v {
			return true
		}
	}
	return false
}

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "Pending"
	OrderStatusProcessing OrderStatus = "Processing"
	OrderStatusShipped    OrderStatus = "Shipped"
	OrderStatusDelivered  OrderStatus = "Delivered"
	OrderStatusCancelled  OrderStatus = "Cancelled"
)

var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

func (s OrderStatus) Valid() bool {
	for _, v := range OrderStatuses {
		if s == v {
			return true
		}
	}
	return false
}

func (s OrderStatus) String() string {
	return string(s)
}

type ShippingInfo struct {
	FullName      string `json:"fullName"`
	Phone         string `json:"phone"`
	County        string `json:"county"`
	PickupStation string `json:"pickupStation"`
}

// OrderLine carries the price captured when the order was submitted.
type OrderLine struct {
	ProductID     string          `json:"productId"`
	ProductName   string          `json:"-"`
	Quantity      int             `json:"quantity"`
	PriceSnapshot decimal.Decimal `json:"price"`
}

func (l OrderLine) Subtotal() decimal.Decimal {
	return l.PriceSnapshot.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// OrderDraft is built from the cart at submission time and posted once.
type OrderDraft struct {
	OwnerID        string
	Lines          []OrderLine
	ShippingInfo   ShippingInfo
	PaymentMethod  PaymentMethod
	MpesaNumber    string
	Subtotal       decimal.Decimal
	ShippingCost   decimal.Decimal
	Total          decimal.Decimal
	IdempotencyKey string
	CapturedAt     time.Time
}

// Order is an order as listed by the API.
type Order struct {
	ID             string          `json:"_id"`
	UserID         string          `json:"userId"`
	Products       []OrderLine     `json:"products"`
	ShippingInfo   ShippingInfo    `json:"shippingInfo"`
	PaymentMethod  PaymentMethod   `json:"paymentMethod"`
	MpesaNumber    string          `json:"mpesaNumber,omitempty"`
	TotalAmount    decimal.Decimal `json:"totalAmount"`
	SubtotalAmount decimal.Decimal `json:"subtotalAmount"`
	ShippingCost   decimal.Decimal `json:"shippingCost"`
	Status         OrderStatus     `json:"status"`
	CreatedAt      time.Time       `json:"createdAt,omitempty"`
}
