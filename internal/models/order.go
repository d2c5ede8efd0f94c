package models

import "time"

// FulfillmentStatus is the closed set of order fulfillment states exposed
// by the storefront API.
type FulfillmentStatus string

const (
	FulfillmentFulfilled   FulfillmentStatus = "fulfilled"
	FulfillmentPartial     FulfillmentStatus = "partial"
	FulfillmentUnfulfilled FulfillmentStatus = "unfulfilled"
	FulfillmentRestocked   FulfillmentStatus = "restocked"
)

// Order is the record returned by the order-lookup collaborator.
type Order struct {
	Number            string            `json:"number"`
	FulfillmentStatus FulfillmentStatus `json:"fulfillment_status"`
	Total             string            `json:"total"`
	Currency          string            `json:"currency"`
	CreatedAt         time.Time         `json:"created_at"`
}

// StatusText maps the fulfillment status to visitor-facing French text.
// Unknown values fall back to the unfulfilled wording.
func (o *Order) StatusText() string {
	switch o.FulfillmentStatus {
	case FulfillmentFulfilled:
		return "expédiée"
	case FulfillmentPartial:
		return "partiellement expédiée"
	case FulfillmentRestocked:
		return "retournée"
	default:
		return "en préparation"
	}
}

// Product is one catalog entry returned by the catalog collaborator.
type Product struct {
	Title       string `json:"title"`
	BodyHTML    string `json:"body_html"`
	ProductType string `json:"product_type"`
	Price       string `json:"price"`
	Tags        string `json:"tags"`
	Handle      string `json:"handle"`
}

// CRMMessage is one recent support exchange from the CRM collaborator.
type CRMMessage struct {
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	Timestamp time.Time `json:"timestamp"`
	Direction string    `json:"direction"`
}
