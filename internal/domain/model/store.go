package model

import "time"

type StoreStatus string

const (
	StoreStatusCreating StoreStatus = "creating"
	StoreStatusActive   StoreStatus = "active"
	StoreStatusFailed   StoreStatus = "failed"
)

// ShopifyStore is the platform-side record of a storefront. The access
// token and API secret are encrypted at rest by the repository layer.
type ShopifyStore struct {
	ID            string
	UserID        string
	StoreName     string
	ShopifyDomain string
	AccessToken   string
	APIKey        string
	APISecret     string
	Status        StoreStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
