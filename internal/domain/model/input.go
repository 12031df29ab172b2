package model

import (
	"fmt"
	"strings"

	"shopify-store-builder/internal/domain"
)

// StoreCredentials connect a run to an existing external Shopify store.
// They are optional, but all-or-nothing: partial credentials are a
// validation error.
type StoreCredentials struct {
	ShopifyDomain       string `json:"shopifyDomain"`
	APIKey              string `json:"apiKey"`
	APISecret           string `json:"apiSecret"`
	AdminAPIAccessToken string `json:"adminApiAccessToken"`
}

func (c *StoreCredentials) Empty() bool {
	return c == nil || (c.ShopifyDomain == "" && c.APIKey == "" && c.APISecret == "" && c.AdminAPIAccessToken == "")
}

func (c *StoreCredentials) Complete() bool {
	return c != nil && c.ShopifyDomain != "" && c.APIKey != "" && c.APISecret != "" && c.AdminAPIAccessToken != ""
}

// StoreCreationInput carries the caller-supplied parameters for one
// workflow run. Any of the stage outputs (niche, colors, products) may be
// pre-supplied, in which case the corresponding stage is skipped.
type StoreCreationInput struct {
	UserID              string       `json:"userId"`
	StoreName           string       `json:"storeName"`
	NicheDescription    string       `json:"nicheDescription,omitempty"`
	SelectedNiche       string       `json:"selectedNiche,omitempty"`
	SelectedColorScheme *ColorScheme `json:"selectedColorScheme,omitempty"`
	Products            []Product    `json:"products,omitempty"`

	ShopifyDomain       string `json:"shopifyDomain,omitempty"`
	APIKey              string `json:"apiKey,omitempty"`
	APISecret           string `json:"apiSecret,omitempty"`
	AdminAPIAccessToken string `json:"adminApiAccessToken,omitempty"`
}

// Credentials gathers the flat credential fields, or nil when none are set.
func (in *StoreCreationInput) Credentials() *StoreCredentials {
	c := &StoreCredentials{
		ShopifyDomain:       in.ShopifyDomain,
		APIKey:              in.APIKey,
		APISecret:           in.APISecret,
		AdminAPIAccessToken: in.AdminAPIAccessToken,
	}
	if c.Empty() {
		return nil
	}
	return c
}

// Validate enforces the workflow preconditions. It runs before any job row
// is created, so a failed validation leaves no trace in the job store.
func (in *StoreCreationInput) Validate() error {
	if strings.TrimSpace(in.UserID) == "" {
		return fmt.Errorf("%w: userId is required", domain.ErrInvalidArgument)
	}
	if strings.TrimSpace(in.StoreName) == "" {
		return fmt.Errorf("%w: storeName is required", domain.ErrInvalidArgument)
	}
	if c := in.Credentials(); c != nil && !c.Complete() {
		return fmt.Errorf("%w: %v", domain.ErrInvalidArgument, domain.ErrPartialCredentials)
	}
	return nil
}
