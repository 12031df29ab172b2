package shopify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"shopify-store-builder/internal/domain/model"
	"shopify-store-builder/internal/domain/ports/adapter"
	"shopify-store-builder/internal/domain/ports/repository"
)

var _ adapter.StoreAPI = (*StoreOperations)(nil)

// StoreOperations implements the StoreAPI port. Store records live in our
// database; remote calls go to the Shopify Admin REST API using the store's
// access token. A store created without credentials stays local until
// OAuth connects it, and remote operations on it fail.
type StoreOperations struct {
	stores       repository.StoreRepository
	apiVersion   string
	domainSuffix string
	newClient    func(accessToken, shop string) (*RestClient, error)
}

func NewStoreOperations(stores repository.StoreRepository, apiVersion, domainSuffix string) *StoreOperations {
	if apiVersion == "" {
		apiVersion = "2025-01"
	}
	if domainSuffix == "" {
		domainSuffix = ".myshopify.com"
	}
	s := &StoreOperations{stores: stores, apiVersion: apiVersion, domainSuffix: domainSuffix}
	s.newClient = func(accessToken, shop string) (*RestClient, error) {
		return NewRestClient(accessToken, shop, s.apiVersion)
	}
	return s
}

func (s *StoreOperations) CreateStore(ctx context.Context, name, ownerID string, creds *model.StoreCredentials) (string, error) {
	store := &model.ShopifyStore{
		ID:        uuid.NewString(),
		UserID:    ownerID,
		StoreName: name,
		Status:    model.StoreStatusCreating,
	}
	if creds != nil {
		store.ShopifyDomain = creds.ShopifyDomain
		store.AccessToken = creds.AdminAPIAccessToken
		store.APIKey = creds.APIKey
		store.APISecret = creds.APISecret
	} else {
		store.ShopifyDomain = slugify(name) + s.domainSuffix
	}
	if err := s.stores.Save(ctx, nil, store); err != nil {
		return "", fmt.Errorf("create store: %w", err)
	}
	return store.ID, nil
}

func (s *StoreOperations) CreateProduct(ctx context.Context, storeID string, p adapter.ProductPayload) (string, error) {
	client, err := s.clientFor(ctx, storeID)
	if err != nil {
		return "", err
	}

	product := map[string]interface{}{
		"title":        p.Title,
		"body_html":    p.BodyHTML,
		"product_type": p.ProductType,
		"variants":     []map[string]interface{}{{"price": p.Price}},
	}
	if p.ImageURL != "" {
		product["images"] = []map[string]interface{}{{"src": p.ImageURL, "alt": p.ImageAlt}}
	}

	var resp struct {
		Product struct {
			ID json.Number `json:"id"`
		} `json:"product"`
	}
	if err := client.Post(ctx, "products", map[string]interface{}{"product": product}, &resp); err != nil {
		return "", err
	}
	if resp.Product.ID == "" {
		return "", errors.New("shopify: product response missing id")
	}
	return resp.Product.ID.String(), nil
}

func (s *StoreOperations) UploadProductImage(ctx context.Context, storeID, productID, imageURL, altText string) error {
	client, err := s.clientFor(ctx, storeID)
	if err != nil {
		return err
	}
	body := map[string]interface{}{
		"image": map[string]interface{}{"src": imageURL, "alt": altText},
	}
	return client.Post(ctx, fmt.Sprintf("products/%s/images", productID), body, nil)
}

func (s *StoreOperations) ApplyColorScheme(ctx context.Context, storeID string, scheme *model.ColorScheme) error {
	client, err := s.clientFor(ctx, storeID)
	if err != nil {
		return err
	}

	var themes struct {
		Themes []struct {
			ID   json.Number `json:"id"`
			Role string      `json:"role"`
		} `json:"themes"`
	}
	if err := client.Get(ctx, "themes", nil, &themes); err != nil {
		return err
	}
	var active string
	for _, t := range themes.Themes {
		if t.Role == "main" {
			active = t.ID.String()
			break
		}
	}
	if active == "" {
		return errors.New("shopify: no active theme found")
	}

	accent := scheme.PrimaryColor
	if len(scheme.AccentColors) > 0 {
		accent = scheme.AccentColors[0]
	}
	settings, _ := json.Marshal(map[string]interface{}{
		"colors": map[string]string{
			"primary":   scheme.PrimaryColor,
			"secondary": scheme.SecondaryColor,
			"accent":    accent,
		},
	})

	body := map[string]interface{}{
		"asset": map[string]string{
			"key":   "config/settings_schema.json",
			"value": string(settings),
		},
	}
	return client.Put(ctx, fmt.Sprintf("themes/%s/assets", active), body, nil)
}

func (s *StoreOperations) ActivateStore(ctx context.Context, storeID string) error {
	return s.stores.UpdateStatus(ctx, nil, storeID, model.StoreStatusActive)
}

func (s *StoreOperations) clientFor(ctx context.Context, storeID string) (*RestClient, error) {
	store, err := s.stores.FindByID(ctx, nil, storeID)
	if err != nil {
		return nil, err
	}
	if store.AccessToken == "" {
		return nil, fmt.Errorf("shopify: store %s access token not found", storeID)
	}
	return s.newClient(store.AccessToken, store.ShopifyDomain)
}

func slugify(name string) string {
	var b strings.Builder
	prevDash := true
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			prevDash = false
		default:
			if !prevDash {
				b.WriteByte('-')
				prevDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
