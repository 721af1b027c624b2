package prestashop

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"storesync/internal/logger"
)

// APIError is returned for any non-2xx response or undecodable body.
// Strategies treat it as transient and leave the retry decision to the
// caller.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API request failed: %d - %s", e.StatusCode, e.Body)
}

type Client struct {
	baseURL    string
	apiKey     string
	apiVersion string
	httpClient *http.Client
	logger     *logger.Logger
}

func NewClient(baseURL, apiKey, apiVersion string, logger *logger.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		apiVersion: apiVersion,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

func (c *Client) do(ctx context.Context, method, path string, payload, out interface{}) error {
	var body io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal payload: %w", err)
		}
		body = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.SetBasicAuth(c.apiKey, "")
	req.Header.Set("Content-Type", "application/json")

	q := req.URL.Query()
	q.Set("output_format", "JSON")
	req.URL.RawQuery = q.Encode()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(resp.Body)
		return &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return &APIError{StatusCode: resp.StatusCode, Body: fmt.Sprintf("undecodable body: %v", err)}
		}
	}

	return nil
}

// CreateProduct pushes a new product and returns the response carrying
// the assigned remote id.
func (c *Client) CreateProduct(ctx context.Context, payload *ProductPayload) (*ProductResponse, error) {
	var resp ProductResponse
	if err := c.do(ctx, http.MethodPost, "/api/products", wrapProduct(payload, c.apiVersion), &resp); err != nil {
		return nil, err
	}
	if err := c.pushQuantity(ctx, resp.RemoteID(), payload.Quantity); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) UpdateProduct(ctx context.Context, remoteID int, payload *ProductPayload) (*ProductResponse, error) {
	var resp ProductResponse
	path := fmt.Sprintf("/api/products/%d", remoteID)
	if err := c.do(ctx, http.MethodPut, path, wrapProduct(payload, c.apiVersion), &resp); err != nil {
		return nil, err
	}
	if err := c.pushQuantity(ctx, remoteID, payload.Quantity); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) GetProduct(ctx context.Context, remoteID int) (*ProductResponse, error) {
	var resp ProductResponse
	path := fmt.Sprintf("/api/products/%d", remoteID)
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) CreateCategory(ctx context.Context, payload *CategoryPayload) (*CategoryResponse, error) {
	var resp CategoryResponse
	if err := c.do(ctx, http.MethodPost, "/api/categories", map[string]interface{}{"category": payload}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) UpdateCategory(ctx context.Context, remoteID int, payload *CategoryPayload) (*CategoryResponse, error) {
	var resp CategoryResponse
	path := fmt.Sprintf("/api/categories/%d", remoteID)
	if err := c.do(ctx, http.MethodPut, path, map[string]interface{}{"category": payload}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) GetCategory(ctx context.Context, remoteID int) (*CategoryResponse, error) {
	var resp CategoryResponse
	path := fmt.Sprintf("/api/categories/%d", remoteID)
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpdateProductCategories replaces the remote category associations of a
// product without touching the rest of its fields.
func (c *Client) UpdateProductCategories(ctx context.Context, remoteID int, categoryIDs []int) error {
	refs := make([]IDRef, len(categoryIDs))
	for i, id := range categoryIDs {
		refs[i] = IDRef{ID: id}
	}
	path := fmt.Sprintf("/api/products/%d", remoteID)
	payload := map[string]interface{}{
		"product": map[string]interface{}{
			"associations": Associations{Categories: refs},
		},
	}
	return c.do(ctx, http.MethodPut, path, payload, nil)
}

func (c *Client) UploadImage(ctx context.Context, productRemoteID int, url string) (*ImageResponse, error) {
	var resp ImageResponse
	path := fmt.Sprintf("/api/images/products/%d", productRemoteID)
	payload := map[string]interface{}{"image": map[string]string{"url": url}}
	if err := c.do(ctx, http.MethodPost, path, payload, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) SetCoverImage(ctx context.Context, productRemoteID, imageRemoteID int) error {
	path := fmt.Sprintf("/api/images/products/%d/%d", productRemoteID, imageRemoteID)
	payload := map[string]interface{}{"image": map[string]bool{"cover": true}}
	return c.do(ctx, http.MethodPut, path, payload, nil)
}

func (c *Client) SetSpecificPrice(ctx context.Context, productRemoteID int, payload SpecificPricePayload) error {
	body := map[string]interface{}{
		"specific_price": map[string]interface{}{
			"id_product":     productRemoteID,
			"price_group":    payload.PriceGroup,
			"price":          payload.Net,
			"price_with_tax": payload.Gross,
		},
	}
	return c.do(ctx, http.MethodPost, "/api/specific_prices", body, nil)
}

func (c *Client) SetProductFeatures(ctx context.Context, productRemoteID int, features []FeaturePayload) error {
	path := fmt.Sprintf("/api/products/%d/features", productRemoteID)
	return c.do(ctx, http.MethodPut, path, map[string]interface{}{"features": features}, nil)
}

func (c *Client) SetCompatibilities(ctx context.Context, productRemoteID int, compatibilities []CompatibilityPayload) error {
	path := fmt.Sprintf("/api/products/%d/compatibilities", productRemoteID)
	return c.do(ctx, http.MethodPut, path, map[string]interface{}{"compatibilities": compatibilities}, nil)
}

func (c *Client) CreateCombination(ctx context.Context, productRemoteID int, payload CombinationPayload) (*CombinationResponse, error) {
	var resp CombinationResponse
	body := map[string]interface{}{
		"combination": map[string]interface{}{
			"id_product":   productRemoteID,
			"reference":    payload.Reference,
			"attributes":   payload.Attributes,
			"price_impact": payload.PriceImpact,
			"quantity":     payload.Quantity,
		},
	}
	if err := c.do(ctx, http.MethodPost, "/api/combinations", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// wrapProduct applies the per-version payload shim. 1.6 accepts quantity
// inline on the product resource; 1.7 ignores it there and requires a
// stock_availables write instead.
func wrapProduct(payload *ProductPayload, apiVersion string) map[string]interface{} {
	if strings.HasPrefix(apiVersion, "1.6") {
		return map[string]interface{}{"product": payload}
	}
	shimmed := *payload
	shimmed.Quantity = 0
	return map[string]interface{}{"product": &shimmed}
}

// pushQuantity writes stock through stock_availables on 1.7+; on 1.6 the
// quantity already travelled inside the product payload.
func (c *Client) pushQuantity(ctx context.Context, productRemoteID, quantity int) error {
	if strings.HasPrefix(c.apiVersion, "1.6") {
		return nil
	}
	if productRemoteID == 0 {
		// Caller is about to fail on the missing id; nothing to write.
		return nil
	}
	path := fmt.Sprintf("/api/stock_availables/%d", productRemoteID)
	payload := map[string]interface{}{
		"stock_available": map[string]int{"quantity": quantity},
	}
	return c.do(ctx, http.MethodPut, path, payload, nil)
}
