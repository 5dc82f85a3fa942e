package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	apperrors "stayd/pkg/errors"
	"stayd/pkg/model"
)

// CatalogClient reads property metadata from the external property
// catalog service.
type CatalogClient struct {
	httpClient *HttpClient
}

func NewCatalogClient(baseURL string) *CatalogClient {
	return &CatalogClient{
		httpClient: NewHttpClient(baseURL),
	}
}

func (c *CatalogClient) GetProperty(ctx context.Context, propertyID string) (*model.Property, error) {
	path := "/api/v1/properties/" + url.PathEscape(propertyID)

	resp, err := c.httpClient.GET(ctx, path)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeUnavailable, "Property catalog is unreachable", http.StatusServiceUnavailable)
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, apperrors.NotFoundWithID("Property", propertyID)
	default:
		return nil, apperrors.Internal(
			fmt.Sprintf("Property catalog returned status %d: %s", resp.StatusCode, GetErrorMessage(resp)),
			nil,
		)
	}

	var property model.Property
	if err := resp.DecodeJSON(&property); err != nil {
		return nil, apperrors.Internal("Failed to decode property response", err)
	}

	return &property, nil
}
