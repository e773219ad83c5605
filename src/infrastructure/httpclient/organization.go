package httpclient

import (
	"context"
	"net/url"
	"strconv"

	"crm-app/src/domain"
)

// OrganizationClient implements usecase.OrganizationUsecase against a remote backend
type OrganizationClient struct {
	client *Client
}

// NewOrganizationClient creates a new remote organization client
func NewOrganizationClient(client *Client) *OrganizationClient {
	return &OrganizationClient{client: client}
}

type createOrganizationPayload struct {
	Name string `json:"name"`
}

// AddOrganization creates an organization on the remote backend
func (c *OrganizationClient) AddOrganization(ctx context.Context, name string) (*domain.Organization, error) {
	var organization domain.Organization
	err := c.client.post(ctx, "/organizations", createOrganizationPayload{Name: name}, &organization)
	if err != nil {
		return nil, err
	}
	return &organization, nil
}

// ListOrganizations retrieves all organizations from the remote backend
func (c *OrganizationClient) ListOrganizations(ctx context.Context) ([]domain.Organization, error) {
	organizations := []domain.Organization{}
	if err := c.client.get(ctx, "/organizations", nil, &organizations); err != nil {
		return nil, err
	}
	return organizations, nil
}

// TopOrganizations retrieves the most-noted organizations from the remote backend
func (c *OrganizationClient) TopOrganizations(ctx context.Context, limit int) ([]domain.OrganizationWithCount, error) {
	if limit <= 0 {
		limit = 10
	}
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))

	organizations := []domain.OrganizationWithCount{}
	if err := c.client.get(ctx, "/organizations/top", params, &organizations); err != nil {
		return nil, err
	}
	return organizations, nil
}
