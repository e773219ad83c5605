package httpclient

import (
	"context"
	"net/url"
	"strconv"

	"crm-app/src/domain"
)

// ContactClient implements usecase.ContactUsecase against a remote backend
type ContactClient struct {
	client *Client
}

// NewContactClient creates a new remote contact client
func NewContactClient(client *Client) *ContactClient {
	return &ContactClient{client: client}
}

type createContactPayload struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// AddContact creates a contact on the remote backend
func (c *ContactClient) AddContact(ctx context.Context, firstName, lastName string) (*domain.Contact, error) {
	var contact domain.Contact
	err := c.client.post(ctx, "/contacts", createContactPayload{
		FirstName: firstName,
		LastName:  lastName,
	}, &contact)
	if err != nil {
		return nil, err
	}
	return &contact, nil
}

// BulkAddContacts creates contacts on the remote backend from name strings
func (c *ContactClient) BulkAddContacts(ctx context.Context, names []string) (*domain.BulkAddResult, error) {
	var result domain.BulkAddResult
	if err := c.client.post(ctx, "/contacts/bulk", names, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListContacts retrieves all contacts from the remote backend
func (c *ContactClient) ListContacts(ctx context.Context) ([]domain.Contact, error) {
	contacts := []domain.Contact{}
	if err := c.client.get(ctx, "/contacts", nil, &contacts); err != nil {
		return nil, err
	}
	return contacts, nil
}

// SearchContacts searches contacts on the remote backend
func (c *ContactClient) SearchContacts(ctx context.Context, query string) ([]domain.Contact, error) {
	params := url.Values{}
	params.Set("query", query)

	contacts := []domain.Contact{}
	if err := c.client.get(ctx, "/contacts/search", params, &contacts); err != nil {
		return nil, err
	}
	return contacts, nil
}

// TopContacts retrieves the most-noted contacts from the remote backend
func (c *ContactClient) TopContacts(ctx context.Context, limit int) ([]domain.ContactWithCount, error) {
	if limit <= 0 {
		limit = 10
	}
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))

	contacts := []domain.ContactWithCount{}
	if err := c.client.get(ctx, "/contacts/top", params, &contacts); err != nil {
		return nil, err
	}
	return contacts, nil
}

// ピアのGET /contacts/:idが返す複合レスポンス
type contactWithNotes struct {
	Contact domain.Contact `json:"contact"`
	Notes   []domain.Note  `json:"notes"`
}

// GetContactWithNotes retrieves a contact with their recent notes from the remote backend
func (c *ContactClient) GetContactWithNotes(ctx context.Context, id, noteLimit int) (*domain.Contact, []domain.Note, error) {
	if noteLimit <= 0 {
		noteLimit = 10
	}
	params := url.Values{}
	params.Set("note_limit", strconv.Itoa(noteLimit))

	var result contactWithNotes
	if err := c.client.get(ctx, "/contacts/"+strconv.Itoa(id), params, &result); err != nil {
		return nil, nil, err
	}
	return &result.Contact, result.Notes, nil
}
