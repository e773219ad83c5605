package httpclient

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"crm-app/src/domain"
	"crm-app/src/usecase"
)

// NoteClient implements usecase.NoteUsecase against a remote backend
type NoteClient struct {
	client *Client
}

// NewNoteClient creates a new remote note client
func NewNoteClient(client *Client) *NoteClient {
	return &NoteClient{client: client}
}

type createNotePayload struct {
	Title           string `json:"title"`
	Content         string `json:"content"`
	ContactIDs      []int  `json:"contact_ids,omitempty"`
	OrganizationIDs []int  `json:"organization_ids,omitempty"`
	TaskIDs         []int  `json:"task_ids,omitempty"`
}

// tagPayload is shared by note and task tag updates
type tagPayload struct {
	AddContactIDs         []int `json:"add_contact_ids,omitempty"`
	RemoveContactIDs      []int `json:"remove_contact_ids,omitempty"`
	AddOrganizationIDs    []int `json:"add_organization_ids,omitempty"`
	RemoveOrganizationIDs []int `json:"remove_organization_ids,omitempty"`
	AddTaskIDs            []int `json:"add_task_ids,omitempty"`
	RemoveTaskIDs         []int `json:"remove_task_ids,omitempty"`
}

// CreateNote creates a note on the remote backend
func (c *NoteClient) CreateNote(ctx context.Context, req usecase.CreateNoteRequest) (*domain.Note, error) {
	var note domain.Note
	err := c.client.post(ctx, "/notes", createNotePayload{
		Title:           req.Title,
		Content:         req.Content,
		ContactIDs:      req.ContactIDs,
		OrganizationIDs: req.OrganizationIDs,
		TaskIDs:         req.TaskIDs,
	}, &note)
	if err != nil {
		return nil, err
	}
	return &note, nil
}

// ListNotes retrieves notes from the remote backend.
// リモート側のエラーはそのまま呼び出し元へ伝える
func (c *NoteClient) ListNotes(ctx context.Context, filter domain.NoteFilter) ([]domain.Note, error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	params := url.Values{}
	params.Set("limit", strconv.Itoa(filter.Limit))
	if filter.ContactID != nil {
		params.Set("contact_id", strconv.Itoa(*filter.ContactID))
	}
	if filter.OrganizationID != nil {
		params.Set("organization_id", strconv.Itoa(*filter.OrganizationID))
	}

	notes := []domain.Note{}
	if err := c.client.get(ctx, "/notes", params, &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

// GetNote retrieves a single note from the remote backend
func (c *NoteClient) GetNote(ctx context.Context, id int) (*domain.Note, error) {
	var note domain.Note
	if err := c.client.get(ctx, fmt.Sprintf("/notes/%d", id), nil, &note); err != nil {
		return nil, err
	}
	return &note, nil
}

// TagNote applies a tag instruction bundle to a note on the remote backend
func (c *NoteClient) TagNote(ctx context.Context, id int, instr domain.TagInstruction) (*domain.TagDiff, error) {
	var diff domain.TagDiff
	err := c.client.patch(ctx, fmt.Sprintf("/notes/%d/tags", id), tagPayload{
		AddContactIDs:         instr.AddContactIDs,
		RemoveContactIDs:      instr.RemoveContactIDs,
		AddOrganizationIDs:    instr.AddOrganizationIDs,
		RemoveOrganizationIDs: instr.RemoveOrganizationIDs,
		AddTaskIDs:            instr.AddTaskIDs,
		RemoveTaskIDs:         instr.RemoveTaskIDs,
	}, &diff)
	if err != nil {
		return nil, err
	}
	return &diff, nil
}
