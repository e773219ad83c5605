package handler

import (
	"time"

	"crm-app/src/domain"
)

// ワイヤ型は対応する永続型（domainエンティティ）と同名のフィールド構成を
// 維持する。対応関係はschemaパッケージが起動時に検証する

// CreateContactRequest represents the request for creating a contact
type CreateContactRequest struct {
	FirstName string `json:"first_name" binding:"required,max=100"`
	LastName  string `json:"last_name" binding:"max=100"`
}

// CreateOrganizationRequest represents the request for creating an organization
type CreateOrganizationRequest struct {
	Name string `json:"name" binding:"required,max=200"`
}

// CreateNoteRequest represents the request for creating a note
type CreateNoteRequest struct {
	Title           string `json:"title" binding:"required,max=200"`
	Content         string `json:"content"`
	ContactIDs      []int  `json:"contact_ids"`
	OrganizationIDs []int  `json:"organization_ids"`
	TaskIDs         []int  `json:"task_ids"`
}

// CreateTaskRequest represents the request for creating a task
type CreateTaskRequest struct {
	Title           string    `json:"title" binding:"required,max=200"`
	Description     *string   `json:"description"`
	DueDate         time.Time `json:"due_date" binding:"required"`
	Importance      int       `json:"importance"`
	ContactIDs      []int     `json:"contact_ids"`
	OrganizationIDs []int     `json:"organization_ids"`
}

// TagUpdateRequest represents a tag instruction bundle
type TagUpdateRequest struct {
	AddContactIDs         []int `json:"add_contact_ids"`
	RemoveContactIDs      []int `json:"remove_contact_ids"`
	AddOrganizationIDs    []int `json:"add_organization_ids"`
	RemoveOrganizationIDs []int `json:"remove_organization_ids"`
	AddTaskIDs            []int `json:"add_task_ids"`
	RemoveTaskIDs         []int `json:"remove_task_ids"`
}

// Instruction converts the request to a domain tag instruction
func (r TagUpdateRequest) Instruction() domain.TagInstruction {
	return domain.TagInstruction{
		AddContactIDs:         r.AddContactIDs,
		RemoveContactIDs:      r.RemoveContactIDs,
		AddOrganizationIDs:    r.AddOrganizationIDs,
		RemoveOrganizationIDs: r.RemoveOrganizationIDs,
		AddTaskIDs:            r.AddTaskIDs,
		RemoveTaskIDs:         r.RemoveTaskIDs,
	}
}

// ContactResponse is the wire representation of a contact
type ContactResponse struct {
	ID        int    `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// ContactWithCountResponse is a contact with its note count
type ContactWithCountResponse struct {
	ContactResponse
	NoteCount int `json:"note_count"`
}

// OrganizationResponse is the wire representation of an organization
type OrganizationResponse struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// OrganizationWithCountResponse is an organization with its note count
type OrganizationWithCountResponse struct {
	OrganizationResponse
	NoteCount int `json:"note_count"`
}

// NoteResponse is the wire representation of a note with its associations
type NoteResponse struct {
	ID            int                    `json:"id"`
	Title         string                 `json:"title"`
	Content       string                 `json:"content"`
	CreatedAt     time.Time              `json:"created_at"`
	UpdatedAt     time.Time              `json:"updated_at"`
	Contacts      []ContactResponse      `json:"contacts"`
	Organizations []OrganizationResponse `json:"organizations"`
	Tasks         []TaskResponse         `json:"tasks"`
}

// TaskResponse is the wire representation of a task with its associations
type TaskResponse struct {
	ID            int                    `json:"id"`
	Title         string                 `json:"title"`
	Description   *string                `json:"description"`
	DueDate       time.Time              `json:"due_date"`
	Importance    int                    `json:"importance"`
	Completed     bool                   `json:"completed"`
	CreatedAt     time.Time              `json:"created_at"`
	UpdatedAt     time.Time              `json:"updated_at"`
	Contacts      []ContactResponse      `json:"contacts"`
	Organizations []OrganizationResponse `json:"organizations"`
}

// BulkAddResponse reports the outcome of a bulk contact add
type BulkAddResponse struct {
	Added   []string `json:"added"`
	Skipped []string `json:"skipped"`
}

// TagDiffResponse reports the changes a tag update actually applied
type TagDiffResponse struct {
	AddedContacts        []string `json:"added_contacts"`
	RemovedContacts      []string `json:"removed_contacts"`
	AddedOrganizations   []string `json:"added_organizations"`
	RemovedOrganizations []string `json:"removed_organizations"`
	AddedTasks           []string `json:"added_tasks"`
	RemovedTasks         []string `json:"removed_tasks"`
}

// ContactWithNotesResponse bundles a contact with their recent notes
type ContactWithNotesResponse struct {
	Contact ContactResponse `json:"contact"`
	Notes   []NoteResponse  `json:"notes"`
}

// ErrorResponse is the wire format for error payloads
type ErrorResponse struct {
	Detail string `json:"detail"`
}

func toContactResponse(c domain.Contact) ContactResponse {
	return ContactResponse{
		ID:        c.ID,
		FirstName: c.FirstName,
		LastName:  c.LastName,
	}
}

func toContactResponses(contacts []domain.Contact) []ContactResponse {
	result := make([]ContactResponse, 0, len(contacts))
	for _, c := range contacts {
		result = append(result, toContactResponse(c))
	}
	return result
}

func toOrganizationResponse(o domain.Organization) OrganizationResponse {
	return OrganizationResponse{
		ID:   o.ID,
		Name: o.Name,
	}
}

func toOrganizationResponses(organizations []domain.Organization) []OrganizationResponse {
	result := make([]OrganizationResponse, 0, len(organizations))
	for _, o := range organizations {
		result = append(result, toOrganizationResponse(o))
	}
	return result
}

func toNoteResponse(n domain.Note) NoteResponse {
	return NoteResponse{
		ID:            n.ID,
		Title:         n.Title,
		Content:       n.Content,
		CreatedAt:     n.CreatedAt,
		UpdatedAt:     n.UpdatedAt,
		Contacts:      toContactResponses(n.Contacts),
		Organizations: toOrganizationResponses(n.Organizations),
		Tasks:         toTaskResponses(n.Tasks),
	}
}

func toNoteResponses(notes []domain.Note) []NoteResponse {
	result := make([]NoteResponse, 0, len(notes))
	for _, n := range notes {
		result = append(result, toNoteResponse(n))
	}
	return result
}

func toTaskResponse(t domain.Task) TaskResponse {
	return TaskResponse{
		ID:            t.ID,
		Title:         t.Title,
		Description:   t.Description,
		DueDate:       t.DueDate,
		Importance:    t.Importance,
		Completed:     t.Completed,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
		Contacts:      toContactResponses(t.Contacts),
		Organizations: toOrganizationResponses(t.Organizations),
	}
}

func toTaskResponses(tasks []domain.Task) []TaskResponse {
	result := make([]TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		result = append(result, toTaskResponse(t))
	}
	return result
}

func toTagDiffResponse(d domain.TagDiff) TagDiffResponse {
	// 変更がない種別でも空配列として必ず出力する
	return TagDiffResponse{
		AddedContacts:        orEmpty(d.AddedContacts),
		RemovedContacts:      orEmpty(d.RemovedContacts),
		AddedOrganizations:   orEmpty(d.AddedOrganizations),
		RemovedOrganizations: orEmpty(d.RemovedOrganizations),
		AddedTasks:           orEmpty(d.AddedTasks),
		RemovedTasks:         orEmpty(d.RemovedTasks),
	}
}

func orEmpty(labels []string) []string {
	if labels == nil {
		return []string{}
	}
	return labels
}
