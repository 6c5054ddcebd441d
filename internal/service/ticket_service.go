package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ticketflow/ticketflow/internal/cache"
	"github.com/ticketflow/ticketflow/internal/domain"
	"github.com/ticketflow/ticketflow/internal/events"
	"github.com/ticketflow/ticketflow/internal/repository"
	"github.com/ticketflow/ticketflow/internal/validation"
	apperrors "github.com/ticketflow/ticketflow/pkg/util"
)

// TicketService coordinates ticket workflows.
type TicketService struct {
	tickets    repository.TicketRepository
	users      repository.UserRepository
	userCache  *cache.UserSummaryCache
	dispatcher events.Dispatcher
}

// TicketDependencies bundles requirements for the ticket service.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	UserRepo   repository.UserRepository
	UserCache  *cache.UserSummaryCache
	Dispatcher events.Dispatcher
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:    deps.TicketRepo,
		users:      deps.UserRepo,
		userCache:  deps.UserCache,
		dispatcher: deps.Dispatcher,
	}
}

// TicketView is a ticket with its assignee references resolved to user
// summaries. Responses never expose raw reference ids alone.
type TicketView struct {
	Ticket    domain.Ticket
	Assignees []domain.UserSummary
}

// TicketCreateInput describes the ticket creation payload.
type TicketCreateInput struct {
	Title       string
	Description string
	Status      domain.TicketStatus
	Priority    *int
	AssigneeIDs []string
}

// DefaultPriority applies when create omits a priority.
const DefaultPriority = 3

// Validate applies the full ticket schema.
func (in TicketCreateInput) Validate() error {
	report := validation.NewReport()
	report.TicketTitle(in.Title)
	report.TicketDescription(in.Description)
	if in.Status != "" {
		report.TicketStatus(in.Status)
	}
	if in.Priority != nil {
		report.TicketPriority(*in.Priority)
	}
	return report.Err()
}

// TicketUpdateInput carries a partial update; nil fields are untouched.
type TicketUpdateInput struct {
	Title       *string
	Description *string
	Status      *domain.TicketStatus
	Priority    *int
	AssigneeIDs *[]string
}

// Validate checks each supplied field against the create constraints.
func (in TicketUpdateInput) Validate() error {
	report := validation.NewReport()
	if in.Title != nil {
		report.TicketTitle(*in.Title)
	}
	if in.Description != nil {
		report.TicketDescription(*in.Description)
	}
	if in.Status != nil {
		report.TicketStatus(*in.Status)
	}
	if in.Priority != nil {
		report.TicketPriority(*in.Priority)
	}
	return report.Err()
}

// ListFilter captures listing parameters from the query string.
type ListFilter struct {
	Search  *string
	Status  *domain.TicketStatus
	Page    int
	Limit   int
	SortAsc bool
}

// ListResult is one page of tickets plus pagination metadata.
type ListResult struct {
	Tickets []TicketView
	HasMore bool
	Total   int
}

// List returns a filtered, paginated page of tickets with resolved
// assignees. Listing and counting are independent reads; the page and
// the total may disagree under concurrent writes.
func (s *TicketService) List(ctx context.Context, filter ListFilter) (*ListResult, error) {
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}
	if filter.Status != nil && !domain.ValidStatus(*filter.Status) {
		report := validation.NewReport()
		report.TicketStatus(*filter.Status)
		return nil, report.Err()
	}

	repoFilter := repository.TicketFilter{
		Search:  filter.Search,
		Status:  filter.Status,
		SortAsc: filter.SortAsc,
		Limit:   limit,
		Offset:  (page - 1) * limit,
	}

	tickets, err := s.tickets.ListWithFilter(ctx, repoFilter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	total, err := s.tickets.CountWithFilter(ctx, repoFilter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	views := make([]TicketView, 0, len(tickets))
	for i := range tickets {
		view, err := s.resolve(ctx, &tickets[i])
		if err != nil {
			return nil, err
		}
		views = append(views, *view)
	}

	return &ListResult{
		Tickets: views,
		HasMore: page*limit < total,
		Total:   total,
	}, nil
}

// Get fetches a single ticket with resolved assignees.
func (s *TicketService) Get(ctx context.Context, id string) (*TicketView, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return s.resolve(ctx, ticket)
}

// Create validates and persists a new ticket. When the ticket starts
// with assignees, an assignment event is published for all of them;
// notification failure never fails the create.
func (s *TicketService) Create(ctx context.Context, input TicketCreateInput) (*TicketView, error) {
	// Trim before validating so the length bounds hold for the stored value.
	input.Title = strings.TrimSpace(input.Title)
	if err := input.Validate(); err != nil {
		return nil, err
	}

	status := input.Status
	if status == "" {
		status = domain.TicketStatusOpen
	}
	priority := DefaultPriority
	if input.Priority != nil {
		priority = *input.Priority
	}

	ticket := &domain.Ticket{
		Title:       input.Title,
		Description: input.Description,
		Status:      status,
		Priority:    priority,
		AssigneeIDs: input.AssigneeIDs,
	}
	if ticket.AssigneeIDs == nil {
		ticket.AssigneeIDs = []string{}
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	if len(ticket.AssigneeIDs) > 0 {
		s.publishAssignment(ctx, ticket.ID, events.TicketAssignedPayload{
			AssigneeIDs: ticket.AssigneeIDs,
			Title:       ticket.Title,
			Description: ticket.Description,
			IsUpdate:    false,
		})
	}

	return s.resolve(ctx, ticket)
}

// Update applies a partial update. The prior state is read first; when
// the update supplies assignees, only the newly-added ones are notified.
func (s *TicketService) Update(ctx context.Context, id string, input TicketUpdateInput) (*TicketView, error) {
	if input.Title != nil {
		trimmed := strings.TrimSpace(*input.Title)
		input.Title = &trimmed
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	prior, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": id})
		}
		return nil, apperrors.MapError(err)
	}

	patch := repository.TicketPatch{
		Title:       input.Title,
		Description: input.Description,
		Status:      input.Status,
		Priority:    input.Priority,
		AssigneeIDs: input.AssigneeIDs,
	}

	ticket, err := s.tickets.UpdatePartial(ctx, id, patch)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": id})
		}
		return nil, apperrors.MapError(err)
	}

	if input.AssigneeIDs != nil {
		added := addedAssignees(prior.AssigneeIDs, *input.AssigneeIDs)
		if len(added) > 0 {
			// The email quotes the pre-update title and description.
			s.publishAssignment(ctx, ticket.ID, events.TicketAssignedPayload{
				AssigneeIDs: added,
				Title:       prior.Title,
				Description: prior.Description,
				IsUpdate:    true,
			})
		}
	}

	return s.resolve(ctx, ticket)
}

// Delete removes a ticket. No cascade; callers enforce the admin role.
func (s *TicketService) Delete(ctx context.Context, id string) error {
	if err := s.tickets.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("ticket", map[string]any{"ticket_id": id})
		}
		return apperrors.MapError(err)
	}
	return nil
}

// addedAssignees is the set difference new − old over assignee ids,
// compared by string equality. Order of the result follows the new list.
func addedAssignees(old, new []string) []string {
	oldSet := make(map[string]struct{}, len(old))
	for _, id := range old {
		oldSet[id] = struct{}{}
	}
	var added []string
	for _, id := range new {
		if _, exists := oldSet[id]; !exists {
			added = append(added, id)
		}
	}
	return added
}

// resolve attaches assignee summaries, preserving the reference order
// and dropping dangling ids. Summaries come from the cache when warm.
func (s *TicketService) resolve(ctx context.Context, ticket *domain.Ticket) (*TicketView, error) {
	summaries := make(map[string]domain.UserSummary, len(ticket.AssigneeIDs))
	var misses []string
	for _, id := range ticket.AssigneeIDs {
		if summary, ok := s.userCache.Get(ctx, id); ok {
			summaries[id] = summary
		} else {
			misses = append(misses, id)
		}
	}

	if len(misses) > 0 {
		users, err := s.users.ListByIDs(ctx, misses)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		for i := range users {
			summary := users[i].Summary()
			summaries[summary.ID] = summary
			s.userCache.Set(ctx, summary)
		}
	}

	resolved := make([]domain.UserSummary, 0, len(ticket.AssigneeIDs))
	for _, id := range ticket.AssigneeIDs {
		if summary, ok := summaries[id]; ok {
			resolved = append(resolved, summary)
		}
	}
	return &TicketView{Ticket: *ticket, Assignees: resolved}, nil
}

func (s *TicketService) publishAssignment(ctx context.Context, ticketID string, payload events.TicketAssignedPayload) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventTicketAssigned,
		TicketID:  ticketID,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}
