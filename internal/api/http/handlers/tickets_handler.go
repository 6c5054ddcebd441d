package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/ticketflow/ticketflow/internal/api/dto"
	"github.com/ticketflow/ticketflow/internal/domain"
	"github.com/ticketflow/ticketflow/internal/service"
	apperrors "github.com/ticketflow/ticketflow/pkg/util"
)

// TicketsHandler manages ticket endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// List GET /tickets.
func (h *TicketsHandler) List(c *fiber.Ctx) error {
	filter := service.ListFilter{
		Page:    parseInt(c.Query("page"), 1),
		Limit:   parseInt(c.Query("limit"), 10),
		SortAsc: c.Query("sortOrder") == "asc",
	}
	if search := c.Query("search"); search != "" {
		filter.Search = &search
	}
	if status := c.Query("status"); status != "" {
		ticketStatus := domain.TicketStatus(status)
		filter.Status = &ticketStatus
	}

	result, err := h.service.List(c.Context(), filter)
	if err != nil {
		return err
	}

	tickets := make([]dto.TicketResponse, 0, len(result.Tickets))
	for i := range result.Tickets {
		tickets = append(tickets, ticketResponse(&result.Tickets[i]))
	}
	return c.JSON(dto.TicketListResponse{
		Tickets: tickets,
		HasMore: result.HasMore,
		Total:   result.Total,
	})
}

// Get GET /tickets/:id.
func (h *TicketsHandler) Get(c *fiber.Ctx) error {
	view, err := h.service.Get(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(ticketResponse(view))
}

// Create POST /tickets.
func (h *TicketsHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	view, err := h.service.Create(c.Context(), service.TicketCreateInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		AssigneeIDs: req.Assignees,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(ticketResponse(view))
}

// Update PATCH /tickets/:id.
func (h *TicketsHandler) Update(c *fiber.Ctx) error {
	var req dto.UpdateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	view, err := h.service.Update(c.Context(), c.Params("id"), service.TicketUpdateInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		AssigneeIDs: req.Assignees,
	})
	if err != nil {
		return err
	}
	return c.JSON(ticketResponse(view))
}

// Delete DELETE /tickets/:id. The router guards this with the admin role.
func (h *TicketsHandler) Delete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(dto.DeleteTicketResponse{Success: true})
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func ticketResponse(view *service.TicketView) dto.TicketResponse {
	return dto.TicketResponse{
		ID:          view.Ticket.ID,
		Title:       view.Ticket.Title,
		Description: view.Ticket.Description,
		Status:      view.Ticket.Status,
		Priority:    view.Ticket.Priority,
		Assignees:   view.Assignees,
		CreatedAt:   view.Ticket.CreatedAt,
		UpdatedAt:   view.Ticket.UpdatedAt,
	}
}
