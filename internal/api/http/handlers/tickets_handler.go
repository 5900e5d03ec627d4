package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/Sai1305/customer-support-ticketing-system/internal/api/dto"
	"github.com/Sai1305/customer-support-ticketing-system/internal/auth"
	"github.com/Sai1305/customer-support-ticketing-system/internal/domain"
	"github.com/Sai1305/customer-support-ticketing-system/internal/service"
	apperrors "github.com/Sai1305/customer-support-ticketing-system/pkg/util/errorutil"
)

// TicketsHandler manages ticket endpoints for both roles; the policy inside
// the service decides who may do what.
type TicketsHandler struct {
	tickets *service.TicketService
	reports *service.ReportService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService, reportService *service.ReportService) *TicketsHandler {
	return &TicketsHandler{tickets: ticketService, reports: reportService}
}

// Create POST /tickets.
func (h *TicketsHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.tickets.Create(c.UserContext(), principal.Actor(), service.TicketCreateInput{
		Subject:     req.Subject,
		Description: req.Description,
		Category:    req.Category,
		Priority:    req.Priority,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "ticket created successfully",
		"data":    dto.NewTicketResponse(ticket, principal.User.Role.IsAdmin()),
	})
}

// List GET /tickets.
func (h *TicketsHandler) List(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	tickets, err := h.tickets.List(c.UserContext(), principal.Actor(), parseTicketListQuery(c))
	if err != nil {
		return err
	}

	isAdmin := principal.User.Role.IsAdmin()
	items := make([]dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, dto.NewTicketResponse(&tickets[i], isAdmin))
	}
	return c.JSON(fiber.Map{"success": true, "data": fiber.Map{"tickets": items}})
}

// Get GET /tickets/:id.
func (h *TicketsHandler) Get(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	ticketID, err := parseID(c)
	if err != nil {
		return err
	}

	ticket, err := h.tickets.Get(c.UserContext(), principal.Actor(), ticketID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    dto.NewTicketResponse(ticket, principal.User.Role.IsAdmin()),
	})
}

// Update PUT /tickets/:id.
func (h *TicketsHandler) Update(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	ticketID, err := parseID(c)
	if err != nil {
		return err
	}
	var req dto.UpdateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.tickets.Update(c.UserContext(), principal.Actor(), ticketID, service.TicketUpdateInput{
		Subject:       req.Subject,
		Description:   req.Description,
		Category:      req.Category,
		Priority:      req.Priority,
		Status:        req.Status,
		AssignedAgent: req.AssignedAgent,
		InternalNotes: req.InternalNotes,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "ticket updated successfully",
		"data":    dto.NewTicketResponse(ticket, principal.User.Role.IsAdmin()),
	})
}

// Delete DELETE /tickets/:id.
func (h *TicketsHandler) Delete(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	ticketID, err := parseID(c)
	if err != nil {
		return err
	}

	if err := h.tickets.Delete(c.UserContext(), principal.Actor(), ticketID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "ticket deleted successfully",
	})
}

// Stats GET /tickets/stats.
func (h *TicketsHandler) Stats(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	stats, err := h.reports.Stats(c.UserContext(), principal.Actor())
	if err != nil {
		return err
	}
	return c.JSON(stats)
}

func parseID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("invalid ticket id", nil)
	}
	return id, nil
}

func parseTicketListQuery(c *fiber.Ctx) service.TicketListFilter {
	filter := service.TicketListFilter{}
	if statusStr := c.Query("status"); statusStr != "" {
		for _, part := range strings.Split(statusStr, ",") {
			filter.Statuses = append(filter.Statuses, domain.TicketStatus(strings.TrimSpace(part)))
		}
	}
	if priorityStr := c.Query("priority"); priorityStr != "" {
		for _, part := range strings.Split(priorityStr, ",") {
			filter.Priorities = append(filter.Priorities, domain.TicketPriority(strings.TrimSpace(part)))
		}
	}
	if categoryStr := c.Query("category"); categoryStr != "" {
		for _, part := range strings.Split(categoryStr, ",") {
			filter.Categories = append(filter.Categories, domain.TicketCategory(strings.TrimSpace(part)))
		}
	}
	page := parseIntQuery(c.Query("page"), 1)
	pageSize := parseIntQuery(c.Query("page_size"), 0)
	if pageSize > 0 {
		filter.Offset = (page - 1) * pageSize
		filter.Limit = pageSize
	}
	return filter
}

func parseIntQuery(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}
