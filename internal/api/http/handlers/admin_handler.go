package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/Sai1305/customer-support-ticketing-system/internal/api/dto"
	"github.com/Sai1305/customer-support-ticketing-system/internal/auth"
	"github.com/Sai1305/customer-support-ticketing-system/internal/repository"
	"github.com/Sai1305/customer-support-ticketing-system/internal/service"
	apperrors "github.com/Sai1305/customer-support-ticketing-system/pkg/util/errorutil"
)

// AdminHandler serves admin-only reporting, export and user management
// endpoints. Routes are mounted behind the RequireAdmin guard.
type AdminHandler struct {
	reports *service.ReportService
	tickets *service.TicketService
	users   repository.UserRepository
	counts  repository.TicketRepository
}

// NewAdminHandler constructs handler.
func NewAdminHandler(reportService *service.ReportService, ticketService *service.TicketService, users repository.UserRepository, tickets repository.TicketRepository) *AdminHandler {
	return &AdminHandler{reports: reportService, tickets: ticketService, users: users, counts: tickets}
}

// Export POST /admin/export.
func (h *AdminHandler) Export(c *fiber.Ctx) error {
	var req dto.ExportRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Format == "" {
		req.Format = "csv"
	}

	result, err := h.reports.Export(c.UserContext(), service.ExportOptions{
		Format:           req.Format,
		DateRange:        req.DateRange,
		IncludeUsers:     req.IncludeUsers,
		IncludeAnalytics: req.IncludeAnalytics,
	})
	if err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, result.ContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment;filename=%s", result.Filename))
	return c.Send(result.Data)
}

// Stats GET /admin/stats.
func (h *AdminHandler) Stats(c *fiber.Ctx) error {
	overview, err := h.reports.Overview(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(overview)
}

// DashboardStats GET /api/dashboard-stats.
func (h *AdminHandler) DashboardStats(c *fiber.Ctx) error {
	stats, err := h.reports.Dashboard(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(stats)
}

// AnalyticsData GET /api/analytics-data.
func (h *AdminHandler) AnalyticsData(c *fiber.Ctx) error {
	data, err := h.reports.Analytics(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(data)
}

// ListUsers GET /api/users.
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	users, err := h.users.List(c.UserContext())
	if err != nil {
		return apperrors.MapError(err)
	}
	counts, err := h.counts.CountByOwner(c.UserContext())
	if err != nil {
		return apperrors.MapError(err)
	}

	rows := make([]dto.AdminUserRow, 0, len(users))
	for _, u := range users {
		role := "User"
		if u.Role.IsAdmin() {
			role = "Admin"
		}
		rows = append(rows, dto.AdminUserRow{
			ID:           u.ID,
			Name:         u.Name,
			Email:        u.Email,
			Role:         role,
			TicketsCount: counts[u.ID],
			CreatedAt:    u.CreatedAt.Format("2006-01-02"),
		})
	}
	return c.JSON(rows)
}

// TicketAudit GET /admin/tickets/:id/audit.
func (h *AdminHandler) TicketAudit(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	ticketID, err := parseID(c)
	if err != nil {
		return err
	}

	entries, err := h.tickets.AuditTrail(c.UserContext(), principal.Actor(), ticketID)
	if err != nil {
		return err
	}
	rows := make([]dto.TicketAuditResponse, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, dto.TicketAuditResponse{
			ID:        entry.ID,
			TicketID:  entry.TicketID,
			ActorID:   entry.ActorID,
			OldStatus: entry.OldStatus,
			NewStatus: entry.NewStatus,
			ChangedAt: entry.ChangedAt,
		})
	}
	return c.JSON(fiber.Map{"success": true, "data": fiber.Map{"audit": rows}})
}
