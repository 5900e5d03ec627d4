package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Sai1305/customer-support-ticketing-system/internal/authz"
	"github.com/Sai1305/customer-support-ticketing-system/internal/domain"
	"github.com/Sai1305/customer-support-ticketing-system/internal/repository"
	apperrors "github.com/Sai1305/customer-support-ticketing-system/pkg/util/errorutil"
)

const (
	csvTimeLayout   = "2006-01-02 15:04:05"
	dateRangeSep    = " to "
	dateLayout      = "2006-01-02"
	trendWindowDays = 7
	recentLimit     = 10
)

// ReportService derives aggregate statistics and serializes ticket
// collections for export. It only ever reads from the store.
type ReportService struct {
	tickets repository.TicketRepository
	users   repository.UserRepository
	now     func() time.Time
}

// NewReportService constructs the service.
func NewReportService(tickets repository.TicketRepository, users repository.UserRepository) *ReportService {
	return &ReportService{tickets: tickets, users: users, now: time.Now}
}

// TicketStats is the scoped statistics block served to both roles.
type TicketStats struct {
	Total      int64            `json:"total"`
	Open       int64            `json:"open"`
	InProgress int64            `json:"in_progress"`
	Resolved   int64            `json:"resolved"`
	Closed     int64            `json:"closed"`
	Categories map[string]int64 `json:"categories"`
	Priorities map[string]int64 `json:"priorities"`
}

// DashboardStats backs the admin dashboard.
type DashboardStats struct {
	TotalTickets      int64          `json:"total_tickets"`
	OpenTickets       int64          `json:"open_tickets"`
	InProgressTickets int64          `json:"in_progress_tickets"`
	ResolvedTickets   int64          `json:"resolved_tickets"`
	ClosedTickets     int64          `json:"closed_tickets"`
	TotalUsers        int64          `json:"total_users"`
	RecentTickets     []RecentTicket `json:"recent_tickets"`
}

// RecentTicket is a dashboard row.
type RecentTicket struct {
	ID        int64  `json:"id"`
	Subject   string `json:"subject"`
	Status    string `json:"status"`
	Priority  string `json:"priority"`
	CreatedAt string `json:"created_at"`
	UserName  string `json:"user_name"`
}

// DailyTrend counts tickets created per day.
type DailyTrend struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// UserStats summarizes ticket ownership.
type UserStats struct {
	TotalUsers        int64   `json:"total_users"`
	AvgTicketsPerUser float64 `json:"avg_tickets_per_user"`
}

// AnalyticsData backs the admin analytics view.
type AnalyticsData struct {
	TotalTickets      int64            `json:"total_tickets"`
	OpenTickets       int64            `json:"open_tickets"`
	InProgressTickets int64            `json:"in_progress_tickets"`
	ResolvedTickets   int64            `json:"resolved_tickets"`
	ClosedTickets     int64            `json:"closed_tickets"`
	Categories        map[string]int64 `json:"categories"`
	Priorities        map[string]int64 `json:"priorities"`
	DailyTrends       []DailyTrend     `json:"daily_trends"`
	UserStats         UserStats        `json:"user_stats"`
}

// Aggregate holds counts derived from a ticket collection.
type Aggregate struct {
	Total         int64
	ByStatus      map[domain.TicketStatus]int64
	ByPriority    map[domain.TicketPriority]int64
	ByCategory    map[domain.TicketCategory]int64
	ResolvedToday int64
	ActiveUsers   int64
	AvgPerUser    float64
}

// BuildAggregate computes all counts in one pass. ResolvedToday compares
// the status against the creation date, mirroring the metric the admin
// dashboard has always shown.
func BuildAggregate(tickets []domain.Ticket, now time.Time) Aggregate {
	agg := Aggregate{
		ByStatus:   make(map[domain.TicketStatus]int64),
		ByPriority: make(map[domain.TicketPriority]int64),
		ByCategory: make(map[domain.TicketCategory]int64),
	}
	owners := make(map[int64]struct{})
	today := now.UTC().Truncate(24 * time.Hour)

	for _, t := range tickets {
		agg.Total++
		agg.ByStatus[t.Status]++
		agg.ByPriority[t.Priority]++
		agg.ByCategory[t.Category]++
		owners[t.UserID] = struct{}{}
		if t.Status == domain.TicketStatusResolved && t.CreatedAt.UTC().Truncate(24*time.Hour).Equal(today) {
			agg.ResolvedToday++
		}
	}
	agg.ActiveUsers = int64(len(owners))
	if agg.ActiveUsers > 0 {
		agg.AvgPerUser = float64(agg.Total) / float64(agg.ActiveUsers)
	}
	return agg
}

// Stats returns scoped statistics: everything for admins, own tickets only
// for members. Members receive empty distributions.
func (s *ReportService) Stats(ctx context.Context, actor *authz.Actor) (*TicketStats, error) {
	scope, err := authz.ListScope(actor)
	if err != nil {
		return nil, err
	}
	tickets, err := s.tickets.List(ctx, repository.TicketFilter{OwnerID: scope.OwnerID})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	agg := BuildAggregate(tickets, s.now())

	stats := &TicketStats{
		Total:      agg.Total,
		Open:       agg.ByStatus[domain.TicketStatusOpen],
		InProgress: agg.ByStatus[domain.TicketStatusInProgress],
		Resolved:   agg.ByStatus[domain.TicketStatusResolved],
		Closed:     agg.ByStatus[domain.TicketStatusClosed],
		Categories: map[string]int64{},
		Priorities: map[string]int64{},
	}
	if actor.Role.IsAdmin() {
		for cat, n := range agg.ByCategory {
			stats.Categories[string(cat)] = n
		}
		for pr, n := range agg.ByPriority {
			stats.Priorities[string(pr)] = n
		}
	}
	return stats, nil
}

// AdminOverview is the compact per-status summary.
type AdminOverview struct {
	TotalTickets      int64 `json:"total_tickets"`
	OpenTickets       int64 `json:"open_tickets"`
	InProgressTickets int64 `json:"in_progress_tickets"`
	ResolvedTickets   int64 `json:"resolved_tickets"`
	ClosedTickets     int64 `json:"closed_tickets"`
	ResolvedToday     int64 `json:"resolved_today"`
	ActiveUsers       int64 `json:"active_users"`
}

// Overview computes the admin stats block over all tickets.
func (s *ReportService) Overview(ctx context.Context) (*AdminOverview, error) {
	tickets, err := s.tickets.List(ctx, repository.TicketFilter{})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	agg := BuildAggregate(tickets, s.now())
	return &AdminOverview{
		TotalTickets:      agg.Total,
		OpenTickets:       agg.ByStatus[domain.TicketStatusOpen],
		InProgressTickets: agg.ByStatus[domain.TicketStatusInProgress],
		ResolvedTickets:   agg.ByStatus[domain.TicketStatusResolved],
		ClosedTickets:     agg.ByStatus[domain.TicketStatusClosed],
		ResolvedToday:     agg.ResolvedToday,
		ActiveUsers:       agg.ActiveUsers,
	}, nil
}

// Dashboard assembles per-status totals, user count and the most recent
// tickets for the admin landing view.
func (s *ReportService) Dashboard(ctx context.Context) (*DashboardStats, error) {
	tickets, err := s.tickets.List(ctx, repository.TicketFilter{})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	totalUsers, err := s.users.Count(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	names, err := s.ownerNames(ctx)
	if err != nil {
		return nil, err
	}

	agg := BuildAggregate(tickets, s.now())
	recent := make([]RecentTicket, 0, recentLimit)
	for i, t := range tickets {
		if i >= recentLimit {
			break
		}
		recent = append(recent, RecentTicket{
			ID:        t.ID,
			Subject:   t.Subject,
			Status:    string(t.Status),
			Priority:  string(t.Priority),
			CreatedAt: t.CreatedAt.Format("2006-01-02 15:04"),
			UserName:  names[t.UserID],
		})
	}

	return &DashboardStats{
		TotalTickets:      agg.Total,
		OpenTickets:       agg.ByStatus[domain.TicketStatusOpen],
		InProgressTickets: agg.ByStatus[domain.TicketStatusInProgress],
		ResolvedTickets:   agg.ByStatus[domain.TicketStatusResolved],
		ClosedTickets:     agg.ByStatus[domain.TicketStatusClosed],
		TotalUsers:        totalUsers,
		RecentTickets:     recent,
	}, nil
}

// Analytics assembles distributions, a 7-day creation trend and ownership
// statistics.
func (s *ReportService) Analytics(ctx context.Context) (*AnalyticsData, error) {
	tickets, err := s.tickets.List(ctx, repository.TicketFilter{})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	agg := BuildAggregate(tickets, s.now())

	categories := make(map[string]int64, len(agg.ByCategory))
	for cat, n := range agg.ByCategory {
		categories[string(cat)] = n
	}
	priorities := make(map[string]int64, len(agg.ByPriority))
	for pr, n := range agg.ByPriority {
		priorities[string(pr)] = n
	}

	return &AnalyticsData{
		TotalTickets:      agg.Total,
		OpenTickets:       agg.ByStatus[domain.TicketStatusOpen],
		InProgressTickets: agg.ByStatus[domain.TicketStatusInProgress],
		ResolvedTickets:   agg.ByStatus[domain.TicketStatusResolved],
		ClosedTickets:     agg.ByStatus[domain.TicketStatusClosed],
		Categories:        categories,
		Priorities:        priorities,
		DailyTrends:       buildDailyTrends(tickets, s.now()),
		UserStats: UserStats{
			TotalUsers:        agg.ActiveUsers,
			AvgTicketsPerUser: agg.AvgPerUser,
		},
	}, nil
}

func buildDailyTrends(tickets []domain.Ticket, now time.Time) []DailyTrend {
	cutoff := now.UTC().AddDate(0, 0, -trendWindowDays)
	counts := make(map[string]int64)
	for _, t := range tickets {
		created := t.CreatedAt.UTC()
		if created.Before(cutoff) {
			continue
		}
		counts[created.Format(dateLayout)]++
	}
	dates := make([]string, 0, len(counts))
	for date := range counts {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	trends := make([]DailyTrend, 0, len(dates))
	for _, date := range dates {
		trends = append(trends, DailyTrend{Date: date, Count: counts[date]})
	}
	return trends
}

// ParseDateRange parses "YYYY-MM-DD to YYYY-MM-DD" into an inclusive start
// and an exclusive end one day past the named end date.
func ParseDateRange(dateRange string) (*time.Time, *time.Time, error) {
	dateRange = strings.TrimSpace(dateRange)
	if dateRange == "" {
		return nil, nil, nil
	}
	parts := strings.Split(dateRange, dateRangeSep)
	if len(parts) != 2 {
		return nil, nil, apperrors.NewValidationError("invalid date range", map[string]any{"dateRange": dateRange})
	}
	start, err := time.Parse(dateLayout, strings.TrimSpace(parts[0]))
	if err != nil {
		return nil, nil, apperrors.NewValidationError("invalid start date", map[string]any{"dateRange": dateRange})
	}
	end, err := time.Parse(dateLayout, strings.TrimSpace(parts[1]))
	if err != nil {
		return nil, nil, apperrors.NewValidationError("invalid end date", map[string]any{"dateRange": dateRange})
	}
	endExclusive := end.AddDate(0, 0, 1)
	return &start, &endExclusive, nil
}

// ExportOptions mirrors the export request body.
type ExportOptions struct {
	Format           string
	DateRange        string
	IncludeUsers     bool
	IncludeAnalytics bool
}

// ExportResult carries the serialized document.
type ExportResult struct {
	Filename    string
	ContentType string
	Data        []byte
}

type exportUser struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type exportTicket struct {
	ID          int64       `json:"id"`
	Subject     string      `json:"subject"`
	Description string      `json:"description"`
	Priority    string      `json:"priority"`
	Category    string      `json:"category"`
	Status      string      `json:"status"`
	CreatedAt   string      `json:"created_at"`
	User        *exportUser `json:"user,omitempty"`
}

type exportAnalytics struct {
	StatusDistribution   map[string]int64 `json:"status_distribution"`
	PriorityDistribution map[string]int64 `json:"priority_distribution"`
}

type exportDocument struct {
	ExportDate   string           `json:"export_date"`
	TotalTickets int              `json:"total_tickets"`
	Analytics    *exportAnalytics `json:"analytics,omitempty"`
	Tickets      []exportTicket   `json:"tickets"`
}

// Export serializes tickets in the requested format. The excel format
// degrades to CSV and pdf degrades to JSON without analytics.
func (s *ReportService) Export(ctx context.Context, opts ExportOptions) (*ExportResult, error) {
	from, to, err := ParseDateRange(opts.DateRange)
	if err != nil {
		return nil, err
	}
	tickets, err := s.tickets.List(ctx, repository.TicketFilter{CreatedFrom: from, CreatedTo: to})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	var owners map[int64]domain.User
	if opts.IncludeUsers {
		owners, err = s.ownerIndex(ctx)
		if err != nil {
			return nil, err
		}
	}

	switch opts.Format {
	case "csv", "excel":
		return s.exportCSV(tickets, owners, opts.IncludeUsers)
	case "json":
		return s.exportJSON(tickets, owners, opts.IncludeUsers, opts.IncludeAnalytics)
	case "pdf":
		return s.exportJSON(tickets, owners, opts.IncludeUsers, false)
	default:
		return nil, apperrors.NewValidationError("unsupported export format", map[string]any{"format": opts.Format})
	}
}

func (s *ReportService) exportCSV(tickets []domain.Ticket, owners map[int64]domain.User, includeUsers bool) (*ExportResult, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	header := []string{"ID", "Subject", "Description", "Priority", "Category", "Status", "Created At"}
	if includeUsers {
		header = append(header, "User Name", "User Email")
	}
	if err := writer.Write(header); err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	for _, t := range tickets {
		row := []string{
			strconv.FormatInt(t.ID, 10),
			t.Subject,
			t.Description,
			string(t.Priority),
			string(t.Category),
			string(t.Status),
			t.CreatedAt.Format(csvTimeLayout),
		}
		if includeUsers {
			name, email := "N/A", "N/A"
			if owner, ok := owners[t.UserID]; ok {
				name, email = owner.Name, owner.Email
			}
			row = append(row, name, email)
		}
		if err := writer.Write(row); err != nil {
			return nil, apperrors.NewInternalError(err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	return &ExportResult{
		Filename:    s.exportFilename("csv"),
		ContentType: "text/csv",
		Data:        buf.Bytes(),
	}, nil
}

func (s *ReportService) exportJSON(tickets []domain.Ticket, owners map[int64]domain.User, includeUsers, includeAnalytics bool) (*ExportResult, error) {
	doc := exportDocument{
		ExportDate:   s.now().UTC().Format(time.RFC3339),
		TotalTickets: len(tickets),
		Tickets:      make([]exportTicket, 0, len(tickets)),
	}

	if includeAnalytics {
		agg := BuildAggregate(tickets, s.now())
		analytics := &exportAnalytics{
			StatusDistribution:   make(map[string]int64, len(agg.ByStatus)),
			PriorityDistribution: make(map[string]int64, len(agg.ByPriority)),
		}
		for status, n := range agg.ByStatus {
			analytics.StatusDistribution[string(status)] = n
		}
		for pr, n := range agg.ByPriority {
			analytics.PriorityDistribution[string(pr)] = n
		}
		doc.Analytics = analytics
	}

	for _, t := range tickets {
		item := exportTicket{
			ID:          t.ID,
			Subject:     t.Subject,
			Description: t.Description,
			Priority:    string(t.Priority),
			Category:    string(t.Category),
			Status:      string(t.Status),
			CreatedAt:   t.CreatedAt.Format(time.RFC3339),
		}
		if includeUsers {
			if owner, ok := owners[t.UserID]; ok {
				item.User = &exportUser{Name: owner.Name, Email: owner.Email}
			}
		}
		doc.Tickets = append(doc.Tickets, item)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &ExportResult{
		Filename:    s.exportFilename("json"),
		ContentType: "application/json",
		Data:        data,
	}, nil
}

func (s *ReportService) exportFilename(ext string) string {
	return fmt.Sprintf("support-tickets-%s.%s", s.now().UTC().Format(dateLayout), ext)
}

func (s *ReportService) ownerIndex(ctx context.Context) (map[int64]domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	index := make(map[int64]domain.User, len(users))
	for _, u := range users {
		index[u.ID] = u
	}
	return index, nil
}

func (s *ReportService) ownerNames(ctx context.Context) (map[int64]string, error) {
	index, err := s.ownerIndex(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[int64]string, len(index))
	for id, u := range index {
		names[id] = u.Name
	}
	return names, nil
}
