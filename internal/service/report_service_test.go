package service

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sai1305/customer-support-ticketing-system/internal/authz"
	"github.com/Sai1305/customer-support-ticketing-system/internal/domain"
	apperrors "github.com/Sai1305/customer-support-ticketing-system/pkg/util/errorutil"
)

func newReportServiceForTest(store *memStore, now time.Time) *ReportService {
	svc := NewReportService(&fakeTicketRepo{store: store}, &fakeUserRepo{store: store})
	svc.now = func() time.Time { return now }
	return svc
}

func TestBuildAggregateCounts(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	tickets := []domain.Ticket{
		{Status: domain.TicketStatusOpen, Priority: domain.TicketPriorityLow, Category: domain.TicketCategoryGeneral, UserID: 1, CreatedAt: now.AddDate(0, 0, -3)},
		{Status: domain.TicketStatusOpen, Priority: domain.TicketPriorityHigh, Category: domain.TicketCategoryTechnical, UserID: 2, CreatedAt: now.AddDate(0, 0, -2)},
		{Status: domain.TicketStatusResolved, Priority: domain.TicketPriorityHigh, Category: domain.TicketCategoryBilling, UserID: 1, CreatedAt: now.AddDate(0, 0, -1)},
		{Status: domain.TicketStatusClosed, Priority: domain.TicketPriorityMedium, Category: domain.TicketCategoryGeneral, UserID: 2, CreatedAt: now.AddDate(0, 0, -5)},
	}

	agg := BuildAggregate(tickets, now)
	assert.Equal(t, int64(4), agg.Total)
	assert.Equal(t, int64(2), agg.ByStatus[domain.TicketStatusOpen])
	assert.Equal(t, int64(1), agg.ByStatus[domain.TicketStatusResolved])
	assert.Equal(t, int64(1), agg.ByStatus[domain.TicketStatusClosed])
	assert.Equal(t, int64(2), agg.ByPriority[domain.TicketPriorityHigh])
	assert.Equal(t, int64(2), agg.ByCategory[domain.TicketCategoryGeneral])
	assert.Equal(t, int64(2), agg.ActiveUsers)
	assert.InDelta(t, 2.0, agg.AvgPerUser, 1e-9)
}

// ResolvedToday counts resolved tickets created today, not resolved today.
// A ticket resolved today but created yesterday does not count.
func TestResolvedTodayUsesCreationDate(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	tickets := []domain.Ticket{
		{Status: domain.TicketStatusResolved, UserID: 1, CreatedAt: now.Add(-2 * time.Hour)},
		{Status: domain.TicketStatusResolved, UserID: 1, CreatedAt: now.AddDate(0, 0, -1)},
		{Status: domain.TicketStatusOpen, UserID: 1, CreatedAt: now},
	}

	agg := BuildAggregate(tickets, now)
	assert.Equal(t, int64(1), agg.ResolvedToday)
}

func TestStatsMemberGetsEmptyDistributions(t *testing.T) {
	store := newMemStore()
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	store.addTicket(domain.Ticket{Subject: "a", Status: domain.TicketStatusOpen, Priority: domain.TicketPriorityHigh, Category: domain.TicketCategoryTechnical, UserID: 7, CreatedAt: now})
	store.addTicket(domain.Ticket{Subject: "b", Status: domain.TicketStatusResolved, Priority: domain.TicketPriorityLow, Category: domain.TicketCategoryBilling, UserID: 8, CreatedAt: now})
	svc := newReportServiceForTest(store, now)
	ctx := context.Background()

	memberStats, err := svc.Stats(ctx, &authz.Actor{UserID: 7, Role: domain.RoleMember})
	require.NoError(t, err)
	assert.Equal(t, int64(1), memberStats.Total)
	assert.Equal(t, int64(1), memberStats.Open)
	assert.Empty(t, memberStats.Categories)
	assert.Empty(t, memberStats.Priorities)

	adminStats, err := svc.Stats(ctx, &authz.Actor{UserID: 1, Role: domain.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, int64(2), adminStats.Total)
	assert.Equal(t, int64(1), adminStats.Categories["Technical"])
	assert.Equal(t, int64(1), adminStats.Priorities["Low"])
}

func TestParseDateRange(t *testing.T) {
	start, end, err := ParseDateRange("2025-06-01 to 2025-06-30")
	require.NoError(t, err)
	require.NotNil(t, start)
	require.NotNil(t, end)
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), *start)
	// The end date is inclusive: the exclusive bound is one day past it.
	assert.Equal(t, time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), *end)

	start, end, err = ParseDateRange("  ")
	require.NoError(t, err)
	assert.Nil(t, start)
	assert.Nil(t, end)

	for _, bad := range []string{"2025-06-01", "yesterday to today", "2025-06-01 to soon"} {
		_, _, err = ParseDateRange(bad)
		require.Error(t, err, "range %q", bad)
		assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"), "range %q", bad)
	}
}

func TestExportCSV(t *testing.T) {
	store := newMemStore()
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	store.addUser(domain.User{ID: 7, Name: "Dana", Email: "dana@example.com", Role: domain.RoleMember})
	store.addTicket(domain.Ticket{
		Subject:     "vpn drops",
		Description: "drops every hour, on the hour",
		Category:    domain.TicketCategoryTechnical,
		Priority:    domain.TicketPriorityHigh,
		Status:      domain.TicketStatusOpen,
		UserID:      7,
		CreatedAt:   time.Date(2025, 6, 10, 9, 30, 0, 0, time.UTC),
	})
	svc := newReportServiceForTest(store, now)

	result, err := svc.Export(context.Background(), ExportOptions{Format: "csv", IncludeUsers: true})
	require.NoError(t, err)
	assert.Equal(t, "support-tickets-2025-06-15.csv", result.Filename)
	assert.Equal(t, "text/csv", result.ContentType)

	records, err := csv.NewReader(strings.NewReader(string(result.Data))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, []string{"ID", "Subject", "Description", "Priority", "Category", "Status", "Created At", "User Name", "User Email"}, records[0])
	assert.Equal(t, []string{"1", "vpn drops", "drops every hour, on the hour", "High", "Technical", "Open", "2025-06-10 09:30:00", "Dana", "dana@example.com"}, records[1])
}

func TestExcelDegradesToCSV(t *testing.T) {
	store := newMemStore()
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	svc := newReportServiceForTest(store, now)

	result, err := svc.Export(context.Background(), ExportOptions{Format: "excel"})
	require.NoError(t, err)
	assert.Equal(t, "support-tickets-2025-06-15.csv", result.Filename)
	assert.Equal(t, "text/csv", result.ContentType)
}

func TestExportJSON(t *testing.T) {
	store := newMemStore()
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	created := time.Date(2025, 6, 10, 9, 30, 0, 0, time.UTC)
	store.addTicket(domain.Ticket{
		Subject:     "refund request",
		Description: "double charge",
		Category:    domain.TicketCategoryBilling,
		Priority:    domain.TicketPriorityMedium,
		Status:      domain.TicketStatusResolved,
		UserID:      7,
		CreatedAt:   created,
	})
	svc := newReportServiceForTest(store, now)

	result, err := svc.Export(context.Background(), ExportOptions{Format: "json", IncludeAnalytics: true})
	require.NoError(t, err)
	assert.Equal(t, "support-tickets-2025-06-15.json", result.Filename)
	assert.Equal(t, "application/json", result.ContentType)

	var doc struct {
		ExportDate   string `json:"export_date"`
		TotalTickets int    `json:"total_tickets"`
		Analytics    *struct {
			StatusDistribution   map[string]int64 `json:"status_distribution"`
			PriorityDistribution map[string]int64 `json:"priority_distribution"`
		} `json:"analytics"`
		Tickets []struct {
			ID          int64  `json:"id"`
			Subject     string `json:"subject"`
			Description string `json:"description"`
			Priority    string `json:"priority"`
			Category    string `json:"category"`
			Status      string `json:"status"`
			CreatedAt   string `json:"created_at"`
		} `json:"tickets"`
	}
	require.NoError(t, json.Unmarshal(result.Data, &doc))
	assert.Equal(t, now.Format(time.RFC3339), doc.ExportDate)
	assert.Equal(t, 1, doc.TotalTickets)
	require.NotNil(t, doc.Analytics)
	assert.Equal(t, int64(1), doc.Analytics.StatusDistribution["Resolved"])
	assert.Equal(t, int64(1), doc.Analytics.PriorityDistribution["Medium"])
	require.Len(t, doc.Tickets, 1)
	assert.Equal(t, "refund request", doc.Tickets[0].Subject)
	assert.Equal(t, "Billing", doc.Tickets[0].Category)
	assert.Equal(t, created.Format(time.RFC3339), doc.Tickets[0].CreatedAt)
}

// The pdf format falls back to a JSON document without the analytics block.
func TestPDFDegradesToJSONWithoutAnalytics(t *testing.T) {
	store := newMemStore()
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	store.addTicket(domain.Ticket{Subject: "a", Status: domain.TicketStatusOpen, Priority: domain.TicketPriorityLow, Category: domain.TicketCategoryGeneral, UserID: 7, CreatedAt: now})
	svc := newReportServiceForTest(store, now)

	result, err := svc.Export(context.Background(), ExportOptions{Format: "pdf", IncludeAnalytics: true})
	require.NoError(t, err)
	assert.Equal(t, "support-tickets-2025-06-15.json", result.Filename)

	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(result.Data, &doc))
	assert.NotContains(t, doc, "analytics")
}

func TestExportUnsupportedFormat(t *testing.T) {
	svc := newReportServiceForTest(newMemStore(), time.Now())

	_, err := svc.Export(context.Background(), ExportOptions{Format: "xml"})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))
}

func TestExportDateRangeFilters(t *testing.T) {
	store := newMemStore()
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	inRange := store.addTicket(domain.Ticket{Subject: "in", Status: domain.TicketStatusOpen, Priority: domain.TicketPriorityLow, Category: domain.TicketCategoryGeneral, UserID: 7, CreatedAt: time.Date(2025, 6, 10, 23, 59, 0, 0, time.UTC)})
	// Exactly midnight on the start date: the lower bound is inclusive.
	startEdge := store.addTicket(domain.Ticket{Subject: "edge", Status: domain.TicketStatusOpen, Priority: domain.TicketPriorityLow, Category: domain.TicketCategoryGeneral, UserID: 7, CreatedAt: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)})
	store.addTicket(domain.Ticket{Subject: "before", Status: domain.TicketStatusOpen, Priority: domain.TicketPriorityLow, Category: domain.TicketCategoryGeneral, UserID: 7, CreatedAt: time.Date(2025, 5, 31, 23, 59, 0, 0, time.UTC)})
	store.addTicket(domain.Ticket{Subject: "out", Status: domain.TicketStatusOpen, Priority: domain.TicketPriorityLow, Category: domain.TicketCategoryGeneral, UserID: 7, CreatedAt: time.Date(2025, 6, 11, 0, 1, 0, 0, time.UTC)})
	svc := newReportServiceForTest(store, now)

	result, err := svc.Export(context.Background(), ExportOptions{Format: "json", DateRange: "2025-06-01 to 2025-06-10"})
	require.NoError(t, err)

	var doc struct {
		Tickets []struct {
			ID int64 `json:"id"`
		} `json:"tickets"`
	}
	require.NoError(t, json.Unmarshal(result.Data, &doc))
	require.Len(t, doc.Tickets, 2)
	assert.Equal(t, inRange.ID, doc.Tickets[0].ID)
	assert.Equal(t, startEdge.ID, doc.Tickets[1].ID)
}

func TestDashboard(t *testing.T) {
	store := newMemStore()
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	store.addUser(domain.User{ID: 7, Name: "Dana", Email: "dana@example.com", Role: domain.RoleMember})
	store.addUser(domain.User{ID: 8, Name: "Eli", Email: "eli@example.com", Role: domain.RoleMember})
	for i := 0; i < 12; i++ {
		store.addTicket(domain.Ticket{
			Subject:   "t",
			Status:    domain.TicketStatusOpen,
			Priority:  domain.TicketPriorityLow,
			Category:  domain.TicketCategoryGeneral,
			UserID:    7,
			CreatedAt: now.Add(time.Duration(-i) * time.Hour),
		})
	}
	svc := newReportServiceForTest(store, now)

	stats, err := svc.Dashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(12), stats.TotalTickets)
	assert.Equal(t, int64(12), stats.OpenTickets)
	assert.Equal(t, int64(2), stats.TotalUsers)
	require.Len(t, stats.RecentTickets, 10)
	assert.Equal(t, "Dana", stats.RecentTickets[0].UserName)
}

func TestAnalyticsTrendWindow(t *testing.T) {
	store := newMemStore()
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	store.addTicket(domain.Ticket{Subject: "recent", Status: domain.TicketStatusOpen, Priority: domain.TicketPriorityLow, Category: domain.TicketCategoryGeneral, UserID: 7, CreatedAt: now.AddDate(0, 0, -2)})
	store.addTicket(domain.Ticket{Subject: "recent2", Status: domain.TicketStatusOpen, Priority: domain.TicketPriorityLow, Category: domain.TicketCategoryGeneral, UserID: 7, CreatedAt: now.AddDate(0, 0, -2)})
	store.addTicket(domain.Ticket{Subject: "old", Status: domain.TicketStatusOpen, Priority: domain.TicketPriorityLow, Category: domain.TicketCategoryGeneral, UserID: 7, CreatedAt: now.AddDate(0, 0, -30)})
	svc := newReportServiceForTest(store, now)

	data, err := svc.Analytics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), data.TotalTickets)
	require.Len(t, data.DailyTrends, 1)
	assert.Equal(t, "2025-06-13", data.DailyTrends[0].Date)
	assert.Equal(t, int64(2), data.DailyTrends[0].Count)
	assert.Equal(t, int64(1), data.UserStats.TotalUsers)
	assert.InDelta(t, 3.0, data.UserStats.AvgTicketsPerUser, 1e-9)
}
