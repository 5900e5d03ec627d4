package dto

// ExportRequest mirrors the admin export form.
type ExportRequest struct {
	Format           string `json:"format"`
	DateRange        string `json:"dateRange"`
	IncludeUsers     bool   `json:"includeUsers"`
	IncludeAnalytics bool   `json:"includeAnalytics"`
}
