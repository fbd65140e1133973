package api

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// DownloadItem describes a job in a transport-friendly format.
type DownloadItem struct {
	ID        string `json:"id"`
	URL       string `json:"url"`
	Title     string `json:"title,omitempty"`
	Status    string `json:"status"`
	Progress  int    `json:"progress"`
	Size      string `json:"size,omitempty"`
	Error     string `json:"error,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}

// BulkDownloadRequest is the body of a bulk submission.
type BulkDownloadRequest struct {
	URLs        []string `json:"urls"`
	Concurrency int      `json:"concurrency"`
	Quality     string   `json:"quality"`
}

// BulkDownloadResponse returns the jobs created for a submission.
type BulkDownloadResponse struct {
	Success bool           `json:"success"`
	Items   []DownloadItem `json:"items"`
}

// StatsResponse mirrors the aggregate job counts.
type StatsResponse struct {
	Total      int `json:"total"`
	Completed  int `json:"completed"`
	Processing int `json:"processing"`
	Failed     int `json:"failed"`
	Queued     int `json:"queued"`
}

// StatusResponse is the generic success/failure envelope for mutating
// endpoints.
type StatusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// HealthResponse reports daemon liveness.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}
