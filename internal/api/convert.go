package api

import "snatch/internal/jobs"

// FromJob converts one job record into its transport shape.
func FromJob(job *jobs.Job) DownloadItem {
	if job == nil {
		return DownloadItem{}
	}
	item := DownloadItem{
		ID:       job.ID,
		URL:      job.URL,
		Title:    job.Title,
		Status:   string(job.Status),
		Progress: job.Progress,
		Size:     job.Size,
		Error:    job.Error,
	}
	if !job.CreatedAt.IsZero() {
		item.CreatedAt = job.CreatedAt.Format(dateTimeFormat)
	}
	if !job.UpdatedAt.IsZero() {
		item.UpdatedAt = job.UpdatedAt.Format(dateTimeFormat)
	}
	return item
}

// FromJobs converts a job list preserving its order.
func FromJobs(list []*jobs.Job) []DownloadItem {
	items := make([]DownloadItem, 0, len(list))
	for _, job := range list {
		items = append(items, FromJob(job))
	}
	return items
}

// FromStats converts the aggregate counts.
func FromStats(stats jobs.Stats) StatsResponse {
	return StatsResponse{
		Total:      stats.Total,
		Completed:  stats.Completed,
		Processing: stats.Processing,
		Failed:     stats.Failed,
		Queued:     stats.Queued,
	}
}
