package models

import "time"

// Summary is a downloadable reference document
type Summary struct {
	ID             int       `json:"id"`
	Title          string    `json:"title"`
	Subject        string    `json:"subject"`
	FileURL        string    `json:"fileUrl"`
	TeacherID      int       `json:"teacherId"`
	TeacherName    string    `json:"teacherName,omitempty"`
	DownloadsCount int       `json:"downloadsCount"`
	CreatedAt      time.Time `json:"createdAt"`
}

// CreateSummaryRequest represents a request to publish a summary
type CreateSummaryRequest struct {
	Title   string `json:"title" validate:"notblank,max=255" example:"Résumé: suites numériques"`
	Subject string `json:"subject" validate:"notblank,max=100" example:"Mathématiques"`
	FileURL string `json:"fileUrl" validate:"required,url,max=1024" example:"https://cdn.madaure.dz/summaries/suites.pdf"`
}
