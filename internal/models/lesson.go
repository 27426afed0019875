package models

import "time"

// LessonStatus is the publication status of a lesson
type LessonStatus string

const (
	LessonStatusDraft     LessonStatus = "draft"
	LessonStatusPublished LessonStatus = "published"
	LessonStatusArchived  LessonStatus = "archived"
)

// Lesson represents a lesson with its ordered content
type Lesson struct {
	ID          int            `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Subject     string         `json:"subject"`
	TeacherID   int            `json:"teacherId"`
	TeacherName string         `json:"teacherName,omitempty"`
	IsLive      bool           `json:"isLive"`
	StartTime   *time.Time     `json:"startTime,omitempty"`
	Duration    int            `json:"duration"`
	Status      LessonStatus   `json:"status"`
	Content     []ContentBlock `json:"content"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// LessonListItem represents a lesson in list responses (no content)
type LessonListItem struct {
	ID          int          `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Subject     string       `json:"subject"`
	TeacherID   int          `json:"teacherId"`
	TeacherName string       `json:"teacherName"`
	IsLive      bool         `json:"isLive"`
	StartTime   *time.Time   `json:"startTime,omitempty"`
	Duration    int          `json:"duration"`
	Status      LessonStatus `json:"status"`
	CreatedAt   time.Time    `json:"createdAt"`
}

// LessonFilter holds optional filters of the lesson list
type LessonFilter struct {
	Subject   string
	TeacherID *int
	Status    *LessonStatus
	IsLive    *bool
	Page      int
	Count     int

	// PublishedOnly keeps published lessons, plus any lesson of ViewerID when it is set
	PublishedOnly bool
	ViewerID      int
}

// LessonRequest represents a request to create or fully replace a lesson
type LessonRequest struct {
	Title       string         `json:"title" validate:"notblank,max=255" example:"Les dérivées"`
	Description string         `json:"description" validate:"notblank" example:"Rappels et exercices"`
	Subject     string         `json:"subject" validate:"notblank,max=100" example:"Mathématiques"`
	IsLive      bool           `json:"isLive"`
	StartTime   *time.Time     `json:"startTime,omitempty"`
	Duration    int            `json:"duration" validate:"gte=0" example:"45"`
	Status      LessonStatus   `json:"status,omitempty" validate:"omitempty,oneof=draft published archived" example:"published"`
	Content     []ContentBlock `json:"content" validate:"min=1"`
}

// AddBlockRequest represents a request to insert a content block
//
// Position is 1-based; when absent or past the end, the block is appended.
type AddBlockRequest struct {
	Position *int         `json:"position,omitempty" example:"2"`
	Block    ContentBlock `json:"block"`
}

// LessonCompletion records that a student finished a lesson
type LessonCompletion struct {
	UserID      int       `json:"userId"`
	LessonID    int       `json:"lessonId"`
	CompletedAt time.Time `json:"completedAt"`
}

// RenderState is the outcome of rendering one content block
type RenderState string

const (
	RenderStateOK       RenderState = "ok"
	RenderStateWarning  RenderState = "warning"
	RenderStateNotFound RenderState = "not_found"
)

// RenderedBlock is the view model of one content block
type RenderedBlock struct {
	Order   int         `json:"order"`
	Type    BlockType   `json:"type"`
	Title   string      `json:"title"`
	State   RenderState `json:"state"`
	Message string      `json:"message,omitempty"`
	View    any         `json:"view,omitempty"`
}

// VideoView is the view of a video block
type VideoView struct {
	EmbedURL string `json:"embedUrl"`
}

// TextView is the view of a text block
type TextView struct {
	HTML string `json:"html"`
}

// QuizView is the view of a quiz block, without answers
type QuizView struct {
	Questions []PublicQuestion `json:"questions"`
}

// SummaryRefView is the view of a resolved summary reference
type SummaryRefView struct {
	SummaryID   int    `json:"summaryId"`
	Title       string `json:"title"`
	Subject     string `json:"subject"`
	DownloadURL string `json:"downloadUrl"`
}

// RenderedLesson is a lesson header followed by its rendered blocks
type RenderedLesson struct {
	ID          int             `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Subject     string          `json:"subject"`
	TeacherID   int             `json:"teacherId"`
	TeacherName string          `json:"teacherName,omitempty"`
	IsLive      bool            `json:"isLive"`
	StartTime   *time.Time      `json:"startTime,omitempty"`
	Duration    int             `json:"duration"`
	Blocks      []RenderedBlock `json:"blocks"`
}
