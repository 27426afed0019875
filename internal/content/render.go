// Package content renders lesson content blocks into view models
package content

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/madaure/backend/internal/models"
	"github.com/madaure/backend/libs/apperrors"
	"go.uber.org/zap"
)

// SummaryLookup resolves summary references
type SummaryLookup interface {
	// GetByID retrieves a summary by ID
	//
	// "ctx" is the context for the request.
	// "id" is the ID of the summary.
	//
	// Returns the summary, or an error matching apperrors.ErrNotFound when it does not exist.
	GetByID(ctx context.Context, id int) (*models.Summary, error)
}

type renderFunc func(ctx context.Context, block models.Block) (models.RenderState, string, any)

// Renderer turns content blocks into views through a dispatch table keyed by block type
type Renderer struct {
	summaries SummaryLookup
	logger    *zap.Logger
	renderers map[models.BlockType]renderFunc
}

// NewRenderer creates a new content renderer
func NewRenderer(summaries SummaryLookup, logger *zap.Logger) *Renderer {
	r := &Renderer{summaries: summaries, logger: logger}
	r.renderers = map[models.BlockType]renderFunc{
		models.BlockTypeVideo:      r.renderVideo,
		models.BlockTypeText:       r.renderText,
		models.BlockTypeQuiz:       r.renderQuiz,
		models.BlockTypeSummaryRef: r.renderSummaryRef,
	}
	return r
}

// Render renders one block. It never fails; problems surface as a warning or not_found state.
func (r *Renderer) Render(ctx context.Context, cb models.ContentBlock) models.RenderedBlock {
	rendered := models.RenderedBlock{Order: cb.Order}
	if cb.Block == nil {
		rendered.State = models.RenderStateWarning
		rendered.Message = "Bloc vide"
		return rendered
	}

	rendered.Type = cb.Block.Type()
	rendered.Title = cb.Block.Heading()

	render, ok := r.renderers[cb.Block.Type()]
	if !ok {
		rendered.State = models.RenderStateWarning
		rendered.Message = "Type de bloc non pris en charge"
		return rendered
	}

	state, message, view := render(ctx, cb.Block)
	rendered.State = state
	rendered.Message = message
	rendered.View = view
	return rendered
}

// RenderLesson renders the header and every block of a lesson, in order
func (r *Renderer) RenderLesson(ctx context.Context, lesson *models.Lesson) *models.RenderedLesson {
	blocks := make([]models.RenderedBlock, 0, len(lesson.Content))
	for _, cb := range lesson.Content {
		blocks = append(blocks, r.Render(ctx, cb))
	}
	return &models.RenderedLesson{
		ID:          lesson.ID,
		Title:       lesson.Title,
		Description: lesson.Description,
		Subject:     lesson.Subject,
		TeacherID:   lesson.TeacherID,
		TeacherName: lesson.TeacherName,
		IsLive:      lesson.IsLive,
		StartTime:   lesson.StartTime,
		Duration:    lesson.Duration,
		Blocks:      blocks,
	}
}

func (r *Renderer) renderVideo(_ context.Context, block models.Block) (models.RenderState, string, any) {
	video := block.(models.VideoBlock)
	raw := strings.TrimSpace(video.Data.URL)
	if raw == "" {
		return models.RenderStateWarning, "Vidéo indisponible: aucun lien", nil
	}
	return models.RenderStateOK, "", models.VideoView{EmbedURL: EmbedURL(raw)}
}

func (r *Renderer) renderText(_ context.Context, block models.Block) (models.RenderState, string, any) {
	text := block.(models.TextBlock)
	if strings.TrimSpace(text.Data.Body) == "" {
		return models.RenderStateWarning, "Contenu vide", nil
	}
	// Body comes from teachers and is emitted as is
	return models.RenderStateOK, "", models.TextView{HTML: text.Data.Body}
}

func (r *Renderer) renderQuiz(_ context.Context, block models.Block) (models.RenderState, string, any) {
	quiz := block.(models.QuizBlock)
	if len(quiz.Data.Questions) == 0 {
		return models.RenderStateWarning, "Quiz sans questions", nil
	}
	return models.RenderStateOK, "", models.QuizView{Questions: models.StripAnswers(quiz.Data.Questions)}
}

func (r *Renderer) renderSummaryRef(ctx context.Context, block models.Block) (models.RenderState, string, any) {
	ref := block.(models.SummaryRefBlock)
	summary, err := r.summaries.GetByID(ctx, ref.Data.SummaryID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return models.RenderStateNotFound, "Résumé introuvable", nil
	}
	if err != nil {
		r.logger.Warn("failed to resolve summary reference",
			zap.Int("summaryId", ref.Data.SummaryID),
			zap.Error(err),
		)
		return models.RenderStateWarning, "Résumé momentanément indisponible", nil
	}
	return models.RenderStateOK, "", models.SummaryRefView{
		SummaryID:   summary.ID,
		Title:       summary.Title,
		Subject:     summary.Subject,
		DownloadURL: fmt.Sprintf("/api/summaries/%d/download", summary.ID),
	}
}

// EmbedURL converts YouTube watch and short links to their embeddable form; other URLs are returned unchanged
func EmbedURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	switch host {
	case "youtube.com", "m.youtube.com":
		if u.Path == "/watch" {
			if id := u.Query().Get("v"); id != "" {
				return "https://www.youtube.com/embed/" + id
			}
		}
	case "youtu.be":
		if id := strings.Trim(u.Path, "/"); id != "" {
			return "https://www.youtube.com/embed/" + id
		}
	}
	return raw
}
