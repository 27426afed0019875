package models

import (
	"encoding/json"
	"fmt"

	"github.com/madaure/backend/libs/apperrors"
)

// BlockType represents the type of a lesson content block
type BlockType string

const (
	BlockTypeVideo      BlockType = "video"
	BlockTypeText       BlockType = "text"
	BlockTypeQuiz       BlockType = "quiz"
	BlockTypeSummaryRef BlockType = "summary-ref"
)

// Block is one unit of lesson material. The set of implementations is closed:
// VideoBlock, TextBlock, QuizBlock and SummaryRefBlock.
type Block interface {
	// Type returns the discriminant stored with the block
	Type() BlockType
	// Heading returns the block title
	Heading() string
	// payload returns the type specific "data" object
	payload() any
}

// VideoBlock embeds a video by URL
type VideoBlock struct {
	Title string    `json:"title" validate:"notblank" example:"Introduction"`
	Data  VideoData `json:"data"`
}

// VideoData is the payload of a video block
type VideoData struct {
	URL string `json:"url" validate:"omitempty,url" example:"https://www.youtube.com/embed/abc"`
}

// TextBlock holds rich markup written by a teacher
type TextBlock struct {
	Title string   `json:"title" validate:"notblank"`
	Data  TextData `json:"data"`
}

// TextData is the payload of a text block. Body is trusted HTML.
type TextData struct {
	Body string `json:"body"`
}

// QuizBlock holds an inline quiz scored without persistence
type QuizBlock struct {
	Title string   `json:"title" validate:"notblank"`
	Data  QuizData `json:"data"`
}

// QuizData is the payload of a quiz block
type QuizData struct {
	Questions []Question `json:"questions" validate:"min=1,dive"`
}

// SummaryRefBlock points at a Summary by ID. The reference is weak and may dangle.
type SummaryRefBlock struct {
	Title string         `json:"title" validate:"notblank"`
	Data  SummaryRefData `json:"data"`
}

// SummaryRefData is the payload of a summary-ref block
type SummaryRefData struct {
	SummaryID int `json:"summaryId" validate:"gt=0" example:"3"`
}

func (VideoBlock) Type() BlockType      { return BlockTypeVideo }
func (TextBlock) Type() BlockType       { return BlockTypeText }
func (QuizBlock) Type() BlockType       { return BlockTypeQuiz }
func (SummaryRefBlock) Type() BlockType { return BlockTypeSummaryRef }

func (b VideoBlock) Heading() string      { return b.Title }
func (b TextBlock) Heading() string       { return b.Title }
func (b QuizBlock) Heading() string       { return b.Title }
func (b SummaryRefBlock) Heading() string { return b.Title }

func (b VideoBlock) payload() any      { return b.Data }
func (b TextBlock) payload() any       { return b.Data }
func (b QuizBlock) payload() any       { return b.Data }
func (b SummaryRefBlock) payload() any { return b.Data }

// ContentBlock is a Block at a position inside a lesson
//
// The JSON form is {"order", "type", "title", "data"}; order is ignored on input.
type ContentBlock struct {
	Order int   `json:"order"`
	Block Block `json:"-" swaggertype:"object"`
}

type blockEnvelope struct {
	Order int             `json:"order,omitempty"`
	Type  BlockType       `json:"type"`
	Title string          `json:"title"`
	Data  json.RawMessage `json:"data"`
}

// MarshalJSON implements json.Marshaler
func (c ContentBlock) MarshalJSON() ([]byte, error) {
	if c.Block == nil {
		return nil, fmt.Errorf("content block at order %d is empty", c.Order)
	}
	data, err := EncodeBlockData(c.Block)
	if err != nil {
		return nil, err
	}
	return json.Marshal(blockEnvelope{
		Order: c.Order,
		Type:  c.Block.Type(),
		Title: c.Block.Heading(),
		Data:  data,
	})
}

// UnmarshalJSON implements json.Unmarshaler. Unknown block types are rejected.
func (c *ContentBlock) UnmarshalJSON(raw []byte) error {
	var env blockEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return err
	}
	block, err := DecodeBlock(env.Type, env.Title, env.Data)
	if err != nil {
		return err
	}
	c.Order = env.Order
	c.Block = block
	return nil
}

// EncodeBlockData serializes the "data" object of a block for storage
func EncodeBlockData(b Block) (json.RawMessage, error) {
	data, err := json.Marshal(b.payload())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s block data: %w", b.Type(), err)
	}
	return data, nil
}

// DecodeBlock builds the Block variant for blockType from a stored or submitted payload
func DecodeBlock(blockType BlockType, title string, data json.RawMessage) (Block, error) {
	if len(data) == 0 || string(data) == "null" {
		data = json.RawMessage("{}")
	}

	var (
		block Block
		err   error
	)
	switch blockType {
	case BlockTypeVideo:
		var d VideoData
		err = decodeData(data, &d, blockType)
		block = VideoBlock{Title: title, Data: d}
	case BlockTypeText:
		var d TextData
		err = decodeData(data, &d, blockType)
		block = TextBlock{Title: title, Data: d}
	case BlockTypeQuiz:
		var d QuizData
		err = decodeData(data, &d, blockType)
		block = QuizBlock{Title: title, Data: d}
	case BlockTypeSummaryRef:
		var d SummaryRefData
		err = decodeData(data, &d, blockType)
		block = SummaryRefBlock{Title: title, Data: d}
	default:
		return nil, apperrors.InvalidField("type", fmt.Sprintf("type de bloc inconnu: %q", blockType))
	}
	if err != nil {
		return nil, err
	}
	return block, nil
}

func decodeData(data json.RawMessage, dst any, blockType BlockType) error {
	if err := json.Unmarshal(data, dst); err != nil {
		return apperrors.InvalidField("data", fmt.Sprintf("données invalides pour un bloc %s", blockType))
	}
	return nil
}
