package artist

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type GenerationType string

const (
	GenerationText    GenerationType = "text"
	GenerationImage   GenerationType = "image"
	GenerationAudio   GenerationType = "audio"
	GenerationVideo   GenerationType = "video"
	GenerationPersona GenerationType = "persona"
)

func (t GenerationType) Valid() bool {
	switch t {
	case GenerationText, GenerationImage, GenerationAudio, GenerationVideo, GenerationPersona:
		return true
	}
	return false
}

type GenerationStatus string

const (
	StatusPending   GenerationStatus = "pending"
	StatusSucceeded GenerationStatus = "succeeded"
	StatusFailed    GenerationStatus = "failed"
)

func (s GenerationStatus) Valid() bool {
	switch s {
	case StatusPending, StatusSucceeded, StatusFailed:
		return true
	}
	return false
}

func (s GenerationStatus) Terminal() bool {
	return s == StatusSucceeded || s == StatusFailed
}

// GenerationHistory is one row in the generation ledger, the durable
// audit log of every provider call.
type GenerationHistory struct {
	ID             uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	UserID         uuid.UUID        `gorm:"type:uuid;not null;index:idx_generation_history_user_created,priority:1" json:"userId"`
	ArtistID       *uuid.UUID       `gorm:"type:uuid;index" json:"artistId,omitempty"`
	GenerationType GenerationType   `gorm:"column:generation_type;not null;index" json:"generationType"`
	OriginalPrompt string           `gorm:"column:original_prompt;type:text;not null" json:"originalPrompt"`
	RefinedPrompt  *string          `gorm:"column:refined_prompt;type:text" json:"refinedPrompt,omitempty"`
	Parameters     datatypes.JSON   `gorm:"column:parameters;type:jsonb;not null" json:"parameters"`
	ResultData     datatypes.JSON   `gorm:"column:result_data;type:jsonb;not null" json:"resultData"`
	ServiceUsed    string           `gorm:"column:service_used;not null" json:"serviceUsed"`
	Status         GenerationStatus `gorm:"column:status;not null;index" json:"status"`
	ErrorMessage   *string          `gorm:"column:error_message;type:text" json:"errorMessage,omitempty"`
	CreatedAt      time.Time        `gorm:"not null;index:idx_generation_history_user_created,priority:2,sort:desc" json:"createdAt"`
	UpdatedAt      time.Time        `gorm:"not null" json:"updatedAt"`
}

func (GenerationHistory) TableName() string { return "generation_history" }

func (h *GenerationHistory) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	h.Parameters = emptyObjectIfUnset(h.Parameters)
	h.ResultData = emptyObjectIfUnset(h.ResultData)
	return nil
}

// HistoryInput is the create payload; every field but RefinedPrompt and
// ErrorMessage is required.
type HistoryInput struct {
	UserID         uuid.UUID        `json:"userId"`
	ArtistID       *uuid.UUID       `json:"artistId,omitempty"`
	GenerationType GenerationType   `json:"generationType"`
	OriginalPrompt string           `json:"originalPrompt"`
	RefinedPrompt  *string          `json:"refinedPrompt,omitempty"`
	Parameters     datatypes.JSON   `json:"parameters"`
	ResultData     datatypes.JSON   `json:"resultData"`
	ServiceUsed    string           `json:"serviceUsed"`
	Status         GenerationStatus `json:"status"`
	ErrorMessage   *string          `json:"errorMessage,omitempty"`
}

func (in HistoryInput) ToModel() *GenerationHistory {
	return &GenerationHistory{
		UserID:         in.UserID,
		ArtistID:       in.ArtistID,
		GenerationType: in.GenerationType,
		OriginalPrompt: in.OriginalPrompt,
		RefinedPrompt:  in.RefinedPrompt,
		Parameters:     emptyObjectIfUnset(in.Parameters),
		ResultData:     emptyObjectIfUnset(in.ResultData),
		ServiceUsed:    in.ServiceUsed,
		Status:         in.Status,
		ErrorMessage:   in.ErrorMessage,
	}
}

type HistoryPatch struct {
	RefinedPrompt *string           `json:"refinedPrompt,omitempty"`
	Parameters    *datatypes.JSON   `json:"parameters,omitempty"`
	ResultData    *datatypes.JSON   `json:"resultData,omitempty"`
	ServiceUsed   *string           `json:"serviceUsed,omitempty"`
	Status        *GenerationStatus `json:"status,omitempty"`
	ErrorMessage  *string           `json:"errorMessage,omitempty"`
}

const (
	ColRefinedPrompt = "refined_prompt"
	ColParameters    = "parameters"
	ColResultData    = "result_data"
	ColServiceUsed   = "service_used"
	ColStatus        = "status"
	ColErrorMessage  = "error_message"
)

func (p HistoryPatch) Columns() map[string]interface{} {
	cols := map[string]interface{}{}
	if p.RefinedPrompt != nil {
		cols[ColRefinedPrompt] = *p.RefinedPrompt
	}
	if p.Parameters != nil {
		cols[ColParameters] = emptyObjectIfUnset(*p.Parameters)
	}
	if p.ResultData != nil {
		cols[ColResultData] = emptyObjectIfUnset(*p.ResultData)
	}
	if p.ServiceUsed != nil {
		cols[ColServiceUsed] = *p.ServiceUsed
	}
	if p.Status != nil {
		cols[ColStatus] = string(*p.Status)
	}
	if p.ErrorMessage != nil {
		cols[ColErrorMessage] = *p.ErrorMessage
	}
	return cols
}
