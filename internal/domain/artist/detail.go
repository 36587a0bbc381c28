package artist

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ArtistDetail holds the structured persona fields for one artist. The
// artist entity itself is owned elsewhere; ArtistID is only a reference.
type ArtistDetail struct {
	ID                 uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	ArtistID           uuid.UUID                   `gorm:"type:uuid;not null;uniqueIndex:idx_artist_detail_artist_id" json:"artistId"`
	PersonalityTraits  datatypes.JSONSlice[string] `gorm:"column:personality_traits;type:jsonb;not null" json:"personalityTraits"`
	VisualStyle        string                      `gorm:"column:visual_style;type:text" json:"visualStyle"`
	SpeakingStyle      string                      `gorm:"column:speaking_style;type:text" json:"speakingStyle"`
	Backstory          string                      `gorm:"column:backstory;type:text" json:"backstory"`
	Influences         datatypes.JSONSlice[string] `gorm:"column:influences;type:jsonb;not null" json:"influences"`
	UniqueElements     datatypes.JSONSlice[string] `gorm:"column:unique_elements;type:jsonb;not null" json:"uniqueElements"`
	GenerationParams   datatypes.JSON              `gorm:"column:generation_parameters;type:jsonb;not null" json:"generationParameters"`
	PerformanceMetrics datatypes.JSON              `gorm:"column:performance_metrics;type:jsonb;not null" json:"performanceMetrics"`
	AITrainingMetadata datatypes.JSON              `gorm:"column:ai_training_metadata;type:jsonb;not null" json:"aiTrainingMetadata"`
	CreatedAt          time.Time                   `gorm:"not null;index" json:"createdAt"`
	UpdatedAt          time.Time                   `gorm:"not null;index" json:"updatedAt"`
}

func (ArtistDetail) TableName() string { return "artist_detail" }

func (d *ArtistDetail) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	d.Normalize()
	return nil
}

// Normalize replaces nil structured fields with empty values so readers
// never see null lists or blobs.
func (d *ArtistDetail) Normalize() {
	if d.PersonalityTraits == nil {
		d.PersonalityTraits = datatypes.JSONSlice[string]{}
	}
	if d.Influences == nil {
		d.Influences = datatypes.JSONSlice[string]{}
	}
	if d.UniqueElements == nil {
		d.UniqueElements = datatypes.JSONSlice[string]{}
	}
	d.GenerationParams = emptyObjectIfUnset(d.GenerationParams)
	d.PerformanceMetrics = emptyObjectIfUnset(d.PerformanceMetrics)
	d.AITrainingMetadata = emptyObjectIfUnset(d.AITrainingMetadata)
}

// ArtistDetailInput is the create payload.
type ArtistDetailInput struct {
	PersonalityTraits    []string       `json:"personalityTraits"`
	VisualStyle          string         `json:"visualStyle"`
	SpeakingStyle        string         `json:"speakingStyle"`
	Backstory            string         `json:"backstory"`
	Influences           []string       `json:"influences"`
	UniqueElements       []string       `json:"uniqueElements"`
	GenerationParameters datatypes.JSON `json:"generationParameters"`
	PerformanceMetrics   datatypes.JSON `json:"performanceMetrics"`
	AITrainingMetadata   datatypes.JSON `json:"aiTrainingMetadata"`
}

func (in ArtistDetailInput) ToModel(artistID uuid.UUID) *ArtistDetail {
	d := &ArtistDetail{
		ArtistID:           artistID,
		PersonalityTraits:  in.PersonalityTraits,
		VisualStyle:        in.VisualStyle,
		SpeakingStyle:      in.SpeakingStyle,
		Backstory:          in.Backstory,
		Influences:         in.Influences,
		UniqueElements:     in.UniqueElements,
		GenerationParams:   in.GenerationParameters,
		PerformanceMetrics: in.PerformanceMetrics,
		AITrainingMetadata: in.AITrainingMetadata,
	}
	d.Normalize()
	return d
}

// ArtistDetailPatch is a sparse update; nil fields are left untouched.
type ArtistDetailPatch struct {
	PersonalityTraits    *[]string       `json:"personalityTraits,omitempty"`
	VisualStyle          *string         `json:"visualStyle,omitempty"`
	SpeakingStyle        *string         `json:"speakingStyle,omitempty"`
	Backstory            *string         `json:"backstory,omitempty"`
	Influences           *[]string       `json:"influences,omitempty"`
	UniqueElements       *[]string       `json:"uniqueElements,omitempty"`
	GenerationParameters *datatypes.JSON `json:"generationParameters,omitempty"`
	PerformanceMetrics   *datatypes.JSON `json:"performanceMetrics,omitempty"`
	AITrainingMetadata   *datatypes.JSON `json:"aiTrainingMetadata,omitempty"`
}

// Column names for ArtistDetail. Patches only ever write these.
const (
	ColPersonalityTraits    = "personality_traits"
	ColVisualStyle          = "visual_style"
	ColSpeakingStyle        = "speaking_style"
	ColBackstory            = "backstory"
	ColInfluences           = "influences"
	ColUniqueElements       = "unique_elements"
	ColGenerationParameters = "generation_parameters"
	ColPerformanceMetrics   = "performance_metrics"
	ColAITrainingMetadata   = "ai_training_metadata"
	ColUpdatedAt            = "updated_at"
)

// Columns returns the column → value set for the supplied fields.
func (p ArtistDetailPatch) Columns() map[string]interface{} {
	cols := map[string]interface{}{}
	if p.PersonalityTraits != nil {
		cols[ColPersonalityTraits] = stringSlice(*p.PersonalityTraits)
	}
	if p.VisualStyle != nil {
		cols[ColVisualStyle] = *p.VisualStyle
	}
	if p.SpeakingStyle != nil {
		cols[ColSpeakingStyle] = *p.SpeakingStyle
	}
	if p.Backstory != nil {
		cols[ColBackstory] = *p.Backstory
	}
	if p.Influences != nil {
		cols[ColInfluences] = stringSlice(*p.Influences)
	}
	if p.UniqueElements != nil {
		cols[ColUniqueElements] = stringSlice(*p.UniqueElements)
	}
	if p.GenerationParameters != nil {
		cols[ColGenerationParameters] = emptyObjectIfUnset(*p.GenerationParameters)
	}
	if p.PerformanceMetrics != nil {
		cols[ColPerformanceMetrics] = emptyObjectIfUnset(*p.PerformanceMetrics)
	}
	if p.AITrainingMetadata != nil {
		cols[ColAITrainingMetadata] = emptyObjectIfUnset(*p.AITrainingMetadata)
	}
	return cols
}

func stringSlice(in []string) datatypes.JSONSlice[string] {
	if in == nil {
		return datatypes.JSONSlice[string]{}
	}
	return datatypes.JSONSlice[string](in)
}

func emptyObjectIfUnset(j datatypes.JSON) datatypes.JSON {
	if len(j) == 0 || string(j) == "null" {
		return datatypes.JSON([]byte("{}"))
	}
	return j
}
