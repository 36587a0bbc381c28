package artist

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ArtistImage is one generated image. IsPrimary is advisory: nothing
// stops an artist from having zero or several primary images.
type ArtistImage struct {
	ID               uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	ArtistID         uuid.UUID                   `gorm:"type:uuid;not null;index:idx_artist_image_artist_generated,priority:1" json:"artistId"`
	ImageURL         string                      `gorm:"column:image_url;type:text;not null" json:"imageUrl"`
	GenerationPrompt string                      `gorm:"column:generation_prompt;type:text" json:"generationPrompt"`
	ModelUsed        string                      `gorm:"column:model_used" json:"modelUsed"`
	IsPrimary        bool                        `gorm:"column:is_primary;not null" json:"isPrimary"`
	Tags             datatypes.JSONSlice[string] `gorm:"column:tags;type:jsonb;not null" json:"tags"`
	GeneratedAt      time.Time                   `gorm:"column:generated_at;not null;index:idx_artist_image_artist_generated,priority:2,sort:desc" json:"generatedAt"`
	CreatedAt        time.Time                   `gorm:"not null" json:"createdAt"`
}

func (ArtistImage) TableName() string { return "artist_image" }

func (i *ArtistImage) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	if i.Tags == nil {
		i.Tags = datatypes.JSONSlice[string]{}
	}
	if i.GeneratedAt.IsZero() {
		i.GeneratedAt = time.Now().UTC()
	}
	return nil
}

type ImageInput struct {
	ImageURL         string     `json:"imageUrl" binding:"required"`
	GenerationPrompt string     `json:"generationPrompt"`
	ModelUsed        string     `json:"modelUsed"`
	IsPrimary        bool       `json:"isPrimary"`
	Tags             []string   `json:"tags"`
	GeneratedAt      *time.Time `json:"generatedAt,omitempty"`
}

func (in ImageInput) ToModel(artistID uuid.UUID) *ArtistImage {
	img := &ArtistImage{
		ArtistID:         artistID,
		ImageURL:         in.ImageURL,
		GenerationPrompt: in.GenerationPrompt,
		ModelUsed:        in.ModelUsed,
		IsPrimary:        in.IsPrimary,
		Tags:             stringSlice(in.Tags),
	}
	if in.GeneratedAt != nil {
		img.GeneratedAt = in.GeneratedAt.UTC()
	}
	return img
}

type ImagePatch struct {
	ImageURL         *string   `json:"imageUrl,omitempty"`
	GenerationPrompt *string   `json:"generationPrompt,omitempty"`
	ModelUsed        *string   `json:"modelUsed,omitempty"`
	IsPrimary        *bool     `json:"isPrimary,omitempty"`
	Tags             *[]string `json:"tags,omitempty"`
}

const (
	ColImageURL         = "image_url"
	ColGenerationPrompt = "generation_prompt"
	ColModelUsed        = "model_used"
	ColIsPrimary        = "is_primary"
	ColTags             = "tags"
)

func (p ImagePatch) Columns() map[string]interface{} {
	cols := map[string]interface{}{}
	if p.ImageURL != nil {
		cols[ColImageURL] = *p.ImageURL
	}
	if p.GenerationPrompt != nil {
		cols[ColGenerationPrompt] = *p.GenerationPrompt
	}
	if p.ModelUsed != nil {
		cols[ColModelUsed] = *p.ModelUsed
	}
	if p.IsPrimary != nil {
		cols[ColIsPrimary] = *p.IsPrimary
	}
	if p.Tags != nil {
		cols[ColTags] = stringSlice(*p.Tags)
	}
	return cols
}
