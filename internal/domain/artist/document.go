package artist

import (
	"encoding/json"
	"time"
)

// ArtistDocument is the read-optimized projection stored in the document
// store. The ledger stays the system of record for Images and History.
type ArtistDocument struct {
	ArtistID           string               `bson:"_id" json:"artistId"`
	OwnerID            string               `bson:"owner_id" json:"ownerId"`
	Name               string               `bson:"name" json:"name"`
	Persona            Persona              `bson:"persona" json:"persona"`
	MusicStyle         MusicStyle           `bson:"music_style" json:"musicStyle"`
	Images             []DocumentImage      `bson:"images" json:"images"`
	GenerationHistory  []DocumentGeneration `bson:"generation_history" json:"generationHistory"`
	PerformanceMetrics DocumentPerformance  `bson:"performance_metrics" json:"performanceMetrics"`
	CreatedAt          time.Time            `bson:"created_at" json:"createdAt"`
	UpdatedAt          time.Time            `bson:"updated_at" json:"updatedAt"`
}

type Persona struct {
	Bio               string   `bson:"bio" json:"bio"`
	Backstory         string   `bson:"backstory" json:"backstory"`
	PersonalityTraits []string `bson:"personality_traits" json:"personalityTraits"`
	VisualStyle       string   `bson:"visual_style" json:"visualStyle"`
	SpeakingStyle     string   `bson:"speaking_style" json:"speakingStyle"`
}

type MusicStyle struct {
	Genres     []string `bson:"genres" json:"genres"`
	Influences []string `bson:"influences" json:"influences"`
	Mood       string   `bson:"mood,omitempty" json:"mood,omitempty"`
	Tempo      string   `bson:"tempo,omitempty" json:"tempo,omitempty"`
}

type DocumentImage struct {
	ImageID     string    `bson:"image_id" json:"imageId"`
	ImageURL    string    `bson:"image_url" json:"imageUrl"`
	Prompt      string    `bson:"prompt" json:"prompt"`
	ModelUsed   string    `bson:"model_used" json:"modelUsed"`
	IsPrimary   bool      `bson:"is_primary" json:"isPrimary"`
	Tags        []string  `bson:"tags" json:"tags"`
	GeneratedAt time.Time `bson:"generated_at" json:"generatedAt"`
}

type DocumentGeneration struct {
	GenerationID   string                 `bson:"generation_id" json:"generationId"`
	GenerationType GenerationType         `bson:"generation_type" json:"generationType"`
	Prompt         string                 `bson:"prompt" json:"prompt"`
	RefinedPrompt  string                 `bson:"refined_prompt,omitempty" json:"refinedPrompt,omitempty"`
	ServiceUsed    string                 `bson:"service_used" json:"serviceUsed"`
	Status         GenerationStatus       `bson:"status" json:"status"`
	Result         map[string]interface{} `bson:"result,omitempty" json:"result,omitempty"`
	CreatedAt      time.Time              `bson:"created_at" json:"createdAt"`
}

type DocumentPerformance struct {
	Plays          int64   `bson:"plays" json:"plays"`
	Likes          int64   `bson:"likes" json:"likes"`
	Followers      int64   `bson:"followers" json:"followers"`
	EngagementRate float64 `bson:"engagement_rate" json:"engagementRate"`
}

// Field paths inside the artist document.
const (
	DocFieldImages           = "images"
	DocFieldHistory          = "generation_history"
	DocFieldImageTimestamp   = "generated_at"
	DocFieldHistoryTimestamp = "created_at"
	DocFieldOwnerID          = "owner_id"
	DocFieldName             = "name"
	DocFieldVisualStyle      = "persona.visual_style"
	DocFieldSpeakingStyle    = "persona.speaking_style"
	DocFieldGenres           = "music_style.genres"
	DocFieldEngagementRate   = "performance_metrics.engagement_rate"
	DocFieldPlays            = "performance_metrics.plays"
	DocFieldCreatedAt        = "created_at"
	DocFieldUpdatedAt        = "updated_at"
)

// Normalize fills nil arrays so the stored document never holds nulls
// where the read side expects lists.
func (d *ArtistDocument) Normalize() {
	if d.Images == nil {
		d.Images = []DocumentImage{}
	}
	if d.GenerationHistory == nil {
		d.GenerationHistory = []DocumentGeneration{}
	}
	if d.Persona.PersonalityTraits == nil {
		d.Persona.PersonalityTraits = []string{}
	}
	if d.MusicStyle.Genres == nil {
		d.MusicStyle.Genres = []string{}
	}
	if d.MusicStyle.Influences == nil {
		d.MusicStyle.Influences = []string{}
	}
}

func DocumentImageFrom(img *ArtistImage) DocumentImage {
	tags := []string(img.Tags)
	if tags == nil {
		tags = []string{}
	}
	return DocumentImage{
		ImageID:     img.ID.String(),
		ImageURL:    img.ImageURL,
		Prompt:      img.GenerationPrompt,
		ModelUsed:   img.ModelUsed,
		IsPrimary:   img.IsPrimary,
		Tags:        tags,
		GeneratedAt: img.GeneratedAt,
	}
}

func DocumentGenerationFrom(h *GenerationHistory) DocumentGeneration {
	g := DocumentGeneration{
		GenerationID:   h.ID.String(),
		GenerationType: h.GenerationType,
		Prompt:         h.OriginalPrompt,
		ServiceUsed:    h.ServiceUsed,
		Status:         h.Status,
		CreatedAt:      h.CreatedAt,
	}
	if h.RefinedPrompt != nil {
		g.RefinedPrompt = *h.RefinedPrompt
	}
	if len(h.ResultData) > 0 {
		var out map[string]interface{}
		if err := json.Unmarshal(h.ResultData, &out); err == nil && len(out) > 0 {
			g.Result = out
		}
	}
	return g
}

// DocumentPatch is a sparse merge-set on the artist document. Nested
// persona and style fields are set individually so siblings survive.
type DocumentPatch struct {
	Name               *string              `json:"name,omitempty"`
	Bio                *string              `json:"bio,omitempty"`
	Backstory          *string              `json:"backstory,omitempty"`
	PersonalityTraits  *[]string            `json:"personalityTraits,omitempty"`
	VisualStyle        *string              `json:"visualStyle,omitempty"`
	SpeakingStyle      *string              `json:"speakingStyle,omitempty"`
	Genres             *[]string            `json:"genres,omitempty"`
	Influences         *[]string            `json:"influences,omitempty"`
	Mood               *string              `json:"mood,omitempty"`
	Tempo              *string              `json:"tempo,omitempty"`
	PerformanceMetrics *DocumentPerformance `json:"performanceMetrics,omitempty"`
}

// SetFields returns the document paths to $set for the supplied fields.
func (p DocumentPatch) SetFields() map[string]interface{} {
	set := map[string]interface{}{}
	if p.Name != nil {
		set[DocFieldName] = *p.Name
	}
	if p.Bio != nil {
		set["persona.bio"] = *p.Bio
	}
	if p.Backstory != nil {
		set["persona.backstory"] = *p.Backstory
	}
	if p.PersonalityTraits != nil {
		set["persona.personality_traits"] = nonNil(*p.PersonalityTraits)
	}
	if p.VisualStyle != nil {
		set[DocFieldVisualStyle] = *p.VisualStyle
	}
	if p.SpeakingStyle != nil {
		set[DocFieldSpeakingStyle] = *p.SpeakingStyle
	}
	if p.Genres != nil {
		set[DocFieldGenres] = nonNil(*p.Genres)
	}
	if p.Influences != nil {
		set["music_style.influences"] = nonNil(*p.Influences)
	}
	if p.Mood != nil {
		set["music_style.mood"] = *p.Mood
	}
	if p.Tempo != nil {
		set["music_style.tempo"] = *p.Tempo
	}
	if p.PerformanceMetrics != nil {
		set["performance_metrics"] = *p.PerformanceMetrics
	}
	return set
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
