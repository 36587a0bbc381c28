package mirror

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/ModularHallway100/harmony-backend/internal/domain/artist"
)

func TestPushSortedUpdate(t *testing.T) {
	now := time.Unix(1700000000, 0).UTC()
	img := artist.DocumentImage{ImageID: "img-1", GeneratedAt: now.Add(-time.Hour)}

	update := pushSorted(artist.DocFieldImages, img, artist.DocFieldImageTimestamp, now)

	push, ok := update["$push"].(bson.M)
	require.True(t, ok)
	spec, ok := push[artist.DocFieldImages].(bson.M)
	require.True(t, ok)
	assert.Equal(t, bson.A{img}, spec["$each"])
	assert.Equal(t, bson.M{artist.DocFieldImageTimestamp: -1}, spec["$sort"])
	assert.Len(t, push, 1)

	set, ok := update["$set"].(bson.M)
	require.True(t, ok)
	assert.Equal(t, bson.M{artist.DocFieldUpdatedAt: now}, set)
}

func TestPushSortedHistoryKey(t *testing.T) {
	now := time.Unix(1700000000, 0).UTC()
	gen := artist.DocumentGeneration{GenerationID: "gen-1", CreatedAt: now}

	update := pushSorted(artist.DocFieldHistory, gen, artist.DocFieldHistoryTimestamp, now)

	spec := update["$push"].(bson.M)[artist.DocFieldHistory].(bson.M)
	assert.Equal(t, bson.A{gen}, spec["$each"])
	assert.Equal(t, bson.M{"created_at": -1}, spec["$sort"])
}

func TestReplaceGenerationUpdate(t *testing.T) {
	now := time.Unix(1700000000, 0).UTC()
	gen := artist.DocumentGeneration{GenerationID: "gen-1", Status: artist.StatusSucceeded}

	update := replaceGenerationUpdate(gen, now)

	assert.Equal(t, bson.M{"$set": bson.M{
		"generation_history.$": gen,
		"updated_at":           now,
	}}, update)
}

func TestLedgerUpdateWithoutDetail(t *testing.T) {
	now := time.Unix(1700000000, 0).UTC()

	update := ledgerUpdate(LedgerSnapshot{}, now)

	set, ok := update["$set"].(bson.M)
	require.True(t, ok)
	assert.Len(t, update, 1)
	assert.Equal(t, []artist.DocumentImage{}, set[artist.DocFieldImages])
	assert.Equal(t, []artist.DocumentGeneration{}, set[artist.DocFieldHistory])
	assert.Equal(t, now, set[artist.DocFieldUpdatedAt])
	assert.Len(t, set, 3)
}

func TestLedgerUpdateWithDetail(t *testing.T) {
	now := time.Unix(1700000000, 0).UTC()
	images := []artist.DocumentImage{{ImageID: "img-2"}, {ImageID: "img-1"}}
	history := []artist.DocumentGeneration{{GenerationID: "gen-1"}}
	detail := &artist.ArtistDetail{
		Backstory:         "raised on vinyl",
		PersonalityTraits: []string{"shy", "bold"},
		VisualStyle:       "neon",
		SpeakingStyle:     "laconic",
		Influences:        []string{"Bowie"},
	}

	update := ledgerUpdate(LedgerSnapshot{Detail: detail, Images: images, History: history}, now)

	set := update["$set"].(bson.M)
	assert.Equal(t, images, set["images"])
	assert.Equal(t, history, set["generation_history"])
	assert.Equal(t, now, set["updated_at"])
	assert.Equal(t, "raised on vinyl", set["persona.backstory"])
	assert.Equal(t, []string{"shy", "bold"}, set["persona.personality_traits"])
	assert.Equal(t, "neon", set["persona.visual_style"])
	assert.Equal(t, "laconic", set["persona.speaking_style"])
	assert.Equal(t, []string{"Bowie"}, set["music_style.influences"])
	assert.Len(t, set, 8)
}
