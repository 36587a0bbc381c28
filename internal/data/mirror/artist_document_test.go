package mirror

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ModularHallway100/harmony-backend/internal/domain/artist"
	apperrors "github.com/ModularHallway100/harmony-backend/internal/pkg/errors"
	"github.com/ModularHallway100/harmony-backend/internal/platform/logger"
)

// mongoCollection connects to TEST_MONGO_URI and hands out a throwaway
// collection that is dropped at cleanup.
func mongoCollection(t *testing.T) *mongo.Collection {
	t.Helper()
	uri := strings.TrimSpace(os.Getenv("TEST_MONGO_URI"))
	if uri == "" {
		t.Skip("TEST_MONGO_URI not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err)
	coll := client.Database("harmony_test").Collection("artists_" + strings.ReplaceAll(uuid.NewString(), "-", ""))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = coll.Drop(ctx)
		_ = client.Disconnect(ctx)
	})
	return coll
}

func TestArtistDocumentRepoAppendKeepsNewestFirst(t *testing.T) {
	coll := mongoCollection(t)
	ctx := context.Background()
	repo := NewArtistDocumentRepo(coll, logger.Nop())

	created, err := repo.Create(ctx, &artist.ArtistDocument{ArtistID: "a-1", OwnerID: "u-1", Name: "Nova"})
	require.NoError(t, err)
	assert.Empty(t, created.GenerationHistory)

	_, err = repo.Create(ctx, &artist.ArtistDocument{ArtistID: "a-1"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrDuplicateKey))

	t0 := time.Unix(0, 0).UTC()
	for _, g := range []artist.DocumentGeneration{
		{GenerationID: "A", CreatedAt: t0.Add(100 * time.Second)},
		{GenerationID: "B", CreatedAt: t0.Add(50 * time.Second)},
		{GenerationID: "C", CreatedAt: t0.Add(75 * time.Second)},
	} {
		_, err := repo.AppendGeneration(ctx, "a-1", g)
		require.NoError(t, err)
	}

	doc, err := repo.Get(ctx, "a-1")
	require.NoError(t, err)
	require.Len(t, doc.GenerationHistory, 3)
	ids := []string{doc.GenerationHistory[0].GenerationID, doc.GenerationHistory[1].GenerationID, doc.GenerationHistory[2].GenerationID}
	assert.Equal(t, []string{"A", "C", "B"}, ids)

	missing, err := repo.AppendImage(ctx, "nope", artist.DocumentImage{ImageID: "x"})
	require.NoError(t, err)
	assert.Nil(t, missing)

	name := "Nova Prime"
	updated, err := repo.Update(ctx, "a-1", artist.DocumentPatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Nova Prime", updated.Name)
	assert.Equal(t, "u-1", updated.OwnerID)
	assert.Len(t, updated.GenerationHistory, 3)

	replaced, err := repo.ReplaceGeneration(ctx, "a-1", artist.DocumentGeneration{GenerationID: "B", Status: artist.StatusSucceeded, CreatedAt: t0.Add(50 * time.Second)})
	require.NoError(t, err)
	require.Len(t, replaced.GenerationHistory, 3)
	assert.Equal(t, artist.StatusSucceeded, replaced.GenerationHistory[2].Status)
}
