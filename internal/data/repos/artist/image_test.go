package artist

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ModularHallway100/harmony-backend/internal/data/repos/testutil"
	types "github.com/ModularHallway100/harmony-backend/internal/domain/artist"
)

func TestArtistImageRepoListsNewestFirst(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	repo := NewArtistImageRepo(db, testutil.Logger(t))

	artistID := uuid.New()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	// Insertion order deliberately differs from chronological order.
	for _, offset := range []int{3, 1, 5, 2, 4} {
		at := base.Add(time.Duration(offset) * time.Hour)
		in := types.ImageInput{ImageURL: "https://img/" + at.Format(time.RFC3339), GeneratedAt: &at}
		if _, err := repo.Create(ctx, nil, in.ToModel(artistID)); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}
	// Another artist's image must not leak in.
	if _, err := repo.Create(ctx, nil, types.ImageInput{ImageURL: "https://other"}.ToModel(uuid.New())); err != nil {
		t.Fatalf("Create other: %v", err)
	}

	images, err := repo.ListByArtistID(ctx, nil, artistID)
	if err != nil {
		t.Fatalf("ListByArtistID: %v", err)
	}
	if len(images) != 5 {
		t.Fatalf("expected 5 images, got %d", len(images))
	}
	for i := 1; i < len(images); i++ {
		if !images[i-1].GeneratedAt.After(images[i].GeneratedAt) {
			t.Fatalf("not strictly descending at %d: %v then %v", i, images[i-1].GeneratedAt, images[i].GeneratedAt)
		}
	}
	if images[0].IsPrimary || images[0].Tags == nil || len(images[0].Tags) != 0 {
		t.Fatalf("defaults not applied: %+v", images[0])
	}
}

func TestArtistImageRepoUpdateAndDelete(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	repo := NewArtistImageRepo(db, testutil.Logger(t))

	img, err := repo.Create(ctx, nil, types.ImageInput{ImageURL: "https://a", ModelUsed: "dall-e-3"}.ToModel(uuid.New()))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	primary := true
	tags := []string{"cover", "moody"}
	updated, err := repo.Update(ctx, nil, img.ID, types.ImagePatch{IsPrimary: &primary, Tags: &tags})
	if err != nil || updated == nil {
		t.Fatalf("Update: got=%v err=%v", updated, err)
	}
	if !updated.IsPrimary || len(updated.Tags) != 2 || updated.ModelUsed != "dall-e-3" {
		t.Fatalf("unexpected update result: %+v", updated)
	}

	if res, err := repo.Update(ctx, nil, uuid.New(), types.ImagePatch{IsPrimary: &primary}); err != nil || res != nil {
		t.Fatalf("update of missing image: got=%v err=%v", res, err)
	}

	deleted, err := repo.Delete(ctx, nil, img.ID)
	if err != nil || deleted == nil || deleted.ID != img.ID {
		t.Fatalf("Delete: got=%v err=%v", deleted, err)
	}
	again, err := repo.Delete(ctx, nil, img.ID)
	if err != nil || again != nil {
		t.Fatalf("second Delete: got=%v err=%v", again, err)
	}
	if got, _ := repo.GetByID(ctx, nil, img.ID); got != nil {
		t.Fatalf("image still present after delete")
	}
}
