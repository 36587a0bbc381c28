package mirror

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ModularHallway100/harmony-backend/internal/domain/artist"
	apperrors "github.com/ModularHallway100/harmony-backend/internal/pkg/errors"
	"github.com/ModularHallway100/harmony-backend/internal/platform/logger"
)

// ArtistDocumentRepo reads and writes the denormalized artist documents.
// Lookups that match nothing return nil, nil.
type ArtistDocumentRepo interface {
	Get(ctx context.Context, artistID string) (*artist.ArtistDocument, error)
	Create(ctx context.Context, doc *artist.ArtistDocument) (*artist.ArtistDocument, error)
	Update(ctx context.Context, artistID string, patch artist.DocumentPatch) (*artist.ArtistDocument, error)
	AppendImage(ctx context.Context, artistID string, img artist.DocumentImage) (*artist.ArtistDocument, error)
	AppendGeneration(ctx context.Context, artistID string, gen artist.DocumentGeneration) (*artist.ArtistDocument, error)
	ReplaceGeneration(ctx context.Context, artistID string, gen artist.DocumentGeneration) (*artist.ArtistDocument, error)
	ReplaceFromLedger(ctx context.Context, artistID string, snap LedgerSnapshot) (*artist.ArtistDocument, error)
	Search(ctx context.Context, filters SearchFilters, opts SearchOptions) ([]artist.ArtistDocument, int64, error)
	Popular(ctx context.Context, limit int64) ([]artist.ArtistDocument, error)
}

// LedgerSnapshot is everything the ledger knows about one artist, used to
// overwrite the mirror's derived fields.
type LedgerSnapshot struct {
	Detail  *artist.ArtistDetail
	Images  []artist.DocumentImage
	History []artist.DocumentGeneration
}

type artistDocumentRepo struct {
	coll *mongo.Collection
	log  *logger.Logger
	now  func() time.Time
}

func NewArtistDocumentRepo(coll *mongo.Collection, baseLog *logger.Logger) ArtistDocumentRepo {
	return &artistDocumentRepo{
		coll: coll,
		log:  baseLog.With("repo", "ArtistDocumentRepo"),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (r *artistDocumentRepo) Get(ctx context.Context, artistID string) (*artist.ArtistDocument, error) {
	var doc artist.ArtistDocument
	err := r.coll.FindOne(ctx, bson.M{"_id": artistID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *artistDocumentRepo) Create(ctx context.Context, doc *artist.ArtistDocument) (*artist.ArtistDocument, error) {
	now := r.now()
	doc.Normalize()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, apperrors.Wrap(apperrors.KindDuplicateKey, "ArtistDocumentRepo.Create", err)
		}
		return nil, err
	}
	return doc, nil
}

func (r *artistDocumentRepo) Update(ctx context.Context, artistID string, patch artist.DocumentPatch) (*artist.ArtistDocument, error) {
	set := bson.M(patch.SetFields())
	set[artist.DocFieldUpdatedAt] = r.now()
	return r.findOneAndUpdate(ctx, artistID, bson.M{"$set": set})
}

// AppendImage pushes img and re-sorts the embedded gallery newest-first in
// one server-side update, so concurrent appends never overwrite each other.
func (r *artistDocumentRepo) AppendImage(ctx context.Context, artistID string, img artist.DocumentImage) (*artist.ArtistDocument, error) {
	return r.findOneAndUpdate(ctx, artistID, pushSorted(artist.DocFieldImages, img, artist.DocFieldImageTimestamp, r.now()))
}

func (r *artistDocumentRepo) AppendGeneration(ctx context.Context, artistID string, gen artist.DocumentGeneration) (*artist.ArtistDocument, error) {
	return r.findOneAndUpdate(ctx, artistID, pushSorted(artist.DocFieldHistory, gen, artist.DocFieldHistoryTimestamp, r.now()))
}

// ReplaceGeneration overwrites the embedded entry with the same
// generation_id, or appends it when the document has none yet.
func (r *artistDocumentRepo) ReplaceGeneration(ctx context.Context, artistID string, gen artist.DocumentGeneration) (*artist.ArtistDocument, error) {
	filter := bson.M{"_id": artistID, artist.DocFieldHistory + ".generation_id": gen.GenerationID}
	update := replaceGenerationUpdate(gen, r.now())
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc artist.ArtistDocument
	err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return r.AppendGeneration(ctx, artistID, gen)
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *artistDocumentRepo) ReplaceFromLedger(ctx context.Context, artistID string, snap LedgerSnapshot) (*artist.ArtistDocument, error) {
	return r.findOneAndUpdate(ctx, artistID, ledgerUpdate(snap, r.now()))
}

func (r *artistDocumentRepo) Search(ctx context.Context, filters SearchFilters, opts SearchOptions) ([]artist.ArtistDocument, int64, error) {
	filter := BuildSearchFilter(filters)

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	findOpts := options.Find().
		SetSort(BuildSort(opts)).
		SetSkip(opts.Skip).
		SetLimit(opts.Limit)
	docs, err := r.find(ctx, filter, findOpts)
	if err != nil {
		return nil, 0, err
	}
	return docs, total, nil
}

func (r *artistDocumentRepo) Popular(ctx context.Context, limit int64) ([]artist.ArtistDocument, error) {
	if limit <= 0 {
		limit = DefaultPopularLimit
	}
	findOpts := options.Find().
		SetSort(bson.D{{Key: artist.DocFieldEngagementRate, Value: -1}}).
		SetLimit(limit)
	return r.find(ctx, bson.D{}, findOpts)
}

func (r *artistDocumentRepo) find(ctx context.Context, filter interface{}, opts *options.FindOptions) ([]artist.ArtistDocument, error) {
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := cursor.Close(ctx); cerr != nil {
			r.log.Warn("cursor close failed", "error", cerr)
		}
	}()

	docs := []artist.ArtistDocument{}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func (r *artistDocumentRepo) findOneAndUpdate(ctx context.Context, artistID string, update bson.M) (*artist.ArtistDocument, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc artist.ArtistDocument
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": artistID}, update, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// pushSorted builds a $push that appends elem to field and re-sorts the
// array descending by sortKey, plus the updated_at bump.
func pushSorted(field string, elem interface{}, sortKey string, now time.Time) bson.M {
	return bson.M{
		"$push": bson.M{
			field: bson.M{
				"$each": bson.A{elem},
				"$sort": bson.M{sortKey: -1},
			},
		},
		"$set": bson.M{artist.DocFieldUpdatedAt: now},
	}
}

// replaceGenerationUpdate overwrites the history entry matched by the
// positional operator in the filter.
func replaceGenerationUpdate(gen artist.DocumentGeneration, now time.Time) bson.M {
	return bson.M{"$set": bson.M{
		artist.DocFieldHistory + ".$": gen,
		artist.DocFieldUpdatedAt:     now,
	}}
}

// ledgerUpdate rebuilds the ledger-derived parts of a document. Nil slices
// are written as empty arrays; persona and influences are touched only
// when the snapshot carries a detail row.
func ledgerUpdate(snap LedgerSnapshot, now time.Time) bson.M {
	images := snap.Images
	if images == nil {
		images = []artist.DocumentImage{}
	}
	history := snap.History
	if history == nil {
		history = []artist.DocumentGeneration{}
	}
	set := bson.M{
		artist.DocFieldImages:    images,
		artist.DocFieldHistory:   history,
		artist.DocFieldUpdatedAt: now,
	}
	if d := snap.Detail; d != nil {
		set["persona.backstory"] = d.Backstory
		set["persona.personality_traits"] = []string(d.PersonalityTraits)
		set[artist.DocFieldVisualStyle] = d.VisualStyle
		set[artist.DocFieldSpeakingStyle] = d.SpeakingStyle
		set["music_style.influences"] = []string(d.Influences)
	}
	return bson.M{"$set": set}
}
