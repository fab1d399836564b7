package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/corvid-labs/rookery/backend/internal/apperrors"
	"github.com/corvid-labs/rookery/backend/internal/models"
)

// NoteRepository is the content-store boundary. Every read excludes
// soft-deleted notes; DeleteByID only ever soft-deletes.
type NoteRepository interface {
	CreateNote(ctx context.Context, note *models.Note) error
	FindByID(ctx context.Context, id int64) (*models.Note, error)
	FindManyByID(ctx context.Context, ids []int64) ([]*models.Note, error)
	FindByAuthor(ctx context.Context, authorID int64, limit int64) ([]*models.Note, error)
	FindByAuthors(ctx context.Context, authorIDs []int64, limit int64) ([]*models.Note, error)
	FindPublic(ctx context.Context, limit int64) ([]*models.Note, error)
	DeleteByID(ctx context.Context, id int64) error
	FindAttachments(ctx context.Context, noteIDs []int64) (map[int64][]models.Attachment, error)
}

// MongoNoteRepository implements NoteRepository for MongoDB.
type MongoNoteRepository struct {
	notes       *mongo.Collection
	attachments *mongo.Collection
}

// NewMongoNoteRepository creates a new MongoNoteRepository.
func NewMongoNoteRepository(db *mongo.Database) *MongoNoteRepository {
	return &MongoNoteRepository{
		notes:       db.Collection("notes"),
		attachments: db.Collection("attachments"),
	}
}

// liveFilter matches only notes that have not been soft-deleted.
func liveFilter(extra bson.M) bson.M {
	filter := bson.M{"deleted_at": bson.M{"$exists": false}}
	for k, v := range extra {
		filter[k] = v
	}
	return filter
}

var canonicalSort = bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}

func (r *MongoNoteRepository) CreateNote(ctx context.Context, note *models.Note) error {
	if note.CreatedAt.IsZero() {
		note.CreatedAt = time.Now()
	}
	_, err := r.notes.InsertOne(ctx, note)
	return err
}

func (r *MongoNoteRepository) FindByID(ctx context.Context, id int64) (*models.Note, error) {
	var note models.Note
	err := r.notes.FindOne(ctx, liveFilter(bson.M{"_id": id})).Decode(&note)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: note %d", apperrors.ErrNotFound, id)
		}
		return nil, err
	}
	return &note, nil
}

func (r *MongoNoteRepository) FindManyByID(ctx context.Context, ids []int64) ([]*models.Note, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.find(ctx, liveFilter(bson.M{"_id": bson.M{"$in": ids}}), int64(len(ids)))
}

func (r *MongoNoteRepository) FindByAuthor(ctx context.Context, authorID int64, limit int64) ([]*models.Note, error) {
	return r.find(ctx, liveFilter(bson.M{"author_id": authorID}), limit)
}

func (r *MongoNoteRepository) FindByAuthors(ctx context.Context, authorIDs []int64, limit int64) ([]*models.Note, error) {
	if len(authorIDs) == 0 {
		return nil, nil
	}
	return r.find(ctx, liveFilter(bson.M{"author_id": bson.M{"$in": authorIDs}}), limit)
}

func (r *MongoNoteRepository) FindPublic(ctx context.Context, limit int64) ([]*models.Note, error) {
	return r.find(ctx, liveFilter(bson.M{"visibility": models.VisibilityPublic}), limit)
}

func (r *MongoNoteRepository) find(ctx context.Context, filter bson.M, limit int64) ([]*models.Note, error) {
	findOptions := options.Find().SetSort(canonicalSort).SetLimit(limit)
	cursor, err := r.notes.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var notes []*models.Note
	if err = cursor.All(ctx, &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

// DeleteByID soft-deletes a note by stamping deleted_at. The document stays
// in place; reads filter it out.
func (r *MongoNoteRepository) DeleteByID(ctx context.Context, id int64) error {
	update := bson.M{"$set": bson.M{"deleted_at": time.Now()}}
	res, err := r.notes.UpdateOne(ctx, liveFilter(bson.M{"_id": id}), update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: note %d", apperrors.ErrNotFound, id)
	}
	return nil
}

func (r *MongoNoteRepository) FindAttachments(ctx context.Context, noteIDs []int64) (map[int64][]models.Attachment, error) {
	if len(noteIDs) == 0 {
		return map[int64][]models.Attachment{}, nil
	}

	cursor, err := r.attachments.Find(ctx, bson.M{"note_id": bson.M{"$in": noteIDs}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var attachments []models.Attachment
	if err = cursor.All(ctx, &attachments); err != nil {
		return nil, err
	}

	byNote := make(map[int64][]models.Attachment, len(noteIDs))
	for _, a := range attachments {
		byNote[a.NoteID] = append(byNote[a.NoteID], a)
	}
	return byNote, nil
}
