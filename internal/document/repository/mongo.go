package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/telcwrite/telcwrite/internal/document"
)

// MongoStore is a Store backed by two MongoDB collections, documents and
// contents. Per-document merge safety comes from expressing every content
// mutation as a single upserted $set, which Mongo applies atomically per
// document.
type MongoStore struct {
	docs     *mongo.Collection
	contents *mongo.Collection
}

// NewMongoStore wires the store onto the given database and ensures the
// uniqueness indexes (title for documents, documentId for contents).
func NewMongoStore(db *mongo.Database) *MongoStore {
	s := &MongoStore{
		docs:     db.Collection("documents"),
		contents: db.Collection("contents"),
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.docs.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "title", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	s.docs.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	s.contents.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "documentId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return s
}

func (m *MongoStore) CreateDocument(ctx context.Context, title string) (*document.Document, error) {
	d := &document.Document{
		ID:           newID(),
		Title:        title,
		CreationDate: creationDate(time.Now()),
	}
	if _, err := m.docs.InsertOne(ctx, d); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicateTitle
		}
		return nil, fmt.Errorf("insert document: %w", err)
	}
	return d, nil
}

func (m *MongoStore) ListDocuments(ctx context.Context) ([]*document.Document, error) {
	cur, err := m.docs.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer cur.Close(ctx)
	out := []*document.Document{}
	for cur.Next(ctx) {
		var d document.Document
		if err := cur.Decode(&d); err != nil {
			return nil, fmt.Errorf("decode document: %w", err)
		}
		out = append(out, &d)
	}
	return out, cur.Err()
}

func (m *MongoStore) GetDocument(ctx context.Context, id string) (*document.Document, error) {
	var d document.Document
	err := m.docs.FindOne(ctx, bson.M{"id": id}).Decode(&d)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get document: %w", err)
	}
	return &d, nil
}

func (m *MongoStore) DeleteDocument(ctx context.Context, id string) error {
	res, err := m.docs.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	if _, err := m.contents.DeleteOne(ctx, bson.M{"documentId": id}); err != nil {
		return fmt.Errorf("delete content: %w", err)
	}
	return nil
}

func (m *MongoStore) GetContent(ctx context.Context, documentID string) (*document.Content, error) {
	var c document.Content
	err := m.contents.FindOne(ctx, bson.M{"documentId": documentID}).Decode(&c)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return &document.Content{DocumentID: documentID}, nil
		}
		return nil, fmt.Errorf("get content: %w", err)
	}
	return &c, nil
}

func (m *MongoStore) PatchContent(ctx context.Context, documentID string, patch document.ContentPatch) error {
	set := bson.M{}
	if patch.Task != nil {
		set["task"] = *patch.Task
	}
	if patch.SubmissionText != nil {
		set["submissionText"] = *patch.SubmissionText
	}
	if patch.Correction != nil {
		set["correction"] = *patch.Correction
	}
	if len(set) == 0 {
		return nil
	}
	return m.upsertContent(ctx, documentID, set)
}

func (m *MongoStore) SetReview(ctx context.Context, documentID string, rev document.Review) error {
	// one $set for all three fields: partial review data is unrepresentable
	return m.upsertContent(ctx, documentID, bson.M{
		"reviewScore":    rev.Score,
		"reviewFeedback": rev.Feedback,
		"correction":     rev.Correction,
	})
}

func (m *MongoStore) upsertContent(ctx context.Context, documentID string, set bson.M) error {
	opts := options.Update().SetUpsert(true)
	_, err := m.contents.UpdateOne(ctx,
		bson.M{"documentId": documentID},
		bson.M{"$set": set, "$setOnInsert": bson.M{"documentId": documentID}},
		opts,
	)
	if err != nil {
		return fmt.Errorf("upsert content: %w", err)
	}
	return nil
}

func (m *MongoStore) Close(ctx context.Context) error {
	return m.docs.Database().Client().Disconnect(ctx)
}
