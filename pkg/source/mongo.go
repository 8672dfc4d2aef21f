package source

import (
	"context"
	"encoding/json"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/cfaller/planweave/pkg/errors"
)

// MongoLoader fetches documents from a MongoDB collection, one document per
// dataset, keyed by the document's "id" field.
type MongoLoader struct {
	client     *mongo.Client
	database   string
	collection string
}

// NewMongoLoader connects to MongoDB and verifies the connection.
func NewMongoLoader(ctx context.Context, uri, database, collection string) (*MongoLoader, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "connecting to mongodb")
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(errors.ErrCodeStore, err, "pinging mongodb")
	}

	return &MongoLoader{
		client:     client,
		database:   database,
		collection: collection,
	}, nil
}

// Load fetches the document whose "id" field equals datasetID.
func (l *MongoLoader) Load(ctx context.Context, datasetID string) (*Document, error) {
	if err := errors.ValidateDatasetID(datasetID); err != nil {
		return nil, err
	}

	coll := l.client.Database(l.database).Collection(l.collection)

	var raw bson.M
	err := coll.FindOne(ctx, bson.M{"id": datasetID}).Decode(&raw)
	if err == mongo.ErrNoDocuments {
		return nil, errors.New(errors.ErrCodeDatasetNotFound, "no dataset %q", datasetID)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreRead, err, "fetching dataset %q", datasetID)
	}
	delete(raw, "_id")

	// Round-trip through relaxed extended JSON so nested bson documents
	// become plain maps and slices.
	data, err := bson.MarshalExtJSON(raw, false, false)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidDocument, err, "encoding dataset %q", datasetID)
	}
	var plain map[string]any
	if err := json.Unmarshal(data, &plain); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidDocument, err, "decoding dataset %q", datasetID)
	}

	return &Document{ID: documentID(plain), Raw: plain}, nil
}

// Close disconnects the MongoDB client.
func (l *MongoLoader) Close(ctx context.Context) error {
	return l.client.Disconnect(ctx)
}

var _ Loader = (*MongoLoader)(nil)
