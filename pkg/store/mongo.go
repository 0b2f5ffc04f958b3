package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	mongotx "aqevent/pkg/db/mongo"
	"aqevent/pkg/model"
)

const (
	CollectionsName = "event_collections"
	FilesBucketName = "event_files"
)

// collectionDocument stores one event list per document, keyed by name.
// Revision is bumped on every write.
type collectionDocument struct {
	Name             string `bson:"_id"`
	Revision         int64  `bson:"revision"`
	model.Collection `bson:",inline"`
}

type MongoStore struct {
	db           *mongo.Database
	collection   *mongo.Collection
	txManager    mongotx.TransactionManager
	readTimeout  time.Duration
	writeTimeout time.Duration
	now          func() time.Time
}

func NewMongoStore(client *mongo.Client, database string, readTimeout, writeTimeout time.Duration) *MongoStore {
	db := client.Database(database)
	return &MongoStore{
		db:           db,
		collection:   db.Collection(CollectionsName),
		txManager:    mongotx.NewTransactionManager(client, ErrEventNotFound, ErrInvalidCollection),
		readTimeout:  readTimeout,
		writeTimeout: writeTimeout,
		now:          time.Now,
	}
}

// withTimeout leaves a transaction's SessionContext untouched.
func (s *MongoStore) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	if timeout <= 0 {
		return ctx, func() {}
	}

	deadline, hasDeadline := ctx.Deadline()
	if !hasDeadline {
		return context.WithTimeout(ctx, timeout)
	}

	remaining := time.Until(deadline)
	if remaining < timeout {
		return context.WithTimeout(ctx, remaining)
	}

	return context.WithTimeout(ctx, timeout)
}

func (s *MongoStore) ReadCollection(ctx context.Context, name string) (*model.Collection, error) {
	if err := ValidateCollection(name); err != nil {
		return nil, err
	}
	ctx, cancel := s.withTimeout(ctx, s.readTimeout)
	defer cancel()

	var doc collectionDocument
	err := s.collection.FindOne(ctx, bson.M{"_id": name}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return model.EmptyCollection(), nil
		}
		return nil, fmt.Errorf("failed to read collection %s: %w", name, err)
	}

	coll := doc.Collection
	if coll.Events == nil {
		coll.Events = []*model.Event{}
	}
	coll.Count = len(coll.Events)
	return &coll, nil
}

func (s *MongoStore) WriteCollection(ctx context.Context, name string, events []*model.Event, description string) error {
	if err := ValidateCollection(name); err != nil {
		return err
	}
	ctx, cancel := s.withTimeout(ctx, s.writeTimeout)
	defer cancel()

	coll := model.NewCollection(events, description, s.now().UTC().Truncate(time.Millisecond))
	update := bson.M{
		"$set": bson.M{
			"events":      coll.Events,
			"lastUpdated": coll.LastUpdated,
			"count":       coll.Count,
			"version":     coll.Version,
			"metadata":    coll.Metadata,
		},
		"$inc": bson.M{"revision": 1},
	}
	_, err := s.collection.UpdateOne(ctx, bson.M{"_id": name}, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to write collection %s: %w", name, err)
	}
	return nil
}

// MoveEvent removes id from one list and appends the updated copy to the
// other inside a single transaction.
func (s *MongoStore) MoveEvent(ctx context.Context, id, from, to string, update func(*model.Event), description string) (*model.Event, error) {
	var moved *model.Event
	err := s.txManager.ExecuteTransaction(ctx, func(sc mongo.SessionContext) error {
		src, err := s.ReadCollection(sc, from)
		if err != nil {
			return err
		}
		dst, err := s.ReadCollection(sc, to)
		if err != nil {
			return err
		}

		remaining, appended, ev, err := moveBetween(src.Events, dst.Events, id, update)
		if err != nil {
			return err
		}
		if err := s.WriteCollection(sc, to, appended, description); err != nil {
			return err
		}
		if err := s.WriteCollection(sc, from, remaining, description); err != nil {
			return err
		}
		moved = ev
		return nil
	})
	if err != nil {
		return nil, err
	}
	return moved, nil
}

func (s *MongoStore) Ping(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx, s.readTimeout)
	defer cancel()
	return s.db.Client().Ping(ctx, readpref.Primary())
}

// Upload stores the attachment in GridFS under its storage path.
func (s *MongoStore) Upload(ctx context.Context, name string, data []byte, ownerID string) (*model.StoredFile, error) {
	bucket, err := gridfs.NewBucket(s.db, options.GridFSBucket().SetName(FilesBucketName))
	if err != nil {
		return nil, fmt.Errorf("failed to open file bucket: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		if err := bucket.SetWriteDeadline(deadline); err != nil {
			return nil, err
		}
	}

	path := FilePath(ownerID, name)
	opts := options.GridFSUpload().SetMetadata(bson.M{
		"eventId":      ownerID,
		"originalName": name,
	})
	oid, err := bucket.UploadFromStream(path, bytes.NewReader(data), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to upload %s: %w", name, err)
	}

	return &model.StoredFile{
		OriginalName: name,
		StoredPath:   path,
		DownloadURL:  fmt.Sprintf("gridfs://%s/%s", FilesBucketName, oid.Hex()),
		UploadedAt:   s.now(),
		Size:         int64(len(data)),
		Ref:          oid.Hex(),
	}, nil
}
