package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dvkuznetsov/longform-crawl/internal/types"
)

// MongoStore is the TaskStore/DocumentStore backed by MongoDB.
type MongoStore struct {
	client    *mongo.Client
	tasks     *mongo.Collection
	documents *mongo.Collection
	logger    *slog.Logger
}

// NewMongoStore connects to uri and opens the named database/collections.
func NewMongoStore(ctx context.Context, uri, database, tasksCollection, documentsCollection string, logger *slog.Logger) (*MongoStore, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongodb connect: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		return nil, fmt.Errorf("mongodb ping: %w", err)
	}

	db := client.Database(database)
	return &MongoStore{
		client:    client,
		tasks:     db.Collection(tasksCollection),
		documents: db.Collection(documentsCollection),
		logger:    logger.With("component", "mongo_store"),
	}, nil
}

// EnsureIndexes creates the unique and claim-ordering indexes the
// store's claim/upsert queries depend on.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.tasks.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "source", Value: 1}, {Key: "url_norm", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{
				{Key: "source", Value: 1},
				{Key: "state", Value: 1},
				{Key: "next_fetch_at", Value: 1},
				{Key: "locked_until", Value: 1},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("ensure task indexes: %w", err)
	}

	_, err = s.documents.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "source", Value: 1}, {Key: "url_norm", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "content_hash", Value: 1}},
		},
	})
	if err != nil {
		return fmt.Errorf("ensure document indexes: %w", err)
	}
	return nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// UpsertTask implements the monotone-earliest upsert: new tasks start
// queued with retries=0; existing tasks get priority/meta replaced and
// next_fetch_at min-combined via Mongo's server-side $min operator.
func (s *MongoStore) UpsertTask(ctx context.Context, source, urlNorm string, nextFetchAt time.Time, priority int, meta map[string]any) error {
	if meta == nil {
		meta = map[string]any{}
	}
	now := time.Now()

	filter := bson.M{"source": source, "url_norm": urlNorm}
	update := bson.M{
		"$setOnInsert": bson.M{
			"created_at":   now,
			"retries":      0,
			"state":        types.TaskQueued,
			"locked_until": time.Time{},
			"locked_by":    "",
		},
		"$set": bson.M{
			"source":   source,
			"url_norm": urlNorm,
			"priority": priority,
			"meta":     meta,
		},
		"$min": bson.M{"next_fetch_at": nextFetchAt},
	}

	_, err := s.tasks.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return &types.StoreError{Op: "upsert_task", Err: err}
	}
	return nil
}

// ClaimTask atomically finds and leases the oldest eligible task,
// ordered descending priority, ascending next_fetch_at, ascending
// created_at as the tie-break.
func (s *MongoStore) ClaimTask(ctx context.Context, source, workerID string, leaseTTL time.Duration) (*types.Task, error) {
	now := time.Now()
	lockUntil := now.Add(leaseTTL)

	filter := bson.M{
		"source":        source,
		"state":         bson.M{"$in": []types.TaskState{types.TaskQueued, types.TaskError}},
		"next_fetch_at": bson.M{"$lte": now},
		"locked_until":  bson.M{"$lte": now},
	}
	update := bson.M{
		"$set": bson.M{
			"state":        types.TaskFetching,
			"locked_until": lockUntil,
			"locked_by":    workerID,
			"started_at":   now,
		},
	}
	opts := options.FindOneAndUpdate().
		SetSort(bson.D{
			{Key: "priority", Value: -1},
			{Key: "next_fetch_at", Value: 1},
			{Key: "created_at", Value: 1},
		}).
		SetReturnDocument(options.After)

	var task types.Task
	err := s.tasks.FindOneAndUpdate(ctx, filter, update, opts).Decode(&task)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, &types.StoreError{Op: "claim_task", Err: err}
	}
	return &task, nil
}

func (s *MongoStore) MarkDone(ctx context.Context, source, urlNorm string, nextFetchAt time.Time, note string) error {
	return s.markTerminal(ctx, source, urlNorm, types.TaskDone, nextFetchAt, note, "", false)
}

func (s *MongoStore) MarkSkipped(ctx context.Context, source, urlNorm string, nextFetchAt time.Time, reason string) error {
	return s.markTerminal(ctx, source, urlNorm, types.TaskDone, nextFetchAt, "skipped: "+reason, "", false)
}

func (s *MongoStore) MarkError(ctx context.Context, source, urlNorm string, nextFetchAt time.Time, errMsg string, incRetry bool) error {
	if len(errMsg) > 5000 {
		errMsg = errMsg[:5000]
	}
	return s.markTerminal(ctx, source, urlNorm, types.TaskError, nextFetchAt, "", errMsg, incRetry)
}

func (s *MongoStore) markTerminal(ctx context.Context, source, urlNorm string, state types.TaskState, nextFetchAt time.Time, note, lastErr string, incRetry bool) error {
	now := time.Now()
	set := bson.M{
		"state":         state,
		"locked_until":  time.Time{},
		"locked_by":     "",
		"finished_at":   now,
		"next_fetch_at": nextFetchAt,
	}
	if state == types.TaskDone {
		set["note"] = note
		set["retries"] = 0
	} else {
		set["last_error"] = lastErr
	}

	update := bson.M{"$set": set}
	if incRetry {
		update["$inc"] = bson.M{"retries": 1}
	}

	_, err := s.tasks.UpdateOne(ctx, bson.M{"source": source, "url_norm": urlNorm}, update)
	if err != nil {
		return &types.StoreError{Op: "mark_" + string(state), Err: err}
	}
	return nil
}

func (s *MongoStore) StatsBySourceAndState(ctx context.Context) ([]TaskGroup, error) {
	pipeline := bson.A{
		bson.M{"$group": bson.M{
			"_id": bson.M{"source": "$source", "state": "$state"},
			"n":   bson.M{"$sum": 1},
		}},
		bson.M{"$sort": bson.M{"n": -1}},
	}
	cur, err := s.tasks.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, &types.StoreError{Op: "stats_tasks", Err: err}
	}
	defer cur.Close(ctx)

	var rows []struct {
		ID struct {
			Source string          `bson:"source"`
			State  types.TaskState `bson:"state"`
		} `bson:"_id"`
		N int64 `bson:"n"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, &types.StoreError{Op: "stats_tasks", Err: err}
	}

	groups := make([]TaskGroup, 0, len(rows))
	for _, r := range rows {
		groups = append(groups, TaskGroup{Source: r.ID.Source, State: r.ID.State, Count: r.N})
	}
	return groups, nil
}

func (s *MongoStore) GetContentHash(ctx context.Context, source, urlNorm string) (string, bool, error) {
	var doc struct {
		ContentHash string `bson:"content_hash"`
	}
	err := s.documents.FindOne(ctx, bson.M{"source": source, "url_norm": urlNorm},
		options.FindOne().SetProjection(bson.M{"content_hash": 1})).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return "", false, nil
	}
	if err != nil {
		return "", false, &types.StoreError{Op: "get_document_hash", Err: err}
	}
	return doc.ContentHash, true, nil
}

// GetValidators returns the stored ETag/Last-Modified for a key.
func (s *MongoStore) GetValidators(ctx context.Context, source, urlNorm string) (string, string, bool, error) {
	var doc struct {
		ETag         string `bson:"http_etag"`
		LastModified string `bson:"http_last_modified"`
	}
	err := s.documents.FindOne(ctx, bson.M{"source": source, "url_norm": urlNorm},
		options.FindOne().SetProjection(bson.M{"http_etag": 1, "http_last_modified": 1})).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return "", "", false, nil
	}
	if err != nil {
		return "", "", false, &types.StoreError{Op: "get_validators", Err: err}
	}
	return doc.ETag, doc.LastModified, true, nil
}

// UpsertDocument writes validators/status/fetched_at always; when
// changed is true it additionally writes raw payload, parsed text,
// hash, and word count — a 304 or same-hash refresh must leave those
// untouched.
func (s *MongoStore) UpsertDocument(ctx context.Context, doc *types.Document, changed bool) error {
	now := time.Now()
	set := bson.M{
		"source":              doc.Source,
		"url_norm":            doc.URLNorm,
		"fetched_at":          doc.FetchedAt,
		"http_etag":           doc.HTTPETag,
		"http_last_modified":  doc.HTTPLastModified,
		"status_code":         doc.StatusCode,
	}
	if changed {
		set["raw_payload"] = doc.RawPayload
		set["parsed_text"] = doc.ParsedText
		set["content_hash"] = doc.ContentHash
		set["word_count"] = doc.WordCount
		set["updated_at"] = now
	}

	update := bson.M{
		"$set":         set,
		"$setOnInsert": bson.M{"created_at": now},
	}
	_, err := s.documents.UpdateOne(ctx, bson.M{"source": doc.Source, "url_norm": doc.URLNorm}, update,
		options.Update().SetUpsert(true))
	if err != nil {
		return &types.StoreError{Op: "upsert_document", Err: err}
	}
	return nil
}

func (s *MongoStore) StatsBySource(ctx context.Context) ([]DocGroup, error) {
	pipeline := bson.A{
		bson.M{"$group": bson.M{"_id": "$source", "n": bson.M{"$sum": 1}}},
		bson.M{"$sort": bson.M{"n": -1}},
	}
	cur, err := s.documents.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, &types.StoreError{Op: "stats_docs", Err: err}
	}
	defer cur.Close(ctx)

	var rows []struct {
		ID string `bson:"_id"`
		N  int64  `bson:"n"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, &types.StoreError{Op: "stats_docs", Err: err}
	}

	groups := make([]DocGroup, 0, len(rows))
	for _, r := range rows {
		groups = append(groups, DocGroup{Source: r.ID, Count: r.N})
	}
	return groups, nil
}

var _ Store = (*MongoStore)(nil)
