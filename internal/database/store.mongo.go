package database

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/papichoolo/shds-admin/internal/common"
	"github.com/papichoolo/shds-admin/internal/ids"
	"github.com/papichoolo/shds-admin/internal/logger"
)

// MongoStore: mỗi collection là một Mongo collection, id document nằm ở _id (string)
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewMongoStore bọc client đã kết nối
func NewMongoStore(client *mongo.Client, dbName string) *MongoStore {
	return &MongoStore{client: client, db: client.Database(dbName)}
}

// Get đọc document theo _id
func (s *MongoStore) Get(ctx context.Context, collection, id string) (Document, bool, error) {
	if err := requireID(collection, id); err != nil {
		return Document{}, false, err
	}
	var raw bson.M
	err := s.db.Collection(collection).FindOne(ctx, bson.M{"_id": id}).Decode(&raw)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Document{}, false, nil
	}
	if err != nil {
		return Document{}, false, common.ConvertStoreError(err)
	}
	return toDocument(raw), true, nil
}

// Set: replace = ReplaceOne upsert, merge = $set upsert
func (s *MongoStore) Set(ctx context.Context, collection, id string, fields map[string]interface{}, mode WriteMode) error {
	if err := requireID(collection, id); err != nil {
		return err
	}
	coll := s.db.Collection(collection)
	doc := withoutMongoID(fields)

	var err error
	if mode == WriteReplace {
		_, err = coll.ReplaceOne(ctx, bson.M{"_id": id}, doc, options.Replace().SetUpsert(true))
	} else {
		if len(doc) == 0 {
			return nil
		}
		_, err = coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": doc}, options.Update().SetUpsert(true))
	}
	if err != nil {
		logger.WithModuleAndCollection("store", collection).WithError(err).Error("Mongo write failed")
		return common.ConvertStoreError(err)
	}
	return nil
}

// NewID sinh ULID, Mongo không tự cấp id dạng string
func (s *MongoStore) NewID(string) string {
	return ids.New()
}

// QueryEqual dịch filters thành bson.M (AND)
func (s *MongoStore) QueryEqual(ctx context.Context, collection string, filters ...Filter) ([]Document, error) {
	query := bson.M{}
	for _, f := range filters {
		query[f.Field] = f.Value
	}
	cursor, err := s.db.Collection(collection).Find(ctx, query, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, common.ConvertStoreError(err)
	}
	var raws []bson.M
	if err := cursor.All(ctx, &raws); err != nil {
		return nil, common.ConvertStoreError(err)
	}
	docs := make([]Document, 0, len(raws))
	for _, raw := range raws {
		docs = append(docs, toDocument(raw))
	}
	return docs, nil
}

// StreamAll trả về toàn bộ collection
func (s *MongoStore) StreamAll(ctx context.Context, collection string) ([]Document, error) {
	return s.QueryEqual(ctx, collection)
}

// UpdateIf dùng điều kiện trong filter của UpdateOne, Mongo đảm bảo atomic trên một document
func (s *MongoStore) UpdateIf(ctx context.Context, collection, id string, cond Filter, fields map[string]interface{}) (bool, error) {
	if err := requireID(collection, id); err != nil {
		return false, err
	}
	res, err := s.db.Collection(collection).UpdateOne(ctx,
		bson.M{"_id": id, cond.Field: cond.Value},
		bson.M{"$set": withoutMongoID(fields)},
	)
	if err != nil {
		return false, common.ConvertStoreError(err)
	}
	return res.MatchedCount == 1, nil
}

// Ping kiểm tra kết nối
func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

// Close ngắt kết nối client
func (s *MongoStore) Close(ctx context.Context) error {
	if err := s.client.Disconnect(ctx); err != nil {
		logger.WithModule("store").WithError(err).Error("Failed to disconnect MongoDB client")
		return err
	}
	logger.WithModule("store").Info("Successfully disconnected from MongoDB")
	return nil
}

func toDocument(raw bson.M) Document {
	id, _ := normalizeValue(raw["_id"]).(string)
	delete(raw, "_id")
	return Document{ID: id, Data: normalizeMap(raw)}
}

func withoutMongoID(fields map[string]interface{}) bson.M {
	doc := bson.M{}
	for k, v := range fields {
		if k == "_id" {
			continue
		}
		doc[k] = v
	}
	return doc
}
