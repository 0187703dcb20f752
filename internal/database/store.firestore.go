package database

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/papichoolo/shds-admin/internal/common"
	"github.com/papichoolo/shds-admin/internal/logger"
)

// errConditionFailed dùng nội bộ để thoát transaction khi điều kiện UpdateIf sai
var errConditionFailed = errors.New("firestore: update condition not met")

// FirestoreStore dùng Cloud Firestore (named database)
type FirestoreStore struct {
	client *firestore.Client
}

// NewFirestoreStore mở client tới projectID/databaseID.
// credentialsFile trống thì dùng Application Default Credentials.
func NewFirestoreStore(ctx context.Context, projectID, databaseID, credentialsFile string) (*FirestoreStore, error) {
	if projectID == "" {
		return nil, fmt.Errorf("firestore project id is empty")
	}
	if databaseID == "" {
		databaseID = firestore.DefaultDatabaseID
	}
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}
	logger.WithModule("store").WithFields(map[string]interface{}{
		"project_id":  projectID,
		"database_id": databaseID,
	}).Info("Firestore client initialized")
	return &FirestoreStore{client: client}, nil
}

// Get: NotFound của gRPC nghĩa là absent
func (s *FirestoreStore) Get(ctx context.Context, collection, id string) (Document, bool, error) {
	if err := requireID(collection, id); err != nil {
		return Document{}, false, err
	}
	snap, err := s.client.Collection(collection).Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return Document{}, false, nil
	}
	if err != nil {
		return Document{}, false, common.ConvertStoreError(err)
	}
	if !snap.Exists() {
		return Document{}, false, nil
	}
	return Document{ID: snap.Ref.ID, Data: normalizeMap(snap.Data())}, true, nil
}

// Set: merge dùng firestore.MergeAll
func (s *FirestoreStore) Set(ctx context.Context, collection, id string, fields map[string]interface{}, mode WriteMode) error {
	if err := requireID(collection, id); err != nil {
		return err
	}
	ref := s.client.Collection(collection).Doc(id)
	var err error
	if mode == WriteMerge {
		if len(fields) == 0 {
			return nil
		}
		_, err = ref.Set(ctx, fields, firestore.MergeAll)
	} else {
		_, err = ref.Set(ctx, fields)
	}
	if err != nil {
		logger.WithModuleAndCollection("store", collection).WithError(err).Error("Firestore write failed")
		return common.ConvertStoreError(err)
	}
	return nil
}

// NewID lấy auto-id của Firestore
func (s *FirestoreStore) NewID(collection string) string {
	return s.client.Collection(collection).NewDoc().ID
}

// QueryEqual nối các Where("==") (Firestore có thể yêu cầu composite index)
func (s *FirestoreStore) QueryEqual(ctx context.Context, collection string, filters ...Filter) ([]Document, error) {
	query := s.client.Collection(collection).Query
	for _, f := range filters {
		query = query.Where(f.Field, "==", f.Value)
	}
	snaps, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, common.ConvertStoreError(err)
	}
	docs := make([]Document, 0, len(snaps))
	for _, snap := range snaps {
		docs = append(docs, Document{ID: snap.Ref.ID, Data: normalizeMap(snap.Data())})
	}
	return docs, nil
}

// StreamAll trả về toàn bộ collection
func (s *FirestoreStore) StreamAll(ctx context.Context, collection string) ([]Document, error) {
	return s.QueryEqual(ctx, collection)
}

// UpdateIf đọc và ghi trong cùng một transaction
func (s *FirestoreStore) UpdateIf(ctx context.Context, collection, id string, cond Filter, fields map[string]interface{}) (bool, error) {
	if err := requireID(collection, id); err != nil {
		return false, err
	}
	ref := s.client.Collection(collection).Doc(id)
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if status.Code(err) == codes.NotFound {
			return errConditionFailed
		}
		if err != nil {
			return err
		}
		current, ok := snap.Data()[cond.Field]
		if !ok || !valuesEqual(normalizeValue(current), cond.Value) {
			return errConditionFailed
		}
		return tx.Set(ref, fields, firestore.MergeAll)
	})
	if errors.Is(err, errConditionFailed) {
		return false, nil
	}
	if err != nil {
		return false, common.ConvertStoreError(err)
	}
	return true, nil
}

// Ping đọc một document không tồn tại; NotFound vẫn là kết nối tốt
func (s *FirestoreStore) Ping(ctx context.Context) error {
	_, err := s.client.Collection("_health").Doc("ping").Get(ctx)
	if err == nil || status.Code(err) == codes.NotFound {
		return nil
	}
	return err
}

// Close đóng client
func (s *FirestoreStore) Close(context.Context) error {
	return s.client.Close()
}
