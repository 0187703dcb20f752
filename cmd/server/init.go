package main

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/papichoolo/shds-admin/config"
	"github.com/papichoolo/shds-admin/internal/database"
	"github.com/papichoolo/shds-admin/internal/global"
	"github.com/papichoolo/shds-admin/internal/metrics"
	"github.com/papichoolo/shds-admin/internal/utility"
)

// Hàm khởi tạo các biến toàn cục
func InitGlobal() {
	initValidator() // Khởi tạo validator
	initConfig()    // Khởi tạo cấu hình server
	initStore()     // Khởi tạo document store
	metrics.Init()  // Đăng ký Prometheus collectors
}

// Hàm khởi tạo validator (no_xss, role_name)
func initValidator() {
	global.InitValidator()
	logrus.Info("Initialized validator")
}

// Hàm khởi tạo cấu hình server
func initConfig() {
	cfg, err := config.NewConfig()
	if err != nil {
		logrus.Fatalf("Failed to initialize config: %v", err)
	}
	global.ServerConfig = cfg
	logrus.Info("Initialized server config")
}

// initStore mở document store theo STORE_DRIVER, dùng chung cho cả process
func initStore() {
	store, err := openStore(global.ServerConfig)
	if err != nil {
		logrus.Fatalf("Failed to open document store: %v", err)
	}
	global.Store = store
	logrus.WithField("driver", global.ServerConfig.StoreDriver).Info("Document store ready")
}

func openStore(cfg *config.Configuration) (database.Store, error) {
	switch cfg.StoreDriver {
	case config.StoreDriverMongo:
		client, err := database.GetMongoInstance(cfg.MongoDB_ConnectionURI)
		if err != nil {
			return nil, err
		}
		return database.NewMongoStore(client, cfg.MongoDB_DBName), nil
	case config.StoreDriverFirestore:
		credentials, err := utility.ResolveCredentialsPath(cfg.FirestoreCredentialsFile)
		if err != nil {
			return nil, err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return database.NewFirestoreStore(ctx, cfg.FirestoreProjectID, cfg.FirestoreDatabaseID, credentials)
	default:
		logrus.Warn("Using in-memory store, data is lost on restart")
		return database.NewMemoryStore(), nil
	}
}
