package utility

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

// findAPIDir tìm thư mục gốc của service (thư mục chứa config/env)
func findAPIDir() (string, error) {
	currentDir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		envDir := filepath.Join(currentDir, "config", "env")
		if _, err := os.Stat(envDir); err == nil {
			return currentDir, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return "", fmt.Errorf("không tìm thấy thư mục chứa config/env")
		}
		currentDir = parentDir
	}
}

// ResolveCredentialsPath trả về đường dẫn tuyệt đối của file service account.
// Đường dẫn tương đối được tính từ thư mục chứa config/env.
func ResolveCredentialsPath(credentialsPath string) (string, error) {
	if credentialsPath == "" {
		return "", nil
	}
	if !filepath.IsAbs(credentialsPath) {
		apiDir, err := findAPIDir()
		if err != nil {
			return "", err
		}
		credentialsPath = filepath.Join(apiDir, credentialsPath)
	}
	if _, err := os.Stat(credentialsPath); os.IsNotExist(err) {
		return "", fmt.Errorf("credentials file not found: %s", credentialsPath)
	}
	return credentialsPath, nil
}

// InitFirebase khởi tạo Firebase Admin SDK.
// credentialsPath rỗng thì dùng Application Default Credentials.
func InitFirebase(ctx context.Context, projectID, credentialsPath string) (*auth.Client, error) {
	resolved, err := ResolveCredentialsPath(credentialsPath)
	if err != nil {
		return nil, err
	}

	var opts []option.ClientOption
	if resolved != "" {
		opts = append(opts, option.WithCredentialsFile(resolved))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase app: %w", err)
	}
	authClient, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get Firebase Auth client: %w", err)
	}
	return authClient, nil
}
