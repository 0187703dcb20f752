// Package authsvc - xác thực token, dựng danh tính người gọi và quản lý hồ sơ người dùng.
package authsvc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/golang-jwt/jwt/v5"
)

// VerifiedToken kết quả xác thực từ identity provider
type VerifiedToken struct {
	UID    string
	Claims map[string]interface{}
}

// TokenVerifier identity provider bên ngoài
type TokenVerifier interface {
	Verify(ctx context.Context, raw string) (*VerifiedToken, error)
}

// FirebaseVerifier xác thực Firebase ID token
type FirebaseVerifier struct {
	client *auth.Client
}

// NewFirebaseVerifier bọc Firebase Auth client
func NewFirebaseVerifier(client *auth.Client) *FirebaseVerifier {
	return &FirebaseVerifier{client: client}
}

// Verify gọi VerifyIDToken, custom claims nằm trong Claims
func (v *FirebaseVerifier) Verify(ctx context.Context, raw string) (*VerifiedToken, error) {
	if v.client == nil {
		return nil, errors.New("firebase auth not initialized")
	}
	token, err := v.client.VerifyIDToken(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("failed to verify ID token: %w", err)
	}
	return &VerifiedToken{UID: token.UID, Claims: token.Claims}, nil
}

// JWTVerifier xác thực token HS256 tự phát hành (triển khai không dùng Firebase)
type JWTVerifier struct {
	secret []byte
	issuer string
}

// NewJWTVerifier issuer rỗng thì không kiểm tra iss
func NewJWTVerifier(secret, issuer string) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret), issuer: issuer}
}

// Verify kiểm tra chữ ký HMAC, hạn dùng và issuer; sub là uid
func (v *JWTVerifier) Verify(_ context.Context, raw string) (*VerifiedToken, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return v.secret, nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok || !tok.Valid {
		return nil, errors.New("invalid claims")
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return nil, errors.New("token has no subject")
	}
	return &VerifiedToken{UID: sub, Claims: claims}, nil
}

// MintInput thông tin để phát hành token HS256
type MintInput struct {
	UID      string
	Email    string
	Roles    []string
	BranchID string
	TTL      time.Duration
}

// MintToken phát hành token HS256 mà JWTVerifier chấp nhận
func MintToken(secret, issuer string, in MintInput) (string, error) {
	if in.UID == "" {
		return "", errors.New("uid is required")
	}
	if in.TTL <= 0 {
		in.TTL = time.Hour
	}
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub": in.UID,
		"iat": now.Unix(),
		"exp": now.Add(in.TTL).Unix(),
	}
	if issuer != "" {
		claims["iss"] = issuer
	}
	if in.Email != "" {
		claims["email"] = in.Email
	}
	if len(in.Roles) > 0 {
		claims["roles"] = in.Roles
	}
	if in.BranchID != "" {
		claims["branchId"] = in.BranchID
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
