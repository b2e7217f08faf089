// internal/app/sessions.go
package app

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/shrimpsizemoose/trekker/logger"
)

const timeFormat = "2006-01-02 15:04:05"

// Sessions keeps logged-in sessions in redis. The browser holds a signed
// token naming the session, logging out deletes the redis key so the token
// stops working before it expires.
type Sessions struct {
	redis       *redis.Client
	keyTemplate string
	secret      []byte
	ttl         time.Duration
}

type sessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

func NewSessions(config *Config) (*Sessions, error) {
	opt, err := redis.ParseURL(config.Sessions.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return NewSessionsWithClient(client, config), nil
}

func NewSessionsWithClient(client *redis.Client, config *Config) *Sessions {
	return &Sessions{
		redis:       client,
		keyTemplate: config.Sessions.KeyTemplate,
		secret:      []byte(config.Server.SecretKey),
		ttl:         time.Duration(config.Sessions.TTLHours) * time.Hour,
	}
}

func (s *Sessions) TTL() time.Duration {
	return s.ttl
}

func (s *Sessions) key(sid string) string {
	return strings.NewReplacer("{sid}", sid).Replace(s.keyTemplate)
}

func generateSessionID() (string, error) {
	randomBytes := make([]byte, 16)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return hex.EncodeToString(randomBytes), nil
}

// Create opens a session for the user and returns the token for the cookie.
func (s *Sessions) Create(ctx context.Context, userID int64) (string, error) {
	sid, err := generateSessionID()
	if err != nil {
		return "", err
	}

	now := time.Now().UTC()
	key := s.key(sid)

	pipe := s.redis.TxPipeline()
	pipe.HSet(ctx, key, map[string]interface{}{
		"user_id":            userID,
		"created_dttm_utc":   now.Format(timeFormat),
		"last_seen_dttm_utc": now.Format(timeFormat),
	})
	pipe.Expire(ctx, key, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}

	claims := sessionClaims{
		SessionID: sid,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return token, nil
}

func (s *Sessions) parse(token string) (*sessionClaims, error) {
	claims := &sessionClaims{}
	_, err := jwt.ParseWithClaims(
		token,
		claims,
		func(*jwt.Token) (interface{}, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAuthRequired, err)
	}
	return claims, nil
}

// Resolve returns the id of the user the token's session belongs to.
func (s *Sessions) Resolve(ctx context.Context, token string) (int64, error) {
	claims, err := s.parse(token)
	if err != nil {
		return 0, err
	}

	key := s.key(claims.SessionID)
	fields, err := s.redis.HGetAll(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("redis error: %w", err)
	}
	if len(fields) == 0 {
		logger.Debug.Printf("Session not found for key: %s", key)
		return 0, fmt.Errorf("%w: session is gone", ErrAuthRequired)
	}
	if fields["user_id"] != claims.Subject {
		logger.Debug.Printf("Session %s belongs to user %s, token says %s", key, fields["user_id"], claims.Subject)
		return 0, fmt.Errorf("%w: session mismatch", ErrAuthRequired)
	}

	userID, err := strconv.ParseInt(fields["user_id"], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: broken session", ErrAuthRequired)
	}

	if err := s.redis.HSet(ctx, key, "last_seen_dttm_utc", time.Now().UTC().Format(timeFormat)).Err(); err != nil {
		logger.Debug.Printf("Failed to touch session %s: %v", key, err)
	}

	return userID, nil
}

// Destroy forgets the session, an already broken token is not an error.
func (s *Sessions) Destroy(ctx context.Context, token string) error {
	claims, err := s.parse(token)
	if err != nil {
		return nil
	}
	if err := s.redis.Del(ctx, s.key(claims.SessionID)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (s *Sessions) Close() error {
	if s.redis != nil {
		return s.redis.Close()
	}
	return nil
}
