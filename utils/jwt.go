package utils

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dorcasbeulah27/PowerOil-Backend/config"
	"github.com/dorcasbeulah27/PowerOil-Backend/database"
	"github.com/dorcasbeulah27/PowerOil-Backend/models"

	"github.com/golang-jwt/jwt/v5"
	redis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm/clause"
)

// RedisClient is an optional shared Redis client used for token revocation and
// admin login lockout. It is nil when REDIS_ADDR is not configured.
var RedisClient *redis.Client

var jwtCfg config.JWTConfig

const RoleUser = "user"

type contextKey string

const UserIDKey = contextKey("userID")
const UserRoleKey = contextKey("userRole")
const RequestIDKey = contextKey("requestID")
const AdminKey = contextKey("admin")

var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenRevoked = errors.New("token revoked")
	ErrTokenInvalid = errors.New("invalid token")
)

// InitAuth installs the token settings used by every helper in this file
func InitAuth(cfg config.JWTConfig) error {
	if cfg.Secret == "" || cfg.Secret == "supersecretjwtkey" {
		return errors.New("JWT_SECRET environment variable is not set")
	}
	if cfg.UserExpiry <= 0 {
		cfg.UserExpiry = 24 * time.Hour
	}
	if cfg.AdminExpiry <= 0 {
		cfg.AdminExpiry = 6 * time.Hour
	}
	jwtCfg = cfg
	return nil
}

// InitRedis connects the optional Redis client. A failed ping leaves RedisClient nil
// so revocation falls back to the database.
func InitRedis(ctx context.Context, cfg config.RedisConfig) {
	if cfg.Addr == "" {
		return
	}
	rc := redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})
	if err := rc.Ping(ctx).Err(); err != nil {
		zap.L().Warn("redis ping failed, using database revocation store", zap.Error(err))
		return
	}
	RedisClient = rc
}

// GenerateAccessToken issues a signed token for a participant or an admin
func GenerateAccessToken(subject, role string) (string, error) {
	expiry := jwtCfg.UserExpiry
	if role != RoleUser {
		expiry = jwtCfg.AdminExpiry
	}
	return GenerateAccessTokenWithExpiry(subject, role, expiry)
}

// GenerateAccessTokenWithExpiry issues an access token with custom expiry duration
func GenerateAccessTokenWithExpiry(subject, role string, expiry time.Duration) (string, error) {
	if jwtCfg.Secret == "" {
		return "", errors.New("JWT_SECRET is not set")
	}
	now := time.Now()
	jti, err := generateJTI(32)
	if err != nil {
		return "", err
	}

	claims := jwt.MapClaims{
		"id":   subject,
		"role": role,
		"exp":  now.Add(expiry).Unix(),
		"iat":  now.Unix(),
		"nbf":  now.Unix(),
		"jti":  jti,
	}
	if jwtCfg.Audience != "" {
		claims["aud"] = jwtCfg.Audience
	}
	if jwtCfg.Issuer != "" {
		claims["iss"] = jwtCfg.Issuer
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(jwtCfg.Secret))
}

// ValidateAccessToken parses the token, checks registered claims and the revocation list
func ValidateAccessToken(ctx context.Context, tokenStr string) (jwt.MapClaims, error) {
	if jwtCfg.Secret == "" {
		return nil, errors.New("JWT_SECRET is not set")
	}
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if jwtCfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(jwtCfg.Audience))
	}
	if jwtCfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(jwtCfg.Issuer))
	}

	token, err := jwt.ParseWithClaims(tokenStr, jwt.MapClaims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(jwtCfg.Secret), nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}

	if jti, _ := claims["jti"].(string); jti != "" && isRevoked(ctx, jti) {
		return nil, ErrTokenRevoked
	}
	return claims, nil
}

// ClaimString reads a string claim, tolerating numeric ids
func ClaimString(claims jwt.MapClaims, key string) string {
	switch v := claims[key].(type) {
	case string:
		return v
	case float64:
		return fmt.Sprintf("%.0f", v)
	}
	return ""
}

func isRevoked(ctx context.Context, jti string) bool {
	if RedisClient != nil {
		res, err := RedisClient.Get(ctx, "jwt:blacklist:"+jti).Result()
		// redis errors do not fail authentication
		return err == nil && res == "1"
	}
	if database.DB != nil {
		var count int64
		if err := database.DB.WithContext(ctx).Model(&models.RevokedToken{}).Where("id = ?", jti).Count(&count).Error; err == nil {
			return count > 0
		}
	}
	return false
}

// RevokeJTI inserts a jti into the revocation store. If Redis is configured, set a key with TTL.
// Otherwise fall back to the revoked_tokens table.
func RevokeJTI(ctx context.Context, jti string, ttl time.Duration) error {
	if jti == "" {
		return errors.New("empty jti")
	}
	if RedisClient != nil {
		return RedisClient.Set(ctx, "jwt:blacklist:"+jti, "1", ttl).Err()
	}
	if database.DB != nil {
		now := time.Now()
		rec := models.RevokedToken{ID: jti, RevokedAt: now, ExpiresAt: now.Add(ttl)}
		return database.DB.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"revoked_at", "expires_at"}),
		}).Create(&rec).Error
	}
	return errors.New("no revocation store configured")
}

// RevokeClaims revokes the token described by claims for the rest of its lifetime
func RevokeClaims(ctx context.Context, claims jwt.MapClaims) error {
	jti, _ := claims["jti"].(string)
	var ttl time.Duration
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		ttl = time.Until(exp.Time)
	}
	if ttl < 0 {
		ttl = 0
	}
	return RevokeJTI(ctx, jti, ttl)
}

// generateJTI creates a URL-safe random identifier used as JWT ID
func generateJTI(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	const hex = "0123456789abcdef"
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		out[i] = hex[int(b[i])%len(hex)]
	}
	return string(out), nil
}

// GetUserID returns the authenticated subject from the request context
func GetUserID(r *http.Request) (string, bool) {
	id, ok := r.Context().Value(UserIDKey).(string)
	return id, ok && id != ""
}

func GetUserRole(r *http.Request) string {
	role, _ := r.Context().Value(UserRoleKey).(string)
	return role
}

// GetAdmin returns the admin loaded by the admin auth middleware
func GetAdmin(r *http.Request) (*models.Admin, bool) {
	a, ok := r.Context().Value(AdminKey).(*models.Admin)
	return a, ok && a != nil
}
