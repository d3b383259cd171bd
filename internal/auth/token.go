package auth

import (
	"errors"
	"strconv"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/support-portal/internal/domain"
)

// DefaultTokenTTL is the session lifetime when none is configured.
const DefaultTokenTTL = 30 * time.Minute

// ErrInvalidToken is the single outcome for any token that fails verification.
var ErrInvalidToken = errors.New("invalid token")

// TokenManager issues and verifies HS256 session tokens. Tokens carry the
// subject username, the account id (as jti) and timestamps; roles are
// resolved per request.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager builds a new manager.
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// WithClock replaces the time source. Used by tests.
func (tm *TokenManager) WithClock(now func() time.Time) *TokenManager {
	tm.now = now
	return tm
}

// TTL returns the configured token lifetime.
func (tm *TokenManager) TTL() time.Duration {
	return tm.ttl
}

// Issue builds and signs a token for the account identified by subject and
// accountID. The id binds the token to one account so a later account reusing
// the username cannot inherit it.
func (tm *TokenManager) Issue(subject string, accountID int64) (string, domain.Session, error) {
	issuedAt := tm.now().Truncate(time.Second)
	session := domain.Session{
		Subject:   subject,
		AccountID: accountID,
		IssuedAt:  issuedAt,
		ExpiresAt: issuedAt.Add(tm.ttl),
	}
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		ID:        strconv.FormatInt(accountID, 10),
		IssuedAt:  jwt.NewNumericDate(session.IssuedAt),
		ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return "", domain.Session{}, err
	}
	return tokenString, session, nil
}

// Verify checks signature then expiry and returns the session. Every failure
// is reported as ErrInvalidToken.
func (tm *TokenManager) Verify(tokenStr string) (domain.Session, error) {
	if tokenStr == "" {
		return domain.Session{}, ErrInvalidToken
	}
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return tm.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(tm.now),
	)
	if err != nil || !parsed.Valid {
		return domain.Session{}, ErrInvalidToken
	}
	if claims.Subject == "" || claims.IssuedAt == nil {
		return domain.Session{}, ErrInvalidToken
	}
	accountID, err := strconv.ParseInt(claims.ID, 10, 64)
	if err != nil || accountID <= 0 {
		return domain.Session{}, ErrInvalidToken
	}
	return domain.Session{
		Subject:   claims.Subject,
		AccountID: accountID,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
