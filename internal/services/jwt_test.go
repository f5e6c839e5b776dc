package services

import (
	"testing"
	"time"

	"github.com/dimitrije/worktrack-api/pkg/access"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func subjectFor(id uuid.UUID, role access.Role) Subject {
	return Subject{UserID: id, Username: "jdoe", Email: "jdoe@example.com", Role: role}
}

func TestJWTService_GenerateTokenPair(t *testing.T) {
	svc := NewJWTService("test-secret", 24*time.Hour, 168*time.Hour)

	before := time.Now()
	pair, err := svc.GenerateTokenPair(subjectFor(uuid.New(), access.RoleUser))

	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, int64(24*60*60), pair.ExpiresIn)
	assert.WithinDuration(t, before.Add(24*time.Hour), pair.ExpiresAt, time.Second)
	assert.Equal(t, 168*time.Hour, svc.RefreshExpiry())
}

func TestJWTService_ValidateAccessToken_CarriesRole(t *testing.T) {
	svc := NewJWTService("test-secret", 15*time.Minute, 24*time.Hour)
	userID := uuid.New()

	pair, err := svc.GenerateTokenPair(subjectFor(userID, access.RoleTeamLeader))
	require.NoError(t, err)

	claims, err := svc.ValidateAccessToken(pair.AccessToken)

	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "jdoe", claims.Username)
	assert.Equal(t, access.RoleTeamLeader, claims.Role)
	assert.Equal(t, "worktrack-api", claims.Issuer)
}

func TestJWTService_ValidateAccessToken_RejectsUnknownRole(t *testing.T) {
	svc := NewJWTService("test-secret", 15*time.Minute, 24*time.Hour)

	pair, err := svc.GenerateTokenPair(subjectFor(uuid.New(), access.Role("Owner")))
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(pair.AccessToken)
	assert.Error(t, err)
}

func TestJWTService_ValidateAccessToken_WrongIssuer(t *testing.T) {
	secret := []byte("test-secret")
	claims := Claims{
		UserID: uuid.New(),
		Role:   access.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			Issuer:    "someone-else",
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	require.NoError(t, err)

	_, err = NewJWTService("test-secret", time.Hour, time.Hour).ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestJWTService_ValidateAccessToken_WrongSecret(t *testing.T) {
	svc1 := NewJWTService("secret-1", 15*time.Minute, 24*time.Hour)
	svc2 := NewJWTService("secret-2", 15*time.Minute, 24*time.Hour)

	pair, err := svc1.GenerateTokenPair(subjectFor(uuid.New(), access.RoleUser))
	require.NoError(t, err)

	_, err = svc2.ValidateAccessToken(pair.AccessToken)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse token")
}

func TestJWTService_ValidateAccessToken_Expired(t *testing.T) {
	svc := NewJWTService("test-secret", 1*time.Millisecond, 24*time.Hour)

	pair, err := svc.GenerateTokenPair(subjectFor(uuid.New(), access.RoleUser))
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)

	_, err = svc.ValidateAccessToken(pair.AccessToken)
	assert.Error(t, err)
}

func TestJWTService_ValidateAccessToken_MalformedToken(t *testing.T) {
	svc := NewJWTService("test-secret", 15*time.Minute, 24*time.Hour)

	for _, tok := range []string{"", "not-a-jwt-token", "eyJhbGciOiJIUzI1NiJ9."} {
		_, err := svc.ValidateAccessToken(tok)
		assert.Error(t, err, tok)
	}
}

func TestJWTService_ValidateRefreshToken(t *testing.T) {
	svc := NewJWTService("test-secret", 15*time.Minute, 24*time.Hour)
	userID := uuid.New()

	pair, err := svc.GenerateTokenPair(subjectFor(userID, access.RoleUser))
	require.NoError(t, err)

	got, err := svc.ValidateRefreshToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, userID, got)

	_, err = NewJWTService("other", time.Minute, time.Hour).ValidateRefreshToken(pair.RefreshToken)
	assert.Error(t, err)
}

func TestJWTService_RefreshTokensAreDifferent(t *testing.T) {
	svc := NewJWTService("test-secret", 15*time.Minute, 24*time.Hour)
	sub := subjectFor(uuid.New(), access.RoleUser)

	pair1, err := svc.GenerateTokenPair(sub)
	require.NoError(t, err)
	pair2, err := svc.GenerateTokenPair(sub)
	require.NoError(t, err)

	assert.NotEqual(t, pair1.RefreshToken, pair2.RefreshToken)
}

func TestHashToken(t *testing.T) {
	hash := HashToken("my-refresh-token")

	assert.Equal(t, hash, HashToken("my-refresh-token"))
	assert.Len(t, hash, 64)
	assert.NotEqual(t, hash, HashToken("different-token"))
}
