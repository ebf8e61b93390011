package tokens

import (
	"context"
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/marketpulse/marketpulse/backend/go-services/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func seg(b []byte) string { return base64.RawURLEncoding.EncodeToString(b) }

func testUser() *models.User {
	return &models.User{
		ID:         primitive.NewObjectID(),
		Name:       "Ada Lovelace",
		GivenName:  "Ada",
		FamilyName: "Lovelace",
		Email:      "ada@example.com",
		Picture:    "https://img/ada.png",
	}
}

func TestGenerateAccessToken_Claims(t *testing.T) {
	iss := NewIssuer("test-secret-32-bytes-should-be-long-enough")
	u := testUser()

	raw, err := iss.GenerateAccessToken(u, 2*time.Minute)
	require.NoError(t, err)

	c, err := iss.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, u.ID.Hex(), c.ID)
	assert.Equal(t, "Ada", c.Name)
	assert.Equal(t, "Ada Lovelace", c.FullName)
	assert.Equal(t, "Lovelace", c.FamilyName)
	assert.Equal(t, u.ID.Hex(), c.Subject)
	assert.InDelta(t, (2 * time.Minute).Seconds(), c.Remaining(time.Now()).Seconds(), 2)
}

func TestParse_Expired(t *testing.T) {
	iss := NewIssuer("another-secret-32-bytes-longgggg")
	iss.now = func() time.Time { return time.Now().Add(-time.Hour) }
	raw, err := iss.GenerateAccessToken(testUser(), time.Minute)
	require.NoError(t, err)

	iss.now = time.Now
	_, err = iss.Parse(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParse_WrongSecret(t *testing.T) {
	raw, err := NewIssuer("secret-one-32-bytes-xxxxxxxxxxxxxxxx").GenerateAccessToken(testUser(), time.Minute)
	require.NoError(t, err)
	_, err = NewIssuer("different-secret-xxxxxxxxxxxxxxxx").Parse(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParse_Malformed(t *testing.T) {
	_, err := NewIssuer("x").Parse("not.a.jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParse_AlgNoneRejected(t *testing.T) {
	header := seg([]byte(`{"alg":"none","typ":"JWT"}`))
	payload := seg([]byte(`{"id":"u-none","exp":9999999999}`))
	_, err := NewIssuer("x").Parse(header + "." + payload + ".")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParse_OtherHMACRejected(t *testing.T) {
	secret := "hs512-secret-xxxxxxxxxxxxxxxxxxxxxxxx"
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{
		"id": "u1", "exp": time.Now().Add(time.Minute).Unix(),
	}).SignedString([]byte(secret))
	require.NoError(t, err)
	_, err = NewIssuer(secret).Parse(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParse_TamperedPayload(t *testing.T) {
	iss := NewIssuer("tamper-test-secret-32-bytes-xxxxxxx")
	u := testUser()
	raw, err := iss.GenerateAccessToken(u, 5*time.Minute)
	require.NoError(t, err)

	parts := strings.Split(raw, ".")
	require.Len(t, parts, 3)
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	require.NoError(t, err)
	parts[1] = seg([]byte(strings.Replace(string(payload), "ada@example.com", "eve@example.com", 1)))
	_, err = iss.Parse(strings.Join(parts, "."))
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_ExposesClaimsMap(t *testing.T) {
	iss := NewIssuer("verify-secret-32-bytes-xxxxxxxxxxxx")
	u := testUser()
	raw, err := iss.GenerateAccessToken(u, time.Minute)
	require.NoError(t, err)

	tok, err := iss.Verify(context.Background(), raw)
	require.NoError(t, err)
	var m map[string]interface{}
	require.NoError(t, tok.Claims(&m))
	assert.Equal(t, u.ID.Hex(), m["id"])
	assert.Equal(t, "ada@example.com", m["email"])

	var c Claims
	require.NoError(t, tok.Claims(&c))
	assert.Equal(t, "Ada", c.Name)

	_, err = iss.Verify(context.Background(), "garbage")
	assert.Error(t, err)
}
