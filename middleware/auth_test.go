package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var secret = []byte("middleware-test-secret")

func protectedRouter() *gin.Engine {
	r := gin.New()
	r.Use(RequestIDMiddleware(), JWTAuthMiddleware(secret))
	r.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user": c.GetString(ContextUserID)})
	})
	return r
}

func TestIssueAndParseToken(t *testing.T) {
	token, err := TokenIssuer{Secret: secret, TTL: time.Hour}.Issue("abc123")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	uid, err := ParseToken(token, secret)
	if err != nil || uid != "abc123" {
		t.Fatalf("parse: uid=%q err=%v", uid, err)
	}

	if _, err := ParseToken(token, []byte("other-secret")); err == nil {
		t.Fatalf("token accepted with the wrong secret")
	}

	expired, err := TokenIssuer{Secret: secret, TTL: -time.Minute}.Issue("abc123")
	if err != nil {
		t.Fatalf("issue expired: %v", err)
	}
	if _, err := ParseToken(expired, secret); err == nil {
		t.Fatalf("expired token accepted")
	}

	if _, err := (TokenIssuer{TTL: time.Hour}).Issue("abc123"); err == nil {
		t.Fatalf("empty secret must be rejected")
	}
}

func TestParseToken_RejectsOtherAlgorithms(t *testing.T) {
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: "abc"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := ParseToken(unsigned, secret); err == nil {
		t.Fatalf("alg=none token accepted")
	}
}

func TestJWTAuthMiddleware(t *testing.T) {
	valid, err := TokenIssuer{Secret: secret, TTL: time.Hour}.Issue("user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	tests := []struct {
		name       string
		headers    map[string]string
		wantStatus int
		wantMsg    string
	}{
		{name: "NoToken", wantStatus: http.StatusUnauthorized, wantMsg: "No token, authorization denied"},
		{name: "MalformedHeader", headers: map[string]string{"Authorization": "Token " + valid}, wantStatus: http.StatusUnauthorized, wantMsg: "No token, authorization denied"},
		{name: "Garbage", headers: map[string]string{"Authorization": "Bearer nope"}, wantStatus: http.StatusUnauthorized, wantMsg: "Token is not valid"},
		{name: "Bearer", headers: map[string]string{"Authorization": "Bearer " + valid}, wantStatus: http.StatusOK},
		{name: "LegacyHeader", headers: map[string]string{"x-auth-token": valid}, wantStatus: http.StatusOK},
	}

	r := protectedRouter()
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tc.wantStatus {
				t.Fatalf("status: got %d want %d (%s)", w.Code, tc.wantStatus, w.Body.String())
			}
			var body map[string]string
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if tc.wantMsg != "" && body["msg"] != tc.wantMsg {
				t.Fatalf("msg: got %q want %q", body["msg"], tc.wantMsg)
			}
			if tc.wantStatus == http.StatusOK && body["user"] != "user-1" {
				t.Fatalf("user id not propagated: %v", body)
			}
		})
	}
}

func TestJWTAuthMiddleware_SkipsPreflight(t *testing.T) {
	r := gin.New()
	r.Use(JWTAuthMiddleware(secret))
	r.OPTIONS("/me", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/me", nil))
	if w.Code != http.StatusNoContent {
		t.Fatalf("preflight blocked: %d", w.Code)
	}
}
