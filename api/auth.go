package api

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrAdminDisabled = errors.New("configuration updates are disabled")
	ErrUnauthorized  = errors.New("admin credentials required")
)

// AdminHeader carries the admin key or token
const AdminHeader = "X-Admin-Token"

// AdminRole is the role claim an admin JWT must carry
const AdminRole = "admin"

// AdminAuth guards configuration updates. A request passes when its token
// matches the static key, verifies against the bcrypt key hash, or is an
// HS256 JWT signed with the shared secret and carrying role=admin.
type AdminAuth struct {
	key       []byte
	keyHash   []byte
	jwtSecret []byte
}

// NewAdminAuth builds the admin check. A key starting with "$2" is treated
// as a bcrypt hash of the key. Both arguments may be empty; with neither set
// every request is refused.
func NewAdminAuth(key, jwtSecret string) *AdminAuth {
	a := &AdminAuth{}
	switch {
	case key == "":
	case strings.HasPrefix(key, "$2"):
		a.keyHash = []byte(key)
	default:
		a.key = []byte(key)
	}
	if jwtSecret != "" {
		a.jwtSecret = []byte(jwtSecret)
	}
	return a
}

// Enabled reports whether any admin credential is configured
func (a *AdminAuth) Enabled() bool {
	return a != nil && (len(a.key) > 0 || len(a.keyHash) > 0 || len(a.jwtSecret) > 0)
}

// Authorize checks the admin token on r
func (a *AdminAuth) Authorize(r *http.Request) error {
	if !a.Enabled() {
		return ErrAdminDisabled
	}

	token := adminToken(r)
	if token == "" {
		return ErrUnauthorized
	}

	if len(a.jwtSecret) > 0 && strings.Count(token, ".") == 2 {
		if err := a.verifyJWT(token); err == nil {
			return nil
		}
	}
	if len(a.key) > 0 && subtle.ConstantTimeCompare([]byte(token), a.key) == 1 {
		return nil
	}
	if len(a.keyHash) > 0 && bcrypt.CompareHashAndPassword(a.keyHash, []byte(token)) == nil {
		return nil
	}
	return ErrUnauthorized
}

// IssueToken signs an admin JWT valid for ttl
func (a *AdminAuth) IssueToken(subject string, ttl time.Duration) (string, error) {
	if len(a.jwtSecret) == 0 {
		return "", errors.New("no JWT secret configured")
	}
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  subject,
		"role": AdminRole,
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.jwtSecret)
}

func (a *AdminAuth) verifyJWT(raw string) error {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		return a.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return fmt.Errorf("unexpected claims type %T", token.Claims)
	}
	if role, _ := claims["role"].(string); role != AdminRole {
		return fmt.Errorf("role %q is not %s", role, AdminRole)
	}
	return nil
}

func adminToken(r *http.Request) string {
	if token := strings.TrimSpace(r.Header.Get(AdminHeader)); token != "" {
		return token
	}
	auth := r.Header.Get("Authorization")
	if len(auth) > 7 && strings.EqualFold(auth[:7], "bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}
