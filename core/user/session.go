package user

import (
	"context"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/pkg/errors"
)

// DemoPasswords are accepted for any known account while the demo bypass is enabled.
var DemoPasswords = []string{"admin123", "student123", "enseignant123"}

// SessionClaims represents the authorization claims transmitted via a JWT.
type SessionClaims struct {
	jwt.StandardClaims
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

func (c *SessionClaims) Actor() Actor {
	return Actor{ID: c.Subject, Role: c.Role}
}

type AuthenticatorOptions struct {
	SecretKey  string
	Issuer     string
	SessionTTL time.Duration
	DemoBypass bool
}

// Authenticator verifies credentials and issues/validates signed session tokens.
type Authenticator struct {
	repo Repository
	opts AuthenticatorOptions
	now  func() time.Time
}

func NewAuthenticator(repo Repository, opts AuthenticatorOptions) *Authenticator {
	return &Authenticator{repo: repo, opts: opts, now: time.Now}
}

func (a *Authenticator) TTL() time.Duration { return a.opts.SessionTTL }

// Login checks the credentials and returns the matching user with a fresh session token.
// Unknown emails and wrong passwords both yield ErrInvalidCredentials.
func (a *Authenticator) Login(ctx context.Context, email, pwd string) (User, string, error) {
	usr, err := NewService(a.repo).GetByEmail(ctx, email)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return User{}, "", ErrInvalidCredentials
		}
		return User{}, "", errors.Wrap(err, "finding user by email")
	}
	if !a.isDemoPassword(pwd) {
		if err = usr.CheckPassword(pwd); err != nil {
			return User{}, "", ErrInvalidCredentials
		}
	}

	token, err := a.Issue(usr)
	if err != nil {
		return User{}, "", err
	}
	return usr, token, nil
}

func (a *Authenticator) isDemoPassword(pwd string) bool {
	if !a.opts.DemoBypass {
		return false
	}
	for _, demo := range DemoPasswords {
		if pwd == demo {
			return true
		}
	}
	return false
}

// Issue generates a signed HS256 token representing `usr`.
func (a *Authenticator) Issue(usr User) (string, error) {
	now := a.now()
	claims := &SessionClaims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    a.opts.Issuer,
			Subject:   usr.ID,
			ExpiresAt: now.Add(a.opts.SessionTTL).Unix(),
			IssuedAt:  now.Unix(),
		},
		Email: usr.Email,
		Role:  usr.Role,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	ss, err := token.SignedString([]byte(a.opts.SecretKey))
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

// Verify decodes `token` and checks its signature & expiry. It never fails loudly:
// any invalid token yields (nil, false).
func (a *Authenticator) Verify(token string) (*SessionClaims, bool) {
	if token == "" {
		return nil, false
	}
	claims := new(SessionClaims)
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(a.opts.SecretKey), nil
	})
	if err != nil || !parsed.Valid {
		return nil, false
	}
	if claims.Subject == "" || !claims.Role.IsValid() {
		return nil, false
	}
	return claims, true
}
