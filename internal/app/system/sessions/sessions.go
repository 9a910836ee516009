// Package sessions builds the signed cookie session store from the
// per-process secret key.
//
// The secret is short, so the HMAC and AES keys handed to securecookie are
// stretched from it with HKDF-SHA256. Because the secret is regenerated on
// every start, cookies issued by a previous process no longer verify; Get
// treats them as a fresh, empty session.
package sessions

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gorilla/securecookie"
	gsessions "github.com/gorilla/sessions"
	"go.uber.org/zap"
	"golang.org/x/crypto/hkdf"
)

const (
	hashKeyInfo  = "portico session hmac"
	blockKeyInfo = "portico session aes"
	keyLen       = 32
)

// DeriveKeys stretches secret into an HMAC key and an AES-256 key.
func DeriveKeys(secret []byte) (hashKey, blockKey []byte, err error) {
	if len(secret) == 0 {
		return nil, nil, errors.New("empty secret")
	}
	hashKey, err = expand(secret, hashKeyInfo)
	if err != nil {
		return nil, nil, err
	}
	blockKey, err = expand(secret, blockKeyInfo)
	if err != nil {
		return nil, nil, err
	}
	return hashKey, blockKey, nil
}

func expand(secret []byte, info string) ([]byte, error) {
	out := make([]byte, keyLen)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, nil, []byte(info)), out); err != nil {
		return nil, fmt.Errorf("hkdf %q: %w", info, err)
	}
	return out, nil
}

// Store wraps a gorilla CookieStore bound to one cookie name.
type Store struct {
	cookies *gsessions.CookieStore
	name    string
	log     *zap.Logger
}

// New builds a Store. secure marks cookies Secure and SameSite=None; otherwise
// SameSite=Lax is used so plain-http development works.
func New(secret []byte, name, domain string, secure bool, logger *zap.Logger) (*Store, error) {
	if name == "" {
		return nil, errors.New("session cookie name is empty")
	}
	hashKey, blockKey, err := DeriveKeys(secret)
	if err != nil {
		return nil, fmt.Errorf("derive session keys: %w", err)
	}

	cs := gsessions.NewCookieStore(hashKey, blockKey)
	cs.Options = &gsessions.Options{
		Domain:   domain,
		Path:     "/",
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if secure {
		cs.Options.SameSite = http.SameSiteNoneMode
	}
	return &Store{cookies: cs, name: name, log: logger}, nil
}

// Name returns the cookie name.
func (s *Store) Name() string { return s.name }

// Get returns the request's session. A cookie that fails to decode (tampered,
// or signed by an earlier process) yields a new empty session.
func (s *Store) Get(r *http.Request) (*gsessions.Session, error) {
	sess, err := s.cookies.Get(r, s.name)
	if err == nil {
		return sess, nil
	}
	var scErr securecookie.Error
	if sess != nil && errors.As(err, &scErr) && scErr.IsDecode() {
		s.log.Debug("discarding undecodable session cookie", zap.Error(err))
		sess.IsNew = true
		sess.Values = make(map[interface{}]interface{})
		return sess, nil
	}
	return nil, err
}

// Save writes the session cookie.
func (s *Store) Save(w http.ResponseWriter, r *http.Request, sess *gsessions.Session) error {
	return s.cookies.Save(r, w, sess)
}
