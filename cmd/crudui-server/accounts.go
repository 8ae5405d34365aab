package main

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"net/url"
	"strings"
	"sync"

	"github.com/goliatone/go-crudui/pkg/session"
)

var (
	errBadCredentials = errors.New("unknown login or wrong password")
	errLoginTaken     = errors.New("this login is already used")
)

type account struct {
	salt string
	hash string
	lang string
}

// accounts is the in-memory authenticator of the example server.
type accounts struct {
	mu    sync.RWMutex
	users map[string]account
}

var _ session.Authenticator = (*accounts)(nil)

func newAccounts() *accounts {
	return &accounts{users: make(map[string]account)}
}

func hashPassword(salt, password string) string {
	sum := sha256.Sum256([]byte(salt + ":" + password))
	return hex.EncodeToString(sum[:])
}

func (a *accounts) add(login, password, lang string) error {
	login = strings.TrimSpace(login)
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.users[login]; ok {
		return errLoginTaken
	}
	s := hex.EncodeToString(salt)
	a.users[login] = account{salt: s, hash: hashPassword(s, password), lang: lang}
	return nil
}

func (a *accounts) Login(_ context.Context, sess *session.Session, values url.Values) error {
	login := strings.TrimSpace(values.Get("login"))
	a.mu.RLock()
	acc, ok := a.users[login]
	a.mu.RUnlock()
	if !ok || subtle.ConstantTimeCompare([]byte(acc.hash), []byte(hashPassword(acc.salt, values.Get("password")))) != 1 {
		return errBadCredentials
	}
	sess.Login(login)
	if acc.lang != "" {
		sess.Lang = acc.lang
	}
	return nil
}

func (a *accounts) Signup(_ context.Context, sess *session.Session, values url.Values) (bool, error) {
	if err := a.add(values.Get("login"), values.Get("password"), values.Get("lang")); err != nil {
		return false, err
	}
	sess.Login(values.Get("login"))
	if lang := strings.TrimSpace(values.Get("lang")); lang != "" {
		sess.Lang = lang
	}
	return true, nil
}

func (a *accounts) Logout(_ context.Context, sess *session.Session) error {
	sess.Logout()
	return nil
}
