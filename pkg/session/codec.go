package session

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

// ErrInvalidToken is returned when a token cannot be verified or decoded.
var ErrInvalidToken = errors.New("session: invalid token")

// Codec turns sessions into opaque cookie-safe tokens and back. Tokens are
// signed with HMAC-SHA256; sealed codecs also encrypt them with AES-256-GCM.
type Codec struct {
	key    []byte
	gcm    cipher.AEAD
	sealed bool
}

// CodecOption configures a Codec.
type CodecOption func(*Codec)

// Sealed encrypts tokens so their content is not readable by the client.
func Sealed() CodecOption {
	return func(c *Codec) { c.sealed = true }
}

// NewCodec builds a codec from secret. Secrets shorter than 32 bytes are
// stretched with SHA-256.
func NewCodec(secret []byte, opts ...CodecOption) (*Codec, error) {
	if len(secret) == 0 {
		return nil, errors.New("session: codec secret is required")
	}
	key := secret
	if len(key) < 32 {
		h := sha256.Sum256(key)
		key = h[:]
	}
	block, err := aes.NewCipher(key[:32])
	if err != nil {
		return nil, fmt.Errorf("session: cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("session: gcm: %w", err)
	}
	c := &Codec{key: key, gcm: gcm}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// Encode serializes sess into a token.
func (c *Codec) Encode(sess *Session) (string, error) {
	if sess == nil {
		sess = New()
	}
	packed, err := msgpack.Marshal(sess)
	if err != nil {
		return "", fmt.Errorf("session: marshal: %w", err)
	}
	if c.sealed {
		nonce := make([]byte, c.gcm.NonceSize())
		if _, err := rand.Read(nonce); err != nil {
			return "", fmt.Errorf("session: nonce: %w", err)
		}
		packed = c.gcm.Seal(nonce, nonce, packed, nil)
	}
	return c.sign(packed), nil
}

// Decode verifies token and returns the session it holds. An empty token
// yields a fresh session.
func (c *Codec) Decode(token string) (*Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return New(), nil
	}
	packed, err := c.verify(token)
	if err != nil {
		return nil, err
	}
	if c.sealed {
		size := c.gcm.NonceSize()
		if len(packed) < size {
			return nil, fmt.Errorf("%w: ciphertext too short", ErrInvalidToken)
		}
		packed, err = c.gcm.Open(nil, packed[:size], packed[size:], nil)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
		}
	}
	sess := New()
	if err := msgpack.Unmarshal(packed, sess); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if sess.Lang == "" {
		sess.Lang = DefaultLang
	}
	return sess, nil
}

func (c *Codec) sign(data []byte) string {
	mac := hmac.New(sha256.New, c.key)
	mac.Write(data)
	return base64.RawURLEncoding.EncodeToString(data) + "." +
		base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func (c *Codec) verify(token string) ([]byte, error) {
	payload, signature, ok := strings.Cut(token, ".")
	if !ok {
		return nil, fmt.Errorf("%w: missing signature", ErrInvalidToken)
	}
	data, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	sig, err := base64.RawURLEncoding.DecodeString(signature)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	mac := hmac.New(sha256.New, c.key)
	mac.Write(data)
	if !hmac.Equal(sig, mac.Sum(nil)) {
		return nil, fmt.Errorf("%w: signature mismatch", ErrInvalidToken)
	}
	return data, nil
}
