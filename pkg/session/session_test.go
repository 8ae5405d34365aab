package session_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-crudui/pkg/session"
)

func TestSessionLifecycle(t *testing.T) {
	sess := session.New()
	if sess.Lang != session.DefaultLang {
		t.Fatalf("expected default lang, got %q", sess.Lang)
	}
	if sess.Authenticated() {
		t.Fatalf("fresh session must be anonymous")
	}

	sess.Login(" ada ")
	sess.Theme = "dark"
	sess.Set("cart", 3)
	if !sess.Authenticated() || sess.User != "ada" {
		t.Fatalf("expected ada logged in, got %+v", sess)
	}

	cp := sess.Clone()
	cp.Set("cart", 4)
	if v, _ := sess.Get("cart"); v != 3 {
		t.Fatalf("clone shares data: %v", v)
	}

	sess.Logout()
	if sess.Authenticated() {
		t.Fatalf("expected logged out")
	}
	if _, ok := sess.Get("cart"); ok {
		t.Fatalf("logout must clear data")
	}
	if sess.Theme != "dark" || sess.Lang != "en" {
		t.Fatalf("logout must keep lang and theme: %+v", sess)
	}
}

func TestLanguageOfNilSession(t *testing.T) {
	var sess *session.Session
	if got := sess.Language(); got != session.DefaultLang {
		t.Fatalf("Language() = %q", got)
	}
}

func TestCodecRoundTrip(t *testing.T) {
	for name, opts := range map[string][]session.CodecOption{
		"signed": nil,
		"sealed": {session.Sealed()},
	} {
		t.Run(name, func(t *testing.T) {
			codec, err := session.NewCodec([]byte("secret"), opts...)
			if err != nil {
				t.Fatalf("new codec: %v", err)
			}
			in := &session.Session{User: "ada", Lang: "fr", Theme: "dark", Data: map[string]any{"k": "v"}}
			token, err := codec.Encode(in)
			if err != nil {
				t.Fatalf("encode: %v", err)
			}
			if name == "sealed" && strings.Contains(token, "ada") {
				t.Fatalf("sealed token leaks content")
			}
			out, err := codec.Decode(token)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if diff := cmp.Diff(in, out); diff != "" {
				t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCodecRejectsTampering(t *testing.T) {
	codec, err := session.NewCodec([]byte("secret"))
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}
	token, err := codec.Encode(&session.Session{User: "ada", Lang: "en"})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	other, _ := session.NewCodec([]byte("other"))
	flipped := "A" + token[1:]
	if token[0] == 'A' {
		flipped = "B" + token[1:]
	}
	cases := map[string]struct {
		codec *session.Codec
		token string
	}{
		"wrong key":         {other, token},
		"missing signature": {codec, strings.Split(token, ".")[0]},
		"flipped payload":   {codec, flipped},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := tc.codec.Decode(tc.token); !errors.Is(err, session.ErrInvalidToken) {
				t.Fatalf("expected ErrInvalidToken, got %v", err)
			}
		})
	}

	fresh, err := codec.Decode("")
	if err != nil || fresh.Lang != "en" || fresh.Authenticated() {
		t.Fatalf("empty token must yield a fresh session, got %+v %v", fresh, err)
	}
}
