package prompt_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-crudui/pkg/prompt"
	"github.com/goliatone/go-crudui/pkg/translation"
)

// scripted answers the prompts in order and records what was asked.
type scripted struct {
	answers  []string
	confirm  bool
	asked    []prompt.InputConfig
	infos    []string
	selected []string
}

func (s *scripted) next() (string, error) {
	if len(s.answers) == 0 {
		return "", prompt.ErrAborted
	}
	a := s.answers[0]
	s.answers = s.answers[1:]
	return a, nil
}

func (s *scripted) Input(_ context.Context, cfg prompt.InputConfig) (string, error) {
	s.asked = append(s.asked, cfg)
	return s.next()
}

func (s *scripted) Select(_ context.Context, cfg prompt.SelectConfig) (string, error) {
	s.selected = append(s.selected, strings.Join(cfg.Options, ","))
	return s.next()
}

func (s *scripted) Confirm(context.Context, string, bool) (bool, error) {
	return s.confirm, nil
}

func (s *scripted) Info(_ context.Context, msg string) error {
	s.infos = append(s.infos, msg)
	return nil
}

func catalog() *translation.Catalog {
	cat := translation.NewCatalog("test")
	cat.Define("template:crudui-page-homepage", "Welcome")
	cat.Add(translation.Entry{Context: "resource:user:label", MsgID: "User", MsgStr: "Utilisateur"})
	cat.Define("form:login:field:login:label", "Login")
	cat.Define("form:login:field:password:label", "Password")
	return cat
}

func TestTranslate(t *testing.T) {
	ref := translation.NewStore()
	ref.Set("fr", "form:login:field:password:label", "Password", "Mot de passe")
	driver := &scripted{answers: []string{"Bienvenue", " ", "Mot de passe"}}
	tr := prompt.New(prompt.WithDriver(driver), prompt.WithReference(ref, "fr"))

	cat := catalog()
	res, err := tr.Translate(context.Background(), cat, "fr-CA")
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	if diff := cmp.Diff(prompt.Result{Translated: 2, Skipped: 1}, res); diff != "" {
		t.Fatalf("result mismatch (-want +got):\n%s", diff)
	}
	var defaults, helps []string
	for _, cfg := range driver.asked {
		defaults = append(defaults, cfg.Default)
		helps = append(helps, cfg.Help)
	}
	if diff := cmp.Diff([]string{"", "", "Mot de passe"}, defaults); diff != "" {
		t.Fatalf("suggestions mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"template:crudui-page-homepage", "form:login:field:login:label", "form:login:field:password:label"}, helps); diff != "" {
		t.Fatalf("contexts mismatch (-want +got):\n%s", diff)
	}
	e, _ := cat.Lookup("template:crudui-page-homepage", "Welcome")
	if e.MsgStr != "Bienvenue" {
		t.Fatalf("msgstr = %q", e.MsgStr)
	}
	if diff := cmp.Diff([]string{"form:login:field:login:label"}, contexts(cat.Untranslated())); diff != "" {
		t.Fatalf("untranslated mismatch (-want +got):\n%s", diff)
	}
}

func contexts(entries []translation.Entry) []string {
	var out []string
	for _, e := range entries {
		out = append(out, e.Context)
	}
	return out
}

func TestTranslateAborted(t *testing.T) {
	driver := &scripted{answers: []string{"Bienvenue"}}
	tr := prompt.New(prompt.WithDriver(driver))
	cat := catalog()
	res, err := tr.Translate(context.Background(), cat, "fr")
	if !errors.Is(err, prompt.ErrAborted) {
		t.Fatalf("expected ErrAborted, got %v", err)
	}
	if res.Translated != 1 || res.Remaining != 2 {
		t.Fatalf("partial result = %+v", res)
	}
	if e, _ := cat.Lookup("template:crudui-page-homepage", "Welcome"); e.MsgStr != "Bienvenue" {
		t.Fatalf("answer lost on abort")
	}
}

func TestTranslateNothing(t *testing.T) {
	driver := &scripted{}
	cat := translation.NewCatalog("test")
	cat.Add(translation.Entry{Context: "c", MsgID: "m", MsgStr: "s"})
	res, err := prompt.New(prompt.WithDriver(driver)).Translate(context.Background(), cat, "fr")
	if err != nil || res != (prompt.Result{}) {
		t.Fatalf("result = %+v, %v", res, err)
	}
	if len(driver.asked) != 0 || len(driver.infos) != 1 {
		t.Fatalf("asked %d, infos %v", len(driver.asked), driver.infos)
	}
}

func TestChooseLanguage(t *testing.T) {
	driver := &scripted{answers: []string{"pt_BR"}}
	tr := prompt.New(prompt.WithDriver(driver))
	if lang, err := tr.ChooseLanguage(context.Background(), []string{"fr"}); err != nil || lang != "fr" {
		t.Fatalf("single language = %q, %v", lang, err)
	}
	lang, err := tr.ChooseLanguage(context.Background(), []string{"fr", "pt_BR"})
	if err != nil || lang != "pt-BR" {
		t.Fatalf("chosen = %q, %v", lang, err)
	}
	if _, err := tr.ChooseLanguage(context.Background(), nil); err == nil {
		t.Fatalf("expected an error without languages")
	}
}

func TestSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fr.po")
	cat := catalog()

	declined := &scripted{}
	if ok, err := prompt.New(prompt.WithDriver(declined)).Save(context.Background(), cat, path); ok || err != nil {
		t.Fatalf("declined save = %v, %v", ok, err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("file written without confirmation")
	}

	driver := &scripted{confirm: true}
	if ok, err := prompt.New(prompt.WithDriver(driver)).Save(context.Background(), cat, path); !ok || err != nil {
		t.Fatalf("save = %v, %v", ok, err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	read, err := translation.ReadCatalog(f)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if e, ok := read.Lookup("resource:user:label", "User"); !ok || e.MsgStr != "Utilisateur" {
		t.Fatalf("entry read back = %+v, %v", e, ok)
	}
}
