// Command crudui-catalog maintains the gettext catalogs of crudui
// templates.
//
//	crudui-catalog export [-addon name] [-templates dir] [-o file.pot]
//	crudui-catalog translate -lang fr [-ref pt] [-templates dir] file.po
//	crudui-catalog inspect file.po...
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-crudui/pkg/client"
	"github.com/goliatone/go-crudui/pkg/prompt"
	"github.com/goliatone/go-crudui/pkg/translation"
)

func usage() {
	out := flag.CommandLine.Output()
	fmt.Fprintf(out, "Usage: %s <export|translate|inspect> [flags] [files...]\n", filepath.Base(os.Args[0]))
	fmt.Fprintf(out, "\nExport, translate and inspect the catalogs of crudui templates.\n")
}

func main() {
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var err error
	switch cmd, args := flag.Arg(0), flag.Args()[1:]; cmd {
	case "export":
		err = runExport(args, os.Stdout)
	case "translate":
		err = runTranslate(ctx, args)
	case "inspect":
		err = runInspect(args, os.Stdout)
	default:
		usage()
		os.Exit(2)
	}
	if errors.Is(err, prompt.ErrAborted) {
		os.Exit(130)
	}
	if err != nil {
		log.Fatalf("crudui-catalog: %v", err)
	}
}

// newClient builds a client holding the built-in templates plus the
// *.tmpl files of dir registered under addon.
func newClient(dir, addon string, logger *slog.Logger) (*client.Client, error) {
	c, err := client.New(client.WithLogger(logger), client.WithCatalogVersion("crudui-catalog"))
	if err != nil {
		return nil, err
	}
	if dir == "" {
		return c, nil
	}
	if addon == "" || addon == client.Addon {
		return nil, fmt.Errorf("templates of %s need their own -addon", dir)
	}
	if err := c.RegisterTemplateFS(os.DirFS(dir), addon, "*.tmpl"); err != nil {
		return nil, err
	}
	return c, nil
}

func logger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func runExport(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	addon := fs.String("addon", "", "addon to export, every addon when empty")
	dir := fs.String("templates", "", "directory of extra *.tmpl files")
	output := fs.String("o", "", "output file (stdout if empty)")
	verbose := fs.Bool("v", false, "debug logging")
	if err := fs.Parse(args); err != nil {
		return err
	}
	c, err := newClient(*dir, *addon, logger(*verbose))
	if err != nil {
		return err
	}
	if *output == "" {
		return c.ExportPOT(stdout, *addon)
	}
	f, err := os.Create(*output)
	if err != nil {
		return err
	}
	if err := c.ExportPOT(f, *addon); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Catalog written to %s\n", *output)
	return nil
}

func runTranslate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("translate", flag.ExitOnError)
	lang := fs.String("lang", "", "language of the catalog")
	ref := fs.String("ref", "", "PO file whose translations are suggested")
	addon := fs.String("addon", "", "addon to translate, every addon when empty")
	dir := fs.String("templates", "", "directory of extra *.tmpl files")
	verbose := fs.Bool("v", false, "debug logging")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("translate needs exactly one PO file")
	}
	path := fs.Arg(0)
	lg := logger(*verbose)

	c, err := newClient(*dir, *addon, lg)
	if err != nil {
		return err
	}
	cat, err := merge(c.Catalog(*addon), path)
	if err != nil {
		return err
	}

	opts := []prompt.Option{prompt.WithLogger(lg)}
	if *ref != "" {
		store := translation.NewStore(translation.WithLogger(lg))
		if err := store.LoadFile(*ref, "ref"); err != nil {
			return err
		}
		opts = append(opts, prompt.WithReference(store, "ref"))
	}
	p := prompt.New(opts...)

	target := *lang
	if target == "" {
		stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		if target, err = p.ChooseLanguage(ctx, []string{stem, translation.DefaultLang}); err != nil {
			return err
		}
	}
	res, err := p.Translate(ctx, cat, translation.Normalize(target))
	fmt.Printf("%d translated, %d skipped, %d remaining\n", res.Translated, res.Skipped, res.Remaining)
	if err != nil && !errors.Is(err, prompt.ErrAborted) {
		return err
	}
	if res.Translated == 0 {
		return err
	}
	if _, saveErr := p.Save(context.WithoutCancel(ctx), cat, path); saveErr != nil {
		return saveErr
	}
	return err
}

// merge fills the msgstr of fresh from the PO file at path, when it
// exists. Entries gone from the templates are dropped.
func merge(fresh *translation.Catalog, path string) (*translation.Catalog, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return fresh, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	old, err := translation.ReadCatalog(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	for _, e := range old.Entries() {
		if e.MsgStr != "" {
			fresh.SetMsgStr(e.Context, e.MsgID, e.MsgStr)
		}
	}
	return fresh, nil
}

func runInspect(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("inspect", flag.ExitOnError)
	list := fs.Bool("untranslated", false, "list the untranslated entries")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return errors.New("inspect needs at least one PO file")
	}
	for _, path := range fs.Args() {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		cat, err := translation.ReadCatalog(f)
		f.Close()
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		pending := cat.Untranslated()
		fmt.Fprintf(stdout, "%s: %d entries, %d untranslated\n", path, cat.Len(), len(pending))
		if *list {
			for _, e := range pending {
				fmt.Fprintf(stdout, "  %s\t%s\n", e.Context, e.MsgID)
			}
		}
	}
	return nil
}
