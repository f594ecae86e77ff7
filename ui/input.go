package ui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/muesli/gitcha"

	"github.com/svm0n/ttscli/internal/session"
)

const maxCandidates = 20

var (
	pdfExtensions  = []string{"*.pdf", "*.PDF"}
	epubExtensions = []string{"*.epub", "*.EPUB"}
)

func (a *App) selectInput(ctx context.Context) error {
	a.header("INPUT SELECTION", wideRule)

	switch a.session.Kind {
	case session.KindPDF:
		return a.selectPDF(ctx)
	case session.KindEPUB:
		return a.selectEPUB(ctx)
	case session.KindText:
		return a.selectText(ctx)
	}
	return nil
}

func (a *App) selectPDF(ctx context.Context) error {
	a.println("Enter path to PDF file (or press Enter to browse):")
	path, err := a.askPath(ctx, pdfExtensions)
	if err != nil || path == "" {
		return err
	}
	a.println(ok("PDF file selected: " + path))

	for {
		in, err := a.ask(ctx, "\nEnter page numbers (e.g., '1,3,5-7') or press Enter for all pages: ")
		if err != nil {
			return err
		}
		if in == "" {
			a.session.SetPDF(path, nil)
			a.println(ok("All pages will be processed"))
			return nil
		}
		pages, err := session.ParsePages(in)
		if err != nil {
			a.println(warn(err.Error()))
			continue
		}
		a.session.SetPDF(path, pages)
		a.println(ok("Pages selected: " + session.FormatPages(pages)))
		return nil
	}
}

func (a *App) selectEPUB(ctx context.Context) error {
	a.println("Enter path to EPUB file (or press Enter to browse):")
	path, err := a.askPath(ctx, epubExtensions)
	if err != nil || path == "" {
		return err
	}
	a.session.SetEPUB(path)
	a.println(ok("EPUB file selected: " + path))
	return nil
}

func (a *App) selectText(ctx context.Context) error {
	a.println("Enter text to convert to speech:")
	a.println("(Type your text and press Enter when done)")
	text, err := a.ask(ctx, "> ")
	if err != nil {
		return err
	}
	if text == "" {
		a.println(warn("No text entered"))
		return nil
	}
	a.session.SetText(text)
	a.println(ok(fmt.Sprintf("Text input set (%s characters)", humanize.Comma(int64(utf8.RuneCountInString(text))))))
	return nil
}

// askPath reads a path to an existing file. A blank answer opens the file
// picker. It returns "" when nothing usable was chosen.
func (a *App) askPath(ctx context.Context, exts []string) (string, error) {
	in, err := a.ask(ctx, "> ")
	if err != nil {
		return "", err
	}
	if in == "" {
		return a.pickFile(ctx, exts)
	}

	path, err := session.ExpandPath(in)
	if err != nil || !isFile(path) {
		a.println(warn("File not found or invalid path"))
		return "", nil
	}
	return path, nil
}

type candidate struct {
	path string
	rel  string
	size int64
}

// pickFile lists matching files below the working directory and lets the
// user choose one by number.
func (a *App) pickFile(ctx context.Context, exts []string) (string, error) {
	cwd := a.cfg.Workdir
	if cwd == "" {
		var err error
		if cwd, err = os.Getwd(); err != nil {
			a.println(fail(err.Error()))
			return "", nil
		}
	}

	found, err := findFiles(cwd, exts, a.cfg.ShowAllFiles)
	if err != nil {
		log.Error("error finding local files", "error", err)
		a.println(fail("Unable to search for files: " + err.Error()))
		return "", nil
	}
	if len(found) == 0 {
		a.println(warn("No matching files found in " + cwd))
		return "", nil
	}

	shown := found
	if len(shown) > maxCandidates {
		shown = shown[:maxCandidates]
	}
	a.println("")
	for i, c := range shown {
		a.printf("%d. %s %s\n", i+1, c.rel, faintStyle.Render("("+humanize.Bytes(uint64(c.size))+")")) //nolint:gosec
	}
	if n := len(found) - len(shown); n > 0 {
		a.println(faintStyle.Render(fmt.Sprintf("...and %d more not shown", n)))
	}
	a.println("0. Cancel")

	choice, err := a.ask(ctx, fmt.Sprintf("\nEnter choice [1-%d]: ", len(shown)))
	if err != nil {
		return "", err
	}
	if choice == "0" {
		a.println("Cancelled")
		return "", nil
	}
	n, err := strconv.Atoi(choice)
	if err != nil || n < 1 || n > len(shown) {
		a.println(warn("Invalid choice"))
		return "", nil
	}
	return shown[n-1].path, nil
}

// findFiles returns the files below dir matching exts, sorted by relative
// path. Unless all is set, paths ignored by git are skipped.
func findFiles(dir string, exts []string, all bool) ([]candidate, error) {
	var (
		ch  chan gitcha.SearchResult
		err error
	)
	if all {
		ch, err = gitcha.FindAllFilesExcept(dir, exts, nil)
	} else {
		ch, err = gitcha.FindFilesExcept(dir, exts, nil)
	}
	if err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	var out []candidate
	for res := range ch {
		if seen[res.Path] {
			continue
		}
		seen[res.Path] = true

		c := candidate{path: res.Path, rel: res.Path}
		if rel, err := filepath.Rel(dir, res.Path); err == nil && !strings.HasPrefix(rel, "..") {
			c.rel = rel
		}
		if res.Info != nil {
			c.size = res.Info.Size()
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].rel < out[j].rel })
	return out, nil
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
