// Package identity pulls the subject name and postal code out of a form's
// designated page text.
package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/formbatch/internal/common"
	"github.com/joseph-ayodele/formbatch/internal/entity"
)

// TextSource returns the text layer of one zero-based page.
type TextSource interface {
	PageText(ctx context.Context, path string, pageIndex int) (string, error)
}

// PageCounter reports how many pages a document has.
type PageCounter interface {
	PageCount(ctx context.Context, path string) (int, error)
}

// Match is the outcome of running the rules over one page.
type Match struct {
	Key      entity.IdentityKey
	NameRule string
	ZipRule  string
}

type Extractor struct {
	text      TextSource
	pages     PageCounter
	nameRules []NameRule
	zipRules  []ZipRule
	lookup    []ZipRule
	logger    *slog.Logger
}

func NewExtractor(text TextSource, pages PageCounter, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{
		text:      text,
		pages:     pages,
		nameRules: DefaultNameRules,
		zipRules:  DefaultZipRules,
		lookup:    LookupZipRules,
		logger:    logger,
	}
}

// Extract reads the page and returns a fully populated identity.
// Errors wrap ErrInsufficientPages, ErrIdentityNotFound or ErrDocumentRead.
func (e *Extractor) Extract(ctx context.Context, path string, pageIndex int) (entity.IdentityKey, error) {
	text, err := e.pageText(ctx, path, pageIndex)
	if err != nil {
		return entity.IdentityKey{}, err
	}
	m, err := e.FromText(text)
	if err != nil {
		e.logger.Warn("identity not found",
			"path", path,
			"first", m.Key.First,
			"last", m.Key.Last,
			"zip", m.Key.Zip,
		)
		return entity.IdentityKey{}, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	e.logger.Info("identity extracted",
		"path", path,
		"first", m.Key.First,
		"last", m.Key.Last,
		"zip", m.Key.Zip,
		"name_rule", m.NameRule,
	)
	return m.Key, nil
}

// ZipOf returns only the postal code on the page; no name is required.
func (e *Extractor) ZipOf(ctx context.Context, path string, pageIndex int) (string, error) {
	text, err := e.pageText(ctx, path, pageIndex)
	if err != nil {
		return "", err
	}
	zip, _, ok := findZip(e.lookup, splitLines(text))
	if !ok {
		return "", fmt.Errorf("%s: no postal code: %w", filepath.Base(path), common.ErrIdentityNotFound)
	}
	return zip, nil
}

// FromText applies the rules to already extracted text. The partial match is
// returned alongside ErrIdentityNotFound.
func (e *Extractor) FromText(text string) (Match, error) {
	lines := splitLines(text)
	var m Match
	var first, last string
	for _, rule := range e.nameRules {
		if f, l, ok := rule.Match(lines); ok {
			first, last, m.NameRule = f, l, rule.Name
			break
		}
	}
	zip, zipRule, _ := findZip(e.zipRules, lines)
	m.ZipRule = zipRule
	m.Key = entity.NewIdentityKey(first, last, zip)

	if m.Key.First == "" || m.Key.Last == "" || !m.Key.HasZip() {
		return m, common.ErrIdentityNotFound
	}
	return m, nil
}

func findZip(rules []ZipRule, lines []string) (string, string, bool) {
	for _, rule := range rules {
		if zip, ok := rule.Match(lines); ok {
			return zip, rule.Name, true
		}
	}
	return "", "", false
}

func (e *Extractor) pageText(ctx context.Context, path string, pageIndex int) (string, error) {
	n, err := e.pages.PageCount(ctx, path)
	if err != nil {
		if !errors.Is(err, common.ErrDocumentRead) {
			err = fmt.Errorf("%w: %v", common.ErrDocumentRead, err)
		}
		return "", err
	}
	if n < pageIndex+1 {
		return "", fmt.Errorf("%s has %d pages, need %d: %w", filepath.Base(path), n, pageIndex+1, common.ErrInsufficientPages)
	}
	text, err := e.text.PageText(ctx, path, pageIndex)
	if err != nil {
		if !errors.Is(err, common.ErrDocumentRead) {
			err = fmt.Errorf("%w: %v", common.ErrDocumentRead, err)
		}
		return "", err
	}
	return text, nil
}

func splitLines(text string) []string {
	return strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
}
