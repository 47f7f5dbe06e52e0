package parser

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/chatlens/chatlens/internal/logger"
	"github.com/chatlens/chatlens/internal/models"
)

// ErrNoDocuments is returned when a run contains no supported documents.
var ErrNoDocuments = errors.New("no valid content files (.json, .html) found")

// Pipeline runs the full extraction flow over the documents of one run:
// detect/extract, dedup, normalize timestamps, drop unparseable records,
// sort and aggregate statistics. A Pipeline holds no per-run state and is
// safe to share across concurrent runs.
type Pipeline struct {
	log *logger.Logger
}

// NewPipeline creates a pipeline.
func NewPipeline(log *logger.Logger) *Pipeline {
	return &Pipeline{log: log}
}

// Run processes all documents of one run under a fresh dedup set and
// returns the final sorted corpus with statistics. filename is the
// original upload name reported in the statistics. An empty document set
// is a validation error; any single document failing is not.
func (p *Pipeline) Run(filename string, docs []Document) (*models.ParseResult, error) {
	if len(docs) == 0 {
		return nil, ErrNoDocuments
	}

	dedup := NewDedup()
	var accepted []models.Message

	for _, doc := range docs {
		accepted = append(accepted, p.ProcessDocument(doc, dedup)...)
	}

	p.log.Debug().
		Str("file", filename).
		Int("documents", len(docs)).
		Int("unique_messages", len(accepted)).
		Msg("extraction finished")

	return Finalize(filename, accepted), nil
}

// ProcessDocument extracts one document's records and applies the run's
// dedup set plus the non-empty-message filter, returning the survivors.
// The dedup hash is consumed before the message filter, so a duplicate is a
// duplicate regardless of whether its first occurrence survived.
func (p *Pipeline) ProcessDocument(doc Document, dedup *Dedup) []models.Message {
	var accepted []models.Message
	for _, msg := range p.extractDocument(doc) {
		if !dedup.Accept(msg) {
			continue
		}
		if msg.Message == "" {
			continue
		}
		accepted = append(accepted, msg)
	}
	return accepted
}

// extractDocument pulls raw records from a single document. Failures are
// contained here: a malformed or undetectable document yields zero records
// and the run continues.
func (p *Pipeline) extractDocument(doc Document) (msgs []models.Message) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Error().
				Str("document", doc.Name).
				Str("panic", fmt.Sprint(r)).
				Msg("document extraction panicked, skipping")
			msgs = nil
		}
	}()

	switch doc.Kind() {
	case KindJSON:
		var data any
		text := strings.ToValidUTF8(string(doc.Data), "")
		if err := json.Unmarshal([]byte(text), &data); err != nil {
			p.log.Warn().Str("document", doc.Name).Err(err).Msg("malformed json document, skipping")
			return nil
		}
		return ParseGenericJSON(data)

	case KindHTML:
		parsed, err := goquery.NewDocumentFromReader(bytes.NewReader(doc.Data))
		if err != nil {
			p.log.Warn().Str("document", doc.Name).Err(err).Msg("unparseable html document, skipping")
			return nil
		}
		platform := DetectPlatform(parsed)
		if platform == models.PlatformUnknown {
			p.log.Warn().Str("document", doc.Name).Msg("platform not detected, skipping")
			return nil
		}
		return Extract(platform, parsed)

	default:
		// Unsupported extensions are filtered upstream; tolerate them here.
		return nil
	}
}

// Finalize normalizes timestamps, drops records whose timestamp cannot be
// parsed, stable-sorts the remainder chronologically and computes the run
// statistics.
func Finalize(filename string, msgs []models.Message) *models.ParseResult {
	type keyed struct {
		msg models.Message
		at  time.Time
	}

	normalized := make([]keyed, 0, len(msgs))
	for _, msg := range msgs {
		formatted, ok := NormalizeTimestamp(msg.Timestamp)
		if !ok {
			continue
		}
		msg.Timestamp = formatted
		// Re-parse the canonical form so the sort key is exactly what a
		// consumer reading the rendered timestamp would compute.
		at, err := time.Parse(TimeFormat, formatted)
		if err != nil {
			continue
		}
		normalized = append(normalized, keyed{msg: msg, at: at})
	}

	// Stable: equal instants keep extraction order.
	sort.SliceStable(normalized, func(i, j int) bool {
		return normalized[i].at.Before(normalized[j].at)
	})

	final := make([]models.Message, 0, len(normalized))
	for _, k := range normalized {
		final = append(final, k.msg)
	}

	return &models.ParseResult{
		Messages:   final,
		Statistics: computeStatistics(filename, final),
	}
}

// computeStatistics derives the read-only summary of a finished corpus.
// Platforms are listed in order of first appearance in the sorted corpus.
func computeStatistics(filename string, msgs []models.Message) models.Statistics {
	senders := make(map[string]struct{})
	seenPlatform := make(map[string]struct{})
	platforms := make([]string, 0)

	for _, msg := range msgs {
		senders[msg.Sender] = struct{}{}
		if _, ok := seenPlatform[msg.Source]; !ok {
			seenPlatform[msg.Source] = struct{}{}
			platforms = append(platforms, msg.Source)
		}
	}

	return models.Statistics{
		TotalMessages:     len(msgs),
		UniqueSenders:     len(senders),
		PlatformsDetected: platforms,
		FileProcessed:     filename,
	}
}
