package pipeline

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
)

// Line ending normalization
var crlfOrCR = regexp.MustCompile(`\r\n?`)

// MathPreprocessor defines the contract for math normalization.
type MathPreprocessor interface {
	NormalizeMath(ctx context.Context, content string) (string, error)
}

// Options configures a MathNormalizer.
type Options struct {
	// PermissiveBracketBlocks converts every isolated [ ... ] block. When
	// false, the block content must look like math.
	PermissiveBracketBlocks bool

	Strictness Strictness

	// CollapseSingleLineDisplay folds display blocks with a one-line body
	// into "$$body$$".
	CollapseSingleLineDisplay bool

	// Logger receives one debug record per pass. Nil discards.
	Logger *slog.Logger
}

// MathNormalizer rewrites ad-hoc math notation into $...$ and $$...$$.
// It holds no per-call state and is safe for concurrent use.
type MathNormalizer struct {
	opts       Options
	classifier *Classifier
	logger     *slog.Logger
}

// NewMathNormalizer creates a MathNormalizer.
func NewMathNormalizer(opts Options) *MathNormalizer {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &MathNormalizer{
		opts:       opts,
		classifier: NewClassifier(opts.Strictness),
		logger:     logger,
	}
}

type pass struct {
	name string
	run  func(string) string
}

// NormalizeMath runs every pass in order over content. Code spans, code
// fences and links come back byte-identical. Line endings are kept when the
// input uses CRLF throughout. The only error is a cancelled context.
func (n *MathNormalizer) NormalizeMath(ctx context.Context, content string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	crlf := usesCRLF(content)
	doc, escaped := escapeSentinels(normalizeLineEndings(content))

	table := NewTable()
	promoter := NewPromoter(table, n.classifier)
	passes := []pass{
		{"protect-code", table.ProtectCode},
		{"math-fences", ConvertMathFences},
		{"backslash-display", ConvertBackslashDisplay},
		{"backslash-inline", ConvertBackslashInline},
		{"bracket-blocks", func(d string) string {
			return ConvertBracketBlocks(d, n.opts.PermissiveBracketBlocks, n.classifier)
		}},
		{"dollar-runs", collapseDollarRuns},
		{"rows", FixDisplayRows},
		{"protect-math", table.ProtectMath},
		{"promote", promoter.Promote},
		{"rows-promoted", func(d string) string {
			return table.Rewrite(d, KindMath, FixDisplayRows)
		}},
		{"spacing", func(d string) string {
			return table.SpaceMath(d, n.opts.CollapseSingleLineDisplay)
		}},
		{"restore", table.Restore},
	}

	for _, p := range passes {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		before := len(doc)
		doc = p.run(doc)
		n.logger.Debug("math pass", "pass", p.name, "bytes", len(doc), "delta", len(doc)-before)
	}
	n.logger.Debug("spans restored", "count", table.Len())

	if escaped {
		doc = unescapeSentinels(doc)
	}
	if crlf {
		doc = strings.ReplaceAll(doc, "\n", "\r\n")
	}
	return doc, nil
}

// normalizeLineEndings converts \r\n and \r to \n.
func normalizeLineEndings(content string) string {
	return crlfOrCR.ReplaceAllString(content, "\n")
}

// usesCRLF reports whether every line break in content is \r\n.
func usesCRLF(content string) bool {
	n := strings.Count(content, "\r\n")
	return n > 0 && n == strings.Count(content, "\n")
}
