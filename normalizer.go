package mathnorm

import (
	"context"
	"fmt"

	"github.com/alnah/go-mathnorm/internal/pipeline"
)

// Compile-time interface implementation checks.
var (
	_ pipeline.MathPreprocessor = (*pipeline.MathNormalizer)(nil)
	_ pipeline.HTMLConverter    = (*pipeline.GoldmarkConverter)(nil)
)

// Normalizer rewrites math delimiters in Markdown.
// Create with NewNormalizer; a Normalizer is safe for concurrent use.
type Normalizer struct {
	cfg           normalizerConfig
	preprocessor  pipeline.MathPreprocessor
	htmlConverter pipeline.HTMLConverter
}

// NewNormalizer creates a Normalizer with default configuration.
// Use options to customize behavior (e.g., WithStrictness, WithLogger).
// Returns ErrInvalidStrictness for an unknown strictness level.
func NewNormalizer(opts ...Option) (*Normalizer, error) {
	n := &Normalizer{cfg: defaultConfig()}

	for _, opt := range opts {
		opt(n)
	}

	if !n.cfg.strictness.Valid() {
		return nil, fmt.Errorf("%w: %v", ErrInvalidStrictness, n.cfg.strictness)
	}

	// Create collaborators if not injected (e.g., by tests)
	if n.preprocessor == nil {
		n.preprocessor = pipeline.NewMathNormalizer(pipeline.Options{
			PermissiveBracketBlocks:   n.cfg.permissiveBracketBlocks,
			Strictness:                n.cfg.strictness,
			CollapseSingleLineDisplay: n.cfg.collapseSingleLineDisplay,
			Logger:                    n.cfg.logger,
		})
	}
	if n.htmlConverter == nil {
		n.htmlConverter = pipeline.NewGoldmarkConverter(n.cfg.previewTitle)
	}

	return n, nil
}

// Normalize rewrites the math in input. The only errors are a done context
// and recovered internal panics; malformed notation is left as it is.
func (n *Normalizer) Normalize(ctx context.Context, input string) (output string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("internal error: %v", r)
		}
	}()

	return n.preprocessor.NormalizeMath(ctx, input)
}

// Preview normalizes markdown and renders it to a standalone HTML page,
// styled with WithPreviewStyle and with local references resolved against
// WithPreviewBaseDir.
func (n *Normalizer) Preview(ctx context.Context, markdown string) (page []byte, err error) {
	normalized, err := n.Normalize(ctx, markdown)
	if err != nil {
		return nil, err
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("internal error: %v", r)
		}
	}()

	html, err := n.htmlConverter.ToHTML(ctx, normalized)
	if err != nil {
		return nil, fmt.Errorf("rendering preview: %w", err)
	}

	html = pipeline.InjectStyle(html, n.cfg.previewStyle)

	html, err = pipeline.RewriteRelativePaths(html, n.cfg.previewBaseDir)
	if err != nil {
		return nil, fmt.Errorf("rendering preview: %w: %v", ErrHTMLConversion, err)
	}
	return []byte(html), nil
}

// Normalize rewrites the math in input with a throwaway Normalizer.
// On any error, including an invalid option, input is returned unchanged.
func Normalize(input string, opts ...Option) string {
	n, err := NewNormalizer(opts...)
	if err != nil {
		return input
	}
	out, err := n.Normalize(context.Background(), input)
	if err != nil {
		return input
	}
	return out
}
