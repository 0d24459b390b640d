package mathnorm

import (
	"fmt"
	"log/slog"

	"github.com/alnah/go-mathnorm/internal/pipeline"
)

// Strictness selects how eagerly parenthesized spans are promoted to math.
type Strictness = pipeline.Strictness

// Strictness levels.
const (
	// StrictnessDefault promotes any span holding a digit, operator, LaTeX
	// command, function call or single-letter variable.
	StrictnessDefault = pipeline.StrictnessDefault

	// StrictnessConservative also requires that digits do not sit in prose
	// ("see page 4") and rejects bare enumerators such as (1).
	StrictnessConservative = pipeline.StrictnessConservative
)

// ParseStrictness converts a level name ("default" or "conservative") to a
// Strictness. An empty name selects StrictnessDefault.
func ParseStrictness(name string) (Strictness, error) {
	s, err := pipeline.ParseStrictness(name)
	if err != nil {
		return s, fmt.Errorf("%w: %v", ErrInvalidStrictness, err)
	}
	return s, nil
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// normalizerConfig holds internal configuration for Normalizer.
type normalizerConfig struct {
	permissiveBracketBlocks   bool
	strictness                Strictness
	collapseSingleLineDisplay bool
	logger                    *slog.Logger
	previewTitle              string
	previewStyle              string
	previewBaseDir            string
}

// defaultConfig is used when no option overrides a field.
func defaultConfig() normalizerConfig {
	return normalizerConfig{
		permissiveBracketBlocks: true,
		strictness:              StrictnessDefault,
		previewTitle:            pipeline.DefaultPreviewTitle,
	}
}

// WithPermissiveBracketBlocks controls isolated [ ... ] blocks. When true
// (the default) every such block becomes display math; when false its body
// must look like math.
func WithPermissiveBracketBlocks(permissive bool) Option {
	return func(n *Normalizer) {
		n.cfg.permissiveBracketBlocks = permissive
	}
}

// WithStrictness sets the promotion strictness.
// NewNormalizer rejects unknown levels with ErrInvalidStrictness.
func WithStrictness(s Strictness) Option {
	return func(n *Normalizer) {
		n.cfg.strictness = s
	}
}

// WithCollapseSingleLineDisplay folds display blocks with a one-line body
// into "$$body$$".
func WithCollapseSingleLineDisplay(collapse bool) Option {
	return func(n *Normalizer) {
		n.cfg.collapseSingleLineDisplay = collapse
	}
}

// WithLogger sets the logger receiving per-pass debug records.
// A nil logger discards them.
func WithLogger(logger *slog.Logger) Option {
	return func(n *Normalizer) {
		n.cfg.logger = logger
	}
}

// WithPreviewTitle sets the <title> of pages built by Preview.
func WithPreviewTitle(title string) Option {
	return func(n *Normalizer) {
		if title != "" {
			n.cfg.previewTitle = title
		}
	}
}

// WithPreviewStyle sets the CSS embedded in pages built by Preview.
// An empty css leaves the page unstyled.
func WithPreviewStyle(css string) Option {
	return func(n *Normalizer) {
		n.cfg.previewStyle = css
	}
}

// WithPreviewBaseDir resolves relative image and link references in
// previews against dir, turning them into file:// URLs.
func WithPreviewBaseDir(dir string) Option {
	return func(n *Normalizer) {
		n.cfg.previewBaseDir = dir
	}
}
