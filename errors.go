package mathnorm

import (
	"errors"

	"github.com/alnah/go-mathnorm/internal/pipeline"
)

// Sentinel errors for library operations.
var (
	ErrInvalidStrictness = errors.New("invalid strictness")
	ErrHTMLConversion    = pipeline.ErrHTMLConversion
)
