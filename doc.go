// Package mathnorm rewrites the ad-hoc math notation found in Markdown
// (mostly text pasted from chat assistants and notebooks) into one canonical
// dialect: $...$ for inline math and $$...$$ for display math.
//
// # Quick Start
//
// For one-off calls, use the package-level function:
//
//	out := mathnorm.Normalize(`The value \(x+1\) is positive.`)
//	// The value $x+1$ is positive.
//
// For repeated calls, create a Normalizer once and reuse it. A Normalizer is
// safe for concurrent use:
//
//	n, err := mathnorm.NewNormalizer()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	out, err := n.Normalize(ctx, markdown)
//
// # What Gets Rewritten
//
// The pipeline runs these stages in a fixed order:
//
//  1. Code fences, inline code and link targets are masked and come back
//     byte-identical.
//  2. Fences labeled latex, tex or math, \[...\], \(...\) and isolated
//     [ ... ] blocks become $$...$$ or $...$.
//  3. Parenthesized spans that look like math, such as (x+1), f(x) or
//     (\alpha), become inline math. Plain prose such as (however) is kept.
//  4. Rows of matrix and cases environments get their missing \\ separators.
//  5. Whitespace around math is tidied: display blocks sit on their own lines
//     with one blank line around them.
//
// Running Normalize on its own output changes nothing.
//
// # Configuration
//
// Use functional options to tune the heuristics:
//
//	n, err := mathnorm.NewNormalizer(
//	    mathnorm.WithStrictness(mathnorm.StrictnessConservative),
//	    mathnorm.WithPermissiveBracketBlocks(false),
//	    mathnorm.WithLogger(slog.Default()),
//	)
//
// # Preview
//
// Preview normalizes Markdown and renders it to a standalone HTML page whose
// math is ready for MathJax:
//
//	page, err := n.Preview(ctx, markdown)
//	os.WriteFile("preview.html", page, 0644)
package mathnorm
