// Package pipeline implements math-delimiter normalization for Markdown.
//
// The passes run in a fixed order, each one relying on what the earlier ones
// established:
//   - protect code fences, inline code and links behind placeholders
//   - convert labeled fences, \[ \], \( \) and bracket blocks to $$ and $
//   - repair matrix and case rows in display math
//   - protect existing math, then promote parenthesized math
//   - repair rows again, normalize spacing, restore placeholders
//
// The package also renders normalized Markdown to an HTML preview via
// Goldmark, keeping math out of Goldmark's reach.
package pipeline
