package pipeline

import "strings"

// InjectStyle inserts css as a <style> block into an HTML page: before
// </head>, else right after the opening <body> tag, else at the front.
// An empty css returns the page unchanged.
func InjectStyle(page, css string) string {
	if css == "" {
		return page
	}

	block := "<style>\n" + sanitizeCSS(css) + "\n</style>\n"
	lower := strings.ToLower(page)

	if idx := strings.Index(lower, "</head>"); idx != -1 {
		return page[:idx] + block + page[idx:]
	}

	if idx := strings.Index(lower, "<body"); idx != -1 {
		if end := strings.Index(page[idx:], ">"); end != -1 {
			pos := idx + end + 1
			return page[:pos] + block + page[pos:]
		}
	}

	return block + page
}

// sanitizeCSS keeps css from closing its <style> element early.
func sanitizeCSS(css string) string {
	return strings.ReplaceAll(css, "</", `<\/`)
}
