package pipeline

import (
	"net/url"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// linkAttrs maps elements to the attribute holding a local reference.
var linkAttrs = map[atom.Atom]string{
	atom.Img:    "src",
	atom.A:      "href",
	atom.Video:  "src",
	atom.Audio:  "src",
	atom.Source: "src",
}

// RewriteRelativePaths turns relative references in an HTML page into
// file:// URLs under baseDir, so a preview written elsewhere (or to stdout)
// still shows the images and links of its source document.
// URLs, anchors, absolute paths and references escaping baseDir are left
// alone. An empty baseDir returns the page unchanged.
func RewriteRelativePaths(page, baseDir string) (string, error) {
	if baseDir == "" {
		return page, nil
	}

	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return "", err
	}

	doc, fragment, err := parseHTML(page)
	if err != nil {
		return "", err
	}

	rewriteNode(doc, absBase)

	return renderHTML(doc, fragment)
}

// parseHTML parses a full document, or a fragment in a <body> context.
func parseHTML(content string) (*html.Node, bool, error) {
	head := strings.ToLower(strings.TrimSpace(content))
	if strings.HasPrefix(head, "<!doctype") || strings.HasPrefix(head, "<html") {
		doc, err := html.Parse(strings.NewReader(content))
		return doc, false, err
	}

	body := &html.Node{Type: html.ElementNode, DataAtom: atom.Body, Data: "body"}
	nodes, err := html.ParseFragment(strings.NewReader(content), body)
	if err != nil {
		return nil, true, err
	}

	root := &html.Node{Type: html.DocumentNode}
	for _, n := range nodes {
		root.AppendChild(n)
	}
	return root, true, nil
}

// renderHTML serializes doc; a fragment renders without the wrapper node.
func renderHTML(doc *html.Node, fragment bool) (string, error) {
	var buf strings.Builder

	if !fragment {
		if err := html.Render(&buf, doc); err != nil {
			return "", err
		}
		return buf.String(), nil
	}

	for c := doc.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

func rewriteNode(n *html.Node, baseDir string) {
	if n.Type == html.ElementNode {
		if attr, ok := linkAttrs[n.DataAtom]; ok {
			rewriteAttr(n, attr, baseDir)
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		rewriteNode(c, baseDir)
	}
}

func rewriteAttr(n *html.Node, key, baseDir string) {
	for i, attr := range n.Attr {
		if attr.Key != key || !isRelativePath(attr.Val) {
			continue
		}

		// Keep "#section" suffixes on links to other documents
		ref, fragment, _ := strings.Cut(attr.Val, "#")
		if ref == "" {
			continue
		}

		abs := filepath.Join(baseDir, filepath.FromSlash(ref))
		if !isPathUnderDir(abs, baseDir) {
			continue
		}

		u := pathToFileURL(abs)
		if fragment != "" {
			u += "#" + fragment
		}
		n.Attr[i].Val = u
	}
}

// isRelativePath reports whether path is a local, relative reference.
func isRelativePath(path string) bool {
	if path == "" || strings.HasPrefix(path, "#") || strings.HasPrefix(path, "//") {
		return false
	}
	if u, err := url.Parse(path); err == nil && u.Scheme != "" && len(u.Scheme) > 1 {
		// http:, mailto:, data:, file: ... (a one-letter scheme is a drive)
		return false
	}
	return !filepath.IsAbs(path) && !strings.HasPrefix(path, "/")
}

// isPathUnderDir reports whether absPath lies in dir or below it.
func isPathUnderDir(absPath, dir string) bool {
	cleanPath := filepath.Clean(absPath) + string(filepath.Separator)
	cleanDir := filepath.Clean(dir)
	if !strings.HasSuffix(cleanDir, string(filepath.Separator)) {
		cleanDir += string(filepath.Separator)
	}
	return strings.HasPrefix(cleanPath, cleanDir)
}

// pathToFileURL converts an absolute path to a file:// URL.
func pathToFileURL(absPath string) string {
	p := filepath.ToSlash(absPath)
	if !strings.HasPrefix(p, "/") {
		// Windows drive paths: file:///C:/docs
		p = "/" + p
	}
	u := url.URL{Scheme: "file", Path: p}
	return u.String()
}
