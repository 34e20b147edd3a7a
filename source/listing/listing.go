// Package listing walks Apache-style HTTP directory indexes.
package listing

import (
	"bytes"
	"context"
	"fmt"
	"iter"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// Entry is one link of an index page.
type Entry struct {
	Name string
	URL  string
	Dir  bool
}

// Parse extracts the entries of an index page located at base. Sort
// links, parent and self references and off-site links are skipped.
func Parse(base string, page []byte) ([]Entry, error) {
	baseURL, err := url.Parse(base)
	if err != nil {
		return nil, err
	}
	doc, err := html.Parse(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("listing: parse %s: %w", base, err)
	}
	var out []Entry
	seen := map[string]bool{}
	var visit func(n *html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			if e, ok := entry(baseURL, n); ok && !seen[e.URL] {
				seen[e.URL] = true
				out = append(out, e)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(doc)
	return out, nil
}

func entry(base *url.URL, n *html.Node) (Entry, bool) {
	var href string
	for _, a := range n.Attr {
		if a.Key == "href" {
			href = strings.TrimSpace(a.Val)
		}
	}
	if href == "" || strings.HasPrefix(href, "?") || strings.HasPrefix(href, "#") || href == "./" || href == "../" {
		return Entry{}, false
	}
	ref, err := url.Parse(href)
	if err != nil {
		return Entry{}, false
	}
	resolved := base.ResolveReference(ref)
	resolved.RawQuery, resolved.Fragment = "", ""
	if resolved.Host != base.Host || !strings.HasPrefix(resolved.Path, base.Path) || resolved.Path == base.Path {
		return Entry{}, false
	}
	name := strings.TrimPrefix(resolved.Path, base.Path)
	return Entry{Name: name, URL: resolved.String(), Dir: strings.HasSuffix(name, "/")}, true
}

// Fetcher retrieves index pages.
type Fetcher interface {
	Page(ctx context.Context, url string) ([]byte, error)
}

// Walker recursively lists files below a root index.
type Walker struct {
	Fetcher  Fetcher
	MaxDepth int
	Suffix   string
}

// Walk yields the URL of every file below root whose name ends with Suffix,
// descending at most MaxDepth directory levels (unbounded when zero). The
// sequence is lazy and restartable; a fetch or parse failure is yielded
// once and ends the walk.
func (w Walker) Walk(ctx context.Context, root string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		if !strings.HasSuffix(root, "/") {
			root += "/"
		}
		w.walk(ctx, root, 0, yield)
	}
}

func (w Walker) walk(ctx context.Context, dir string, depth int, yield func(string, error) bool) bool {
	if err := ctx.Err(); err != nil {
		yield("", err)
		return false
	}
	page, err := w.Fetcher.Page(ctx, dir)
	if err != nil {
		yield("", err)
		return false
	}
	entries, err := Parse(dir, page)
	if err != nil {
		yield("", err)
		return false
	}
	for _, e := range entries {
		if e.Dir {
			if w.MaxDepth > 0 && depth+1 > w.MaxDepth {
				continue
			}
			if !w.walk(ctx, e.URL, depth+1, yield) {
				return false
			}
			continue
		}
		if w.Suffix != "" && !strings.HasSuffix(e.Name, w.Suffix) {
			continue
		}
		if !yield(e.URL, nil) {
			return false
		}
	}
	return true
}
