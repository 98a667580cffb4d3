package slideshow

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/PuerkitoBio/goquery"
	"github.com/aouyang1/labboard/metrics"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const maxFragmentSize = 1 << 20

var errEmptyFragment = errors.New("fragment has no root element")

// Page is the board document with slide fragments inlined.
type Page struct {
	HTML string
	// Slides are the data-slide keys in document order.
	Slides []string
}

// Composer replaces slide placeholders with the fragments they point at.
type Composer struct {
	client *http.Client
	base   *url.URL
}

// NewComposer resolves placeholder paths against baseURL and fetches them with client.
func NewComposer(client *http.Client, baseURL string) (*Composer, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid fragment base url %q: %w", baseURL, err)
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Composer{client: client, base: base}, nil
}

// Compose loads every .slide-placeholder[data-src] one at a time. A fragment that fails
// to load is logged and its placeholder left in place.
func (c *Composer) Compose(ctx context.Context, page io.Reader) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(page)
	if err != nil {
		return nil, fmt.Errorf("failed to parse board page: %w", err)
	}

	placeholders := doc.Find(".slide-placeholder")
	for i := range placeholders.Nodes {
		ph := placeholders.Eq(i)
		src, ok := ph.Attr("data-src")
		if !ok || src == "" {
			continue
		}

		node, err := c.fetchFragment(ctx, src)
		if err != nil {
			slog.Warn("failed to load slide", "src", src, "error", err)
			metrics.FragmentLoads.WithLabelValues("error").Inc()
			continue
		}
		metrics.FragmentLoads.WithLabelValues("ok").Inc()
		ph.ReplaceWithSelection(node)
	}

	out, err := doc.Html()
	if err != nil {
		return nil, fmt.Errorf("failed to render board page: %w", err)
	}

	return &Page{
		HTML:   out,
		Slides: SlideKeys(doc),
	}, nil
}

// SlideKeys lists the data-slide keys inside #slides in document order.
func SlideKeys(doc *goquery.Document) []string {
	var keys []string
	doc.Find("#slides [data-slide]").Each(func(_ int, s *goquery.Selection) {
		if key, ok := s.Attr("data-slide"); ok && key != "" {
			keys = append(keys, key)
		}
	})
	return keys
}

func (c *Composer) fetchFragment(ctx context.Context, src string) (*goquery.Selection, error) {
	ref, err := url.Parse(src)
	if err != nil {
		return nil, fmt.Errorf("invalid fragment path: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base.ResolveReference(ref).String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Cache-Control", "no-store")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch fragment: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fragment returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFragmentSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read fragment: %w", err)
	}

	// parsed the way innerHTML on a div would, so leading <style> or <li> roots stay put
	nodes, err := html.ParseFragment(bytes.NewReader(body), &html.Node{
		Type:     html.ElementNode,
		Data:     "div",
		DataAtom: atom.Div,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse fragment: %w", err)
	}
	wrapper := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	for _, n := range nodes {
		wrapper.AppendChild(n)
	}

	root := goquery.NewDocumentFromNode(wrapper).Children().First()
	if root.Length() == 0 {
		return nil, errEmptyFragment
	}
	return root, nil
}
