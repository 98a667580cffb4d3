package slideshow

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPage = `<!DOCTYPE html>
<html><head><title>board</title></head>
<body>
<main id="slides">
  <div class="slide-placeholder" data-src="slides/status.html"></div>
  <div class="slide-placeholder" data-src="slides/missing.html"></div>
  <section data-slide="faculty">inline</section>
  <div class="slide-placeholder"></div>
</main>
</body></html>`

func TestCompose_ReplacesPlaceholders(t *testing.T) {
	fsys := fstest.MapFS{
		"slides/status.html": {Data: []byte("\n  <section data-slide=\"status\"><h1 id=\"hero-status\">OPEN</h1></section>\n")},
	}
	c, err := NewComposer(&http.Client{Transport: http.NewFileTransportFS(fsys)}, "file:///")
	require.NoError(t, err)

	page, err := c.Compose(context.Background(), strings.NewReader(testPage))
	require.NoError(t, err)

	assert.Contains(t, page.HTML, `<h1 id="hero-status">OPEN</h1>`)
	assert.NotContains(t, page.HTML, `data-src="slides/status.html"`)
	// the failed fragment keeps its placeholder
	assert.Contains(t, page.HTML, `data-src="slides/missing.html"`)
	assert.Equal(t, []string{"status", "faculty"}, page.Slides)
}

func TestCompose_OverHTTP(t *testing.T) {
	var requested []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requested = append(requested, r.URL.Path)
		switch r.URL.Path {
		case "/board/slides/status.html":
			w.Write([]byte(`<section data-slide="status">s</section><section data-slide="ignored"></section>`))
		case "/board/slides/missing.html":
			http.Error(w, "gone", http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c, err := NewComposer(srv.Client(), srv.URL+"/board/")
	require.NoError(t, err)

	page, err := c.Compose(context.Background(), strings.NewReader(testPage))
	require.NoError(t, err)

	// fragments are fetched in document order
	assert.Equal(t, []string{"/board/slides/status.html", "/board/slides/missing.html"}, requested)
	// only the first root element of a fragment is used
	assert.Equal(t, []string{"status", "faculty"}, page.Slides)
	assert.NotContains(t, page.HTML, "ignored")
}

func TestCompose_EmptyFragmentLeavesPlaceholder(t *testing.T) {
	fsys := fstest.MapFS{
		"slides/status.html":  {Data: []byte("   just text   ")},
		"slides/missing.html": {Data: []byte("")},
	}
	c, err := NewComposer(&http.Client{Transport: http.NewFileTransportFS(fsys)}, "file:///")
	require.NoError(t, err)

	page, err := c.Compose(context.Background(), strings.NewReader(testPage))
	require.NoError(t, err)

	assert.Contains(t, page.HTML, `data-src="slides/status.html"`)
	assert.Equal(t, []string{"faculty"}, page.Slides)
}

func TestCompose_FragmentRootIsKeptInPlace(t *testing.T) {
	fsys := fstest.MapFS{
		"slides/status.html":  {Data: []byte(`<style>.hero{color:red}</style><section data-slide="status"></section>`)},
		"slides/missing.html": {Data: []byte(`<li data-slide="promo">promo</li>`)},
	}
	c, err := NewComposer(&http.Client{Transport: http.NewFileTransportFS(fsys)}, "file:///")
	require.NoError(t, err)

	page, err := c.Compose(context.Background(), strings.NewReader(testPage))
	require.NoError(t, err)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.HTML))
	require.NoError(t, err)
	// the first root element wins even when it is a head-only tag
	assert.Equal(t, 1, doc.Find("#slides > style").Length())
	assert.Equal(t, 0, doc.Find("head > style").Length())
	assert.Equal(t, 1, doc.Find(`#slides > li[data-slide="promo"]`).Length())
	assert.Equal(t, []string{"promo", "faculty"}, page.Slides)
}
