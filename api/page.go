package api

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"time"

	"github.com/aouyang1/labboard/slideshow"
)

//go:embed web/templates/index.html web/static
var webFiles embed.FS

const (
	pageTemplate    = "web/templates/index.html"
	fragmentTimeout = 10 * time.Second
)

func staticFS() (fs.FS, error) {
	return fs.Sub(webFiles, "web/static")
}

// NewPageComposer loads slide fragments from the embedded static files, or from
// contentDir when one is configured.
func NewPageComposer(contentDir string) (*slideshow.Composer, error) {
	var fsys fs.FS
	if contentDir != "" {
		fsys = os.DirFS(contentDir)
	} else {
		sub, err := staticFS()
		if err != nil {
			return nil, fmt.Errorf("failed to create static filesystem: %w", err)
		}
		fsys = sub
	}

	client := &http.Client{
		Transport: http.NewFileTransportFS(fsys),
		Timeout:   fragmentTimeout,
	}
	return slideshow.NewComposer(client, "file:///")
}

// ComposePage renders the board page with every slide fragment inlined.
func ComposePage(ctx context.Context, composer *slideshow.Composer) (*slideshow.Page, error) {
	f, err := webFiles.Open(pageTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to open page template: %w", err)
	}
	defer f.Close()

	page, err := composer.Compose(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("failed to compose page: %w", err)
	}
	return page, nil
}
