package scraper

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/PuerkitoBio/goquery"
)

// FileSurface serves saved listing snapshots from a directory. Each *.html
// file is one listing view, visited in name order. Snapshots are static, so
// expansion and scrolling are no-ops.
type FileSurface struct {
	dir string
}

// NewFileSurface wraps a directory of listing snapshots.
func NewFileSurface(dir string) *FileSurface {
	return &FileSurface{dir: dir}
}

// WaitReady verifies the directory exists and holds at least one snapshot.
func (f *FileSurface) WaitReady(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	paths, err := f.snapshotPaths()
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no .html snapshots in %s", f.dir)
	}
	return nil
}

// Listings returns one view per snapshot file.
func (f *FileSurface) Listings(ctx context.Context) ([]ListingView, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	paths, err := f.snapshotPaths()
	if err != nil {
		return nil, err
	}
	views := make([]ListingView, 0, len(paths))
	for _, path := range paths {
		views = append(views, &fileView{path: path})
	}
	return views, nil
}

// ScrollResults reports that a snapshot directory cannot load more results.
func (f *FileSurface) ScrollResults(ctx context.Context) (bool, error) {
	return false, ctx.Err()
}

func (f *FileSurface) snapshotPaths() ([]string, error) {
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot dir: %w", err)
	}
	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".html" {
			continue
		}
		paths = append(paths, filepath.Join(f.dir, entry.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

type fileView struct {
	path string
}

func (v *fileView) Document(ctx context.Context) (*goquery.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	file, err := os.Open(v.path)
	if err != nil {
		return nil, fmt.Errorf("opening snapshot %s: %w", v.path, err)
	}
	defer file.Close()
	doc, err := goquery.NewDocumentFromReader(file)
	if err != nil {
		return nil, fmt.Errorf("parsing snapshot %s: %w", v.path, err)
	}
	return doc, nil
}

func (v *fileView) Expand(ctx context.Context, selectors []string) error {
	return ctx.Err()
}

var _ Surface = (*FileSurface)(nil)
var _ ListingView = (*fileView)(nil)
