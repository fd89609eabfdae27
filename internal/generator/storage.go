package generator

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
)

const (
	kindPage    = "page"
	kindSitemap = "sitemap"
	kindRobots  = "robots"
	kindFeed    = "feed"
	kindData    = "data"
	kindAsset   = "asset"
)

var errUnsafeOutputDir = errors.New("generator: refusing to clean output directory")

// writeFileRequest describes a file write routed through a Writer.
type writeFileRequest struct {
	Path        string
	Content     []byte
	Category    string
	ContentType string
	Checksum    string
}

// Writer persists generator outputs. Implementations must be safe for
// concurrent WriteFile calls on distinct paths.
type Writer interface {
	Clean(ctx context.Context) error
	WriteFile(ctx context.Context, req writeFileRequest) error
}

// NewDirWriter writes artefacts below root on the local filesystem.
func NewDirWriter(root string) Writer {
	return &dirWriter{root: root}
}

type dirWriter struct {
	root string
}

func (w *dirWriter) Clean(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	root := filepath.Clean(strings.TrimSpace(w.root))
	if root == "." || root == string(filepath.Separator) || root == "" {
		return fmt.Errorf("%w: %q", errUnsafeOutputDir, w.root)
	}
	return os.RemoveAll(root)
}

func (w *dirWriter) WriteFile(ctx context.Context, req writeFileRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	rel := path.Clean("/" + req.Path)
	if rel == "/" {
		return errors.New("generator: write requires path")
	}
	target := filepath.Join(w.root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	return os.WriteFile(target, req.Content, 0o644)
}

type discardWriter struct{}

func (discardWriter) Clean(context.Context) error { return nil }

func (discardWriter) WriteFile(ctx context.Context, _ writeFileRequest) error { return ctx.Err() }

// MemoryWriter keeps artefacts in memory. It backs previews and tests.
type MemoryWriter struct {
	mu    sync.RWMutex
	files map[string][]byte
}

// NewMemoryWriter returns an empty MemoryWriter.
func NewMemoryWriter() *MemoryWriter {
	return &MemoryWriter{files: map[string][]byte{}}
}

func (w *MemoryWriter) Clean(context.Context) error {
	w.mu.Lock()
	w.files = map[string][]byte{}
	w.mu.Unlock()
	return nil
}

func (w *MemoryWriter) WriteFile(ctx context.Context, req writeFileRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	w.mu.Lock()
	w.files[req.Path] = bytes.Clone(req.Content)
	w.mu.Unlock()
	return nil
}

// File returns the content written at rel.
func (w *MemoryWriter) File(rel string) ([]byte, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	data, ok := w.files[rel]
	return data, ok
}

// Paths lists every written path.
func (w *MemoryWriter) Paths() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]string, 0, len(w.files))
	for p := range w.files {
		out = append(out, p)
	}
	return out
}

func checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func (r *run) writeStyles(ctx context.Context) {
	var buf bytes.Buffer
	if err := r.deps.Styles.CSS(&buf); err != nil {
		r.fail(fmt.Errorf("generator: highlight css: %w", err))
		return
	}
	r.emit(ctx, "assets/highlight.css", kindAsset, "text/css", buf.Bytes())
}
