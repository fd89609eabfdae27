package markdown

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/goliatone/go-blog/internal/domain"
	"github.com/goliatone/go-blog/internal/frontmatter"
)

// LoaderConfig configures how markdown files are discovered.
type LoaderConfig struct {
	// Root is the directory inside the filesystem that holds the posts.
	// Document paths are reported relative to it.
	Root string
	// Pattern limits discovered files to those matching the glob (defaults to "*.md").
	Pattern string
	// Flat disables descending into sub-directories.
	Flat bool
	// Now fixes the clock used for default frontmatter dates.
	Now func() time.Time
}

// Loader turns a filesystem tree into parsed documents.
type Loader struct {
	fs      fs.FS
	root    string
	pattern string
	flat    bool
	parser  frontmatter.Parser
}

// NewLoader constructs a Loader over filesystem.
func NewLoader(filesystem fs.FS, cfg LoaderConfig) *Loader {
	pattern := strings.TrimSpace(cfg.Pattern)
	if pattern == "" {
		pattern = "*.md"
	}
	root := path.Clean(strings.TrimPrefix(strings.ReplaceAll(cfg.Root, "\\", "/"), "/"))
	if root == "" {
		root = "."
	}
	return &Loader{
		fs:      filesystem,
		root:    root,
		pattern: pattern,
		flat:    cfg.Flat,
		parser:  frontmatter.Parser{Now: cfg.Now},
	}
}

// NewDirLoader is NewLoader over an OS directory.
func NewDirLoader(dir string, cfg LoaderConfig) (*Loader, error) {
	if strings.TrimSpace(dir) == "" {
		dir = "."
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("markdown loader: stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("markdown loader: %s is not a directory", dir)
	}
	cfg.Root = ""
	return NewLoader(os.DirFS(dir), cfg), nil
}

// LoadFile reads and parses a single document. rel is relative to the root.
func (l *Loader) LoadFile(ctx context.Context, rel string) (domain.Document, error) {
	if err := ctx.Err(); err != nil {
		return domain.Document{}, err
	}
	full := path.Join(l.root, rel)

	data, err := fs.ReadFile(l.fs, full)
	if err != nil {
		return domain.Document{}, fmt.Errorf("markdown loader read %s: %w", rel, err)
	}
	info, err := fs.Stat(l.fs, full)
	if err != nil {
		return domain.Document{}, fmt.Errorf("markdown loader stat %s: %w", rel, err)
	}

	parsed := l.parser.Parse(normalizeNewlines(string(data)))
	sum := sha256.Sum256(data)
	return domain.Document{
		Path:         rel,
		FrontMatter:  parsed.FrontMatter,
		Body:         parsed.Body,
		LastModified: info.ModTime(),
		Checksum:     sum[:],
	}, nil
}

// LoadAll discovers every matching document under the root and returns them
// sorted by path, which fixes the order ids are assigned in.
func (l *Loader) LoadAll(ctx context.Context) ([]domain.Document, error) {
	var docs []domain.Document

	err := fs.WalkDir(l.fs, l.root, func(current string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if current != l.root && (l.flat || strings.HasPrefix(d.Name(), ".")) {
				return fs.SkipDir
			}
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel := l.relative(current)
		if !l.matches(rel) {
			return nil
		}
		doc, err := l.LoadFile(ctx, rel)
		if err != nil {
			return err
		}
		docs = append(docs, doc)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(docs, func(i, j int) bool {
		return docs[i].Path < docs[j].Path
	})
	return docs, nil
}

func (l *Loader) relative(current string) string {
	if l.root == "." {
		return current
	}
	return strings.TrimPrefix(strings.TrimPrefix(current, l.root), "/")
}

func (l *Loader) matches(rel string) bool {
	target := path.Base(rel)
	if strings.Contains(l.pattern, "/") {
		target = rel
	}
	match, err := path.Match(l.pattern, target)
	return err == nil && match
}

func normalizeNewlines(s string) string {
	if !strings.Contains(s, "\r") {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}
