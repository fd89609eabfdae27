// Package identity derives URL safe identifiers for blog documents and keeps
// them unique across a corpus.
package identity

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-blog/internal/domain"
	"github.com/goliatone/go-blog/internal/logging"
	"github.com/goliatone/go-blog/pkg/interfaces"
)

// ErrIDUnavailable reports that not even a synthetic id could be produced.
var ErrIDUnavailable = errors.New("identity: unable to derive id")

var (
	explicitInvalid = regexp.MustCompile(`[^a-z0-9-]+`)
	asciiInvalid    = regexp.MustCompile(`[^a-z0-9]+`)
	nativeInvalid   = regexp.MustCompile(`[^\p{L}\p{N}]+`)
	repeatedHyphens = regexp.MustCompile(`-+`)
)

// Options tune id derivation.
type Options struct {
	// PreserveNativeScript keeps non-ASCII letters and digits in path derived ids.
	PreserveNativeScript bool
	Logger               interfaces.Logger
	// Collisions, when set, is called each time a suffix had to be added.
	Collisions func(base, assigned string)
	// Synthetic overrides the fallback id generator.
	Synthetic func() string
	Now       func() time.Time
}

// Assigner hands out ids in call order. The first document claiming a base id
// keeps it; later ones get the lowest free numeric suffix. Callers control
// fairness by feeding documents in a deterministic order (the loader sorts by
// path).
type Assigner struct {
	opts   Options
	logger interfaces.Logger
	used   map[string]struct{}
}

// NewAssigner constructs an Assigner with an empty used set.
func NewAssigner(opts Options) *Assigner {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NoOp()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	a := &Assigner{
		opts:   opts,
		logger: logger,
		used:   map[string]struct{}{},
	}
	if a.opts.Synthetic == nil {
		a.opts.Synthetic = a.syntheticID
	}
	return a
}

// Assign returns the unique id for the document at path.
func (a *Assigner) Assign(path string, fm domain.FrontMatter) (string, error) {
	base := a.BaseID(path, fm)
	if base == "" {
		base = a.opts.Synthetic()
		if base == "" {
			return "", fmt.Errorf("%w: %s", ErrIDUnavailable, path)
		}
		a.logger.Warn("identity.synthetic_id", "path", path, "id", base)
	}
	return a.claim(base), nil
}

// BaseID derives the candidate id before collision handling. An empty result
// means the caller needs a synthetic id.
func (a *Assigner) BaseID(path string, fm domain.FrontMatter) string {
	if explicit, ok := fm.String("id"); ok && strings.TrimSpace(explicit) != "" {
		return SanitizeID(explicit)
	}
	return FromPath(path, a.opts.PreserveNativeScript)
}

// Used reports whether id has been handed out.
func (a *Assigner) Used(id string) bool {
	_, ok := a.used[id]
	return ok
}

func (a *Assigner) claim(base string) string {
	if _, taken := a.used[base]; !taken {
		a.used[base] = struct{}{}
		return base
	}
	for counter := 1; ; counter++ {
		candidate := base + "-" + strconv.Itoa(counter)
		if _, taken := a.used[candidate]; taken {
			continue
		}
		a.used[candidate] = struct{}{}
		if a.opts.Collisions != nil {
			a.opts.Collisions(base, candidate)
		}
		a.logger.Debug("identity.collision", "base", base, "id", candidate)
		return candidate
	}
}

func (a *Assigner) syntheticID() string {
	stamp := strconv.FormatInt(a.opts.Now().UnixMilli(), 36)
	token := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "blog-" + stamp + "-" + token[:6]
}

// SanitizeID normalises an explicit id to [a-z0-9-].
func SanitizeID(id string) string {
	id = strings.ToLower(strings.TrimSpace(id))
	id = explicitInvalid.ReplaceAllString(id, "-")
	id = repeatedHyphens.ReplaceAllString(id, "-")
	return strings.Trim(id, "-")
}

// FromPath derives an id from a content relative path such as
// "tech/go/intro.md". Separators and other punctuation collapse into single
// hyphens.
func FromPath(path string, preserveNative bool) string {
	path = strings.ReplaceAll(path, "\\", "/")
	path = strings.TrimPrefix(path, "/")
	path = strings.TrimSuffix(path, ".md")
	path = strings.ToLower(path)

	pattern := asciiInvalid
	if preserveNative {
		pattern = nativeInvalid
	}
	id := pattern.ReplaceAllString(path, "-")
	id = repeatedHyphens.ReplaceAllString(id, "-")
	return strings.Trim(id, "-")
}

// Document pairs a path with its frontmatter for bulk assignment.
type Document struct {
	Path        string
	FrontMatter domain.FrontMatter
}

// AssignAll assigns ids to docs in slice order. Documents that cannot get an
// id are reported in the error slice and left out of the map.
func AssignAll(docs []Document, opts Options) (map[string]string, []error) {
	assigner := NewAssigner(opts)
	ids := make(map[string]string, len(docs))
	var errs []error
	for _, doc := range docs {
		id, err := assigner.Assign(doc.Path, doc.FrontMatter)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		ids[doc.Path] = id
	}
	return ids, errs
}
