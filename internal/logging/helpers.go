package logging

import (
	"maps"
	"strings"

	"github.com/goliatone/go-blog/pkg/interfaces"
)

// Field names shared by every blog log entry that concerns one post.
const (
	fieldDocumentPath = "path"
	fieldBlogID       = "blog_id"
	fieldAction       = "action"
)

// WithFields returns logger extended with fields. Loggers that cannot carry
// fields are returned as is.
func WithFields(logger interfaces.Logger, fields map[string]any) interfaces.Logger {
	if logger == nil || len(fields) == 0 {
		return logger
	}
	fl, ok := logger.(interfaces.FieldsLogger)
	if !ok {
		return logger
	}
	return fl.WithFields(maps.Clone(fields))
}

// WithDocumentContext tags logger with a post's source path and id plus the
// action in progress, such as "load" or "render". Blank values are left out.
func WithDocumentContext(logger interfaces.Logger, path, id, action string) interfaces.Logger {
	fields := make(map[string]any, 3)
	for key, value := range map[string]string{
		fieldDocumentPath: path,
		fieldBlogID:       id,
		fieldAction:       action,
	} {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			fields[key] = trimmed
		}
	}
	return WithFields(logger, fields)
}
