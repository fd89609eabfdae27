package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
)

// writeData emits the JSON projections a client side reader can load
// without parsing markdown: the list, search index, category tree and one
// detail document per post.
func (r *run) writeData(ctx context.Context, posts []post) {
	items := r.deps.Source.List()
	r.writeJSON(ctx, "data/blogs.json", items)
	r.writeJSON(ctx, "data/search.json", r.deps.Source.SearchItems())
	r.writeJSON(ctx, "data/categories.json", r.deps.Source.Categories())
	for _, p := range posts {
		r.writeJSON(ctx, path.Join("data", "blog", p.Item.ID+".json"), p.Content)
	}
}

func (r *run) writeJSON(ctx context.Context, rel string, value any) {
	body, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		r.fail(fmt.Errorf("generator: encode %s: %w", rel, err))
		return
	}
	r.emit(ctx, rel, kindData, "application/json", append(body, '\n'))
}
