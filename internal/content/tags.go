package content

import (
	"github.com/quillworks/pressbuild/internal/slug"
)

// BuildTagIndex groups articles by the normalized slug of each tag, so that
// case and punctuation variants ("Web Dev", "web-dev") merge into one entry.
// The first-seen spelling becomes the display label and entries keep
// first-insertion order.
func BuildTagIndex(articles []*Article) []TagEntry {
	order := make([]string, 0)
	byKey := make(map[string]*TagEntry)

	for _, article := range articles {
		for _, tag := range article.Tags {
			key := slug.Normalize(tag)
			if key == "" {
				continue
			}
			entry, ok := byKey[key]
			if !ok {
				entry = &TagEntry{Tag: tag, Slug: key}
				byKey[key] = entry
				order = append(order, key)
			}
			entry.Items = append(entry.Items, article)
		}
	}

	out := make([]TagEntry, 0, len(order))
	for _, key := range order {
		out = append(out, *byKey[key])
	}
	return out
}
