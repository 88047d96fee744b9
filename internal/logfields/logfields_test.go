package logfields

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestHelperKeyNames verifies string-based helper key/value stability.
func TestHelperKeyNames(t *testing.T) {
	cases := []struct {
		name    string
		attrKey string
		attrVal string
		attr    interface{}
	}{
		{"Pass", KeyPass, "p-1", Pass("p-1")},
		{"Stage", KeyStage, "load", Stage("load")},
		{"Path", KeyPath, "/tmp/x", Path("/tmp/x")},
		{"File", KeyFile, "post.md", File("post.md")},
		{"Slug", KeySlug, "web-dev", Slug("web-dev")},
		{"Kind", KeyKind, "authors", Kind("authors")},
		{"Source", KeySource, "cover.jpg", Source("cover.jpg")},
		{"Format", KeyFormat, "webp", Format("webp")},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			attr := tc.attr.(interface {
				String() string
			})
			assert.Contains(t, attr.String(), tc.attrKey)
			assert.Contains(t, attr.String(), tc.attrVal)
		})
	}
}

func TestErrorAttr(t *testing.T) {
	assert.Equal(t, "", Error(nil).Value.String())
	assert.Equal(t, "boom", Error(errors.New("boom")).Value.String())
}
