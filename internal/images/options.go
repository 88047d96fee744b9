// Package images derives responsively-encoded variants from source images
// and emits the markup that embeds them.
package images

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/quillworks/pressbuild/internal/config"
)

// Format is one supported output encoding.
type Format string

const (
	FormatAVIF Format = "avif"
	FormatWebP Format = "webp"
	FormatJPEG Format = "jpeg"
)

// ParseFormat validates a config-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatAVIF:
		return FormatAVIF, nil
	case FormatWebP:
		return FormatWebP, nil
	case FormatJPEG:
		return FormatJPEG, nil
	default:
		return "", fmt.Errorf("unsupported image format %q", s)
	}
}

// Ext returns the file extension for the format.
func (f Format) Ext() string {
	if f == FormatJPEG {
		return "jpg"
	}
	return string(f)
}

// MIME returns the media type used in <source type="...">.
func (f Format) MIME() string {
	return "image/" + string(f)
}

// Options enumerates every recognized embed option with its default. There
// is deliberately no open-ended option bag; unknown knobs are a compile
// error, not a silent no-op.
type Options struct {
	Widths  []int
	Formats []Format
	Sizes   string
	Loading string

	// Alt is the accessibility description. It is required for any img-like
	// output; Generate rejects a blank value.
	Alt     string
	Caption string
	Credit  string
}

// withDefaults fills unset fields from the pipeline defaults.
func (o Options) withDefaults(d Options) Options {
	if len(o.Widths) == 0 {
		o.Widths = d.Widths
	}
	if len(o.Formats) == 0 {
		o.Formats = d.Formats
	}
	if o.Sizes == "" {
		o.Sizes = d.Sizes
	}
	if o.Loading == "" {
		o.Loading = d.Loading
	}
	return o
}

// hash returns a stable digest of the variant-affecting options, used to key
// in-flight request de-duplication.
func (o Options) hash() string {
	widths := append([]int(nil), o.Widths...)
	sort.Ints(widths)

	var b strings.Builder
	for _, w := range widths {
		fmt.Fprintf(&b, "w%d;", w)
	}
	for _, f := range o.Formats {
		fmt.Fprintf(&b, "f%s;", f)
	}
	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:8])
}

// defaultsFromConfig maps the config section onto pipeline-level defaults.
func defaultsFromConfig(cfg config.ImagesConfig) (Options, error) {
	formats := make([]Format, 0, len(cfg.Formats))
	for _, raw := range cfg.Formats {
		f, err := ParseFormat(raw)
		if err != nil {
			return Options{}, err
		}
		formats = append(formats, f)
	}
	return Options{
		Widths:  cfg.Widths,
		Formats: formats,
		Sizes:   cfg.Sizes,
		Loading: cfg.Loading,
	}, nil
}
