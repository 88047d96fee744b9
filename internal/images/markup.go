package images

import (
	"fmt"
	"html"
	"strings"
)

// renderMarkup builds the embeddable fragment for a generated variant set:
// a <picture> with one <source> per format and an <img> fallback, wrapped in
// a <figure> when a caption or credit is present.
func renderMarkup(variants []Variant, opts Options) string {
	byFormat := make(map[Format][]Variant)
	for _, v := range variants {
		byFormat[v.Format] = append(byFormat[v.Format], v)
	}

	var b strings.Builder
	b.WriteString("<picture>")
	for _, format := range opts.Formats {
		set := byFormat[format]
		if len(set) == 0 {
			continue
		}
		fmt.Fprintf(&b, `<source type=%q srcset=%q sizes=%q>`, format.MIME(), srcset(set), opts.Sizes)
	}

	fallback := fallbackVariant(variants, opts)
	fmt.Fprintf(&b, `<img src=%q alt=%q loading=%q decoding="async">`,
		fallback.URL, html.EscapeString(opts.Alt), opts.Loading)
	b.WriteString("</picture>")

	if opts.Caption == "" && opts.Credit == "" {
		return b.String()
	}

	var fig strings.Builder
	fig.WriteString("<figure>")
	fig.WriteString(b.String())
	fig.WriteString("<figcaption>")
	if opts.Caption != "" {
		fig.WriteString(html.EscapeString(opts.Caption))
	}
	if opts.Credit != "" {
		if opts.Caption != "" {
			fig.WriteString(" ")
		}
		fmt.Fprintf(&fig, `<span class="credit">%s</span>`, html.EscapeString(opts.Credit))
	}
	fig.WriteString("</figcaption></figure>")
	return fig.String()
}

func srcset(variants []Variant) string {
	parts := make([]string, 0, len(variants))
	for _, v := range variants {
		parts = append(parts, fmt.Sprintf("%s %dw", v.URL, v.Width))
	}
	return strings.Join(parts, ", ")
}

// fallbackVariant picks the <img> src: the widest variant of the last
// configured format, which convention keeps as the most compatible one.
func fallbackVariant(variants []Variant, opts Options) Variant {
	if len(variants) == 0 {
		return Variant{}
	}
	last := opts.Formats[len(opts.Formats)-1]
	best := Variant{}
	for _, v := range variants {
		if v.Format == last && v.Width > best.Width {
			best = v
		}
	}
	if best.URL == "" {
		best = variants[0]
	}
	return best
}
