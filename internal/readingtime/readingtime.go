// Package readingtime estimates how long an article takes to consume.
//
// The base estimate is a words-per-minute heuristic over the rendered plain
// text. Non-text content is charged fixed time penalties on top: the first
// image costs more than each additional one (readers slow down less once
// they are skimming figures), and code blocks and quotes carry their own
// constants. The constants are empirical and deliberately kept configurable.
package readingtime

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/quillworks/pressbuild/internal/markdown"
)

// Stats is the estimate for one article.
type Stats struct {
	Minutes float64 `json:"minutes"`
	Words   int     `json:"words"`
	Text    string  `json:"text"`
}

// Weights holds the per-element time penalties, in seconds.
type Weights struct {
	FirstImage      float64
	AdditionalImage float64
	CodeBlock       float64
	Quote           float64
}

// DefaultWeights are the penalties used by the build unless overridden.
func DefaultWeights() Weights {
	return Weights{
		FirstImage:      12,
		AdditionalImage: 11,
		CodeBlock:       15,
		Quote:           5,
	}
}

const defaultWordsPerMinute = 200

// Estimator derives reading stats from raw markdown. It holds no mutable
// state; estimates are reproducible for identical input.
type Estimator struct {
	WordsPerMinute int
	Weights        Weights
}

// NewEstimator returns an estimator with the default words-per-minute rate
// and element weights.
func NewEstimator() *Estimator {
	return &Estimator{WordsPerMinute: defaultWordsPerMinute, Weights: DefaultWeights()}
}

// Estimate renders raw markdown to its presentational form and derives
// reading stats from the rendered tree.
func (e *Estimator) Estimate(raw []byte) (Stats, error) {
	rendered, err := markdown.RenderHTML(raw)
	if err != nil {
		return Stats{}, fmt.Errorf("render for estimate: %w", err)
	}

	doc, err := html.Parse(bytes.NewReader(rendered))
	if err != nil {
		return Stats{}, fmt.Errorf("parse rendered output: %w", err)
	}

	var (
		text    strings.Builder
		images  int
		code    int
		quotes  int
		collect func(n *html.Node)
	)
	collect = func(n *html.Node) {
		switch {
		case n.Type == html.ElementNode && n.DataAtom == atom.Img:
			images++
		case n.Type == html.ElementNode && n.DataAtom == atom.Pre:
			code++
			return // code listings do not count toward prose words
		case n.Type == html.ElementNode && n.DataAtom == atom.Blockquote:
			quotes++
		case n.Type == html.TextNode:
			text.WriteString(n.Data)
			text.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(doc)

	words := len(strings.Fields(text.String()))
	wpm := e.WordsPerMinute
	if wpm <= 0 {
		wpm = defaultWordsPerMinute
	}

	minutes := float64(words) / float64(wpm)
	minutes += e.penaltySeconds(images, code, quotes) / 60

	return Stats{
		Minutes: minutes,
		Words:   words,
		Text:    label(minutes),
	}, nil
}

func (e *Estimator) penaltySeconds(images, code, quotes int) float64 {
	var s float64
	if images > 0 {
		s += e.Weights.FirstImage + float64(images-1)*e.Weights.AdditionalImage
	}
	s += float64(code) * e.Weights.CodeBlock
	s += float64(quotes) * e.Weights.Quote
	return s
}

func label(minutes float64) string {
	n := int(math.Round(minutes))
	if n < 1 {
		n = 1
	}
	return fmt.Sprintf("%d min read", n)
}
