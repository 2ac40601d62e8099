// Package page reads session state from a snapshot of a site page,
// the same elements a page observer watches in the browser.
package page

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// element ids watched on session pages
const (
	ReviewCountID = "available-count"
	LessonEndID   = "lesson-ready-end"
)

// ErrNothingObserved is returned when the page has none of the watched elements
var ErrNothingObserved = errors.New("no session elements on page")

// Observation is what a page snapshot tells about the session
type Observation struct {
	Reviews   *int // review count shown during a review session
	LessonEnd bool // end of a lesson session, summary should be refreshed
}

// Observe parses the page and extracts the review count or the lesson end marker.
// The review count wins if both are present.
func Observe(r io.Reader) (Observation, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return Observation{}, fmt.Errorf("parse page: %w", err)
	}

	if node := findByID(doc, ReviewCountID); node != nil {
		text := strings.TrimSpace(ownText(node))
		n, err := strconv.Atoi(text)
		if err != nil {
			return Observation{}, fmt.Errorf("review count %q: %w", text, err)
		}
		return Observation{Reviews: &n}, nil
	}

	if findByID(doc, LessonEndID) != nil {
		return Observation{LessonEnd: true}, nil
	}
	return Observation{}, ErrNothingObserved
}

func findByID(node *html.Node, id string) *html.Node {
	if node.Type == html.ElementNode {
		for _, attr := range node.Attr {
			if attr.Key == "id" && attr.Val == id {
				return node
			}
		}
	}
	for c := node.FirstChild; c != nil; c = c.NextSibling {
		if found := findByID(c, id); found != nil {
			return found
		}
	}
	return nil
}

// ownText joins direct text children only, nested markup is skipped
func ownText(node *html.Node) string {
	var b strings.Builder
	for c := node.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	}
	return b.String()
}
