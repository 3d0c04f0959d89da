package bridge

import (
	"bytes"
	"fmt"
	"io"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// InjectScript inserts script as the first element of the page's <head>, so
// AppBridge exists before any of the page's own scripts run. Pages without
// a head get one from the HTML parser.
func InjectScript(page io.Reader, script string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(page)
	if err != nil {
		return "", fmt.Errorf("parse page: %w", err)
	}

	tag := "<script>" + script + "</script>"
	if head := doc.Find("head").First(); head.Length() > 0 {
		head.PrependHtml(tag)
	} else {
		doc.Find("body").First().PrependHtml(tag)
	}

	var buf bytes.Buffer
	for _, n := range doc.Nodes {
		if err := html.Render(&buf, n); err != nil {
			return "", fmt.Errorf("render page: %w", err)
		}
	}
	return buf.String(), nil
}
