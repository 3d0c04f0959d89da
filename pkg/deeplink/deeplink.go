// Package deeplink turns activation URLs into navigation overrides.
//
// Matching is deliberately loose: substring tests on the raw string, not
// URI parsing, so myapp://test, https://host/test and anything else
// containing "test" all hit the demo link.
package deeplink

import "strings"

// DemoURL is opened by test links.
const DemoURL = "https://m.naver.com/news"

// TestNotice confirms a test link to the user.
const TestNotice = "Opened from a test link!"

// Resolution is a navigation override to Main.
type Resolution struct {
	URL string
	// Notice is shown to the user when non-empty.
	Notice string
}

// Resolve reports the override for raw, or false when raw does not
// change navigation.
func Resolve(raw string) (Resolution, bool) {
	if strings.Contains(raw, "test") {
		return Resolution{URL: DemoURL, Notice: TestNotice}, true
	}
	if strings.Contains(raw, "webview") {
		if _, target, ok := strings.Cut(raw, "url="); ok && target != "" {
			return Resolution{URL: target}, true
		}
	}
	return Resolution{}, false
}
