package api

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

// ParseUpdateInfo decodes a version document. The latest version is the
// only mandatory field.
func ParseUpdateInfo(body string) (UpdateInfo, error) {
	if !gjson.Valid(body) {
		return UpdateInfo{}, errors.New("update info: invalid JSON")
	}
	doc := gjson.Parse(body)
	if !doc.IsObject() {
		return UpdateInfo{}, errors.New("update info: expected an object")
	}

	latest := doc.Get("latestVersion")
	if latest.Type != gjson.String || latest.Str == "" {
		return UpdateInfo{}, errors.New("update info: latestVersion missing")
	}

	return UpdateInfo{
		LatestVersion: latest.Str,
		ForceUpdate:   doc.Get("forceUpdate").Bool(),
		StoreURL:      doc.Get("storeUrl").String(),
		Message:       doc.Get("message").String(),
	}, nil
}

// ParseTutorial decodes tutorial content. Both a bare array and an object
// with a "data" array are accepted. Entries without a title are skipped.
func ParseTutorial(body string) ([]TutorialItem, error) {
	if !gjson.Valid(body) {
		return nil, errors.New("tutorial: invalid JSON")
	}
	doc := gjson.Parse(body)
	if doc.IsObject() {
		doc = doc.Get("data")
	}
	if !doc.IsArray() {
		return nil, fmt.Errorf("tutorial: expected an array, got %s", doc.Type)
	}

	var items []TutorialItem
	for _, entry := range doc.Array() {
		title := entry.Get("title").String()
		if title == "" {
			continue
		}
		image := entry.Get("image").String()
		if image == "" {
			image = entry.Get("imageRef").String()
		}
		items = append(items, TutorialItem{
			ID:          int(entry.Get("id").Int()),
			Title:       title,
			Description: entry.Get("description").String(),
			ImageRef:    image,
		})
	}
	return items, nil
}
