package utils

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"gorm.io/gorm"
)

var slugInvalid = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives a URL-safe slug from a title: lowercased, non-alphanumeric
// runs collapsed to single hyphens.
func Slugify(s string) string {
	slug := strings.ToLower(strings.TrimSpace(s))
	slug = slugInvalid.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

// UniqueSlug returns base, or base-2, base-3... until no row of table holds
// the candidate. Call inside the transaction that inserts the row.
func UniqueSlug(tx *gorm.DB, table, base string) string {
	candidate := base
	for i := 2; ; i++ {
		var count int64
		tx.Table(table).Where("slug = ?", candidate).Count(&count)
		if count == 0 {
			return candidate
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}

// CheckURLReachable verifies that an external URL answers a HEAD request.
// Used for video_url lesson content before accepting it.
func CheckURLReachable(url string) error {
	client := resty.New().SetTimeout(5 * time.Second)
	resp, err := client.R().Head(url)
	if err != nil {
		return err
	}
	if resp.StatusCode() >= 400 {
		return fmt.Errorf("url responded with status %d", resp.StatusCode())
	}
	return nil
}
