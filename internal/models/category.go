package models

import "fmt"

// Category is a support topic. Each category has exactly one admin.
type Category string

const (
	CategoryWebSupport Category = "websupport"
	CategoryAdvertise  Category = "advertise"
	CategoryReportLink Category = "reportlink"
)

// AllCategories lists every category in menu order.
var AllCategories = []Category{CategoryWebSupport, CategoryAdvertise, CategoryReportLink}

// ParseCategory maps a stored or command value back to a Category.
func ParseCategory(s string) (Category, error) {
	switch Category(s) {
	case CategoryWebSupport, CategoryAdvertise, CategoryReportLink:
		return Category(s), nil
	}
	return "", fmt.Errorf("unknown category %q", s)
}

// Label is the human readable name shown in envelopes and replies.
func (c Category) Label() string {
	switch c {
	case CategoryWebSupport:
		return "🌐 Web Support"
	case CategoryAdvertise:
		return "📣 Advertiser Specialist"
	case CategoryReportLink:
		return "🚨 Report Link/Content"
	}
	return string(c)
}

// Command is the slash command that selects the category.
func (c Category) Command() string {
	return "/" + string(c)
}
