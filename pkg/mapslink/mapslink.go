// Package mapslink builds outbound map-search URLs for free-text
// addresses. One-way: nothing from the map service is ever consumed.
package mapslink

import (
	"net/url"
	"strings"
)

const searchBase = "https://www.google.com/maps/search/?api=1&query="

// SearchURL returns the map search link for an address, or "" when the
// address is blank.
func SearchURL(address string) string {
	addr := strings.TrimSpace(address)
	if addr == "" {
		return ""
	}
	return searchBase + url.QueryEscape(addr)
}
