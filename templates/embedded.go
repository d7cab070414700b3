// Package templates carries the feed document templates compiled into the
// binary.
package templates

import "embed"

// FeedTemplates provides read-only access to the RSS and Atom document
// templates.
//
//go:embed *.tmpl
var FeedTemplates embed.FS
