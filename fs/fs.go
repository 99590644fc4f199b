// Package appfs exposes embedded application assets.
package appfs

import "embed"

//go:embed migrations
var Migrations embed.FS

// the base templates are underscore-prefixed and must be named explicitly,
// directory patterns skip them.
//
//go:embed templates templates/email/_base.txt templates/email/_base.gohtml
var Templates embed.FS
