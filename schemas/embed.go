// Package schemas holds the JSON Schemas for response bodies of the generation API.
package schemas

import "embed"

// FS contains every *.schema.json file in this directory.
//
//go:embed *.schema.json
var FS embed.FS
