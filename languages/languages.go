// Package languages embeds the per-dialect dependency extraction patterns.
// Each YAML file lists the declaration idioms of one build-descriptor
// dialect as regular expressions, plus the block patterns whose bodies are
// re-scanned. Support for a new dialect is added by dropping in a new
// *.yaml file and loading it with depextract.LoadPatterns.
package languages

import "embed"

// FS is an embed.FS containing every *.yaml file in this directory.
//
//go:embed *.yaml
var FS embed.FS
