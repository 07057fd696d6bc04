// Package dialect maps the language tag on a run request to the form the
// engine can execute.
package dialect

import (
	"path/filepath"
	"strings"
)

// Dialect names a source language accepted by the playground.
type Dialect string

const (
	JavaScript Dialect = "js"
	TypeScript Dialect = "ts"
)

// Mode says whether source text can be evaluated as is.
type Mode int

const (
	Native Mode = iota
	Transpile
)

func (m Mode) String() string {
	if m == Transpile {
		return "transpile"
	}
	return "native"
}

// Resolution is the outcome of resolving a requested tag.
type Resolution struct {
	Requested string  // tag as supplied by the caller
	Dialect   Dialect // dialect the source is written in
	Mode      Mode
	Target    Dialect // host form produced by transpilation; JavaScript for native input
}

var aliases = map[string]Dialect{
	"ts":         TypeScript,
	"typescript": TypeScript,
	"mts":        TypeScript,
	"cts":        TypeScript,
	"js":         JavaScript,
	"javascript": JavaScript,
	"mjs":        JavaScript,
	"cjs":        JavaScript,
}

// Resolve maps a tag to a Resolution. Unknown and empty tags resolve to
// native JavaScript; the tag is not validated.
func Resolve(tag string) Resolution {
	res := Resolution{
		Requested: tag,
		Dialect:   JavaScript,
		Mode:      Native,
		Target:    JavaScript,
	}
	if d, ok := aliases[strings.ToLower(strings.TrimSpace(tag))]; ok && d == TypeScript {
		res.Dialect = TypeScript
		res.Mode = Transpile
	}
	return res
}

// FromFilename returns the dialect implied by a file extension.
func FromFilename(name string) Dialect {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	if d, ok := aliases[ext]; ok {
		return d
	}
	return JavaScript
}
