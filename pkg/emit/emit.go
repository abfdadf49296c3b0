// Package emit serializes ordered code fragments into output artifacts.
//
// An emitter consumes the fragment stream produced by one conversion run
// and returns in-memory artifacts: one or more source files plus a
// dependency manifest for the target ecosystem. Emitters never touch the
// filesystem; writing artifacts is the caller's job.
package emit

import (
	"strings"

	"github.com/flowsmith/flowsmith/pkg/convert"
	"github.com/flowsmith/flowsmith/pkg/errors"
)

// Artifact is one emitted output file, addressed by a path relative to
// the output directory.
type Artifact struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// Emitter turns a conversion result into output artifacts for one target
// language.
type Emitter interface {
	// Language returns the target language this emitter serves.
	Language() string

	// Emit serializes the result's fragments and dependency manifest.
	// The fragment stream is assumed to already be in emission order.
	Emit(res *convert.Result, gctx convert.Context) ([]Artifact, error)
}

// ForLanguage returns the emitter for the given target language.
func ForLanguage(language string) (Emitter, error) {
	switch language {
	case convert.LangPython:
		return Python{}, nil
	case convert.LangTypeScript:
		return TypeScript{}, nil
	default:
		return nil, errors.New(errors.ErrCodeInvalidLanguage, "no emitter for language %q", language)
	}
}

// assemble concatenates fragment contents grouped by kind: import lines
// sit directly under each other, blocks of the other kinds are separated
// by one blank line, and kind groups by two. Exact duplicate import
// blocks collapse to one occurrence since independent nodes routinely
// need the same import.
func assemble(fragments []convert.Fragment) string {
	kinds := []convert.Kind{
		convert.KindImport,
		convert.KindDeclaration,
		convert.KindInitialization,
		convert.KindExecution,
	}

	var groups []string
	for _, kind := range kinds {
		sep := "\n\n"
		if kind == convert.KindImport {
			sep = "\n"
		}

		var blocks []string
		seen := make(map[string]bool)
		for _, f := range fragments {
			if f.Kind != kind || f.Content == "" {
				continue
			}
			if kind == convert.KindImport {
				if seen[f.Content] {
					continue
				}
				seen[f.Content] = true
			}
			blocks = append(blocks, f.Content)
		}
		if len(blocks) > 0 {
			groups = append(groups, strings.Join(blocks, sep))
		}
	}
	return strings.Join(groups, "\n\n\n")
}
