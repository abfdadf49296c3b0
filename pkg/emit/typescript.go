package emit

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode"

	"github.com/flowsmith/flowsmith/pkg/convert"
	"github.com/flowsmith/flowsmith/pkg/errors"
)

// TypeScript emits a single TypeScript module plus a package.json
// manifest.
type TypeScript struct{}

// Language implements Emitter.
func (TypeScript) Language() string { return convert.LangTypeScript }

// Emit implements Emitter.
func (TypeScript) Emit(res *convert.Result, gctx convert.Context) ([]Artifact, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "// %s\n// Generated by flowsmith. Edits will be overwritten on regeneration.\n\n", gctx.ProjectName)
	b.WriteString(assemble(res.Fragments))
	b.WriteString("\n")

	manifest, err := packageJSON(gctx.ProjectName, res.Dependencies)
	if err != nil {
		return nil, err
	}

	return []Artifact{
		{Path: "flow.ts", Content: b.String()},
		{Path: "package.json", Content: manifest},
	}, nil
}

// packageJSON renders an npm manifest with every dependency pinned to
// its latest release.
func packageJSON(projectName string, deps []string) (string, error) {
	dependencies := make(map[string]string, len(deps))
	for _, d := range deps {
		if err := errors.ValidateNpmPackageName(d); err != nil {
			return "", err
		}
		dependencies[d] = "latest"
	}

	manifest := struct {
		Name         string            `json:"name"`
		Version      string            `json:"version"`
		Private      bool              `json:"private"`
		Type         string            `json:"type"`
		Dependencies map[string]string `json:"dependencies"`
	}{
		Name:         npmName(projectName),
		Version:      "0.1.0",
		Private:      true,
		Type:         "module",
		Dependencies: dependencies,
	}

	out, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return "", err
	}
	return string(out) + "\n", nil
}

// npmName lowers a project name into a valid npm package name.
func npmName(projectName string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(projectName) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '.' || r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteByte('-')
		}
	}
	name := strings.Trim(b.String(), "-._")
	if name == "" {
		return "flow"
	}
	return name
}
