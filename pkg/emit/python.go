package emit

import (
	"fmt"
	"strings"

	"github.com/flowsmith/flowsmith/pkg/convert"
	"github.com/flowsmith/flowsmith/pkg/errors"
)

// Python emits a single Python source file plus a requirements.txt
// manifest.
type Python struct{}

// Language implements Emitter.
func (Python) Language() string { return convert.LangPython }

// Emit implements Emitter.
func (Python) Emit(res *convert.Result, gctx convert.Context) ([]Artifact, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "\"\"\"%s\n\nGenerated by flowsmith. Edits will be overwritten on regeneration.\n\"\"\"\n\n", gctx.ProjectName)
	b.WriteString(assemble(res.Fragments))
	b.WriteString("\n")

	manifest, err := requirements(res.Dependencies)
	if err != nil {
		return nil, err
	}

	return []Artifact{
		{Path: "flow.py", Content: b.String()},
		{Path: "requirements.txt", Content: manifest},
	}, nil
}

// requirements renders a pip requirements file, one package per line in
// manifest order.
func requirements(deps []string) (string, error) {
	var b strings.Builder
	for _, d := range deps {
		if err := errors.ValidatePythonPackageName(d); err != nil {
			return "", err
		}
		b.WriteString(d)
		b.WriteByte('\n')
	}
	return b.String(), nil
}
