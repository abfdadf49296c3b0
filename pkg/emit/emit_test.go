package emit

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/flowsmith/flowsmith/pkg/convert"
)

func orderedResult() *convert.Result {
	return &convert.Result{
		Fragments: []convert.Fragment{
			{Kind: convert.KindImport, Content: "from langchain_openai import ChatOpenAI"},
			{Kind: convert.KindImport, Content: "from langchain.chains import LLMChain"},
			{Kind: convert.KindImport, Content: "from langchain_openai import ChatOpenAI"},
			{Kind: convert.KindInitialization, Content: "llm = ChatOpenAI()", Exports: []string{"llm"}},
			{Kind: convert.KindInitialization, Content: "chain = LLMChain(llm=llm)", Exports: []string{"chain"}},
			{Kind: convert.KindExecution, Content: "print(chain.invoke({\"input\": text}))"},
		},
		Dependencies: []string{"langchain", "langchain-openai"},
	}
}

func TestForLanguage(t *testing.T) {
	tests := []struct {
		language string
		wantErr  bool
	}{
		{convert.LangPython, false},
		{convert.LangTypeScript, false},
		{"ruby", true},
		{"", true},
	}

	for _, tt := range tests {
		t.Run(tt.language, func(t *testing.T) {
			e, err := ForLanguage(tt.language)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ForLanguage(%q) error = %v, wantErr %v", tt.language, err, tt.wantErr)
			}
			if err == nil && e.Language() != tt.language {
				t.Errorf("Language() = %q, want %q", e.Language(), tt.language)
			}
		})
	}
}

func TestPythonEmit(t *testing.T) {
	artifacts, err := Python{}.Emit(orderedResult(), convert.Context{
		Language:    convert.LangPython,
		ProjectName: "Support Bot",
	})
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if len(artifacts) != 2 {
		t.Fatalf("got %d artifacts, want 2", len(artifacts))
	}

	source := artifacts[0]
	if source.Path != "flow.py" {
		t.Errorf("source path = %q, want flow.py", source.Path)
	}
	if !strings.Contains(source.Content, "Support Bot") {
		t.Error("source header missing project name")
	}

	// Imports before initializations before executions.
	importIdx := strings.Index(source.Content, "from langchain_openai")
	initIdx := strings.Index(source.Content, "llm = ChatOpenAI()")
	execIdx := strings.Index(source.Content, "chain.invoke")
	if importIdx < 0 || initIdx < 0 || execIdx < 0 {
		t.Fatalf("missing expected blocks in source:\n%s", source.Content)
	}
	if !(importIdx < initIdx && initIdx < execIdx) {
		t.Errorf("kind groups out of order: import=%d init=%d exec=%d", importIdx, initIdx, execIdx)
	}

	// Duplicate import collapsed.
	if strings.Count(source.Content, "from langchain_openai import ChatOpenAI") != 1 {
		t.Errorf("duplicate import not collapsed:\n%s", source.Content)
	}

	manifest := artifacts[1]
	if manifest.Path != "requirements.txt" {
		t.Errorf("manifest path = %q, want requirements.txt", manifest.Path)
	}
	if manifest.Content != "langchain\nlangchain-openai\n" {
		t.Errorf("requirements = %q", manifest.Content)
	}
}

func TestPythonEmitRejectsBadDependency(t *testing.T) {
	res := &convert.Result{Dependencies: []string{"../evil"}}
	if _, err := (Python{}).Emit(res, convert.Context{ProjectName: "p"}); err == nil {
		t.Fatal("Emit with traversal dependency: err = nil, want error")
	}
}

func TestTypeScriptEmit(t *testing.T) {
	res := &convert.Result{
		Fragments: []convert.Fragment{
			{Kind: convert.KindImport, Content: `import { ChatOpenAI } from "@langchain/openai";`},
			{Kind: convert.KindInitialization, Content: "const llm = new ChatOpenAI();"},
		},
		Dependencies: []string{"@langchain/openai", "langchain"},
	}

	artifacts, err := TypeScript{}.Emit(res, convert.Context{
		Language:    convert.LangTypeScript,
		ProjectName: "Support Bot",
	})
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if len(artifacts) != 2 {
		t.Fatalf("got %d artifacts, want 2", len(artifacts))
	}

	if artifacts[0].Path != "flow.ts" {
		t.Errorf("source path = %q, want flow.ts", artifacts[0].Path)
	}

	manifest := artifacts[1]
	if manifest.Path != "package.json" {
		t.Errorf("manifest path = %q, want package.json", manifest.Path)
	}

	var pkg struct {
		Name         string            `json:"name"`
		Type         string            `json:"type"`
		Dependencies map[string]string `json:"dependencies"`
	}
	if err := json.Unmarshal([]byte(manifest.Content), &pkg); err != nil {
		t.Fatalf("package.json not valid JSON: %v\n%s", err, manifest.Content)
	}
	if pkg.Name != "support-bot" {
		t.Errorf("package name = %q, want support-bot", pkg.Name)
	}
	if pkg.Type != "module" {
		t.Errorf("package type = %q, want module", pkg.Type)
	}
	if pkg.Dependencies["@langchain/openai"] == "" || pkg.Dependencies["langchain"] == "" {
		t.Errorf("dependencies incomplete: %v", pkg.Dependencies)
	}
}

func TestAssembleEmptyKinds(t *testing.T) {
	out := assemble([]convert.Fragment{
		{Kind: convert.KindInitialization, Content: "x = 1"},
	})
	if out != "x = 1" {
		t.Errorf("assemble = %q, want %q", out, "x = 1")
	}

	if got := assemble(nil); got != "" {
		t.Errorf("assemble(nil) = %q, want empty", got)
	}
}

func TestNpmName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Support Bot", "support-bot"},
		{"flow", "flow"},
		{"My.Project_2", "my.project_2"},
		{"---", "flow"},
		{"", "flow"},
	}

	for _, tt := range tests {
		if got := npmName(tt.in); got != tt.want {
			t.Errorf("npmName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
