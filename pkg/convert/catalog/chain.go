package catalog

import (
	"fmt"

	"github.com/flowsmith/flowsmith/pkg/convert"
	"github.com/flowsmith/flowsmith/pkg/ir"
)

// LLMChain converts chain nodes that wire a model to a prompt, with an
// optional memory input. It is the only built-in converter that emits an
// execution fragment: invoking the chain is the flow's terminal step.
type LLMChain struct{}

func (LLMChain) Type() string      { return "llmChain" }
func (LLMChain) Aliases() []string { return []string{"conversationChain"} }

func (LLMChain) CanConvert(n *ir.Node) bool { return true }

func (c LLMChain) Convert(n *ir.Node, gctx convert.Context) ([]convert.Fragment, error) {
	varName := convert.VarName(n.ID)
	model := convert.InputRef("model")
	prompt := convert.InputRef("prompt")

	hasMemory := false
	for _, p := range n.InputPorts {
		if p.Name == "memory" {
			hasMemory = true
		}
	}

	var init, exec string
	if gctx.Language == convert.LangTypeScript {
		opts := fmt.Sprintf("llm: %s, prompt: %s", model, prompt)
		if hasMemory {
			opts += fmt.Sprintf(", memory: %s", convert.InputRef("memory"))
		}
		if gctx.IncludeTracing {
			opts += ", verbose: true"
		}
		init = fmt.Sprintf("const %s = new LLMChain({ %s });", varName, opts)
		exec = fmt.Sprintf("const %sResult = await %s.invoke({ input });\nconsole.log(%sResult);",
			varName, varName, varName)
	} else {
		opts := fmt.Sprintf("llm=%s, prompt=%s", model, prompt)
		if hasMemory {
			opts += fmt.Sprintf(", memory=%s", convert.InputRef("memory"))
		}
		if gctx.IncludeTracing {
			opts += ", verbose=True"
		}
		init = fmt.Sprintf("%s = LLMChain(%s)", varName, opts)
		exec = fmt.Sprintf("%s_result = %s.invoke({\"input\": input_text})\nprint(%s_result)",
			varName, varName, varName)
	}

	return []convert.Fragment{
		importFragment(gctx,
			"from langchain.chains import LLMChain",
			`import { LLMChain } from "langchain/chains";`),
		{
			Kind:     convert.KindInitialization,
			Content:  nodeComment(gctx, n) + init,
			Language: gctx.Language,
			// Chains initialize after their wired inputs.
			Order:   1,
			Exports: []string{varName},
		},
		{
			Kind:     convert.KindExecution,
			Content:  exec,
			Language: gctx.Language,
		},
	}, nil
}

func (LLMChain) Dependencies(n *ir.Node, gctx convert.Context) []string {
	return []string{"langchain"}
}
