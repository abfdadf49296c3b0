package catalog

import (
	"fmt"

	"github.com/flowsmith/flowsmith/pkg/convert"
	"github.com/flowsmith/flowsmith/pkg/ir"
)

// PromptTemplate converts prompt template nodes. Chat-style templates
// share the converter; the template text decides the shape.
type PromptTemplate struct{}

func (PromptTemplate) Type() string      { return "promptTemplate" }
func (PromptTemplate) Aliases() []string { return []string{"chatPromptTemplate"} }

func (PromptTemplate) CanConvert(n *ir.Node) bool { return true }

func (c PromptTemplate) Convert(n *ir.Node, gctx convert.Context) ([]convert.Fragment, error) {
	varName := convert.VarName(n.ID)
	template := stringParam(n, "template", "")

	var init string
	if gctx.Language == convert.LangTypeScript {
		init = fmt.Sprintf("const %s = PromptTemplate.fromTemplate(%s);", varName, quote(template))
	} else {
		init = fmt.Sprintf("%s = PromptTemplate.from_template(%s)", varName, quote(template))
	}

	return []convert.Fragment{
		importFragment(gctx,
			"from langchain_core.prompts import PromptTemplate",
			`import { PromptTemplate } from "@langchain/core/prompts";`),
		{
			Kind:     convert.KindInitialization,
			Content:  nodeComment(gctx, n) + init,
			Language: gctx.Language,
			Exports:  []string{varName},
		},
	}, nil
}

func (PromptTemplate) Dependencies(n *ir.Node, gctx convert.Context) []string {
	if gctx.Language == convert.LangTypeScript {
		return []string{"@langchain/core"}
	}
	return []string{"langchain-core"}
}
