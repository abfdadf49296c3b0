package catalog

import (
	"fmt"

	"github.com/flowsmith/flowsmith/pkg/convert"
	"github.com/flowsmith/flowsmith/pkg/ir"
)

// OutputParser converts string output parser nodes.
type OutputParser struct{}

func (OutputParser) Type() string      { return "stringOutputParser" }
func (OutputParser) Aliases() []string { return []string{"outputParser"} }

func (OutputParser) CanConvert(n *ir.Node) bool { return true }

func (c OutputParser) Convert(n *ir.Node, gctx convert.Context) ([]convert.Fragment, error) {
	varName := convert.VarName(n.ID)

	var init string
	if gctx.Language == convert.LangTypeScript {
		init = fmt.Sprintf("const %s = new StringOutputParser();", varName)
	} else {
		init = fmt.Sprintf("%s = StrOutputParser()", varName)
	}

	return []convert.Fragment{
		importFragment(gctx,
			"from langchain_core.output_parsers import StrOutputParser",
			`import { StringOutputParser } from "@langchain/core/output_parsers";`),
		{
			Kind:     convert.KindInitialization,
			Content:  nodeComment(gctx, n) + init,
			Language: gctx.Language,
			Exports:  []string{varName},
		},
	}, nil
}

func (OutputParser) Dependencies(n *ir.Node, gctx convert.Context) []string {
	if gctx.Language == convert.LangTypeScript {
		return []string{"@langchain/core"}
	}
	return []string{"langchain-core"}
}
