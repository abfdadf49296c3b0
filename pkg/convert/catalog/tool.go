package catalog

import (
	"fmt"

	"github.com/flowsmith/flowsmith/pkg/convert"
	"github.com/flowsmith/flowsmith/pkg/ir"
)

// Calculator converts calculator tool nodes.
type Calculator struct{}

func (Calculator) Type() string      { return "calculator" }
func (Calculator) Aliases() []string { return nil }

func (Calculator) CanConvert(n *ir.Node) bool { return true }

func (c Calculator) Convert(n *ir.Node, gctx convert.Context) ([]convert.Fragment, error) {
	varName := convert.VarName(n.ID)

	var init string
	if gctx.Language == convert.LangTypeScript {
		init = fmt.Sprintf("const %s = new Calculator();", varName)
	} else {
		init = fmt.Sprintf("%s = LLMMathChain.from_llm(llm=%s)", varName, convert.InputRef("model"))
	}

	return []convert.Fragment{
		importFragment(gctx,
			"from langchain.chains import LLMMathChain",
			`import { Calculator } from "@langchain/community/tools/calculator";`),
		{
			Kind:     convert.KindInitialization,
			Content:  nodeComment(gctx, n) + init,
			Language: gctx.Language,
			Exports:  []string{varName},
		},
	}, nil
}

func (Calculator) Dependencies(n *ir.Node, gctx convert.Context) []string {
	if gctx.Language == convert.LangTypeScript {
		return []string{"@langchain/community"}
	}
	return []string{"langchain", "numexpr"}
}

// SerpAPI converts web-search tool nodes backed by SerpAPI.
type SerpAPI struct{}

func (SerpAPI) Type() string      { return "serpAPI" }
func (SerpAPI) Aliases() []string { return []string{"serper"} }

func (SerpAPI) CanConvert(n *ir.Node) bool { return true }

func (c SerpAPI) Convert(n *ir.Node, gctx convert.Context) ([]convert.Fragment, error) {
	varName := convert.VarName(n.ID)

	var init string
	if gctx.Language == convert.LangTypeScript {
		init = fmt.Sprintf("const %s = new SerpAPI(process.env.SERPAPI_API_KEY);", varName)
	} else {
		init = fmt.Sprintf("%s = SerpAPIWrapper()", varName)
	}

	return []convert.Fragment{
		importFragment(gctx,
			"from langchain_community.utilities import SerpAPIWrapper",
			`import { SerpAPI } from "@langchain/community/tools/serpapi";`),
		{
			Kind:     convert.KindInitialization,
			Content:  nodeComment(gctx, n) + init,
			Language: gctx.Language,
			Exports:  []string{varName},
		},
	}, nil
}

func (SerpAPI) Dependencies(n *ir.Node, gctx convert.Context) []string {
	if gctx.Language == convert.LangTypeScript {
		return []string{"@langchain/community"}
	}
	return []string{"langchain-community", "google-search-results"}
}
