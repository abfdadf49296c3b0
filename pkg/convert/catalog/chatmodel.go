package catalog

import (
	"fmt"
	"strconv"

	"github.com/flowsmith/flowsmith/pkg/convert"
	"github.com/flowsmith/flowsmith/pkg/ir"
)

// ChatModel converts OpenAI-compatible chat model nodes.
type ChatModel struct{}

func (ChatModel) Type() string      { return "chatOpenAI" }
func (ChatModel) Aliases() []string { return []string{"azureChatOpenAI", "chatLocalAI"} }

func (ChatModel) CanConvert(n *ir.Node) bool { return true }

func (c ChatModel) Convert(n *ir.Node, gctx convert.Context) ([]convert.Fragment, error) {
	varName := convert.VarName(n.ID)
	model := stringParam(n, "modelName", "gpt-4o-mini")
	temperature := floatParam(n, "temperature", 0.7)
	streaming := boolParam(n, "streaming", false)

	var init string
	if gctx.Language == convert.LangTypeScript {
		init = fmt.Sprintf("const %s = new ChatOpenAI({\n  model: %s,\n  temperature: %s,\n  streaming: %s,\n});",
			varName, quote(model),
			strconv.FormatFloat(temperature, 'g', -1, 64),
			boolLiteral(gctx, streaming))
	} else {
		init = fmt.Sprintf("%s = ChatOpenAI(\n    model=%s,\n    temperature=%s,\n    streaming=%s,\n)",
			varName, quote(model),
			strconv.FormatFloat(temperature, 'g', -1, 64),
			boolLiteral(gctx, streaming))
	}

	return []convert.Fragment{
		importFragment(gctx,
			"from langchain_openai import ChatOpenAI",
			`import { ChatOpenAI } from "@langchain/openai";`),
		{
			Kind:     convert.KindInitialization,
			Content:  nodeComment(gctx, n) + init,
			Language: gctx.Language,
			Exports:  []string{varName},
		},
	}, nil
}

func (ChatModel) Dependencies(n *ir.Node, gctx convert.Context) []string {
	if gctx.Language == convert.LangTypeScript {
		return []string{"@langchain/openai"}
	}
	return []string{"langchain-openai"}
}
