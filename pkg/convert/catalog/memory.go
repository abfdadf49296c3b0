package catalog

import (
	"fmt"

	"github.com/flowsmith/flowsmith/pkg/convert"
	"github.com/flowsmith/flowsmith/pkg/ir"
)

// BufferMemory converts conversation buffer memory nodes.
type BufferMemory struct{}

func (BufferMemory) Type() string      { return "bufferMemory" }
func (BufferMemory) Aliases() []string { return []string{"bufferWindowMemory"} }

func (BufferMemory) CanConvert(n *ir.Node) bool { return true }

func (c BufferMemory) Convert(n *ir.Node, gctx convert.Context) ([]convert.Fragment, error) {
	varName := convert.VarName(n.ID)
	memoryKey := stringParam(n, "memoryKey", "chat_history")

	var init string
	if gctx.Language == convert.LangTypeScript {
		init = fmt.Sprintf("const %s = new BufferMemory({ memoryKey: %s });", varName, quote(memoryKey))
	} else {
		init = fmt.Sprintf("%s = ConversationBufferMemory(memory_key=%s)", varName, quote(memoryKey))
	}

	return []convert.Fragment{
		importFragment(gctx,
			"from langchain.memory import ConversationBufferMemory",
			`import { BufferMemory } from "langchain/memory";`),
		{
			Kind:     convert.KindInitialization,
			Content:  nodeComment(gctx, n) + init,
			Language: gctx.Language,
			Exports:  []string{varName},
		},
	}, nil
}

func (BufferMemory) Dependencies(n *ir.Node, gctx convert.Context) []string {
	return []string{"langchain"}
}
