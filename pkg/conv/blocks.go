// Package conv turns a generation result's plain text into shapes the UI can
// render: structured display blocks and sanitized HTML. It consumes only the
// canonical text and holds no chat state.
package conv

import (
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/ast"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/microcosm-cc/bluemonday"
)

var (
	extensions = parser.CommonExtensions | parser.NoEmptyLineBeforeBlock
	htmlFlags  = html.CommonFlags | html.HrefTargetBlank
	policy     = bluemonday.UGCPolicy()
)

type BlockKind string

const (
	BlockParagraph BlockKind = "paragraph"
	BlockCode      BlockKind = "code"
	BlockList      BlockKind = "list"
)

// Block is one display unit of a response.
type Block struct {
	Kind     BlockKind `json:"kind"`
	Text     string    `json:"text,omitempty"`
	Language string    `json:"language,omitempty"`
	Items    []string  `json:"items,omitempty"`
}

// TextToBlocks splits response text into paragraph, code and list blocks in
// document order. Plain prose comes back as a single paragraph block.
func TextToBlocks(text string) []Block {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	doc := parser.NewWithExtensions(extensions).Parse([]byte(text))

	var blocks []Block
	ast.WalkFunc(doc, func(node ast.Node, entering bool) ast.WalkStatus {
		if !entering {
			return ast.GoToNext
		}
		switch n := node.(type) {
		case *ast.CodeBlock:
			blocks = append(blocks, Block{
				Kind:     BlockCode,
				Language: strings.TrimSpace(string(n.Info)),
				Text:     strings.TrimRight(string(n.Literal), "\n"),
			})
			return ast.SkipChildren
		case *ast.List:
			blocks = append(blocks, Block{
				Kind:  BlockList,
				Items: listItems(n),
			})
			return ast.SkipChildren
		case *ast.Paragraph:
			if _, topLevel := parentOf(node).(*ast.Document); topLevel {
				blocks = append(blocks, Block{
					Kind: BlockParagraph,
					Text: nodeText(node),
				})
			}
			return ast.SkipChildren
		}
		return ast.GoToNext
	})

	return blocks
}

// ToSafeHTML renders response markdown to HTML safe to inject into the page.
func ToSafeHTML(text string) string {
	p := parser.NewWithExtensions(extensions)
	renderer := html.NewRenderer(html.RendererOptions{Flags: htmlFlags})
	unsafe := markdown.Render(p.Parse([]byte(text)), renderer)
	return string(policy.SanitizeBytes(unsafe))
}

func listItems(list *ast.List) []string {
	var items []string
	for _, child := range list.Children {
		if item, ok := child.(*ast.ListItem); ok {
			items = append(items, strings.TrimSpace(nodeText(item)))
		}
	}
	return items
}

func nodeText(node ast.Node) string {
	var sb strings.Builder
	ast.WalkFunc(node, func(n ast.Node, entering bool) ast.WalkStatus {
		if !entering {
			return ast.GoToNext
		}
		if leaf := n.AsLeaf(); leaf != nil {
			sb.Write(leaf.Literal)
		}
		return ast.GoToNext
	})
	return sb.String()
}

func parentOf(node ast.Node) ast.Node {
	if c := node.AsContainer(); c != nil {
		return c.Parent
	}
	if l := node.AsLeaf(); l != nil {
		return l.Parent
	}
	return nil
}
