package expansion

import (
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	rust "github.com/smacker/go-tree-sitter/rust"
)

const (
	lineCommentNodeType      = "line_comment"
	blockCommentNodeType     = "block_comment"
	attributeItemNodeType    = "attribute_item"
	innerAttributeNodeType   = "inner_attribute_item"
	modItemNodeType          = "mod_item"
	macroDefinitionNodeType  = "macro_definition"
	macroInvocationNodeType  = "macro_invocation"
	nameFieldName            = "name"
	bodyFieldName            = "body"
	macroFieldName           = "macro"
	pathSegmentSeparator     = "::"
	unparsableSourceMessage  = "expanded source did not parse"
	itemRenderSeparator      = "\n"
	spaceCharacter           = ' '
	tabCharacter             = '\t'
	newlineCharacter         = '\n'
)

// namedItemNodeTypes are the top-level declaration forms that carry a name
// field and participate in item selection.
var namedItemNodeTypes = map[string]struct{}{
	"function_item":          {},
	"struct_item":            {},
	"enum_item":              {},
	"union_item":             {},
	"trait_item":             {},
	"type_item":              {},
	"const_item":             {},
	"static_item":            {},
	macroDefinitionNodeType:  {},
	modItemNodeType:          {},
}

type span struct {
	start uint32
	end   uint32
}

// Item is one named declaration found in the expanded source together with
// the chain of enclosing module names, outermost first.
type Item struct {
	SimpleName string
	MacroForm  bool
	ModulePath []string
	extent     span
}

// File is the parsed representation of one expanded compilation unit. It is
// owned by the filter stage: collected spans reference the original content
// and are discarded after rendering.
type File struct {
	content  []byte
	items    []Item
	comments []span
}

// ParseFile parses expanded Rust source. An unparsable input returns an
// error so the caller can degrade to the raw text.
func ParseFile(content []byte) (*File, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(rust.GetLanguage())
	tree := parser.Parse(nil, content)
	if tree == nil || tree.RootNode() == nil || tree.RootNode().HasError() {
		return nil, fmt.Errorf(unparsableSourceMessage)
	}

	file := &File{content: content}
	file.collectComments(tree.RootNode())
	file.collectItems(tree.RootNode(), nil)
	return file, nil
}

// Items returns the named declarations in source order.
func (file *File) Items() []Item {
	return file.items
}

// collectComments records the extent of every comment in the tree. The
// compiler re-attaches comments at positions the original author never chose,
// so sanitization removes them all. Extents grow to swallow the indentation
// before a comment and, for comments on their own line, the trailing newline.
func (file *File) collectComments(node *sitter.Node) {
	if node == nil {
		return
	}
	nodeType := node.Type()
	if nodeType == lineCommentNodeType || nodeType == blockCommentNodeType {
		file.comments = append(file.comments, file.expandCommentExtent(span{start: node.StartByte(), end: node.EndByte()}))
		return
	}
	childCount := int(node.NamedChildCount())
	for childIndex := 0; childIndex < childCount; childIndex++ {
		file.collectComments(node.NamedChild(childIndex))
	}
}

func (file *File) expandCommentExtent(extent span) span {
	start := extent.start
	for start > 0 && (file.content[start-1] == spaceCharacter || file.content[start-1] == tabCharacter) {
		start--
	}
	end := extent.end
	ownLine := start == 0 || file.content[start-1] == newlineCharacter
	if ownLine && end < uint32(len(file.content)) && file.content[end] == newlineCharacter {
		end++
	}
	return span{start: start, end: end}
}

// collectItems walks one container level, associating contiguous preceding
// outer attributes with the item they decorate and recursing into module
// bodies with the module-name chain as an accumulator.
func (file *File) collectItems(container *sitter.Node, modulePath []string) {
	if container == nil {
		return
	}
	pendingAttributeStart := uint32(0)
	pendingAttribute := false

	childCount := int(container.NamedChildCount())
	for childIndex := 0; childIndex < childCount; childIndex++ {
		child := container.NamedChild(childIndex)
		childType := child.Type()

		switch childType {
		case lineCommentNodeType, blockCommentNodeType, innerAttributeNodeType:
			continue
		case attributeItemNodeType:
			if !pendingAttribute {
				pendingAttribute = true
				pendingAttributeStart = child.StartByte()
			}
			continue
		}

		extent := span{start: child.StartByte(), end: child.EndByte()}
		if pendingAttribute {
			extent.start = pendingAttributeStart
			pendingAttribute = false
		}

		if childType == macroInvocationNodeType {
			file.appendMacroInvocation(child, extent, modulePath)
			continue
		}

		if _, named := namedItemNodeTypes[childType]; !named {
			continue
		}
		nameNode := child.ChildByFieldName(nameFieldName)
		if nameNode == nil {
			continue
		}
		simpleName := string(file.content[nameNode.StartByte():nameNode.EndByte()])
		file.items = append(file.items, Item{
			SimpleName: simpleName,
			MacroForm:  childType == macroDefinitionNodeType,
			ModulePath: append([]string(nil), modulePath...),
			extent:     extent,
		})

		if childType == modItemNodeType {
			file.collectItems(child.ChildByFieldName(bodyFieldName), append(modulePath, simpleName))
		}
	}
}

func (file *File) appendMacroInvocation(node *sitter.Node, extent span, modulePath []string) {
	macroNode := node.ChildByFieldName(macroFieldName)
	if macroNode == nil {
		return
	}
	macroPath := string(file.content[macroNode.StartByte():macroNode.EndByte()])
	segments := strings.Split(macroPath, pathSegmentSeparator)
	file.items = append(file.items, Item{
		SimpleName: segments[len(segments)-1],
		MacroForm:  true,
		ModulePath: append([]string(nil), modulePath...),
		extent:     extent,
	})
}

// RenderSanitized serializes the whole file with every comment removed and
// all other tokens untouched.
func (file *File) RenderSanitized() string {
	return file.renderSpan(span{start: 0, end: uint32(len(file.content))})
}

// RenderItems serializes only the given items, sanitized, in their original
// relative order. Items nested inside an already rendered item are skipped
// so a module and its children never render twice.
func (file *File) RenderItems(items []Item) string {
	var builder strings.Builder
	renderedEnd := uint32(0)
	for _, item := range items {
		if item.extent.start < renderedEnd {
			continue
		}
		builder.WriteString(file.renderSpan(item.extent))
		builder.WriteString(itemRenderSeparator)
		renderedEnd = item.extent.end
	}
	return builder.String()
}

// renderSpan copies one byte range of the content, skipping comment extents.
func (file *File) renderSpan(extent span) string {
	var builder strings.Builder
	cursor := extent.start
	for _, comment := range file.comments {
		if comment.end <= extent.start || comment.start >= extent.end {
			continue
		}
		if comment.start > cursor {
			builder.Write(file.content[cursor:comment.start])
		}
		if comment.end > cursor {
			cursor = comment.end
		}
	}
	if cursor < extent.end {
		builder.Write(file.content[cursor:extent.end])
	}
	return builder.String()
}
