package internal

import (
	"encoding/json"
	"fmt"
	"html"
	"strings"
)

// richTextNode is Shopify's rich-text field schema: a root node holding
// lists of list-items whose children are text and link nodes.
type richTextNode struct {
	Type     string         `json:"type"`
	Value    string         `json:"value,omitempty"`
	URL      string         `json:"url,omitempty"`
	Title    string         `json:"title,omitempty"`
	ListType string         `json:"listType,omitempty"`
	Children []richTextNode `json:"children,omitempty"`
}

// BuildRichTextList encodes plain strings as a Shopify rich-text list
// field value. listType is "unordered" or "ordered".
func BuildRichTextList(items []string, listType string) (string, error) {
	listItems := make([]richTextNode, 0, len(items))
	for _, item := range items {
		listItems = append(listItems, richTextNode{
			Type:     "list-item",
			Children: []richTextNode{{Type: "text", Value: item}},
		})
	}
	root := richTextNode{
		Type: "root",
		Children: []richTextNode{{
			Type:     "list",
			ListType: listType,
			Children: listItems,
		}},
	}
	encoded, err := json.Marshal(root)
	if err != nil {
		return "", fmt.Errorf("encoding rich text: %w", err)
	}
	return string(encoded), nil
}

// parseRichText decodes a rich-text field value; returns the list node's
// items and list type.
func parseRichText(value string) ([]richTextNode, string, error) {
	var root richTextNode
	if err := json.Unmarshal([]byte(value), &root); err != nil {
		return nil, "", fmt.Errorf("decoding rich text: %w", err)
	}
	if len(root.Children) == 0 {
		return nil, "", nil
	}
	list := root.Children[0]
	listType := list.ListType
	if listType == "" {
		listType = "unordered"
	}
	return list.Children, listType, nil
}

// renderInline flattens a list item's children into one string, passing
// text through escape and link nodes through link.
func renderInline(item richTextNode, escape func(string) string, link func(url, title, text string) string) string {
	var sb strings.Builder
	for _, child := range item.Children {
		switch child.Type {
		case "text":
			sb.WriteString(escape(child.Value))
		case "link":
			var text strings.Builder
			for _, grandchild := range child.Children {
				if grandchild.Type == "text" {
					text.WriteString(grandchild.Value)
				}
			}
			sb.WriteString(link(child.URL, child.Title, text.String()))
		}
	}
	return sb.String()
}

// RichTextListHTML converts a rich-text field value into an HTML list:
// <ul> or <ol> of <li> items with links preserved as anchors.
func RichTextListHTML(value string) (string, error) {
	items, listType, err := parseRichText(value)
	if err != nil {
		return "", err
	}
	tag := "ul"
	if listType == "ordered" {
		tag = "ol"
	}

	var sb strings.Builder
	sb.WriteString("<" + tag + ">\n")
	for _, item := range items {
		sb.WriteString("<li>")
		sb.WriteString(renderInline(item, html.EscapeString, func(url, title, text string) string {
			return fmt.Sprintf(`<a href="%s" title="%s">%s</a>`,
				html.EscapeString(url), html.EscapeString(title), html.EscapeString(text))
		}))
		sb.WriteString("</li>\n")
	}
	sb.WriteString("</" + tag + ">\n")
	return sb.String(), nil
}

// RichTextListPlain converts a rich-text field value into bullet or
// numbered plain-text lines, for YouTube descriptions.
func RichTextListPlain(value string) string {
	items, listType, err := parseRichText(value)
	if err != nil {
		return ""
	}

	var lines []string
	for i, item := range items {
		line := strings.TrimSpace(renderInline(item, func(s string) string { return s }, func(url, title, text string) string {
			if title != "" {
				return title + ": " + text
			}
			return text
		}))
		if line == "" {
			continue
		}
		if listType == "ordered" {
			lines = append(lines, fmt.Sprintf("%d. %s", i+1, line))
		} else {
			lines = append(lines, "• "+line)
		}
	}
	return strings.Join(lines, "\n")
}
