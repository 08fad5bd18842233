package internal

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"strings"
)

// MetaobjectType is the schema-defined type recipes are stored under.
const MetaobjectType = "recipes"

// MetaobjectField is one key/value entry of a metaobject.
type MetaobjectField struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Metaobject is the Shopify-side record of one recipe.
type Metaobject struct {
	ID     string            `json:"id"`
	Handle string            `json:"handle"`
	Fields []MetaobjectField `json:"fields"`
}

// Field returns the value for key, or "" when absent.
func (m *Metaobject) Field(key string) string {
	for _, f := range m.Fields {
		if f.Key == key {
			return f.Value
		}
	}
	return ""
}

// Title returns the stored title, falling back to a humanized handle.
func (m *Metaobject) Title() string {
	if title := m.Field("title"); title != "" {
		return title
	}
	return TitleCase(m.Handle)
}

// MetaobjectManager upserts recipe metaobjects and renders their fields
// into blog HTML. Identity is the sanitized title (the handle): upsert by
// handle means re-running a publish never duplicates a recipe. The
// lookup-then-write is not atomic; concurrent runs for the same handle can
// double-create, which is acceptable for a single-operator batch tool.
type MetaobjectManager struct {
	client  *ShopifyClient
	verbose bool
}

// NewMetaobjectManager creates a manager on top of the GraphQL client.
func NewMetaobjectManager(client *ShopifyClient, verbose bool) *MetaobjectManager {
	return &MetaobjectManager{client: client, verbose: verbose}
}

const metaobjectUpsertMutation = `
mutation UpsertMetaobject($handle: MetaobjectHandleInput!, $metaobject: MetaobjectUpsertInput!) {
  metaobjectUpsert(handle: $handle, metaobject: $metaobject) {
    metaobject {
      id
      handle
      fields { key value }
    }
    userErrors { field message code }
  }
}`

const metaobjectByHandleQuery = `
query($handle: MetaobjectHandleInput!) {
  metaobjectByHandle(handle: $handle) {
    id
    handle
    fields { key value }
  }
}`

const metaobjectsByTypeQuery = `
query($type: String!, $cursor: String) {
  metaobjects(type: $type, first: 50, after: $cursor) {
    edges {
      node {
        id
        handle
        fields { key value }
      }
    }
    pageInfo { hasNextPage endCursor }
  }
}`

// UpsertOptions carries the optional capabilities attached on upsert.
type UpsertOptions struct {
	TemplateSuffix string
	Publish        bool
}

// RecipeCapabilities are the capabilities recipes are published with.
func RecipeCapabilities() UpsertOptions {
	return UpsertOptions{TemplateSuffix: "recipes-template", Publish: true}
}

// Upsert creates or updates the metaobject identified by handle and
// returns its ID. Fields present on the object but absent from fields are
// left untouched by Shopify, so partial updates (like adding video_url
// later) are safe.
func (m *MetaobjectManager) Upsert(ctx context.Context, handle string, fields []MetaobjectField, opts UpsertOptions) (string, error) {
	metaobject := map[string]any{"fields": fields}
	capabilities := map[string]any{}
	if opts.TemplateSuffix != "" {
		capabilities["onlineStore"] = map[string]any{"templateSuffix": opts.TemplateSuffix}
	}
	if opts.Publish {
		capabilities["publishable"] = map[string]any{"status": "ACTIVE"}
	}
	if len(capabilities) > 0 {
		metaobject["capabilities"] = capabilities
	}

	variables := map[string]any{
		"handle":     map[string]any{"type": MetaobjectType, "handle": handle},
		"metaobject": metaobject,
	}

	data, err := m.client.Query(ctx, metaobjectUpsertMutation, variables)
	if err != nil {
		return "", err
	}

	var result struct {
		MetaobjectUpsert struct {
			Metaobject *Metaobject `json:"metaobject"`
			UserErrors []UserError `json:"userErrors"`
		} `json:"metaobjectUpsert"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return "", fmt.Errorf("decoding upsert response: %w", err)
	}
	if err := checkUserErrors("metaobjectUpsert", result.MetaobjectUpsert.UserErrors); err != nil {
		return "", err
	}
	if result.MetaobjectUpsert.Metaobject == nil {
		return "", fmt.Errorf("metaobjectUpsert returned no metaobject")
	}
	return result.MetaobjectUpsert.Metaobject.ID, nil
}

// GetByHandle fetches a metaobject, returning (nil, nil) when none exists.
func (m *MetaobjectManager) GetByHandle(ctx context.Context, handle string) (*Metaobject, error) {
	variables := map[string]any{
		"handle": map[string]any{"type": MetaobjectType, "handle": handle},
	}
	data, err := m.client.Query(ctx, metaobjectByHandleQuery, variables)
	if err != nil {
		return nil, err
	}

	var result struct {
		MetaobjectByHandle *Metaobject `json:"metaobjectByHandle"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("decoding metaobject response: %w", err)
	}
	return result.MetaobjectByHandle, nil
}

// List walks every metaobject of the recipes type.
func (m *MetaobjectManager) List(ctx context.Context) ([]Metaobject, error) {
	var all []Metaobject
	err := m.client.Paginate(ctx, metaobjectsByTypeQuery, map[string]any{"type": MetaobjectType},
		func(data json.RawMessage) (PageInfo, error) {
			var result struct {
				Metaobjects struct {
					Edges []struct {
						Node Metaobject `json:"node"`
					} `json:"edges"`
					PageInfo PageInfo `json:"pageInfo"`
				} `json:"metaobjects"`
			}
			if err := json.Unmarshal(data, &result); err != nil {
				return PageInfo{}, fmt.Errorf("decoding metaobjects page: %w", err)
			}
			for _, edge := range result.Metaobjects.Edges {
				all = append(all, edge.Node)
			}
			return result.Metaobjects.PageInfo, nil
		})
	if err != nil {
		return nil, err
	}
	return all, nil
}

// BlogHTML renders a metaobject's content fields into the article body.
// Known keys map to fixed templates; missing or malformed fields are
// skipped so a sparse recipe still produces a valid page.
func BlogHTML(metaobject *Metaobject) string {
	var sb strings.Builder

	if history := metaobject.Field("cocktail_history"); history != "" {
		sb.WriteString("<h4>Cocktail History</h4><p>")
		sb.WriteString(html.EscapeString(history))
		sb.WriteString("</p>\n")
	}

	if intro := metaobject.Field("intro"); intro != "" {
		sb.WriteString("<p>")
		sb.WriteString(html.EscapeString(intro))
		sb.WriteString("</p>\n")
	}

	if ingredients := metaobject.Field("ingredients"); ingredients != "" {
		if list, err := RichTextListHTML(ingredients); err == nil {
			sb.WriteString("<h4>Ingredients</h4>")
			sb.WriteString(list)
		}
	}

	if instructions := metaobject.Field("instructions"); instructions != "" {
		if list, err := RichTextListHTML(instructions); err == nil {
			sb.WriteString("<h4>Instructions</h4>")
			sb.WriteString(list)
		}
	}

	return sb.String()
}

// VideoDescription flattens a metaobject's content fields into the plain
// text used as a YouTube description.
func VideoDescription(metaobject *Metaobject) string {
	var sections []string

	if history := strings.TrimSpace(metaobject.Field("cocktail_history")); history != "" {
		sections = append(sections, history)
	}
	if intro := strings.TrimSpace(metaobject.Field("intro")); intro != "" {
		sections = append(sections, intro)
	}
	if ingredients := RichTextListPlain(metaobject.Field("ingredients")); ingredients != "" {
		sections = append(sections, "Ingredients:\n"+ingredients)
	}
	if instructions := RichTextListPlain(metaobject.Field("instructions")); instructions != "" {
		sections = append(sections, "Instructions:\n"+instructions)
	}

	return strings.Join(sections, "\n\n")
}

// RecipeMarkdown renders a metaobject's content fields as markdown for
// terminal preview.
func RecipeMarkdown(metaobject *Metaobject) string {
	var sb strings.Builder
	sb.WriteString("# " + metaobject.Title() + "\n\n")

	if history := strings.TrimSpace(metaobject.Field("cocktail_history")); history != "" {
		sb.WriteString("## Cocktail History\n\n" + history + "\n\n")
	}
	if intro := strings.TrimSpace(metaobject.Field("intro")); intro != "" {
		sb.WriteString(intro + "\n\n")
	}
	if ingredients := RichTextListPlain(metaobject.Field("ingredients")); ingredients != "" {
		sb.WriteString("## Ingredients\n\n" + strings.ReplaceAll(ingredients, "• ", "- ") + "\n\n")
	}
	if instructions := RichTextListPlain(metaobject.Field("instructions")); instructions != "" {
		sb.WriteString("## Instructions\n\n" + instructions + "\n")
	}
	return sb.String()
}
