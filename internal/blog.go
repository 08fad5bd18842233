package internal

import (
	"context"
	"encoding/json"
	"fmt"
)

// BlogPublisher turns recipe metaobjects into blog articles. An article is
// derived content: one metaobject maps to at most one article (matched by
// handle) and the body is regenerated from the metaobject on every run.
type BlogPublisher struct {
	client     *ShopifyClient
	metaobject *MetaobjectManager
	verbose    bool
}

// NewBlogPublisher creates a publisher on top of the GraphQL client.
func NewBlogPublisher(client *ShopifyClient, metaobjects *MetaobjectManager, verbose bool) *BlogPublisher {
	return &BlogPublisher{client: client, metaobject: metaobjects, verbose: verbose}
}

const blogArticlesQuery = `
query($blogId: ID!, $cursor: String) {
  blog(id: $blogId) {
    articles(first: 50, after: $cursor) {
      edges {
        node { id handle title }
      }
      pageInfo { hasNextPage endCursor }
    }
  }
}`

const articleCreateMutation = `
mutation CreateArticle($article: ArticleCreateInput!) {
  articleCreate(article: $article) {
    article { id handle }
    userErrors { field message code }
  }
}`

const articleUpdateMutation = `
mutation UpdateArticle($id: ID!, $article: ArticleUpdateInput!) {
  articleUpdate(id: $id, article: $article) {
    article { id handle }
    userErrors { field message code }
  }
}`

// article is the subset of blog article data the publisher tracks.
type article struct {
	ID     string `json:"id"`
	Handle string `json:"handle"`
	Title  string `json:"title"`
}

// existingArticles maps article handle to ID for one blog.
func (p *BlogPublisher) existingArticles(ctx context.Context, blogID string) (map[string]string, error) {
	existing := make(map[string]string)
	err := p.client.Paginate(ctx, blogArticlesQuery, map[string]any{"blogId": blogID},
		func(data json.RawMessage) (PageInfo, error) {
			var result struct {
				Blog struct {
					Articles struct {
						Edges []struct {
							Node article `json:"node"`
						} `json:"edges"`
						PageInfo PageInfo `json:"pageInfo"`
					} `json:"articles"`
				} `json:"blog"`
			}
			if err := json.Unmarshal(data, &result); err != nil {
				return PageInfo{}, fmt.Errorf("decoding articles page: %w", err)
			}
			for _, edge := range result.Blog.Articles.Edges {
				existing[edge.Node.Handle] = edge.Node.ID
			}
			return result.Blog.Articles.PageInfo, nil
		})
	if err != nil {
		return nil, err
	}
	return existing, nil
}

// PublishRecipe creates or updates the article for one recipe metaobject
// and returns the article ID.
func (p *BlogPublisher) PublishRecipe(ctx context.Context, blogID string, metaobject *Metaobject, existing map[string]string) (string, error) {
	body := BlogHTML(metaobject)
	if body == "" {
		return "", fmt.Errorf("recipe %s has no renderable content", metaobject.Handle)
	}

	if articleID, ok := existing[metaobject.Handle]; ok {
		variables := map[string]any{
			"id": articleID,
			"article": map[string]any{
				"title": metaobject.Title(),
				"body":  body,
			},
		}
		data, err := p.client.Query(ctx, articleUpdateMutation, variables)
		if err != nil {
			return "", err
		}
		var result struct {
			ArticleUpdate struct {
				Article    *article    `json:"article"`
				UserErrors []UserError `json:"userErrors"`
			} `json:"articleUpdate"`
		}
		if err := json.Unmarshal(data, &result); err != nil {
			return "", fmt.Errorf("decoding articleUpdate response: %w", err)
		}
		if err := checkUserErrors("articleUpdate", result.ArticleUpdate.UserErrors); err != nil {
			return "", err
		}
		return articleID, nil
	}

	variables := map[string]any{
		"article": map[string]any{
			"blogId":      blogID,
			"title":       metaobject.Title(),
			"handle":      metaobject.Handle,
			"body":        body,
			"isPublished": true,
		},
	}
	data, err := p.client.Query(ctx, articleCreateMutation, variables)
	if err != nil {
		return "", err
	}
	var result struct {
		ArticleCreate struct {
			Article    *article    `json:"article"`
			UserErrors []UserError `json:"userErrors"`
		} `json:"articleCreate"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return "", fmt.Errorf("decoding articleCreate response: %w", err)
	}
	if err := checkUserErrors("articleCreate", result.ArticleCreate.UserErrors); err != nil {
		return "", err
	}
	if result.ArticleCreate.Article == nil {
		return "", fmt.Errorf("articleCreate returned no article")
	}
	return result.ArticleCreate.Article.ID, nil
}

// PublishAll renders every recipe metaobject into the given blog. Failures
// are isolated per recipe: one broken recipe is reported and skipped, the
// rest still publish.
func (p *BlogPublisher) PublishAll(ctx context.Context, blogID string, ui UIManager) error {
	recipes, err := p.metaobject.List(ctx)
	if err != nil {
		return fmt.Errorf("listing recipe metaobjects: %w", err)
	}
	if len(recipes) == 0 {
		ui.Println("No recipe metaobjects found; run recipes.publish first.")
		return nil
	}

	existing, err := p.existingArticles(ctx, blogID)
	if err != nil {
		return fmt.Errorf("listing existing articles: %w", err)
	}

	var failed []string
	for i := range recipes {
		recipe := &recipes[i]
		articleID, err := p.PublishRecipe(ctx, blogID, recipe, existing)
		if err != nil {
			ui.Printf("Skipping %s: %v\n", recipe.Handle, err)
			failed = append(failed, recipe.Handle)
			continue
		}
		ui.Printf("Published article for %s (id=%s)\n", recipe.Title(), articleID)
	}

	if len(failed) > 0 {
		ui.Printf("Failed to publish %d of %d recipes\n", len(failed), len(recipes))
	}
	return nil
}
