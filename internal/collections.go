package internal

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// CollectionManager creates and extends Shopify collections.
type CollectionManager struct {
	client  *ShopifyClient
	verbose bool
}

// NewCollectionManager creates a manager on top of the GraphQL client.
func NewCollectionManager(client *ShopifyClient, verbose bool) *CollectionManager {
	return &CollectionManager{client: client, verbose: verbose}
}

const collectionByHandleQuery = `
query getCollectionByHandle($handle: String!) {
  collectionByHandle(handle: $handle) {
    id
    title
    products(first: 50, sortKey: BEST_SELLING) {
      edges { node { id title } }
    }
  }
}`

const collectionAddProductsMutation = `
mutation collectionAddProducts($id: ID!, $productIds: [ID!]!) {
  collectionAddProducts(id: $id, productIds: $productIds) {
    collection { id title }
    userErrors { field message }
  }
}`

const collectionCreateMutation = `
mutation CollectionCreate($input: CollectionInput!) {
  collectionCreate(input: $input) {
    collection { id title handle }
    userErrors { field message }
  }
}`

// Collection is the subset of collection data the manager tracks.
type Collection struct {
	ID         string
	Title      string
	ProductIDs []string
}

// GetByHandle fetches a collection and its current products, returning
// (nil, nil) when none exists.
func (c *CollectionManager) GetByHandle(ctx context.Context, handle string) (*Collection, error) {
	data, err := c.client.Query(ctx, collectionByHandleQuery, map[string]any{"handle": handle})
	if err != nil {
		return nil, err
	}

	var result struct {
		CollectionByHandle *struct {
			ID       string `json:"id"`
			Title    string `json:"title"`
			Products struct {
				Edges []struct {
					Node struct {
						ID string `json:"id"`
					} `json:"node"`
				} `json:"edges"`
			} `json:"products"`
		} `json:"collectionByHandle"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("decoding collection response: %w", err)
	}
	if result.CollectionByHandle == nil {
		return nil, nil
	}

	collection := &Collection{
		ID:    result.CollectionByHandle.ID,
		Title: result.CollectionByHandle.Title,
	}
	for _, edge := range result.CollectionByHandle.Products.Edges {
		collection.ProductIDs = append(collection.ProductIDs, edge.Node.ID)
	}
	return collection, nil
}

// CollectionHandle derives the handle Shopify uses for a collection title.
func CollectionHandle(title string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(title)), " ", "-")
}

// UpdateOrCreate ensures a collection with the given title exists and
// contains productIDs. Products already attached are not re-added; a
// collection with nothing new to add is left untouched.
func (c *CollectionManager) UpdateOrCreate(ctx context.Context, title string, productIDs []string) (string, error) {
	handle := CollectionHandle(title)
	collection, err := c.GetByHandle(ctx, handle)
	if err != nil {
		return "", err
	}

	if collection != nil {
		existing := make(map[string]bool, len(collection.ProductIDs))
		for _, id := range collection.ProductIDs {
			existing[id] = true
		}
		var newIDs []string
		for _, id := range productIDs {
			if !existing[id] {
				newIDs = append(newIDs, id)
			}
		}
		if len(newIDs) == 0 {
			if c.verbose {
				fmt.Printf("No new products for collection %q\n", title)
			}
			return collection.ID, nil
		}

		variables := map[string]any{"id": collection.ID, "productIds": newIDs}
		data, err := c.client.Query(ctx, collectionAddProductsMutation, variables)
		if err != nil {
			return "", err
		}
		var result struct {
			CollectionAddProducts struct {
				Collection *struct {
					ID string `json:"id"`
				} `json:"collection"`
				UserErrors []UserError `json:"userErrors"`
			} `json:"collectionAddProducts"`
		}
		if err := json.Unmarshal(data, &result); err != nil {
			return "", fmt.Errorf("decoding collectionAddProducts response: %w", err)
		}
		if err := checkUserErrors("collectionAddProducts", result.CollectionAddProducts.UserErrors); err != nil {
			return "", err
		}
		return collection.ID, nil
	}

	variables := map[string]any{
		"input": map[string]any{"handle": handle, "title": title, "products": productIDs},
	}
	data, err := c.client.Query(ctx, collectionCreateMutation, variables)
	if err != nil {
		return "", err
	}
	var result struct {
		CollectionCreate struct {
			Collection *struct {
				ID string `json:"id"`
			} `json:"collection"`
			UserErrors []UserError `json:"userErrors"`
		} `json:"collectionCreate"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return "", fmt.Errorf("decoding collectionCreate response: %w", err)
	}
	if err := checkUserErrors("collectionCreate", result.CollectionCreate.UserErrors); err != nil {
		return "", err
	}
	if result.CollectionCreate.Collection == nil {
		return "", fmt.Errorf("collectionCreate returned no collection")
	}
	return result.CollectionCreate.Collection.ID, nil
}
