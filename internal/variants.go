package internal

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// VariantOrder is the explicit display order for known sizes. Variants
// whose Size option isn't listed keep their current position.
var VariantOrder = map[string]int{
	"Pouch":      1,
	"Small Jar":  2,
	"Large Jar":  3,
	"Small Bulk": 4,
	"Large Bulk": 5,
}

// Variant is one product variant as fetched from Shopify.
type Variant struct {
	ID    string
	Title string
	Price string
	Size  string
}

// Product is a product with the variants the updater manages.
type Product struct {
	ID       string
	Title    string
	Variants []Variant
}

// VariantUpdater reorders product variants and syncs their metafields
// (quantity and price-per-piece) from parsed spreadsheet rows. Both
// operations are idempotent: unchanged inputs produce the same mutations
// Shopify already reflects, and nothing matches means nothing is sent.
type VariantUpdater struct {
	client  *ShopifyClient
	rows    []ProductRow
	verbose bool
}

// NewVariantUpdater creates an updater; rows may be nil, in which case the
// metafield step is skipped.
func NewVariantUpdater(client *ShopifyClient, rows []ProductRow, verbose bool) *VariantUpdater {
	return &VariantUpdater{client: client, rows: rows, verbose: verbose}
}

const productsQuery = `
query($cursor: String) {
  products(first: 50, after: $cursor) {
    edges {
      node {
        id
        title
        variants(first: 50) {
          nodes {
            id
            title
            price
            selectedOptions { name value }
          }
        }
      }
    }
    pageInfo { hasNextPage endCursor }
  }
}`

const variantsReorderMutation = `
mutation ReorderVariants($productId: ID!, $positions: [ProductVariantPositionInput!]!) {
  productVariantsBulkReorder(productId: $productId, positions: $positions) {
    product { id }
    userErrors { code field message }
  }
}`

const variantUpdateMutation = `
mutation UpdateVariant($input: ProductVariantInput!) {
  productVariantUpdate(input: $input) {
    productVariant { id }
    userErrors { message field }
  }
}`

// FetchProducts walks every product in the shop with its variants.
func (v *VariantUpdater) FetchProducts(ctx context.Context) ([]Product, error) {
	var products []Product
	err := v.client.Paginate(ctx, productsQuery, nil, func(data json.RawMessage) (PageInfo, error) {
		var result struct {
			Products struct {
				Edges []struct {
					Node struct {
						ID       string `json:"id"`
						Title    string `json:"title"`
						Variants struct {
							Nodes []struct {
								ID              string `json:"id"`
								Title           string `json:"title"`
								Price           string `json:"price"`
								SelectedOptions []struct {
									Name  string `json:"name"`
									Value string `json:"value"`
								} `json:"selectedOptions"`
							} `json:"nodes"`
						} `json:"variants"`
					} `json:"node"`
				} `json:"edges"`
				PageInfo PageInfo `json:"pageInfo"`
			} `json:"products"`
		}
		if err := json.Unmarshal(data, &result); err != nil {
			return PageInfo{}, fmt.Errorf("decoding products page: %w", err)
		}
		for _, edge := range result.Products.Edges {
			product := Product{ID: edge.Node.ID, Title: edge.Node.Title}
			for _, node := range edge.Node.Variants.Nodes {
				variant := Variant{ID: node.ID, Title: node.Title, Price: node.Price}
				for _, option := range node.SelectedOptions {
					if option.Name == "Size" || option.Name == "Option1" {
						variant.Size = option.Value
					}
				}
				if variant.Size == "" {
					variant.Size = node.Title
				}
				product.Variants = append(product.Variants, variant)
			}
			products = append(products, product)
		}
		return result.Products.PageInfo, nil
	})
	if err != nil {
		return nil, err
	}
	return products, nil
}

// TargetPositions computes the reorder payload for a product's variants:
// known sizes get their explicit position, everything else is left out.
// An empty result means the mutation is skipped entirely.
func TargetPositions(variants []Variant) []map[string]any {
	var positions []map[string]any
	for _, variant := range variants {
		if pos, ok := VariantOrder[variant.Size]; ok {
			positions = append(positions, map[string]any{"id": variant.ID, "position": pos})
		}
	}
	sort.Slice(positions, func(i, j int) bool {
		return positions[i]["position"].(int) < positions[j]["position"].(int)
	})
	return positions
}

// UpdatePositions issues the reorder mutation for one product.
func (v *VariantUpdater) UpdatePositions(ctx context.Context, product Product) error {
	positions := TargetPositions(product.Variants)
	if len(positions) == 0 {
		if v.verbose {
			fmt.Printf("No variants matched known sizes for %s\n", product.Title)
		}
		return nil
	}

	variables := map[string]any{"productId": product.ID, "positions": positions}
	data, err := v.client.Query(ctx, variantsReorderMutation, variables)
	if err != nil {
		return err
	}
	var result struct {
		ProductVariantsBulkReorder struct {
			UserErrors []UserError `json:"userErrors"`
		} `json:"productVariantsBulkReorder"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return fmt.Errorf("decoding reorder response: %w", err)
	}
	return checkUserErrors("productVariantsBulkReorder", result.ProductVariantsBulkReorder.UserErrors)
}

// quantityFor finds the spreadsheet quantity for a product title + size.
func (v *VariantUpdater) quantityFor(productTitle, size string) (int, bool) {
	for _, row := range v.rows {
		if row.ProductTitle == productTitle && row.VariantSize == size {
			return row.Quantity, true
		}
	}
	return 0, false
}

// PricePerPiece computes the per-unit price metafield value. quantity 0
// (or a bad price) yields ok=false: the metafield is skipped, never a
// division by zero.
func PricePerPiece(price string, quantity int) (float64, bool) {
	if quantity <= 0 {
		return 0, false
	}
	value, err := strconv.ParseFloat(price, 64)
	if err != nil {
		return 0, false
	}
	return value / float64(quantity), true
}

// UpdateMetafields sets the quantity and price_per_piece metafields for
// one variant. Variants without spreadsheet data are skipped.
func (v *VariantUpdater) UpdateMetafields(ctx context.Context, variant Variant, productTitle string) error {
	if len(v.rows) == 0 {
		return nil
	}

	quantity, ok := v.quantityFor(productTitle, variant.Size)
	if !ok {
		if v.verbose {
			fmt.Printf("No quantity found for %s — %s\n", productTitle, variant.Size)
		}
		return nil
	}

	perPiece, ok := PricePerPiece(variant.Price, quantity)
	if !ok {
		if v.verbose {
			fmt.Printf("Skipping price_per_piece for %s — %s (quantity %d)\n", productTitle, variant.Size, quantity)
		}
		return nil
	}

	money, err := json.Marshal(map[string]any{
		"amount":        perPiece,
		"currency_code": "USD",
	})
	if err != nil {
		return fmt.Errorf("encoding money value: %w", err)
	}

	variables := map[string]any{
		"input": map[string]any{
			"id": variant.ID,
			"metafields": []map[string]any{
				{"namespace": "custom", "key": "quantity", "type": "number_integer", "value": strconv.Itoa(quantity)},
				{"namespace": "custom", "key": "price_per_piece", "type": "money", "value": string(money)},
			},
		},
	}
	data, err := v.client.Query(ctx, variantUpdateMutation, variables)
	if err != nil {
		return err
	}
	var result struct {
		ProductVariantUpdate struct {
			UserErrors []UserError `json:"userErrors"`
		} `json:"productVariantUpdate"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return fmt.Errorf("decoding variant update response: %w", err)
	}
	return checkUserErrors("productVariantUpdate", result.ProductVariantUpdate.UserErrors)
}

// Sync runs the requested operations ("positions", "metafields", or
// "all") across every product. Per-product failures are reported and the
// walk continues.
func (v *VariantUpdater) Sync(ctx context.Context, what string, ui UIManager) error {
	products, err := v.FetchProducts(ctx)
	if err != nil {
		return fmt.Errorf("fetching products: %w", err)
	}

	bar := ui.NewProgressBar(len(products), "Updating variants")
	defer bar.Finish()

	for i, product := range products {
		bar.Set(i)

		if what == "positions" || what == "all" {
			if err := v.UpdatePositions(ctx, product); err != nil {
				ui.Printf("Reorder failed for %s: %v\n", product.Title, err)
			}
		}

		if what == "metafields" || what == "all" {
			for _, variant := range product.Variants {
				if err := v.UpdateMetafields(ctx, variant, product.Title); err != nil {
					ui.Printf("Metafields failed for %s — %s: %v\n", product.Title, variant.Size, err)
				}
			}
		}
	}
	bar.Set(len(products))
	return nil
}
