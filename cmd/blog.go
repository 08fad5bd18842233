package cmd

import (
	"github.com/spf13/cobra"

	"github.com/dehy/garnish/internal"
)

// blogPublishCmd represents the blog.publish command
var blogPublishCmd = &cobra.Command{
	Use:   "blog.publish",
	Short: "Create or refresh a blog article for every published recipe",
	Example: `  # Publish articles into the recipes blog
  garnish blog.publish --blog-id gid://shopify/Blog/12345`,
	RunE: func(cmd *cobra.Command, args []string) error {
		blogID, _ := cmd.Flags().GetString("blog-id")

		app := internal.NewApp(config)
		return app.PublishBlog(cmd.Context(), blogID)
	},
}

func init() {
	blogPublishCmd.Flags().String("blog-id", "", "blog GID to publish articles into (required)")
	_ = blogPublishCmd.MarkFlagRequired("blog-id")

	rootCmd.AddCommand(blogPublishCmd)
}
