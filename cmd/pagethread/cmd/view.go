package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"pagethread/pkg/render"
	"pagethread/pkg/view"
)

var collapseIDs []string

func init() {
	viewCmd.Flags().StringSliceVar(&collapseIDs, "collapse", nil, "comment ids to collapse in the output")
	rootCmd.AddCommand(viewCmd)
}

var viewCmd = &cobra.Command{
	Use:   "view [page-id]",
	Short: "Render a page's comment thread",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pageID := args[0]
		gw := newGateway(pageID)
		if err := gw.LoadThread(context.Background()); err != nil {
			return err
		}

		state := view.NewState()
		for _, id := range collapseIDs {
			state.ToggleCollapsed(id)
		}

		viewer := render.Viewer{UserID: userID, CanComment: userID != ""}
		r := render.New(gw.Tree(), state, viewer)
		nodes := r.Render()

		fmt.Printf("%s - %d comments\n", pageID, r.CommentCount())
		for _, n := range nodes {
			printNode(n, 0)
		}
		return nil
	},
}

func printNode(n render.DisplayNode, depth int) {
	indent := strings.Repeat("  ", depth)
	ts := time.Unix(0, n.Comment.CreatedTS).Format("2006-01-02 15:04")
	name := n.Comment.AuthorName
	if name == "" {
		name = n.Comment.Author
	}
	edited := ""
	if n.Comment.EditedTS > n.Comment.CreatedTS {
		edited = " (edited)"
	}
	fmt.Printf("%s[%s] %s @ %s%s\n", indent, n.Comment.ID, name, ts, edited)
	for _, line := range strings.Split(n.Comment.Body, "\n") {
		fmt.Printf("%s  %s\n", indent, line)
	}
	if len(n.Comment.Attachments) > 0 {
		names := make([]string, 0, len(n.Comment.Attachments))
		for _, a := range n.Comment.Attachments {
			names = append(names, a.Name)
		}
		fmt.Printf("%s  attachments: %s\n", indent, strings.Join(names, ", "))
	}
	if n.Collapsed {
		fmt.Printf("%s  ... %d hidden replies\n", indent, n.HiddenReplies)
		return
	}
	for _, child := range n.Children {
		printNode(child, depth+1)
	}
}
