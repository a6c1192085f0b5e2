package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"pagethread/pkg/compose"
)

var (
	postReplyTo string
	postBody    string
)

func init() {
	postCmd.Flags().StringVar(&postReplyTo, "reply-to", "", "parent comment id (omit for a top-level comment)")
	postCmd.Flags().StringVarP(&postBody, "body", "b", "", "comment body")
	_ = postCmd.MarkFlagRequired("body")
	rootCmd.AddCommand(postCmd)
}

var postCmd = &cobra.Command{
	Use:   "post [page-id]",
	Short: "Post a comment or reply on a page",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pageID := args[0]
		gw := newGateway(pageID)
		ctx := context.Background()
		if err := gw.LoadThread(ctx); err != nil {
			return err
		}

		co := compose.NewCoordinator(gw)
		if err := co.StartReply(postReplyTo); err != nil {
			return err
		}
		co.UpdateDraft(postBody)
		created, err := co.Submit(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("posted %s\n", created.ID)
		return nil
	},
}
