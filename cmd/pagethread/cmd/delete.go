package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(deleteCmd)
}

var deleteCmd = &cobra.Command{
	Use:   "delete [page-id] [comment-id]",
	Short: "Delete a comment and all of its replies",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		pageID, id := args[0], args[1]
		gw := newGateway(pageID)
		ctx := context.Background()
		if err := gw.LoadThread(ctx); err != nil {
			return err
		}
		before := gw.Tree().Len()
		if err := gw.Delete(ctx, id); err != nil {
			return err
		}
		fmt.Printf("deleted %s (%d comments removed)\n", id, before-gw.Tree().Len())
		return nil
	},
}
