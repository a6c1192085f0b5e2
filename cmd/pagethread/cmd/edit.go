package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var editBody string

func init() {
	editCmd.Flags().StringVarP(&editBody, "body", "b", "", "replacement body")
	_ = editCmd.MarkFlagRequired("body")
	rootCmd.AddCommand(editCmd)
}

var editCmd = &cobra.Command{
	Use:   "edit [page-id] [comment-id]",
	Short: "Rewrite a comment body",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		pageID, id := args[0], args[1]
		gw := newGateway(pageID)
		ctx := context.Background()
		if err := gw.LoadThread(ctx); err != nil {
			return err
		}
		if err := gw.Edit(ctx, id, editBody, ""); err != nil {
			return err
		}
		fmt.Printf("edited %s\n", id)
		return nil
	},
}
