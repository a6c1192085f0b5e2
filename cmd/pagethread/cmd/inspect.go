package cmd

import (
	"fmt"
	"log"
	"strings"

	"github.com/cockroachdb/pebble"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(inspectCmd)
}

var inspectCmd = &cobra.Command{
	Use:   "inspect [database-path]",
	Short: "Inspect a pagethread database's keys offline",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		inspectDatabase(args[0])
	},
}

func inspectDatabase(dbPath string) {
	db, err := pebble.Open(dbPath, &pebble.Options{ReadOnly: true})
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	iter, _ := db.NewIter(nil)
	defer iter.Close()

	count := 0
	commentKeys := 0
	indexKeys := 0
	latestKeys := 0
	pageKeys := 0
	otherKeys := 0

	fmt.Println("Inspecting database keys:")
	fmt.Println("=====================================")

	for iter.First(); iter.Valid(); iter.Next() {
		key := string(iter.Key())
		count++

		switch {
		case strings.HasPrefix(key, "page:"):
			commentKeys++
			if commentKeys <= 5 {
				fmt.Printf("Comment key %d: %s\n", commentKeys, key)
			}
		case strings.HasPrefix(key, "byid:comment:"):
			indexKeys++
			if indexKeys <= 5 {
				fmt.Printf("Index key %d: %s\n", indexKeys, key)
			}
		case strings.HasPrefix(key, "latest:comment:"):
			latestKeys++
			if latestKeys <= 5 {
				fmt.Printf("Latest key %d: %s\n", latestKeys, key)
			}
		case strings.HasPrefix(key, "page-meta:"):
			pageKeys++
			if pageKeys <= 5 {
				fmt.Printf("Page key %d: %s\n", pageKeys, key)
			}
		default:
			otherKeys++
			if otherKeys <= 5 {
				fmt.Printf("Other key %d: %s\n", otherKeys, key)
			}
		}
	}

	fmt.Printf("\nKey Summary:\n")
	fmt.Printf("  Total keys: %d\n", count)
	fmt.Printf("  Comment keys: %d\n", commentKeys)
	fmt.Printf("  Id index keys: %d\n", indexKeys)
	fmt.Printf("  Latest keys: %d\n", latestKeys)
	fmt.Printf("  Page keys: %d\n", pageKeys)
	fmt.Printf("  Other keys: %d\n", otherKeys)
}
