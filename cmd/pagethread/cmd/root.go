package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"pagethread/pkg/client"
	"pagethread/pkg/mutate"
	"pagethread/pkg/thread"
)

var (
	version = "dev"
	commit  = "unknown"
)

var (
	serverURL  string
	apiKey     string
	userID     string
	userName   string
	signingKey string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "pagethread",
	Short: "pagethread CLI for viewing and mutating page comment threads",
	Long: `pagethread CLI talks to a running pagethreadd and lets you view a
page's comment thread and post, edit or delete comments from the
terminal.`,
	Version: fmt.Sprintf("%s (commit: %s)", version, commit),
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	// Disable completion command
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&serverURL, "server", envOr("PAGETHREAD_SERVER", "http://localhost:8080"), "base URL of the storage service")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", os.Getenv("PAGETHREAD_API_KEY"), "API key")
	rootCmd.PersistentFlags().StringVar(&userID, "user", os.Getenv("PAGETHREAD_USER"), "acting user id")
	rootCmd.PersistentFlags().StringVar(&userName, "name", os.Getenv("PAGETHREAD_USER_NAME"), "acting user display name")
	rootCmd.PersistentFlags().StringVar(&signingKey, "signing-key", os.Getenv("PAGETHREAD_SIGNING_KEY"), "key for signing the user id (frontend keys require it)")
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func newClient() *client.Client {
	return client.New(client.Config{
		BaseURL:    serverURL,
		APIKey:     apiKey,
		UserID:     userID,
		UserName:   userName,
		SigningKey: signingKey,
	})
}

// newGateway builds a gateway over a fresh tree for pageID. Callers load
// the thread themselves when they need the current forest.
func newGateway(pageID string) *mutate.Gateway {
	actor := mutate.Actor{UserID: userID, DisplayName: userName}
	return mutate.NewGateway(pageID, thread.New(), newClient(), actor)
}
