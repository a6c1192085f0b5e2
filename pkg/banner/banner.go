package banner

import (
	"fmt"
)

const banner = `
██████╗  █████╗  ██████╗ ███████╗████████╗██╗  ██╗██████╗ ███████╗ █████╗ ██████╗
██╔══██╗██╔══██╗██╔════╝ ██╔════╝╚══██╔══╝██║  ██║██╔══██╗██╔════╝██╔══██╗██╔══██╗
██████╔╝███████║██║  ███╗█████╗     ██║   ███████║██████╔╝█████╗  ███████║██║  ██║
██╔═══╝ ██╔══██║██║   ██║██╔══╝     ██║   ██╔══██║██╔══██╗██╔══╝  ██╔══██║██║  ██║
██║     ██║  ██║╚██████╔╝███████╗   ██║   ██║  ██║██║  ██║███████╗██║  ██║██████╔╝
╚═╝     ╚═╝  ╚═╝ ╚═════╝ ╚══════╝   ╚═╝   ╚═╝  ╚═╝╚═╝  ╚═╝╚══════╝╚═╝  ╚═╝╚═════╝
`

// Print prints the startup banner with the effective listen address,
// storage path and build version.
func Print(addr, dbPath, source, version string) {
	fmt.Print(banner)
	fmt.Println("== Config =====================================================")
	fmt.Printf("Listen:   %s\n", addr)
	fmt.Printf("DB Path:  %s\n", dbPath)
	if version != "" {
		fmt.Printf("Version:  %s\n", version)
	}
	if source != "" {
		fmt.Printf("Config sources: %s\n", source)
	}
	fmt.Println("\n== Endpoints ==================================================")
	fmt.Println("GET    /v1/pages/{page}/comments - Fetch a page's comment thread")
	fmt.Println("POST   /v1/pages/{page}/comments - Add a comment (JSON: reply_to, body, attachments)")
	fmt.Println("PUT    /v1/comments/{id}         - Edit a comment body")
	fmt.Println("DELETE /v1/comments/{id}         - Delete a comment and its replies")
	fmt.Println("\n== Examples ===================================================")
	fmt.Printf("curl -X POST 'http://localhost%s/v1/pages/p1/comments' -d '{\"body\": \"hello\"}'\n", addr)
	fmt.Printf("curl 'http://localhost%s/v1/pages/p1/comments'\n", addr)
}
