// scripts/gcal-auth/main.go
//
// Run this ONCE locally (outside Docker) to authorize Google Calendar access
// and generate token.json.
//
// Usage:
//   go run scripts/gcal-auth/main.go [credentials.json] [token.json]
//
// It will print a browser URL, you log in with your Google account,
// paste the authorization code, and token.json will be saved.

package main

import (
	"context"
	"fmt"
	stdlog "log"
	"os"

	"personal-assistant/internal/credentials"
	"personal-assistant/pkg/log"
)

func main() {
	credsPath := "google-credentials.json"
	if len(os.Args) > 1 {
		credsPath = os.Args[1]
	}
	tokenPath := "token.json"
	if len(os.Args) > 2 {
		tokenPath = os.Args[2]
	}

	manager, err := credentials.NewManagerFromCredentialsFile(credsPath, tokenPath, log.NewNop())
	if err != nil {
		stdlog.Fatalf("Failed to load credentials file %q: %v\nMake sure it is an OAuth Desktop App credentials file.", credsPath, err)
	}

	authURL := manager.AuthURL("state-token")
	fmt.Println("=================================================================")
	fmt.Println("STEP 1: Open the following URL in a browser and sign in:")
	fmt.Println()
	fmt.Println(authURL)
	fmt.Println()
	fmt.Println("=================================================================")
	fmt.Print("STEP 2: Paste the authorization code here and press Enter: ")

	var code string
	if _, err := fmt.Scan(&code); err != nil {
		stdlog.Fatalf("Failed to read authorization code: %v", err)
	}

	if err := manager.Exchange(context.Background(), code); err != nil {
		stdlog.Fatalf("Failed to exchange authorization code: %v", err)
	}

	fmt.Println()
	fmt.Printf("Token saved to: %s\n", tokenPath)
	fmt.Println("Restart the backend to enable Google Calendar:")
	fmt.Println("  docker compose restart backend")
}
