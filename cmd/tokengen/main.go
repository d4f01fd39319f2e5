// Package main is a CLI for minting session tokens against a local
// deployment. Tokens are signed with whatever JWT_SECRET the target server
// runs with, so this is a development convenience, never a production tool.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"demogate/internal/account"
	"demogate/internal/token"
)

type tokenOutput struct {
	Token     string   `json:"token"`
	AccountID string   `json:"account_id"`
	Access    []string `json:"access"`
	IsAdmin   bool     `json:"is_admin"`
	ExpiresIn string   `json:"expires_in"`
}

func main() {
	accountID := flag.String("account-id", "", "Account ID to issue for (required)")
	name := flag.String("name", "", "Display name. Defaults to the account ID.")
	access := flag.String("access", "", "Comma-separated demo IDs to snapshot into the token")
	admin := flag.Bool("admin", false, "Mark the token as admin")
	ttl := flag.Duration("ttl", 24*time.Hour, "Token time-to-live")
	secret := flag.String("secret", os.Getenv("JWT_SECRET"), "Signing secret. Defaults to $JWT_SECRET.")
	jsonOutput := flag.Bool("json", false, "Output as JSON")
	flag.Parse()

	id := account.NormalizeID(*accountID)
	if id == "" {
		fmt.Fprintln(os.Stderr, "tokengen: -account-id is required")
		flag.Usage()
		os.Exit(1)
	}
	if *secret == "" {
		fmt.Fprintln(os.Stderr, "tokengen: no signing secret; pass -secret or set JWT_SECRET")
		os.Exit(1)
	}

	displayName := *name
	if displayName == "" {
		displayName = id
	}
	accessList := splitList(*access)

	svc := token.New(*secret, "HS256", *ttl)
	signed, err := svc.Issue(id, displayName, accessList, *admin, 0)
	if err != nil {
		fmt.Fprintf(os.Stderr, "tokengen: %v\n", err)
		os.Exit(1)
	}

	if *jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(tokenOutput{
			Token:     signed,
			AccountID: id,
			Access:    accessList,
			IsAdmin:   *admin,
			ExpiresIn: ttl.String(),
		})
		return
	}

	fmt.Println("Session Token")
	fmt.Println("=============")
	fmt.Printf("Account ID: %s\n", id)
	fmt.Printf("Admin:      %v\n", *admin)
	fmt.Printf("Access:     %v\n", accessList)
	fmt.Printf("Expires In: %s\n", ttl)
	fmt.Println()
	fmt.Println("Token:")
	fmt.Println(signed)
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  curl -H \"Authorization: Bearer <token>\" http://localhost:8080/catalog/demos")
}

func splitList(csv string) []string {
	if csv == "" {
		return []string{}
	}
	parts := strings.Split(csv, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
