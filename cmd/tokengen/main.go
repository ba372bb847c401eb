// Package main provides a CLI tool for generating test tokens for the
// sftgate API. These tokens use the dev signing key and will NOT work in
// production.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	jwttoken "sftgate/internal/jwt_token"
)

const (
	// Dev signing key - matches config.go when JWT_SIGNING_KEY is not set
	devSigningKey = "dev-secret-key-change-in-production"

	defaultIssuer   = "https://sftgate.local"
	defaultAudience = "sftgate-api"
	defaultTokenTTL = 15 * time.Minute
)

type tokenOutput struct {
	Token     string   `json:"token"`
	Subject   string   `json:"subject"`
	Roles     []string `json:"roles,omitempty"`
	ExpiresIn string   `json:"expires_in"`
	Usage     string   `json:"usage"`
}

func main() {
	subject := flag.String("subject", "sp-test", "Token subject (partner identity ref or user id)")
	admin := flag.Bool("admin", false, "Include the portal administrator role")
	orgUser := flag.Bool("org-user", false, "Include the organization user role")
	ttl := flag.Duration("ttl", defaultTokenTTL, "Token time-to-live")
	key := flag.String("key", devSigningKey, "Signing key (must match the server's JWT_SIGNING_KEY)")
	asJSON := flag.Bool("json", false, "Output as JSON")
	flag.Parse()

	var roles []string
	if *admin {
		roles = append(roles, jwttoken.RoleAdmin)
	}
	if *orgUser {
		roles = append(roles, jwttoken.RoleOrgUser)
	}

	svc := jwttoken.NewService(*key, defaultIssuer, defaultAudience, *ttl)
	token, err := svc.GenerateToken(*subject, roles)
	if err != nil {
		fmt.Fprintln(os.Stderr, "tokengen:", err)
		os.Exit(1)
	}

	if *asJSON {
		out := tokenOutput{
			Token:     token,
			Subject:   *subject,
			Roles:     roles,
			ExpiresIn: ttl.String(),
			Usage:     `curl -H "Authorization: Bearer <token>" http://localhost:8080/v1/containers`,
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(out)
		return
	}

	fmt.Println(token)
}
