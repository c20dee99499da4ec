// Command token mints a bearer token for an API started with JWT_SECRET.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/project-manager/engine/internal/auth"
)

func main() {
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load()

	subject := flag.String("subject", "dashboard", "token subject")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	secret := flag.String("secret", os.Getenv("JWT_SECRET"), "HMAC secret (defaults to JWT_SECRET)")
	flag.Parse()

	token, err := auth.Mint([]byte(*secret), *subject, *ttl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "mint token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
