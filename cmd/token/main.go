package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"bookshelf/internal/auth"

	"github.com/joho/godotenv"
)

// token prints a bearer token for the write endpoints of the api.
func main() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	var (
		subject = flag.String("sub", "editor", "Token subject")
		role    = flag.String("role", auth.RoleEditor, "Token role: EDITOR or ADMIN")
		ttl     = flag.Duration("ttl", 24*time.Hour, "Token lifetime")
	)
	flag.Parse()

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("missing required environment variable: JWT_SECRET")
	}
	if *role != auth.RoleEditor && *role != auth.RoleAdmin {
		log.Fatalf("unknown role %q", *role)
	}

	token, jti, err := auth.GenerateToken(secret, *subject, *role, *ttl)
	if err != nil {
		log.Fatalf("cannot sign token: %v", err)
	}
	log.Printf("issued token sub=%s role=%s jti=%s expires_in=%s", *subject, *role, jti, *ttl)
	fmt.Println(token)
}
