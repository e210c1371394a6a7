package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Prints a Supabase-style access token for calling the API locally:
//
//	SUPABASE_JWT_SECRET=secret SUPABASE_URL=https://xyz.supabase.co go run scripts/generate-jwt.go -sub <user-uuid>
func main() {
	sub := flag.String("sub", "", "user id (uuid); a random one when empty")
	ttl := flag.Duration("ttl", time.Hour, "token lifetime")
	flag.Parse()

	secret := os.Getenv("SUPABASE_JWT_SECRET")
	supabaseURL := os.Getenv("SUPABASE_URL")
	if secret == "" || supabaseURL == "" {
		fmt.Fprintln(os.Stderr, "Error: SUPABASE_JWT_SECRET and SUPABASE_URL environment variables must be set")
		os.Exit(1)
	}

	userID := *sub
	if userID == "" {
		userID = uuid.NewString()
	} else if _, err := uuid.Parse(userID); err != nil {
		fmt.Fprintf(os.Stderr, "Error: -sub must be a uuid: %v\n", err)
		os.Exit(1)
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  userID,
		"role": "authenticated",
		"aud":  "authenticated",
		"iat":  now.Unix(),
		"exp":  now.Add(*ttl).Unix(),
		"iss":  supabaseURL + "/auth/v1",
	}

	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error signing token: %v\n", err)
		os.Exit(1)
	}

	fmt.Fprintln(os.Stderr, "user:", userID)
	fmt.Println(tokenString)
}
