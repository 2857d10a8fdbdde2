package main

import (
	"fmt"
	"os"

	"golang.org/x/crypto/bcrypt"
)

// Quick utility to generate a bcrypt hash when provisioning an official account
// Usage: go run scripts/hash_official_password.go <password>
func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run scripts/hash_official_password.go <password>")
		os.Exit(1)
	}

	password := os.Args[1]

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		fmt.Printf("Error generating hash: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Bcrypt Hash: %s\n", string(hashedPassword))
	fmt.Printf("\nTo update in MongoDB, run:\n")
	fmt.Printf("db.Municipals.updateOne(\n")
	fmt.Printf("  {\"official_username\": \"<username>\"},\n")
	fmt.Printf("  {$set: {\"hashed_password\": \"%s\"}}\n", string(hashedPassword))
	fmt.Printf(")\n")
}
