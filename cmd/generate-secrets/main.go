package main

import (
	"fmt"
	"log"

	"github.com/teraturizm/transfer-admin/internal/utils"
)

func main() {
	fmt.Println("===========================================")
	fmt.Println("JWT secret generator for the transfer admin")
	fmt.Println("===========================================")
	fmt.Println()

	secret, err := utils.GenerateJWTSecret()
	if err != nil {
		log.Fatalf("Failed to generate secret: %v", err)
	}

	fmt.Println("Add this to your .env file:")
	fmt.Println()
	fmt.Printf("JWT_SECRET=%s\n", secret)
	fmt.Println()
	fmt.Println("Keep it out of version control.")
}
