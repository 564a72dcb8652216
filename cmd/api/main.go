package main

import (
	"fmt"
	"os"
)

// @title Tin-Dog API
// @version 1.0
// @description Matching y conversaciones para dueños de perros.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
