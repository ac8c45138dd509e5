package env

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// LoadEnvironmentVariables loads the .env file or crashes the program with an error
func LoadEnvironmentVariables() {
	if err := godotenv.Load(".env"); err != nil {
		fmt.Fprintf(os.Stderr, ".env error: %s\n", err)
		os.Exit(1)
	}
}

// Require reads an environment variable or crashes the program if it is unset.
func Require(name string) string {
	value := os.Getenv(name)

	if len(value) == 0 {
		fmt.Fprintf(os.Stderr, "No %s variable set!\n", name)
		os.Exit(1)
	}

	return value
}

// Default reads an environment variable, falling back to a default value.
func Default(name string, fallback string) string {
	if value := os.Getenv(name); len(value) > 0 {
		return value
	}

	return fallback
}
