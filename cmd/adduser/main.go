// Create a user account for the trading simulator
package main

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/crypto/bcrypt"

	"github.com/dense-analysis/stockfolio/internal/database"
	"github.com/dense-analysis/stockfolio/internal/env"
	"github.com/dense-analysis/stockfolio/internal/trading"
)

func main() {
	env.LoadEnvironmentVariables()

	if len(os.Args) != 3 {
		fmt.Fprintf(os.Stderr, "Usage: adduser <username> <password>\n")
		os.Exit(1)
	}

	username := os.Args[1]
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(os.Args[2]), trading.BcryptCost)

	if err != nil {
		fmt.Fprintf(os.Stderr, "Password hashing error: %s\n", err)
		os.Exit(1)
	}

	conn, err := database.Connect(context.Background())

	if err != nil {
		fmt.Fprintf(os.Stderr, "Connection error: %s\n", err)
		os.Exit(1)
	}

	defer conn.Close()

	_, err = conn.Exec(
		context.Background(),
		"insert into users (username, hash, cash) values ($1, $2, $3)",
		username,
		string(passwordHash),
		trading.StartingCash,
	)

	if err != nil {
		fmt.Fprintf(os.Stderr, "Query error: %s\n", err)
		os.Exit(1)
	}
}
