package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// User represents a user in the database
type User struct {
	ID       int
	Username string
	Cash     decimal.Decimal
}

// Quote represents the current price of a stock from the lookup service
type Quote struct {
	Name   string          `json:"name"`
	Symbol string          `json:"symbol"`
	Price  decimal.Decimal `json:"price"`
}

// Holding represents one portfolio row for a user
type Holding struct {
	Company  string
	Symbol   string
	Quantity int
}

// Trade represents one completed buy or sell, as recorded in the logs table
type Trade struct {
	Type     string
	Company  string
	Symbol   string
	Price    decimal.Decimal
	Quantity int
	Time     time.Time
}
