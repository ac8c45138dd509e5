// Package trading implements the transactional state updates for buying and
// selling stock.
//
// Every operation that mutates cash or holdings runs its read-check-write
// sequence inside one database transaction, with the rows it checks locked
// for update, so concurrent requests for the same user cannot both pass a
// stale check.
package trading

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/dense-analysis/stockfolio/internal/database"
	"github.com/dense-analysis/stockfolio/internal/model"
	"github.com/dense-analysis/stockfolio/internal/quote"
)

// BcryptCost is the work factor for password hashes.
const BcryptCost = 14

// StartingCash is the cash balance granted to new accounts.
var StartingCash = decimal.NewFromInt(10000)

// Store runs queries and scoped transactions against the persistence store.
//
// *database.Conn satisfies it.
type Store interface {
	database.Queryable
	WithTransaction(ctx context.Context, run func(tx database.Queryable) error) error
}

var selectCashQuery = `select cash from users where id = $1 for update`

var selectHoldingQuery = `
select quantity from portfolio
where userid = $1 and symbol = $2
for update
`

var updateHoldingQuery = `
update portfolio set quantity = quantity + $1
where userid = $2 and symbol = $3
`

var insertHoldingQuery = `
insert into portfolio (userid, company, symbol, quantity)
values ($1, $2, $3, $4)
`

var deleteEmptyHoldingQuery = `
delete from portfolio where userid = $1 and symbol = $2 and quantity = 0
`

var adjustCashQuery = `update users set cash = cash + $1 where id = $2`

var insertLogQuery = `
insert into logs (userid, company, symbol, price, quantity, type)
values ($1, $2, $3, $4, $5, $6)
`

var insertUserQuery = `insert into users (username, hash, cash) values ($1, $2, $3)`

var selectUserByNameQuery = `select id, hash from users where username = $1`

// Buy purchases shares of a stock for a user.
//
// The quote is resolved first, then the cash check and all three writes run
// in one transaction, so either every write applies or none do.
func Buy(
	ctx context.Context,
	store Store,
	quotes quote.Fetcher,
	userID int,
	symbol string,
	quantity int,
) (*model.Quote, error) {
	if quantity < 1 {
		return nil, &ValidationError{"Not a valid quantity"}
	}

	stock, err := quotes.Lookup(ctx, symbol)

	if err != nil {
		return nil, err
	}

	total := stock.Price.Mul(decimal.NewFromInt(int64(quantity)))

	err = store.WithTransaction(ctx, func(tx database.Queryable) error {
		var cash decimal.Decimal

		if err := tx.QueryRow(ctx, selectCashQuery, userID).Scan(&cash); err != nil {
			return err
		}

		if cash.LessThan(total) {
			return ErrInsufficientFunds
		}

		count, err := tx.Exec(ctx, updateHoldingQuery, quantity, userID, stock.Symbol)

		if err != nil {
			return err
		}

		if count == 0 {
			if _, err := tx.Exec(
				ctx,
				insertHoldingQuery,
				userID,
				stock.Name,
				stock.Symbol,
				quantity,
			); err != nil {
				return err
			}
		}

		if _, err := tx.Exec(ctx, adjustCashQuery, total.Neg(), userID); err != nil {
			return err
		}

		_, err = tx.Exec(
			ctx,
			insertLogQuery,
			userID,
			stock.Name,
			stock.Symbol,
			stock.Price,
			quantity,
			"buy",
		)

		return err
	})

	if err != nil {
		return nil, err
	}

	return stock, nil
}

// Sell sells shares of a stock a user holds.
//
// The holdings check runs before the quote lookup, so selling more than is
// held reports an invalid quantity even for symbols the lookup service no
// longer knows. The holding row stays locked until commit.
func Sell(
	ctx context.Context,
	store Store,
	quotes quote.Fetcher,
	userID int,
	symbol string,
	quantity int,
) (*model.Quote, error) {
	if quantity < 1 {
		return nil, &ValidationError{"Not a valid quantity"}
	}

	var stock *model.Quote

	err := store.WithTransaction(ctx, func(tx database.Queryable) error {
		var held int
		row := tx.QueryRow(ctx, selectHoldingQuery, userID, strings.ToUpper(symbol))

		if err := row.Scan(&held); err != nil {
			if err == database.ErrNoRows {
				return ErrInsufficientHoldings
			}

			return err
		}

		if quantity > held {
			return ErrInsufficientHoldings
		}

		var err error
		stock, err = quotes.Lookup(ctx, symbol)

		if err != nil {
			return err
		}

		proceeds := stock.Price.Mul(decimal.NewFromInt(int64(quantity)))

		if _, err := tx.Exec(ctx, updateHoldingQuery, -quantity, userID, stock.Symbol); err != nil {
			return err
		}

		if _, err := tx.Exec(ctx, deleteEmptyHoldingQuery, userID, stock.Symbol); err != nil {
			return err
		}

		if _, err := tx.Exec(ctx, adjustCashQuery, proceeds, userID); err != nil {
			return err
		}

		_, err = tx.Exec(
			ctx,
			insertLogQuery,
			userID,
			stock.Name,
			stock.Symbol,
			stock.Price,
			quantity,
			"sell",
		)

		return err
	})

	if err != nil {
		return nil, err
	}

	return stock, nil
}

// TopUp adds an amount to a user's cash balance.
//
// The amount's sign and magnitude are deliberately not validated, matching
// observed production behaviour. See DESIGN.md before changing this.
func TopUp(ctx context.Context, store Store, userID int, amount decimal.Decimal) error {
	count, err := store.Exec(ctx, adjustCashQuery, amount, userID)

	if err != nil {
		return err
	}

	if count == 0 {
		return database.ErrNoRows
	}

	return nil
}

// Register creates a new user account with the starting cash balance.
func Register(ctx context.Context, store Store, username, password, confirmation string) error {
	if password != confirmation {
		return &ValidationError{"Passwords do not match!"}
	}

	if len(strings.TrimSpace(username)) == 0 || len(strings.TrimSpace(password)) == 0 {
		return &ValidationError{"Field cannot be blank!"}
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)

	if err != nil {
		return err
	}

	if _, err := store.Exec(
		ctx,
		insertUserQuery,
		username,
		string(passwordHash),
		StartingCash,
	); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateUsername
		}

		return err
	}

	return nil
}

// Authenticate checks a username and password, returning the user's ID.
//
// Every failure is reported as ErrInvalidCredentials.
func Authenticate(ctx context.Context, store Store, username, password string) (int, error) {
	var userID int
	var passwordHash string

	row := store.QueryRow(ctx, selectUserByNameQuery, username)

	if err := row.Scan(&userID, &passwordHash); err != nil {
		if err == database.ErrNoRows {
			return 0, ErrInvalidCredentials
		}

		return 0, err
	}

	if bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(password)) != nil {
		return 0, ErrInvalidCredentials
	}

	return userID, nil
}
