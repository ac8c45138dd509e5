package trading

import (
	"errors"

	"github.com/jackc/pgconn"
)

// ErrInsufficientFunds is returned by Buy when a purchase costs more cash
// than the user has.
var ErrInsufficientFunds = errors.New("not enough money")

// ErrInsufficientHoldings is returned by Sell when a user holds none of a
// symbol, or fewer shares than the requested quantity.
var ErrInsufficientHoldings = errors.New("not a valid quantity")

// ErrDuplicateUsername is returned by Register when the username is taken.
var ErrDuplicateUsername = errors.New("duplicate username")

// ErrInvalidCredentials is returned by Authenticate for every login failure,
// so responses never reveal which check failed.
var ErrInvalidCredentials = errors.New("invalid username and/or password")

// ValidationError describes malformed user input rejected before any store
// access.
type ValidationError struct {
	Message string
}

func (err *ValidationError) Error() string {
	return err.Message
}

const uniqueViolationCode = "23505"

func isUniqueViolation(err error) bool {
	var pgError *pgconn.PgError

	return errors.As(err, &pgError) && pgError.Code == uniqueViolationCode
}
