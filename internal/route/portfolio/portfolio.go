// Package portfolio defines routes for holdings, trades, and quotes
package portfolio

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/dense-analysis/stockfolio/internal/database"
	"github.com/dense-analysis/stockfolio/internal/model"
	"github.com/dense-analysis/stockfolio/internal/quote"
	"github.com/dense-analysis/stockfolio/internal/route/util"
	"github.com/dense-analysis/stockfolio/internal/session"
	"github.com/dense-analysis/stockfolio/internal/template"
	"github.com/dense-analysis/stockfolio/internal/trading"
)

// TrackedHolding is a Holding with its current quoted value.
type TrackedHolding struct {
	model.Holding
	Price decimal.Decimal
	Value decimal.Decimal
}

var holdingListQuery = `
select company, symbol, quantity from portfolio
where userid = $1
order by symbol
`

func scanHolding(row database.Row, holding *TrackedHolding) error {
	return row.Scan(&holding.Company, &holding.Symbol, &holding.Quantity)
}

var tradeListQuery = `
select type, company, symbol, price, quantity, time from logs
where userid = $1
order by time
`

func scanTrade(row database.Row, trade *model.Trade) error {
	return row.Scan(
		&trade.Type,
		&trade.Company,
		&trade.Symbol,
		&trade.Price,
		&trade.Quantity,
		&trade.Time,
	)
}

func loadUser(writer http.ResponseWriter, request *http.Request) (int, bool) {
	userID, ok := session.UserID(request)

	if !ok {
		http.Redirect(writer, request, "/login", http.StatusFound)
	}

	return userID, ok
}

// parseQuantity reads a share quantity from a form, rejecting anything that
// is not a positive integer before any store access.
func parseQuantity(value string) (int, error) {
	quantity, err := strconv.Atoi(value)

	if err != nil {
		return 0, &trading.ValidationError{Message: "Invalid quantity"}
	}

	if quantity < 1 {
		return 0, &trading.ValidationError{Message: "Not a valid quantity"}
	}

	return quantity, nil
}

// respondTradingError maps trading failures onto apology responses.
func respondTradingError(writer http.ResponseWriter, err error) {
	var validationError *trading.ValidationError

	switch {
	case errors.As(err, &validationError):
		util.RespondValidationError(writer, validationError.Message)
	case errors.Is(err, quote.ErrNotFound):
		util.RespondValidationError(writer, "Stock does not exist!")
	case errors.Is(err, trading.ErrInsufficientFunds):
		util.RespondValidationError(writer, "not enough money")
	case errors.Is(err, trading.ErrInsufficientHoldings):
		util.RespondValidationError(writer, "Not a valid quantity")
	default:
		util.RespondInternalServerError(writer, err)
	}
}

type IndexPageData struct {
	HoldingList []TrackedHolding
	Cash        decimal.Decimal
	Total       decimal.Decimal
}

// HandleIndex shows the holdings and cash a user has.
func HandleIndex(store trading.Store, quotes quote.Fetcher, writer http.ResponseWriter, request *http.Request) {
	userID, ok := loadUser(writer, request)

	if !ok {
		return
	}

	data := IndexPageData{}
	ctx := request.Context()

	if err := model.LoadList(
		ctx,
		store,
		&data.HoldingList,
		10,
		scanHolding,
		holdingListQuery,
		userID,
	); err != nil {
		util.RespondInternalServerError(writer, err)

		return
	}

	row := store.QueryRow(ctx, "select cash from users where id = $1", userID)

	if err := row.Scan(&data.Cash); err != nil {
		util.RespondInternalServerError(writer, err)

		return
	}

	data.Total = data.Cash

	for i := range data.HoldingList {
		holding := &data.HoldingList[i]

		// Holdings with no current quote are shown with a zero value.
		if stock, err := quotes.Lookup(ctx, holding.Symbol); err == nil {
			holding.Price = stock.Price
			holding.Value = stock.Price.Mul(decimal.NewFromInt(int64(holding.Quantity)))
		}

		data.Total = data.Total.Add(holding.Value)
	}

	template.Render(template.Index, writer, data)
}

func HandleViewBuyForm(writer http.ResponseWriter, request *http.Request) {
	if _, ok := loadUser(writer, request); !ok {
		return
	}

	template.Render(template.Buy, writer, nil)
}

// HandleBuy swaps some cash for shares of a stock.
func HandleBuy(store trading.Store, quotes quote.Fetcher, writer http.ResponseWriter, request *http.Request) {
	userID, ok := loadUser(writer, request)

	if !ok {
		return
	}

	request.ParseForm()
	quantity, err := parseQuantity(request.Form.Get("shares"))

	if err != nil {
		respondTradingError(writer, err)

		return
	}

	symbol := request.Form.Get("symbol")

	if _, err := trading.Buy(request.Context(), store, quotes, userID, symbol, quantity); err != nil {
		respondTradingError(writer, err)

		return
	}

	http.Redirect(writer, request, "/", http.StatusFound)
}

type SellPageData struct {
	SymbolList []string
}

func scanSymbol(row database.Row, symbol *string) error {
	return row.Scan(symbol)
}

func HandleViewSellForm(store trading.Store, writer http.ResponseWriter, request *http.Request) {
	userID, ok := loadUser(writer, request)

	if !ok {
		return
	}

	data := SellPageData{}

	if err := model.LoadList(
		request.Context(),
		store,
		&data.SymbolList,
		10,
		scanSymbol,
		"select symbol from portfolio where userid = $1 order by symbol",
		userID,
	); err != nil {
		util.RespondInternalServerError(writer, err)

		return
	}

	template.Render(template.Sell, writer, data)
}

// HandleSell swaps some held shares for cash.
func HandleSell(store trading.Store, quotes quote.Fetcher, writer http.ResponseWriter, request *http.Request) {
	userID, ok := loadUser(writer, request)

	if !ok {
		return
	}

	request.ParseForm()
	quantity, err := parseQuantity(request.Form.Get("shares"))

	if err != nil {
		respondTradingError(writer, err)

		return
	}

	symbol := request.Form.Get("symbol")

	if symbol == "select" {
		util.RespondValidationError(writer, "Please select a stock")

		return
	}

	if _, err := trading.Sell(request.Context(), store, quotes, userID, symbol, quantity); err != nil {
		respondTradingError(writer, err)

		return
	}

	http.Redirect(writer, request, "/", http.StatusFound)
}

func HandleViewQuoteForm(writer http.ResponseWriter, request *http.Request) {
	if _, ok := loadUser(writer, request); !ok {
		return
	}

	template.Render(template.Quote, writer, nil)
}

// HandleQuote resolves a symbol to its current price.
func HandleQuote(quotes quote.Fetcher, writer http.ResponseWriter, request *http.Request) {
	if _, ok := loadUser(writer, request); !ok {
		return
	}

	request.ParseForm()
	stock, err := quotes.Lookup(request.Context(), request.Form.Get("symbol"))

	if err != nil {
		respondTradingError(writer, err)

		return
	}

	template.Render(template.Quoted, writer, stock)
}

type HistoryPageData struct {
	TradeList []model.Trade
}

// HandleHistory lists every completed trade for a user, oldest first.
func HandleHistory(store trading.Store, writer http.ResponseWriter, request *http.Request) {
	userID, ok := loadUser(writer, request)

	if !ok {
		return
	}

	data := HistoryPageData{}

	if err := model.LoadList(
		request.Context(),
		store,
		&data.TradeList,
		20,
		scanTrade,
		tradeListQuery,
		userID,
	); err != nil {
		util.RespondInternalServerError(writer, err)

		return
	}

	template.Render(template.History, writer, data)
}

func HandleViewTopUpForm(writer http.ResponseWriter, request *http.Request) {
	template.Render(template.TopUp, writer, nil)
}

// HandleTopUp adds an amount to the user's cash balance.
//
// This route is not behind the login gate and the amount's sign is not
// validated, reproducing observed production behaviour as a documented
// decision. See DESIGN.md.
func HandleTopUp(store trading.Store, writer http.ResponseWriter, request *http.Request) {
	userID, ok := session.UserID(request)

	if !ok {
		util.RespondForbidden(writer, "403: Forbidden")

		return
	}

	request.ParseForm()
	amount, err := decimal.NewFromString(request.Form.Get("cash"))

	if err != nil {
		util.RespondValidationError(writer, "Invalid cash value")

		return
	}

	if err := trading.TopUp(request.Context(), store, userID, amount); err != nil {
		util.RespondInternalServerError(writer, err)

		return
	}

	http.Redirect(writer, request, "/", http.StatusFound)
}
