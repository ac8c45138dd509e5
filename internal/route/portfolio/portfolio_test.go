package portfolio

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dense-analysis/stockfolio/internal/model"
	"github.com/dense-analysis/stockfolio/internal/quote"
	"github.com/dense-analysis/stockfolio/internal/session"
	"github.com/dense-analysis/stockfolio/internal/template"
)

func TestMain(m *testing.M) {
	os.Setenv("SECRET_KEY", "test-secret")
	session.InitSessionStorage()
	template.Init("../../../template")
	os.Exit(m.Run())
}

type stubFetcher struct {
	quotes map[string]model.Quote
}

func (fetcher *stubFetcher) Lookup(ctx context.Context, symbol string) (*model.Quote, error) {
	stock, ok := fetcher.quotes[strings.ToUpper(strings.TrimSpace(symbol))]

	if !ok {
		return nil, quote.ErrNotFound
	}

	return &stock, nil
}

func decimalFromString(t *testing.T, value string) decimal.Decimal {
	t.Helper()

	parsed, err := decimal.NewFromString(value)
	require.NoError(t, err)

	return parsed
}

// authenticatedRequest builds a POST form request carrying a logged-in
// session cookie for user 1.
func authenticatedRequest(t *testing.T, path string, form url.Values) *http.Request {
	t.Helper()

	recorder := httptest.NewRecorder()
	setup := httptest.NewRequest("GET", path, nil)

	if err := session.SaveUserInSession(recorder, setup, 1); err != nil {
		t.Fatalf("saving session: %s", err)
	}

	request := httptest.NewRequest("POST", path, strings.NewReader(form.Encode()))
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	for _, cookie := range recorder.Result().Cookies() {
		request.AddCookie(cookie)
	}

	return request
}

func TestIndexRedirectsWhenUnauthenticated(t *testing.T) {
	recorder := httptest.NewRecorder()

	HandleIndex(nil, nil, recorder, httptest.NewRequest("GET", "/", nil))

	assert.Equal(t, http.StatusFound, recorder.Code)
	assert.Equal(t, "/login", recorder.Header().Get("Location"))
}

func TestBuyFormRedirectsWhenUnauthenticated(t *testing.T) {
	recorder := httptest.NewRecorder()

	HandleViewBuyForm(recorder, httptest.NewRequest("GET", "/buy", nil))

	assert.Equal(t, http.StatusFound, recorder.Code)
	assert.Equal(t, "/login", recorder.Header().Get("Location"))
}

func TestBuyRejectsInvalidQuantity(t *testing.T) {
	for _, shares := range []string{"abc", "1.5", "0", "-2", ""} {
		recorder := httptest.NewRecorder()
		request := authenticatedRequest(t, "/buy", url.Values{
			"symbol": {"NFLX"},
			"shares": {shares},
		})

		HandleBuy(nil, nil, recorder, request)

		assert.Equal(t, http.StatusBadRequest, recorder.Code, "shares=%q", shares)
	}
}

func TestBuyUnknownSymbol(t *testing.T) {
	recorder := httptest.NewRecorder()
	request := authenticatedRequest(t, "/buy", url.Values{
		"symbol": {"NOPE"},
		"shares": {"1"},
	})

	HandleBuy(nil, &stubFetcher{}, recorder, request)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "Stock does not exist!")
}

func TestSellRejectsPlaceholderSymbol(t *testing.T) {
	recorder := httptest.NewRecorder()
	request := authenticatedRequest(t, "/sell", url.Values{
		"symbol": {"select"},
		"shares": {"1"},
	})

	HandleSell(nil, nil, recorder, request)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "Please select a stock")
}

func TestQuoteRendersPrice(t *testing.T) {
	recorder := httptest.NewRecorder()
	request := authenticatedRequest(t, "/quote", url.Values{"symbol": {"nflx"}})
	fetcher := &stubFetcher{
		quotes: map[string]model.Quote{
			"NFLX": {Name: "Netflix", Symbol: "NFLX", Price: decimalFromString(t, "150.25")},
		},
	}

	HandleQuote(fetcher, recorder, request)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "Netflix")
	assert.Contains(t, recorder.Body.String(), "$150.25")
}

func TestTopUpForbiddenWhenUnauthenticated(t *testing.T) {
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("POST", "/topup", strings.NewReader("cash=100"))
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	HandleTopUp(nil, recorder, request)

	assert.Equal(t, http.StatusForbidden, recorder.Code)
}

func TestTopUpRejectsMalformedAmount(t *testing.T) {
	recorder := httptest.NewRecorder()
	request := authenticatedRequest(t, "/topup", url.Values{"cash": {"lots"}})

	HandleTopUp(nil, recorder, request)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "Invalid cash value")
}

func TestParseQuantity(t *testing.T) {
	quantity, err := parseQuantity("5")

	assert.NoError(t, err)
	assert.Equal(t, 5, quantity)

	for _, value := range []string{"0", "-1", "2.5", "five", ""} {
		_, err := parseQuantity(value)

		assert.Error(t, err, "value=%q", value)
	}
}
