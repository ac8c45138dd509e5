package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/dense-analysis/stockfolio/internal/database"
	"github.com/dense-analysis/stockfolio/internal/env"
	"github.com/dense-analysis/stockfolio/internal/quote"
	"github.com/dense-analysis/stockfolio/internal/route/auth"
	"github.com/dense-analysis/stockfolio/internal/route/portfolio"
	"github.com/dense-analysis/stockfolio/internal/route/util"
	"github.com/dense-analysis/stockfolio/internal/session"
	"github.com/dense-analysis/stockfolio/internal/template"
	"github.com/dense-analysis/stockfolio/internal/trading"
)

func buildQuoteFetcher() quote.Fetcher {
	var fetcher quote.Fetcher = quote.NewClient(env.Require("QUOTE_API_URL"))

	if address := os.Getenv("REDIS_ADDR"); len(address) > 0 {
		client := redis.NewClient(&redis.Options{Addr: address})
		fetcher = quote.NewCachedFetcher(fetcher, client)
		logrus.WithField("addr", address).Info("quote cache enabled")
	}

	return fetcher
}

func buildRouter(store trading.Store, quotes quote.Fetcher) *mux.Router {
	router := mux.NewRouter().StrictSlash(true)
	router.Use(util.NoCacheMiddleware)

	router.HandleFunc("/", func(writer http.ResponseWriter, request *http.Request) {
		portfolio.HandleIndex(store, quotes, writer, request)
	}).Methods("GET")

	router.HandleFunc("/login", auth.HandleViewLoginForm).Methods("GET")
	router.HandleFunc("/login", func(writer http.ResponseWriter, request *http.Request) {
		auth.HandleLogin(store, writer, request)
	}).Methods("POST")
	router.HandleFunc("/logout", auth.HandleLogout).Methods("GET")
	router.HandleFunc("/register", auth.HandleViewRegisterForm).Methods("GET")
	router.HandleFunc("/register", func(writer http.ResponseWriter, request *http.Request) {
		auth.HandleRegister(store, writer, request)
	}).Methods("POST")

	router.HandleFunc("/buy", portfolio.HandleViewBuyForm).Methods("GET")
	router.HandleFunc("/buy", func(writer http.ResponseWriter, request *http.Request) {
		portfolio.HandleBuy(store, quotes, writer, request)
	}).Methods("POST")
	router.HandleFunc("/sell", func(writer http.ResponseWriter, request *http.Request) {
		portfolio.HandleViewSellForm(store, writer, request)
	}).Methods("GET")
	router.HandleFunc("/sell", func(writer http.ResponseWriter, request *http.Request) {
		portfolio.HandleSell(store, quotes, writer, request)
	}).Methods("POST")
	router.HandleFunc("/quote", portfolio.HandleViewQuoteForm).Methods("GET")
	router.HandleFunc("/quote", func(writer http.ResponseWriter, request *http.Request) {
		portfolio.HandleQuote(quotes, writer, request)
	}).Methods("POST")
	router.HandleFunc("/history", func(writer http.ResponseWriter, request *http.Request) {
		portfolio.HandleHistory(store, writer, request)
	}).Methods("GET")
	router.HandleFunc("/topup", portfolio.HandleViewTopUpForm).Methods("GET")
	router.HandleFunc("/topup", func(writer http.ResponseWriter, request *http.Request) {
		portfolio.HandleTopUp(store, writer, request)
	}).Methods("POST")

	return router
}

func main() {
	env.LoadEnvironmentVariables()
	session.InitSessionStorage()
	template.Init("template")

	conn, err := database.Connect(context.Background())

	if err != nil {
		logrus.WithError(err).Fatal("database connection error")
	}

	defer conn.Close()

	router := buildRouter(conn, buildQuoteFetcher())

	server := http.Server{
		Addr:    ":" + env.Default("PORT", "10000"),
		Handler: router,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Fatal("server error")
		}
	}()

	logrus.WithField("addr", server.Addr).Info("Server started")
	<-done

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logrus.WithError(err).Fatal("Server shut down failed")
	}

	logrus.Info("Server shut down successfully")
}
