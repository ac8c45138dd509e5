// Package session handles saving/loading users to/from sessions
package session

import (
	"fmt"
	"net/http"
	"os"

	"github.com/gorilla/sessions"
)

var sessionStore *sessions.CookieStore

// InitSessionStorage starts up session storage or crashes the program with an error
func InitSessionStorage() {
	secretKey := os.Getenv("SECRET_KEY")

	if len(secretKey) == 0 {
		fmt.Fprintf(os.Stderr, "No SECRET_KEY variable set!\n")
		os.Exit(1)
	}

	sessionStore = sessions.NewCookieStore([]byte(secretKey))
}

// UserID returns the authenticated user's ID from the request session.
func UserID(request *http.Request) (int, bool) {
	session, err := sessionStore.Get(request, "sessionid")

	if err != nil {
		return 0, false
	}

	userID, ok := session.Values["userID"].(int)

	return userID, ok
}

func SaveUserInSession(writer http.ResponseWriter, request *http.Request, userID int) error {
	session, _ := sessionStore.Get(request, "sessionid")
	session.Values["userID"] = userID

	return session.Save(request, writer)
}

func ClearSession(writer http.ResponseWriter, request *http.Request) error {
	session, _ := sessionStore.Get(request, "sessionid")

	for key := range session.Values {
		delete(session.Values, key)
	}

	return session.Save(request, writer)
}
