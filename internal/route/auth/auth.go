// Package auth defines routes for logging in and registering accounts
package auth

import (
	"errors"
	"net/http"

	"github.com/dense-analysis/stockfolio/internal/route/util"
	"github.com/dense-analysis/stockfolio/internal/session"
	"github.com/dense-analysis/stockfolio/internal/template"
	"github.com/dense-analysis/stockfolio/internal/trading"
)

func HandleViewLoginForm(writer http.ResponseWriter, request *http.Request) {
	// Any existing session is discarded when the login page is shown.
	session.ClearSession(writer, request)
	template.Render(template.Login, writer, nil)
}

func HandleLogin(store trading.Store, writer http.ResponseWriter, request *http.Request) {
	request.ParseForm()
	username := request.Form.Get("username")
	password := request.Form.Get("password")

	if len(username) == 0 {
		util.RespondForbidden(writer, "must provide username")

		return
	}

	if len(password) == 0 {
		util.RespondForbidden(writer, "must provide password")

		return
	}

	userID, err := trading.Authenticate(request.Context(), store, username, password)

	if err != nil {
		if errors.Is(err, trading.ErrInvalidCredentials) {
			util.RespondForbidden(writer, "invalid username and/or password")
		} else {
			util.RespondInternalServerError(writer, err)
		}

		return
	}

	session.SaveUserInSession(writer, request, userID)
	http.Redirect(writer, request, "/", http.StatusFound)
}

func HandleLogout(writer http.ResponseWriter, request *http.Request) {
	session.ClearSession(writer, request)
	http.Redirect(writer, request, "/", http.StatusFound)
}

func HandleViewRegisterForm(writer http.ResponseWriter, request *http.Request) {
	template.Render(template.Register, writer, nil)
}

func HandleRegister(store trading.Store, writer http.ResponseWriter, request *http.Request) {
	request.ParseForm()

	err := trading.Register(
		request.Context(),
		store,
		request.Form.Get("username"),
		request.Form.Get("password"),
		request.Form.Get("confirmation"),
	)

	if err != nil {
		var validationError *trading.ValidationError

		switch {
		case errors.As(err, &validationError):
			util.RespondValidationError(writer, validationError.Message)
		case errors.Is(err, trading.ErrDuplicateUsername):
			util.RespondValidationError(writer, "Duplicate username")
		default:
			util.RespondInternalServerError(writer, err)
		}

		return
	}

	http.Redirect(writer, request, "/login", http.StatusFound)
}
