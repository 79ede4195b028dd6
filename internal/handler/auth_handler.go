/*
Package handler provides HTTP handler functions for registration, login and logout.
*/
package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"groundchat/internal/app/user"
	"groundchat/internal/pkg/auth/jwt"
	"groundchat/internal/pkg/errs"
	"groundchat/internal/pkg/metrics"
	"groundchat/internal/pkg/req"
)

type RegisterInput struct {
	Username string `validate:"required,max=64"`
	Email    string `validate:"required,max=254"`
	Password string `validate:"required"`
}

type LoginInput struct {
	Username string `validate:"required"`
	Password string `validate:"required"`
}

type userCtxKey struct{}

// UserFromContext returns the user attached by RequireSession.
func UserFromContext(ctx context.Context) (user.User, bool) {
	u, ok := ctx.Value(userCtxKey{}).(user.User)
	return u, ok
}

// RequireSession lets a request through only when its session token is bound to a
// live user; everything else is redirected to the login page.
func RequireSession(deps *AppDeps) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, err := deps.Guard.RequireAuthenticated(r.Context(), jwt.TokenFromRequest(r))
			if err != nil {
				jwt.ClearSessionCookie(w, !deps.Config.IsDevelopment())
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}

			ctx := context.WithValue(r.Context(), userCtxKey{}, u)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// HandleRegisterPage shows the registration form, or sends signed-in users to the chat.
func HandleRegisterPage(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if signedIn(deps, r) {
			http.Redirect(w, r, "/chat", http.StatusSeeOther)
			return
		}
		deps.Pages.Render(w, r, http.StatusOK, "register.html", PageData{Title: "Register"})
	}
}

// HandleRegister creates an account from the submitted form and signs the new user in.
func HandleRegister(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := zerolog.Ctx(r.Context())

		if customErr := req.ParseForm(w, r); customErr != nil {
			deps.Pages.Render(w, r, customErr.Status, "register.html", PageData{Title: "Register", Flash: customErr.Message})
			return
		}

		input := RegisterInput{
			Username: r.PostFormValue("username"),
			Email:    r.PostFormValue("email"),
			Password: r.PostFormValue("password"),
		}
		page := PageData{Title: "Register", Username: input.Username, Email: input.Email}

		renderErr := func(customErr *errs.CustomError) {
			metrics.AuthEvents.WithLabelValues("register", "rejected").Inc()
			page.Flash = customErr.Message
			deps.Pages.Render(w, r, customErr.Status, "register.html", page)
		}

		if input.Username == "" || input.Email == "" || input.Password == "" {
			renderErr(errs.NewError(errs.ErrRegistrationIncomplete))
			return
		}
		if customErr := req.Validate(input); customErr != nil {
			renderErr(customErr)
			return
		}
		if len(input.Password) > user.MaxPasswordBytes {
			renderErr(errs.NewError(errs.ErrPasswordTooLong))
			return
		}

		u, err := deps.Credentials.Register(r.Context(), input.Username, input.Email, input.Password)
		switch {
		case errors.Is(err, user.ErrUsernameTaken):
			renderErr(errs.NewError(errs.ErrUsernameTaken))
			return
		case errors.Is(err, user.ErrEmailTaken):
			renderErr(errs.NewError(errs.ErrEmailTaken))
			return
		case errors.Is(err, user.ErrPasswordTooLong):
			renderErr(errs.NewError(errs.ErrPasswordTooLong))
			return
		case err != nil:
			logger.Error().Err(err).Msg("registration failed")
			renderErr(errs.As(err))
			return
		}

		ticket, err := deps.Guard.Establish(r.Context(), u)
		if err != nil {
			// The account exists; the user can still sign in manually.
			logger.Error().Err(err).Msg("establish session after registration")
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		metrics.AuthEvents.WithLabelValues("register", "ok").Inc()
		jwt.SetSessionCookie(w, ticket.Token, deps.Guard.TTL(), !deps.Config.IsDevelopment())
		http.Redirect(w, r, "/chat", http.StatusSeeOther)
	}
}

// HandleLoginPage shows the login form, or sends signed-in users to the chat.
func HandleLoginPage(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if signedIn(deps, r) {
			http.Redirect(w, r, "/chat", http.StatusSeeOther)
			return
		}
		deps.Pages.Render(w, r, http.StatusOK, "login.html", PageData{Title: "Login"})
	}
}

// HandleLogin verifies the submitted credentials and sets the session cookie.
// Every credential failure shows the same message.
func HandleLogin(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if customErr := req.ParseForm(w, r); customErr != nil {
			deps.Pages.Render(w, r, customErr.Status, "login.html", PageData{Title: "Login", Flash: customErr.Message})
			return
		}

		input := LoginInput{
			Username: r.PostFormValue("username"),
			Password: r.PostFormValue("password"),
		}
		page := PageData{Title: "Login", Username: input.Username}

		invalid := func() {
			metrics.AuthEvents.WithLabelValues("login", "rejected").Inc()
			customErr := errs.NewError(errs.ErrInvalidCredentials)
			page.Flash = customErr.Message
			deps.Pages.Render(w, r, customErr.Status, "login.html", page)
		}

		if req.Validate(input) != nil {
			invalid()
			return
		}

		ticket, err := deps.Guard.Login(r.Context(), input.Username, input.Password)
		if errors.Is(err, user.ErrInvalidCredentials) {
			invalid()
			return
		}
		if err != nil {
			zerolog.Ctx(r.Context()).Error().Err(err).Msg("login failed")
			customErr := errs.As(err)
			page.Flash = customErr.Message
			deps.Pages.Render(w, r, customErr.Status, "login.html", page)
			return
		}

		metrics.AuthEvents.WithLabelValues("login", "ok").Inc()
		jwt.SetSessionCookie(w, ticket.Token, deps.Guard.TTL(), !deps.Config.IsDevelopment())
		http.Redirect(w, r, "/chat", http.StatusSeeOther)
	}
}

// HandleLogout ends the current session and returns to the landing page.
func HandleLogout(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := deps.Guard.Logout(r.Context(), jwt.TokenFromRequest(r)); err != nil {
			zerolog.Ctx(r.Context()).Error().Err(err).Msg("logout failed")
		}

		metrics.AuthEvents.WithLabelValues("logout", "ok").Inc()
		jwt.ClearSessionCookie(w, !deps.Config.IsDevelopment())
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

func signedIn(deps *AppDeps, r *http.Request) bool {
	token := jwt.TokenFromRequest(r)
	if token == "" {
		return false
	}
	_, err := deps.Guard.RequireAuthenticated(r.Context(), token)
	return err == nil
}
