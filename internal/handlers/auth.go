package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/crucial707/product-catalog/internal/auth"
	"github.com/crucial707/product-catalog/internal/catalog"
	"github.com/crucial707/product-catalog/internal/common"
	"github.com/crucial707/product-catalog/internal/metrics"
	"github.com/crucial707/product-catalog/internal/middleware"
	"github.com/crucial707/product-catalog/internal/models"
)

// Accounts is the part of the catalog service the auth pages use.
type Accounts interface {
	Signup(ctx context.Context, username, password string) (*models.User, error)
	Login(ctx context.Context, username, password string) (*catalog.LoginResult, error)
}

// ==========================
// Auth Handler
// ==========================
type AuthHandler struct {
	Accounts Accounts
	// SecureCookie sets the Secure flag on the session cookie.
	SecureCookie bool
}

type credentialsForm struct {
	Username string `validate:"required,max=50"`
	Password string `validate:"required,pwbytes"`
}

type authPage struct {
	page
	Username string
}

var validate = newValidator()

// newValidator adds pwbytes: max counts runes, bcrypt counts bytes.
func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("pwbytes", func(fl validator.FieldLevel) bool {
		return len(fl.Field().String()) <= auth.MaxPasswordBytes
	}); err != nil {
		panic(err)
	}
	return v
}

func readCredentials(r *http.Request) (credentialsForm, error) {
	if err := r.ParseForm(); err != nil {
		return credentialsForm{}, common.ErrInvalid
	}
	in := credentialsForm{
		Username: strings.TrimSpace(r.PostFormValue("username")),
		Password: r.PostFormValue("password"),
	}
	if err := validate.Struct(in); err != nil {
		return in, common.ErrInvalid
	}
	return in, nil
}

// ==========================
// Login Form
// ==========================
func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	renderTemplate(w, http.StatusOK, "auth_form.html", authPage{page: currentPage(r)})
}

// ==========================
// Signup (creates the account, then logs in)
// ==========================
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	in, err := readCredentials(r)
	if err == nil {
		_, err = h.Accounts.Signup(r.Context(), in.Username, in.Password)
	}
	metrics.IncOperation("signup", resultLabel(err))
	if err != nil {
		h.renderFormError(w, r, in.Username, err)
		return
	}
	h.login(w, r, in)
}

// ==========================
// Login
// ==========================
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	in, err := readCredentials(r)
	if err != nil {
		metrics.IncOperation("login", resultLabel(err))
		h.renderFormError(w, r, in.Username, err)
		return
	}
	h.login(w, r, in)
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request, in credentialsForm) {
	res, err := h.Accounts.Login(r.Context(), in.Username, in.Password)
	metrics.IncOperation("login", resultLabel(err))
	if err != nil {
		h.renderFormError(w, r, in.Username, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "Bearer " + res.Token,
		Path:     "/",
		Expires:  res.ExpiresAt,
		MaxAge:   int(time.Until(res.ExpiresAt).Seconds()),
		HttpOnly: true,
		Secure:   h.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/products/read", http.StatusSeeOther)
}

// renderFormError shows the auth form again for expected failures. Bad
// credentials are 401 here rather than a redirect: the caller is already on
// the login form.
func (h *AuthHandler) renderFormError(w http.ResponseWriter, r *http.Request, username string, err error) {
	var msg string
	switch {
	case errors.Is(err, common.ErrUnauthorized):
		msg = "Incorrect username or password"
	case errors.Is(err, common.ErrConflict):
		msg = "User already exists"
	case errors.Is(err, common.ErrInvalid):
		msg = "Username (up to 50 characters) and password (up to 72 bytes) are required"
	default:
		writeError(w, r, err)
		return
	}
	p := authPage{page: currentPage(r), Username: username}
	p.Error = msg
	renderTemplate(w, StatusFor(err), "auth_form.html", p)
}

// ==========================
// Logout
// ==========================
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.SecureCookie,
	})
	http.Redirect(w, r, "/products/read", http.StatusSeeOther)
}
