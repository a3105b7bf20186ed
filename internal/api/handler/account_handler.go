package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/account-service/internal/core/domain"
	"github.com/99minutos/account-service/internal/core/ports"
)

// AccountHandler exposes registration, credential and session operations.
type AccountHandler struct {
	service ports.AccountService
}

func NewAccountHandler(service ports.AccountService) *AccountHandler {
	return &AccountHandler{service: service}
}

// Register creates the identity in the auth service and the local account.
//
// @Summary      Register a new account
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Registration details"
// @Success      201   {object}  outcomeResponse
// @Failure      400   {object}  outcomeResponse
// @Failure      422   {object}  outcomeResponse
// @Failure      500   {object}  outcomeResponse
// @Failure      502   {object}  errorResponse
// @Failure      503   {object}  errorResponse
// @Router       /v1/accounts [post]
func (h *AccountHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	in, err := toRegistration(req)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "birthdate must be YYYY-MM-DD")
	}

	outcome, err := h.service.Register(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(outcomeStatus(outcome, http.StatusCreated), toOutcomeResponse(outcome))
}

// Confirm activates an account with the emailed code.
//
// @Summary      Confirm an account
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Param        body  body      confirmationRequest  true  "Email and confirmation code"
// @Success      200   {object}  outcomeResponse
// @Failure      400   {object}  outcomeResponse
// @Failure      422   {object}  outcomeResponse
// @Failure      502   {object}  errorResponse
// @Router       /v1/accounts/confirm [post]
func (h *AccountHandler) Confirm(c echo.Context) error {
	var req confirmationRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	outcome, err := h.service.Confirm(c.Request().Context(), domain.ConfirmationRequest{Email: req.Email, Code: req.Code})
	if err != nil {
		return err
	}
	return c.JSON(outcomeStatus(outcome, http.StatusOK), toOutcomeResponse(outcome))
}

// Unlock releases a locked account with the emailed code.
//
// @Summary      Unlock an account
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Param        body  body      confirmationRequest  true  "Email and unlock code"
// @Success      200   {object}  outcomeResponse
// @Failure      400   {object}  outcomeResponse
// @Failure      422   {object}  outcomeResponse
// @Failure      502   {object}  errorResponse
// @Router       /v1/accounts/unlock [patch]
func (h *AccountHandler) Unlock(c echo.Context) error {
	var req confirmationRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	outcome, err := h.service.Unlock(c.Request().Context(), domain.ConfirmationRequest{Email: req.Email, Code: req.Code})
	if err != nil {
		return err
	}
	return c.JSON(outcomeStatus(outcome, http.StatusOK), toOutcomeResponse(outcome))
}

// ResetPassword starts the password reset flow.
//
// @Summary      Request a password reset
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Param        body  body      passwordResetRequest  true  "Account email"
// @Success      200   {object}  outcomeResponse
// @Failure      400   {object}  outcomeResponse
// @Failure      422   {object}  outcomeResponse
// @Failure      502   {object}  errorResponse
// @Router       /v1/accounts/password/reset [post]
func (h *AccountHandler) ResetPassword(c echo.Context) error {
	var req passwordResetRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	outcome, err := h.service.ResetPassword(c.Request().Context(), domain.PasswordResetRequest{Email: req.Email})
	if err != nil {
		return err
	}
	return c.JSON(outcomeStatus(outcome, http.StatusOK), toOutcomeResponse(outcome))
}

// UpdatePassword changes the password of the authenticated account.
//
// @Summary      Change password
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Security     BearerAuth
// @Param        body  body      passwordUpdateRequest  true  "Old and new password"
// @Success      200   {object}  outcomeResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      422   {object}  outcomeResponse
// @Router       /v1/accounts/password [patch]
func (h *AccountHandler) UpdatePassword(c echo.Context) error {
	token, err := ctxToken(c)
	if err != nil {
		return err
	}
	var req passwordUpdateRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	outcome, err := h.service.UpdatePassword(c.Request().Context(), token, domain.PasswordUpdateRequest{
		OldPassword: req.OldPassword,
		NewPassword: req.NewPassword,
	})
	if err != nil {
		return err
	}
	return c.JSON(outcomeStatus(outcome, http.StatusOK), toOutcomeResponse(outcome))
}

// IssueToken exchanges credentials for session cookies.
//
// @Summary      Log in
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      tokenRequest  true  "Credentials"
// @Success      200   {object}  outcomeResponse  "Sets accessToken and refreshToken cookies"
// @Failure      400   {object}  outcomeResponse
// @Failure      422   {object}  outcomeResponse
// @Failure      502   {object}  errorResponse
// @Router       /v1/auth/token [post]
func (h *AccountHandler) IssueToken(c echo.Context) error {
	var req tokenRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	grant, err := h.service.IssueToken(c.Request().Context(), domain.AuthByEmailRequest{Email: req.Email, Password: req.Password})
	if err != nil {
		return err
	}
	return respondGrant(c, grant)
}

// RefreshToken trades the refreshToken cookie for a new session.
//
// @Summary      Refresh session
// @Tags         auth
// @Produce      json
// @Param        refreshToken  header    string  false  "Sent as a cookie"
// @Success      200           {object}  outcomeResponse  "Sets accessToken and refreshToken cookies"
// @Failure      400           {object}  outcomeResponse
// @Failure      422           {object}  outcomeResponse
// @Failure      502           {object}  errorResponse
// @Router       /v1/auth/refresh [post]
func (h *AccountHandler) RefreshToken(c echo.Context) error {
	var refreshToken string
	if cookie, err := c.Cookie(domain.CookieRefreshToken); err == nil {
		refreshToken = cookie.Value
	}
	grant, err := h.service.RefreshToken(c.Request().Context(), refreshToken)
	if err != nil {
		return err
	}
	return respondGrant(c, grant)
}

// Get returns the local account. Owners and administrators only.
//
// @Summary      Get account
// @Tags         accounts
// @Produce      json
// @Security     CookieAuth
// @Security     BearerAuth
// @Param        id   path      int  true  "Account id"
// @Success      200  {object}  accountResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/accounts/{id} [get]
func (h *AccountHandler) Get(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	account, err := h.service.FindAccount(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toAccountResponse(account))
}

// LookupRemote returns the identity held by the auth service.
//
// @Summary      Look up a remote identity
// @Tags         admin
// @Produce      json
// @Security     CookieAuth
// @Security     BearerAuth
// @Param        login  query     string  false  "Login"
// @Param        email  query     string  false  "Email"
// @Success      200    {object}  remoteAccountResponse
// @Failure      400    {object}  errorResponse
// @Failure      403    {object}  errorResponse
// @Failure      502    {object}  errorResponse
// @Router       /v1/admin/accounts [get]
func (h *AccountHandler) LookupRemote(c echo.Context) error {
	login, email := c.QueryParam("login"), c.QueryParam("email")
	if login == "" && email == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "login or email is required")
	}
	account, err := h.service.LookupRemoteAccount(c.Request().Context(), login, email)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toRemoteAccountResponse(account))
}

func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

// respondGrant writes the session cookies of a successful grant and the outcome.
func respondGrant(c echo.Context, grant *domain.TokenGrant) error {
	if grant.Outcome.Success {
		for _, name := range domain.SessionCookieNames {
			c.Response().Header().Add(echo.HeaderSetCookie, grant.Cookies[name])
		}
	}
	return c.JSON(outcomeStatus(grant.Outcome, http.StatusOK), toOutcomeResponse(grant.Outcome))
}

// outcomeStatus maps an AuthOutcome to an HTTP status. Negative outcomes are
// answers, not errors, so they keep the outcome body.
func outcomeStatus(o domain.AuthOutcome, ok int) int {
	if o.Success {
		return ok
	}
	switch o.Type {
	case domain.ResultBadRequestInstance, domain.ResultInvalidEmail, domain.ResultInvalidPassword:
		return http.StatusBadRequest
	case domain.ResultNotCreatedLocally:
		return http.StatusInternalServerError
	default:
		return http.StatusUnprocessableEntity
	}
}
