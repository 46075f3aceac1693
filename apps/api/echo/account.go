package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/tsongo/darasa/core/account"
)

type accountApi struct {
	svc *account.Service
}

func registerAccountAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := accountApi{svc: deps.AccountSvc}

	ag := g.Group("/auth")

	// un-authed endpoints
	ag.POST("/signup", api.signup)
	ag.POST("/login", api.login)

	// authed endpoints
	authed := ag.Group("", jwt)
	authed.POST("/password", api.changePassword)
	authed.GET("/me", api.me)
}

func (api *accountApi) signup(ctx echo.Context) error {
	var data account.NewAccount
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAccount")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	acct, err := api.svc.Register(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "registering account")
	}
	return ctx.JSON(http.StatusCreated, acct)
}

func (api *accountApi) login(ctx echo.Context) error {
	var data account.Credentials
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Credentials")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	session, err := api.svc.Authenticate(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "authenticating")
	}
	return ctx.JSON(http.StatusOK, session)
}

func (api *accountApi) changePassword(ctx echo.Context) error {
	var data account.ChangePassword
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ChangePassword")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	if err = api.svc.ChangePassword(ctx.Request().Context(), claims.Subject, data); err != nil {
		return errors.Wrap(err, "changing password")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *accountApi) me(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	prof, err := api.svc.ProfileByAccountID(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return errors.Wrap(err, "finding profile")
	}
	return ctx.JSON(http.StatusOK, prof)
}
