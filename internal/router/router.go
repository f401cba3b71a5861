package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"commercego/internal/handler"
	"commercego/internal/middleware"
	"commercego/internal/model"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	gate *middleware.Auth,
	userAccounts *handler.AccountHandler,
	merchantAccounts *handler.AccountHandler,
	userHandler *handler.UserHandler,
	merchantHandler *handler.MerchantHandler,
	webpageHandler *handler.WebpageHandler,
) {
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())

	// Add validator
	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	// Account routes: the path token or a flow-scoped bearer token is the credential.
	accounts := api.Group("/accounts")
	accounts.POST("/login", userAccounts.Login)
	accounts.PUT("/activate/:token", userAccounts.Activate, gate.Activation(model.KindUser))
	accounts.POST("/restorepassword/email", userAccounts.RestoreEmail)
	accounts.POST("/restorepassword/code", userAccounts.RestoreCode, gate.RestorationCode(model.KindUser))
	accounts.PUT("/restorepassword", userAccounts.RestorePassword, gate.RestorationPassword(model.KindUser))

	// User routes
	api.POST("/users/register", userHandler.Register)
	users := api.Group("/users", gate.Session())
	users.GET("", userHandler.List, gate.RequireRoles(model.RoleAdmin, model.RoleOwner))
	users.GET("/:id", userHandler.Get, gate.RequireSameOrGreaterPrivilege(model.KindUser))
	users.PUT("/:id", userHandler.Update, gate.RequireSameOrGreaterPrivilege(model.KindUser))
	users.DELETE("/:id", userHandler.Delete, gate.RequireSameOrGreaterPrivilege(model.KindUser))
	users.PUT("/promote/:id", userHandler.Promote, gate.RequireRoles(model.RoleOwner))

	// Merchant routes: same account flows parameterized by entity kind.
	merchants := api.Group("/merchants")
	merchants.POST("/register", merchantHandler.Register)
	merchants.POST("/login", merchantAccounts.Login)
	merchants.PUT("/activate/:token", merchantAccounts.Activate, gate.Activation(model.KindMerchant))
	merchants.POST("/restorepassword/email", merchantAccounts.RestoreEmail)
	merchants.POST("/restorepassword/code", merchantAccounts.RestoreCode, gate.RestorationCode(model.KindMerchant))
	merchants.PUT("/restorepassword", merchantAccounts.RestorePassword, gate.RestorationPassword(model.KindMerchant))
	merchants.PUT("/accept/:id", merchantHandler.Accept, gate.Session(), gate.RequireRoles(model.RoleAdmin, model.RoleOwner))
	merchants.GET("", merchantHandler.List)
	merchants.GET("/:id", merchantHandler.Get)
	merchants.PUT("/:id", merchantHandler.Update, gate.Session(), gate.RequireSameOrGreaterPrivilege(model.KindMerchant))
	merchants.DELETE("/:id", merchantHandler.Delete, gate.Session(), gate.RequireSameOrGreaterPrivilege(model.KindMerchant))

	// Webpage routes: reads are public, mutations need a session.
	webpages := api.Group("/webpages")
	webpages.GET("", webpageHandler.List)
	webpages.GET("/:id", webpageHandler.Get)
	webpages.POST("", webpageHandler.Create, gate.Session())
	webpages.PUT("/:id", webpageHandler.Update, gate.Session())
	webpages.DELETE("/:id", webpageHandler.Delete, gate.Session())
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
