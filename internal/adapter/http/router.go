package http

import (
	"github.com/labstack/echo/v4"
)

type Handlers struct {
	Health     *Handler
	Accounts   *AccountHandler
	Loans      *LoanHandler
	Repayments *RepaymentHandler
}

// Register mounts every route. auth guards everything but /health and
// /auth; guarded runs after it (idempotency and the like).
func Register(e *echo.Echo, h Handlers, auth echo.MiddlewareFunc, guarded ...echo.MiddlewareFunc) {
	e.GET("/health", h.Health.Health)

	a := e.Group("/auth")
	a.POST("/register", h.Accounts.Register)
	a.POST("/login", h.Accounts.Login)

	mws := append([]echo.MiddlewareFunc{auth}, guarded...)

	u := e.Group("/users", mws...)
	u.GET("/me", h.Accounts.Me)

	l := e.Group("/loans", mws...)
	l.POST("", h.Loans.CreateLoan)
	l.GET("", h.Loans.ListLoans)
	l.GET("/:id", h.Loans.GetLoan)
	l.PUT("/:id", h.Loans.UpdateLoan)
	l.DELETE("/:id", h.Loans.DeleteLoan)

	r := e.Group("/repayments", mws...)
	r.POST("", h.Repayments.CreateRepayment)
	r.GET("", h.Repayments.ListRepayments)
	r.GET("/summary", h.Repayments.Summary)
	r.GET("/loan/:loan_id", h.Repayments.ListLoanRepayments)
}
