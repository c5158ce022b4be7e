package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"loansyncro/internal/adapter/middleware"
	"loansyncro/internal/usecase/account"
)

type AccountHandler struct{ uc *account.Usecase }

func NewAccountHandler(uc *account.Usecase) *AccountHandler { return &AccountHandler{uc: uc} }

type registerReq struct {
	Email    string `json:"email"     validate:"required,email"`
	Password string `json:"password"  validate:"required,min=8,max=72"`
	FullName string `json:"full_name" validate:"max=255"`
}

type loginReq struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (h *AccountHandler) Register(c echo.Context) error {
	var req registerReq
	if er := decode(c, &req); er != nil {
		return c.JSON(http.StatusBadRequest, er)
	}
	dto, err := h.uc.Register(c.Request().Context(), account.RegisterInput(req))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *AccountHandler) Login(c echo.Context) error {
	var req loginReq
	if er := decode(c, &req); er != nil {
		return c.JSON(http.StatusBadRequest, er)
	}
	dto, err := h.uc.Login(c.Request().Context(), account.LoginInput(req))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *AccountHandler) Me(c echo.Context) error {
	dto, err := h.uc.Me(c.Request().Context(), middleware.CurrentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}
