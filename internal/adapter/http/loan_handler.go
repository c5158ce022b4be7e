package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"loansyncro/internal/adapter/middleware"
	"loansyncro/internal/usecase/loan"
)

type LoanHandler struct{ uc *loan.Usecase }

func NewLoanHandler(uc *loan.Usecase) *LoanHandler { return &LoanHandler{uc: uc} }

type createLoanReq struct {
	Title        string  `json:"title"         validate:"required,max=255"`
	Amount       float64 `json:"amount"        validate:"gt=0,dec2"`
	InterestRate float64 `json:"interest_rate" validate:"gte=0"`
	TermMonths   int     `json:"term_months"   validate:"gt=0"`
	StartDate    string  `json:"start_date"    validate:"required,isodate"`
	Description  string  `json:"description"   validate:"max=2000"`
}

// Absent fields keep their stored value.
type updateLoanReq struct {
	Title        *string  `json:"title"         validate:"omitnil,min=1,max=255"`
	Amount       *float64 `json:"amount"        validate:"omitnil,gt=0,dec2"`
	InterestRate *float64 `json:"interest_rate" validate:"omitnil,gte=0"`
	TermMonths   *int     `json:"term_months"   validate:"omitnil,gt=0"`
	StartDate    *string  `json:"start_date"    validate:"omitnil,isodate"`
	Description  *string  `json:"description"   validate:"omitnil,max=2000"`
}

func (h *LoanHandler) CreateLoan(c echo.Context) error {
	var req createLoanReq
	if er := decode(c, &req); er != nil {
		return c.JSON(http.StatusBadRequest, er)
	}
	start, _ := ParseDate(req.StartDate) // checked by isodate
	dto, err := h.uc.Create(c.Request().Context(), middleware.CurrentUserID(c), loan.CreateLoanInput{
		Title:        req.Title,
		Amount:       req.Amount,
		InterestRate: req.InterestRate,
		TermMonths:   req.TermMonths,
		StartDate:    start,
		Description:  req.Description,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *LoanHandler) ListLoans(c echo.Context) error {
	out, err := h.uc.List(c.Request().Context(), middleware.CurrentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *LoanHandler) GetLoan(c echo.Context) error {
	dto, err := h.uc.Get(c.Request().Context(), middleware.CurrentUserID(c), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) UpdateLoan(c echo.Context) error {
	var req updateLoanReq
	if er := decode(c, &req); er != nil {
		return c.JSON(http.StatusBadRequest, er)
	}
	in := loan.UpdateLoanInput{
		Title:        req.Title,
		Amount:       req.Amount,
		InterestRate: req.InterestRate,
		TermMonths:   req.TermMonths,
		Description:  req.Description,
	}
	if req.StartDate != nil {
		start, _ := ParseDate(*req.StartDate)
		in.StartDate = &start
	}
	dto, err := h.uc.Update(c.Request().Context(), middleware.CurrentUserID(c), c.Param("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) DeleteLoan(c echo.Context) error {
	dto, err := h.uc.Delete(c.Request().Context(), middleware.CurrentUserID(c), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}
