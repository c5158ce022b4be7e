package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"loansyncro/internal/adapter/middleware"
	"loansyncro/internal/usecase/repayment"
)

type RepaymentHandler struct{ uc *repayment.Usecase }

func NewRepaymentHandler(uc *repayment.Usecase) *RepaymentHandler {
	return &RepaymentHandler{uc: uc}
}

type createRepaymentReq struct {
	LoanID      string  `json:"loan_id"      validate:"required,hex32"`
	Amount      float64 `json:"amount"       validate:"gt=0,dec2"`
	PaymentDate string  `json:"payment_date" validate:"required,isodate"`
	Notes       string  `json:"notes"        validate:"max=2000"`
}

func (h *RepaymentHandler) CreateRepayment(c echo.Context) error {
	var req createRepaymentReq
	if er := decode(c, &req); er != nil {
		return c.JSON(http.StatusBadRequest, er)
	}
	paid, _ := ParseDate(req.PaymentDate)
	dto, err := h.uc.Create(c.Request().Context(), middleware.CurrentUserID(c), repayment.CreateRepaymentInput{
		LoanID:      req.LoanID,
		Amount:      req.Amount,
		PaymentDate: paid,
		Notes:       req.Notes,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

// ListRepayments returns every repayment of the caller, newest first.
func (h *RepaymentHandler) ListRepayments(c echo.Context) error {
	out, err := h.uc.ListForUser(c.Request().Context(), middleware.CurrentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *RepaymentHandler) ListLoanRepayments(c echo.Context) error {
	out, err := h.uc.ListForLoan(c.Request().Context(), middleware.CurrentUserID(c), c.Param("loan_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *RepaymentHandler) Summary(c echo.Context) error {
	out, err := h.uc.Summary(c.Request().Context(), middleware.CurrentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
