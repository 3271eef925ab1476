package pricing

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"

	"github.com/noah-isme/toko-margin/internal/common"
	"github.com/noah-isme/toko-margin/internal/money"
)

// Handler exposes the pricing calculations over HTTP.
type Handler struct {
	Svc      *Service
	Validate *validator.Validate
}

// FieldError describes one failed validation rule.
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

// NewHandler builds a handler with a validator reporting JSON field names.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc, Validate: NewValidator()}
}

// NewValidator returns a validator that names fields after their json tags.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Routes registers the pricing endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/profit", h.TotalProfit)
	r.Post("/profit/base", h.BaseProfit)
	r.Post("/profit/separate", h.SeparateSalesProfit)
	r.Post("/discount/max-extra", h.MaxDiscountPerExtraUnit)
	r.Post("/discount/uniform", h.UniformDiscount)
	r.Post("/compare", h.Compare)
	r.Post("/direct-sale", h.DirectSale)
	r.Post("/report", h.Report)
}

// TotalProfit returns the batch profit with the optional discount from the request.
func (h *Handler) TotalProfit(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	profit, err := h.Svc.TotalProfit(r.Context(), req.Params(), req.Discount())
	respond(w, map[string]any{"profit": profit}, err)
}

// BaseProfit returns the batch profit without discount.
func (h *Handler) BaseProfit(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	profit, err := h.Svc.BaseProfit(r.Context(), req.Params())
	respond(w, map[string]any{"profit": profit}, err)
}

// SeparateSalesProfit returns the profit of selling each unit separately.
func (h *Handler) SeparateSalesProfit(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	profit, err := h.Svc.SeparateSalesProfit(r.Context(), req.Params())
	respond(w, map[string]any{"profit": profit}, err)
}

// MaxDiscountPerExtraUnit returns the marginal break-even discount.
func (h *Handler) MaxDiscountPerExtraUnit(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	res, err := h.Svc.MaxDiscountPerExtraUnit(r.Context(), req.Params())
	respond(w, res, err)
}

// UniformDiscount returns the break-even discount applicable to every unit.
func (h *Handler) UniformDiscount(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	res, err := h.Svc.UniformDiscount(r.Context(), req.Params())
	respond(w, res, err)
}

// Compare contrasts batch and separate sales.
func (h *Handler) Compare(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	res, err := h.Svc.CompareSalesStrategies(r.Context(), req.Params())
	respond(w, res, err)
}

// DirectSale returns the direct-sale analysis.
func (h *Handler) DirectSale(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	res, err := h.Svc.DirectSalePrice(r.Context(), req.Params())
	respond(w, res, err)
}

// Report returns every calculation at once.
func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	res, err := h.Svc.Report(r.Context(), req.Params())
	respond(w, res, err)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (SaleRequest, bool) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "pricing service not configured", nil)
		return SaleRequest{}, false
	}
	var req SaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if errors.Is(err, money.ErrInvalidNumber) {
			common.JSONError(w, http.StatusBadRequest, common.CodeInvalidNumber, err.Error(), nil)
			return SaleRequest{}, false
		}
		common.JSONError(w, http.StatusBadRequest, common.CodeBadRequest, "invalid payload", nil)
		return SaleRequest{}, false
	}
	if h.Validate != nil {
		if err := h.Validate.Struct(req); err != nil {
			var verrs validator.ValidationErrors
			if errors.As(err, &verrs) {
				details := make([]FieldError, 0, len(verrs))
				for _, fe := range verrs {
					details = append(details, FieldError{Field: fe.Field(), Rule: fe.Tag()})
				}
				common.JSONError(w, http.StatusBadRequest, common.CodeValidationFailed, "validation failed", details)
				return SaleRequest{}, false
			}
			common.JSONError(w, http.StatusBadRequest, common.CodeBadRequest, err.Error(), nil)
			return SaleRequest{}, false
		}
	}
	return req, true
}

func respond(w http.ResponseWriter, v any, err error) {
	if err != nil {
		common.WriteError(w, toAppError(err))
		return
	}
	common.Data(w, http.StatusOK, v)
}

func toAppError(err error) *common.AppError {
	switch {
	case errors.Is(err, money.ErrInvalidNumber):
		return common.NewAppError(common.CodeInvalidNumber, err.Error(), http.StatusBadRequest, err)
	case errors.Is(err, ErrNegativeQuantity):
		return common.NewAppError(common.CodeBadRequest, err.Error(), http.StatusBadRequest, err)
	case errors.Is(err, ErrUnsupportedFeeModel):
		return common.NewAppError(common.CodeUnsupportedFeeModel, err.Error(), http.StatusBadRequest, err)
	case errors.Is(err, money.ErrDivisionByZero):
		return common.NewAppError(common.CodeDivisionByZero, err.Error(), http.StatusUnprocessableEntity, err)
	default:
		return common.AsAppError(err)
	}
}
