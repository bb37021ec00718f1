// Package httpapi serves the calculator as a JSON API.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"ecom-auditor/internal/advisor"
	"ecom-auditor/internal/feebook"
	"ecom-auditor/internal/profit"
	"ecom-auditor/internal/report"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

// Pinger is a dependency checked by /readyz.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	calc    profit.Calculator
	book    feebook.Book
	advisor *advisor.Advisor
	checks  map[string]Pinger
	logger  *zap.Logger
}

// NewHandler builds the API handler. A nil book serves the defaults; a nil
// advisor disables /v1/advice.
func NewHandler(calc profit.Calculator, book feebook.Book, adv *advisor.Advisor, checks map[string]Pinger, logger *zap.Logger) *Handler {
	if book == nil {
		book = feebook.Static{}
	}
	return &Handler{calc: calc, book: book, advisor: adv, checks: checks, logger: logger}
}

// calculationRequest carries one product. Missing product or fees fall back
// to the default product and the platform's active schedule.
type calculationRequest struct {
	Platform string               `json:"platform"`
	Product  *profit.ProductData  `json:"product"`
	Fees     *profit.FeeStructure `json:"fees"`
	Compare  bool                 `json:"compare"`
}

type calculationInput struct {
	platform profit.Platform
	product  profit.ProductData
	fees     profit.FeeStructure
	compare  bool
}

type platformDTO struct {
	ID          profit.Platform `json:"id"`
	DisplayName string          `json:"display_name"`
}

type feeScheduleResponse struct {
	Platform platformDTO         `json:"platform"`
	Fees     profit.FeeStructure `json:"fees"`
	Fields   []fieldDTO          `json:"fields"`
}

type fieldDTO struct {
	Key   string      `json:"key"`
	Label string      `json:"label"`
	Unit  profit.Unit `json:"unit"`
}

type calculationResponse struct {
	Platform platformDTO              `json:"platform"`
	Product  profit.ProductData       `json:"product"`
	Fees     profit.FeeStructure      `json:"fees"`
	Result   profit.CalculationResult `json:"result"`
}

type comparisonResponse struct {
	Shopee    profit.CalculationResult `json:"shopee"`
	TikTok    profit.CalculationResult `json:"tiktok"`
	Better    profit.Platform          `json:"better"`
	ProfitGap float64                  `json:"profit_gap"`
}

type breakdownResponse struct {
	Platform   platformDTO    `json:"platform"`
	Slices     []profit.Slice `json:"slices"`
	TotalCosts float64        `json:"total_costs"`
}

type adviceResponse struct {
	Platform platformDTO `json:"platform"`
	Advice   string      `json:"advice"`
}

func (h *Handler) healthz(w http.ResponseWriter, _ *http.Request) {
	writeSuccess(w, http.StatusOK, "ok", nil)
}

func (h *Handler) readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	for name, dep := range h.checks {
		if err := dep.Ping(ctx); err != nil {
			h.logger.Warn("Readiness check failed",
				zap.String("dependency", name),
				zap.Error(err))
			writeError(w, http.StatusServiceUnavailable, "not_ready", name+" unavailable", requestIDFromContext(r.Context()))
			return
		}
	}
	writeSuccess(w, http.StatusOK, "ready", nil)
}

func (h *Handler) listPlatforms(w http.ResponseWriter, _ *http.Request) {
	out := make([]platformDTO, 0, len(profit.Platforms()))
	for _, p := range profit.Platforms() {
		out = append(out, platformOf(p))
	}
	writeSuccess(w, http.StatusOK, "", out)
}

func (h *Handler) getFees(w http.ResponseWriter, r *http.Request) {
	p, err := profit.ParsePlatform(chi.URLParam(r, "platform"))
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found", err.Error(), requestIDFromContext(r.Context()))
		return
	}
	fees, err := h.book.Schedule(r.Context(), p)
	if err != nil {
		h.logger.Error("Failed to resolve fee schedule",
			zap.String("platform", string(p)),
			zap.Error(err))
		writeDomainError(w, r, err)
		return
	}

	resp := feeScheduleResponse{Platform: platformOf(p), Fees: fees}
	for _, f := range profit.FeeFields(p) {
		resp.Fields = append(resp.Fields, fieldDTO{Key: f.Key, Label: f.Label, Unit: f.Unit})
	}
	writeSuccess(w, http.StatusOK, "", resp)
}

func (h *Handler) calculate(w http.ResponseWriter, r *http.Request) {
	in, ok := h.decode(w, r)
	if !ok {
		return
	}
	result, err := h.calc.Calculate(in.platform, in.product, in.fees)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "", calculationResponse{
		Platform: platformOf(in.platform),
		Product:  in.product,
		Fees:     in.fees,
		Result:   result,
	})
}

func (h *Handler) compare(w http.ResponseWriter, r *http.Request) {
	var req calculationRequest
	if !decodeBody(w, r, &req) {
		return
	}
	product := profit.DefaultProduct()
	if req.Product != nil {
		product = *req.Product
	}
	if err := product.Validate(); err != nil {
		writeDomainError(w, r, err)
		return
	}

	cmp, err := h.calc.Compare(product, feebook.Resolver(r.Context(), h.book, h.logger))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "", comparisonResponse{
		Shopee:    cmp.Shopee,
		TikTok:    cmp.TikTok,
		Better:    cmp.Better(),
		ProfitGap: cmp.ProfitGap(),
	})
}

func (h *Handler) breakdown(w http.ResponseWriter, r *http.Request) {
	in, ok := h.decode(w, r)
	if !ok {
		return
	}
	result, err := h.calc.Calculate(in.platform, in.product, in.fees)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "", breakdownResponse{
		Platform:   platformOf(in.platform),
		Slices:     profit.Breakdown(result),
		TotalCosts: profit.TotalCosts(result),
	})
}

func (h *Handler) advice(w http.ResponseWriter, r *http.Request) {
	if h.advisor == nil {
		writeError(w, http.StatusServiceUnavailable, "advice_unavailable", "advice is not configured", requestIDFromContext(r.Context()))
		return
	}
	in, ok := h.decode(w, r)
	if !ok {
		return
	}
	result, err := h.calc.Calculate(in.platform, in.product, in.fees)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	text, err := h.advisor.Advise(r.Context(), in.platform, in.product, result)
	if err != nil {
		// The client went away; nobody is left to answer.
		h.logger.Debug("Advice request abandoned",
			zap.String("request_id", requestIDFromContext(r.Context())),
			zap.Error(err))
		return
	}
	writeSuccess(w, http.StatusOK, "", adviceResponse{Platform: platformOf(in.platform), Advice: text})
}

func (h *Handler) report(w http.ResponseWriter, r *http.Request) {
	in, ok := h.decode(w, r)
	if !ok {
		return
	}
	result, err := h.calc.Calculate(in.platform, in.product, in.fees)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	rep := report.Input{
		Platform:    in.platform,
		Product:     in.product,
		Fees:        in.fees,
		Result:      result,
		GeneratedAt: time.Now(),
	}
	if in.compare {
		cmp, err := h.calc.Compare(in.product, feebook.Resolver(r.Context(), h.book, h.logger))
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		rep.Comparison = &cmp
	}

	data, err := report.Build(rep)
	if err != nil {
		h.logger.Error("Failed to build report", zap.Error(err))
		writeDomainError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", report.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.FileName(in.platform, rep.GeneratedAt)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.logger.Warn("Failed to write report", zap.Error(err))
	}
}

// decode reads a calculation request, fills in defaults and validates it. It
// writes the error response itself and reports whether to continue.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (calculationInput, bool) {
	var req calculationRequest
	if !decodeBody(w, r, &req) {
		return calculationInput{}, false
	}

	in, err := h.resolve(r.Context(), req)
	if err != nil {
		writeDomainError(w, r, err)
		return calculationInput{}, false
	}
	return in, true
}

func (h *Handler) resolve(ctx context.Context, req calculationRequest) (calculationInput, error) {
	raw := req.Platform
	if raw == "" {
		raw = string(profit.PlatformShopee)
	}
	p, err := profit.ParsePlatform(raw)
	if err != nil {
		return calculationInput{}, err
	}

	in := calculationInput{platform: p, product: profit.DefaultProduct(), compare: req.Compare}
	if req.Product != nil {
		in.product = *req.Product
	}
	if req.Fees != nil {
		in.fees = *req.Fees
	} else {
		in.fees = feebook.Resolver(ctx, h.book, h.logger)(p)
	}

	if err := in.product.Validate(); err != nil {
		return calculationInput{}, err
	}
	if err := in.fees.Validate(); err != nil {
		return calculationInput{}, err
	}
	return in, nil
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	writeError(w, http.StatusBadRequest, "invalid_json", err.Error(), requestIDFromContext(r.Context()))
	return false
}

func platformOf(p profit.Platform) platformDTO {
	return platformDTO{ID: p, DisplayName: p.DisplayName()}
}
