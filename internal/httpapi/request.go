package httpapi

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/joelkehle/startup-valuation/internal/valuation"
)

const maxBodyBytes = 64 << 10

// valuationRequest is the wire form of valuation.Input. Only the upper
// bounds on ARR and TAM (valuation.MaxARR, valuation.MaxTAM) are checked
// here; everything else, negative values included, is clamped during
// computation.
type valuationRequest struct {
	CompanyName     string  `json:"company_name" validate:"max=200"`
	Stage           string  `json:"stage" validate:"required,oneof=concept seed seriesA seriesB seriesC"`
	ARR             float64 `json:"arr" validate:"lte=1000000"`
	MonthlyGrowth   float64 `json:"monthly_growth"`
	TAM             float64 `json:"tam" validate:"lte=1000000"`
	GrossMargin     float64 `json:"gross_margin"`
	NetRetention    float64 `json:"net_retention"`
	BurnMultiple    float64 `json:"burn_multiple"`
	TeamStrength    float64 `json:"team_strength"`
	Differentiation float64 `json:"differentiation"`
}

func (r valuationRequest) input() valuation.Input {
	return valuation.Input{
		CompanyName:     strings.TrimSpace(r.CompanyName),
		Stage:           valuation.Stage(r.Stage),
		ARR:             r.ARR,
		MonthlyGrowth:   r.MonthlyGrowth,
		TAM:             r.TAM,
		GrossMargin:     r.GrossMargin,
		NetRetention:    r.NetRetention,
		BurnMultiple:    r.BurnMultiple,
		TeamStrength:    r.TeamStrength,
		Differentiation: r.Differentiation,
	}
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func (s *Server) decodeInput(r *http.Request) (valuation.Input, error) {
	var req valuationRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return valuation.Input{}, newError(CodeValidation, fmt.Sprintf("invalid json: %v", err))
	}
	if err := s.validate.Struct(req); err != nil {
		return valuation.Input{}, err
	}
	return req.input(), nil
}
