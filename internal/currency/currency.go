// Package currency converts and formats storefront prices using a live rate
// table quoted against one base currency.
package currency

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"

	apperrors "github.com/FBK-Manuel/wearehfg/pkg/errors"
	"github.com/FBK-Manuel/wearehfg/pkg/httpclient"
)

var symbols = map[string]string{
	"USD": "$",
	"NGN": "₦",
	"EUR": "€",
	"GBP": "£",
	"CAD": "C$",
	"PLN": "zł",
}

// Symbol is the display prefix for code. Codes without a symbol are shown
// as "CODE ".
func Symbol(code string) string {
	if s, ok := symbols[code]; ok {
		return s
	}
	return code + " "
}

// ParseCode normalizes an ISO 4217 code such as "ngn".
func ParseCode(code string) (string, error) {
	unit, err := currency.ParseISO(strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return "", apperrors.InvalidInput(fmt.Sprintf("unknown currency %q", code))
	}
	return unit.String(), nil
}

// Converter holds the current rate table. The base currency always has rate 1.
type Converter struct {
	base     string
	ratesURL string
	client   httpclient.Doer
	logger   *slog.Logger

	mu        sync.RWMutex
	rates     map[string]decimal.Decimal
	fetchedAt time.Time
}

// NewConverter starts with only the base rate. ratesURL may be empty, in
// which case Refresh is a no-op and every conversion is 1:1.
func NewConverter(base, ratesURL string, client httpclient.Doer, logger *slog.Logger) *Converter {
	base = strings.ToUpper(strings.TrimSpace(base))
	if base == "" {
		base = "USD"
	}
	return &Converter{
		base:     base,
		ratesURL: ratesURL,
		client:   client,
		logger:   logger,
		rates:    map[string]decimal.Decimal{base: decimal.NewFromInt(1)},
	}
}

func (c *Converter) Base() string { return c.base }

// quotesResponse is the apilayer "live" payload: pairs such as "USDNGN".
type quotesResponse struct {
	Success *bool                      `json:"success"`
	Source  string                     `json:"source"`
	Quotes  map[string]decimal.Decimal `json:"quotes"`
}

// Refresh replaces the rate table from the rates URL. On failure the
// previous table stays in place and the error is returned.
func (c *Converter) Refresh(ctx context.Context) error {
	if c.ratesURL == "" {
		return nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.ratesURL, http.NoBody)
	if err != nil {
		return fmt.Errorf("create rates request: %w", err)
	}
	resp, err := c.client.Do(ctx, req)
	if err != nil {
		return fmt.Errorf("fetch rates: %w", err)
	}
	body, err := httpclient.ReadBody(resp)
	if err != nil {
		return fmt.Errorf("read rates: %w", err)
	}
	if !httpclient.IsSuccess(resp.StatusCode) {
		return fmt.Errorf("fetch rates: %w", &httpclient.StatusError{StatusCode: resp.StatusCode, Body: body})
	}

	var payload quotesResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return fmt.Errorf("decode rates: %w", err)
	}
	if len(payload.Quotes) == 0 {
		return fmt.Errorf("rates response has no quotes")
	}

	source := strings.ToUpper(payload.Source)
	if source == "" {
		source = c.base
	}
	next := map[string]decimal.Decimal{c.base: decimal.NewFromInt(1)}
	for pair, rate := range payload.Quotes {
		target := strings.TrimPrefix(strings.ToUpper(pair), source)
		if target == "" || !rate.IsPositive() {
			continue
		}
		next[target] = rate
	}

	c.mu.Lock()
	c.rates = next
	c.fetchedAt = time.Now()
	c.mu.Unlock()

	c.logger.InfoContext(ctx, "currency rates refreshed",
		slog.String("base", c.base),
		slog.Int("currencies", len(next)),
	)
	return nil
}

// Rate returns the multiplier for code, or 1 when the table has none.
func (c *Converter) Rate(code string) decimal.Decimal {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if r, ok := c.rates[strings.ToUpper(code)]; ok {
		return r
	}
	return decimal.NewFromInt(1)
}

// Rates returns a copy of the table and when it was fetched (zero if never).
func (c *Converter) Rates() (map[string]decimal.Decimal, time.Time) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return maps.Clone(c.rates), c.fetchedAt
}

// Convert turns an amount in the base currency into code.
func (c *Converter) Convert(amount decimal.Decimal, code string) decimal.Decimal {
	return amount.Mul(c.Rate(code))
}

// Format converts amount and renders it with two decimals, thousands
// separators and the currency symbol, e.g. "₦1,234.50".
func (c *Converter) Format(amount decimal.Decimal, code string) string {
	code = strings.ToUpper(code)
	return FormatAmount(c.Convert(amount, code), code)
}

// FormatAmount renders an already converted amount.
func FormatAmount(amount decimal.Decimal, code string) string {
	sign := ""
	if amount.IsNegative() {
		sign = "-"
		amount = amount.Neg()
	}
	fixed := amount.StringFixed(2)
	whole, frac, _ := strings.Cut(fixed, ".")
	return sign + Symbol(code) + group(whole) + "." + frac
}

func group(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
