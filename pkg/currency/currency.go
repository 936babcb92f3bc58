// Package currency converts payment amounts into the CNY reporting currency.
package currency

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Base is the reporting currency.
const Base = "CNY"

const DefaultBaseURL = "https://api.frankfurter.dev"

// Rates holds units of each currency per one CNY.
type Rates map[string]float64

// cnyPerUnit is used when the rate API is unreachable or lacks a currency.
var cnyPerUnit = map[string]float64{
	"USD": 6.98,
	"HKD": 0.90,
	"TWD": 0.22,
	"JPY": 0.044,
	"EUR": 8.16,
	"GBP": 9.40,
	"KRW": 0.0048,
	"TRY": 0.16,
}

// Fallback returns the built-in rates.
func Fallback() Rates {
	out := Rates{Base: 1}
	for code, cny := range cnyPerUnit {
		out[code] = 1 / cny
	}
	return out
}

// Merge overlays fresh on the fallback table.
func Merge(fresh Rates) Rates {
	out := Fallback()
	for code, rate := range fresh {
		if rate > 0 {
			out[strings.ToUpper(code)] = rate
		}
	}
	out[Base] = 1
	return out
}

// ToCNY converts amount. Non-positive amounts count as zero and unknown
// currencies are taken at face value.
func (r Rates) ToCNY(amount float64, code string) float64 {
	if amount <= 0 {
		return 0
	}
	code = strings.ToUpper(code)
	if code == "" || code == Base {
		return amount
	}
	rate, ok := r[code]
	if !ok || rate <= 0 {
		return amount
	}
	return amount / rate
}

// Client fetches the latest CNY based rates from a Frankfurter compatible API.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

type latestResponse struct {
	Base  string             `json:"base"`
	Rates map[string]float64 `json:"rates"`
}

// Latest returns the published rates merged over the fallback table.
func (c *Client) Latest(ctx context.Context) (Rates, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/latest?base="+Base, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch rates: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch rates: status %d", resp.StatusCode)
	}
	var body latestResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode rates: %w", err)
	}
	if body.Base != "" && !strings.EqualFold(body.Base, Base) {
		return nil, fmt.Errorf("rates quoted in %s, want %s", body.Base, Base)
	}
	return Merge(body.Rates), nil
}
