package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rocjay1/finance-importer/internal/broker"
)

const quoteBatchSize = 50

// QuoteService fetches market prices from the configured quote API.
type QuoteService struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewQuoteService creates a QuoteService from QUOTE_API_URL and QUOTE_API_KEY.
func NewQuoteService() (*QuoteService, error) {
	baseURL := os.Getenv("QUOTE_API_URL")
	if baseURL == "" {
		return nil, fmt.Errorf("QUOTE_API_URL environment variable is required")
	}
	return NewQuoteServiceWithClient(baseURL, os.Getenv("QUOTE_API_KEY"), &http.Client{Timeout: 15 * time.Second}), nil
}

// NewQuoteServiceWithClient creates a QuoteService against an explicit endpoint.
func NewQuoteServiceWithClient(baseURL, apiKey string, client *http.Client) *QuoteService {
	return &QuoteService{baseURL: baseURL, apiKey: apiKey, httpClient: client}
}

type quoteResponse struct {
	Quotes []struct {
		Symbol string          `json:"symbol"`
		Price  decimal.Decimal `json:"price"`
	} `json:"quotes"`
}

// GetQuotes returns the latest price per symbol, keyed by the cleaned symbol
// (see broker.CleanSymbol). Symbols the API does not return are absent.
func (s *QuoteService) GetQuotes(ctx context.Context, symbols []string) (map[string]decimal.Decimal, error) {
	prices := make(map[string]decimal.Decimal, len(symbols))

	for start := 0; start < len(symbols); start += quoteBatchSize {
		end := min(start+quoteBatchSize, len(symbols))
		if err := s.fetch(ctx, symbols[start:end], prices); err != nil {
			return nil, err
		}
	}

	slog.Info("fetched quotes", "requested", len(symbols), "received", len(prices))
	return prices, nil
}

func (s *QuoteService) fetch(ctx context.Context, symbols []string, into map[string]decimal.Decimal) error {
	u, err := url.Parse(s.baseURL)
	if err != nil {
		return fmt.Errorf("failed to parse quote api url: %w", err)
	}
	q := u.Query()
	q.Set("symbols", strings.Join(symbols, ","))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to create quote request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if s.apiKey != "" {
		req.Header.Set("X-API-Key", s.apiKey)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to request quotes: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("quote request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var parsed quoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return fmt.Errorf("failed to decode quote response: %w", err)
	}

	for _, quote := range parsed.Quotes {
		if quote.Symbol == "" || !quote.Price.IsPositive() {
			continue
		}
		into[broker.CleanSymbol(quote.Symbol)] = quote.Price
	}
	return nil
}
