package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/npetros/argosales/internal/llm"
)

// NoPriceFound is the sentinel the constrained-choice extraction returns
// when no catalog entry matches the query. It is part of the enum handed to
// the model, so compare verbatim.
const NoPriceFound = "No relevant price id found"

// PaymentConfig configures the payment-link action.
type PaymentConfig struct {
	GatewayURL string
	StripeKey  string
	// PriceMapping maps human product names to gateway price identifiers.
	PriceMapping map[string]string
	Timeout      time.Duration
}

// LoadPriceMapping reads the product-price mapping JSON file.
func LoadPriceMapping(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read price mapping: %w", err)
	}
	var mapping map[string]string
	if err := json.Unmarshal(data, &mapping); err != nil {
		return nil, fmt.Errorf("parse price mapping %s: %w", path, err)
	}
	return mapping, nil
}

const priceIDPrompt = `You are an expert data scientist and you are working on a project to recommend products to customers based on their needs.
Given the following query:
%s
and the following product price id mapping:
%s
return the price id that is most relevant to the query.
ONLY return the price id, no other text. If no relevant price id is found, return '%s'.
Your output must be a JSON object with a single key "price_id" whose value is
one of the following enumeration:
%s`

// resolvePriceID runs the constrained-choice extraction: the model must pick
// one of the mapping's price IDs or the NoPriceFound sentinel.
func resolvePriceID(ctx context.Context, client llm.Client, mapping map[string]string, query string) (string, error) {
	mappingJSON, err := json.Marshal(mapping)
	if err != nil {
		return "", fmt.Errorf("marshal price mapping: %w", err)
	}
	enum := make([]string, 0, len(mapping)+1)
	for _, id := range mapping {
		enum = append(enum, id)
	}
	enum = append(enum, NoPriceFound)
	enumJSON, err := json.Marshal(enum)
	if err != nil {
		return "", fmt.Errorf("marshal price enum: %w", err)
	}

	var out struct {
		PriceID string `json:"price_id"`
	}
	prompt := fmt.Sprintf(priceIDPrompt, query, mappingJSON, NoPriceFound, enumJSON)
	if err := llm.Extract(ctx, client, prompt, &out); err != nil {
		return "", err
	}

	if out.PriceID == NoPriceFound {
		return NoPriceFound, nil
	}
	// Reject hallucinated IDs that are not in the catalog.
	for _, id := range mapping {
		if out.PriceID == id {
			return out.PriceID, nil
		}
	}
	return NoPriceFound, nil
}

// NewPaymentLinkTool builds the GeneratePaymentLink action: resolve a price
// identifier from the query, then ask the payment gateway for a link. The
// gateway is never called when no price matches — payment-link creation is
// not safe to fire speculatively.
func NewPaymentLinkTool(client llm.Client, cfg PaymentConfig) *Tool {
	httpClient := &http.Client{Timeout: cfg.Timeout}
	return &Tool{
		Name: "GeneratePaymentLink",
		Description: "useful to close a transaction with a customer. " +
			"You need to include product name and quantity and customer name in the query input.",
		Handler: func(ctx context.Context, input string) (string, error) {
			priceID, err := resolvePriceID(ctx, client, cfg.PriceMapping, input)
			if err != nil {
				return "", fmt.Errorf("resolve price id: %w", err)
			}
			if priceID == NoPriceFound {
				return "No matching product was found for this request, so no payment link was created.", nil
			}

			payload, err := json.Marshal(map[string]string{
				"prompt":     input,
				"price_id":   priceID,
				"stripe_key": cfg.StripeKey,
			})
			if err != nil {
				return "", fmt.Errorf("marshal gateway payload: %w", err)
			}

			req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.GatewayURL, bytes.NewReader(payload))
			if err != nil {
				return "", fmt.Errorf("build gateway request: %w", err)
			}
			req.Header.Set("Content-Type", "application/json")

			resp, err := httpClient.Do(req)
			if err != nil {
				return "", fmt.Errorf("payment gateway request: %w", err)
			}
			defer resp.Body.Close()

			body, err := io.ReadAll(resp.Body)
			if err != nil {
				return "", fmt.Errorf("read gateway response: %w", err)
			}
			if resp.StatusCode < 200 || resp.StatusCode > 299 {
				return "", fmt.Errorf("payment gateway returned status %d: %s", resp.StatusCode, body)
			}
			return string(body), nil
		},
	}
}
