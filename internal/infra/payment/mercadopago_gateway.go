package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"telegram-group-subscription/internal/domain"
	"telegram-group-subscription/internal/domain/ports/adapter"
)

const defaultBaseURL = "https://api.mercadopago.com"

// MercadoPagoGateway implements adapter.PaymentGateway with direct HTTP
// calls against the Mercado Pago payments API (PIX method).
type MercadoPagoGateway struct {
	accessToken     string
	baseURL         string
	notificationURL string
	client          *http.Client
}

// NewMercadoPagoGateway creates the gateway. baseURL may be empty for
// production; tests and sandboxes override it.
func NewMercadoPagoGateway(accessToken, baseURL, notificationURL string) *MercadoPagoGateway {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &MercadoPagoGateway{
		accessToken:     accessToken,
		baseURL:         baseURL,
		notificationURL: notificationURL,
		client:          &http.Client{Timeout: 15 * time.Second},
	}
}

func (g *MercadoPagoGateway) Name() string { return "mercadopago" }

// mpPaymentResponse is the subset of the payment resource this gateway reads.
type mpPaymentResponse struct {
	ID                 int64   `json:"id"`
	Status             string  `json:"status"`
	TransactionAmount  float64 `json:"transaction_amount"`
	ExternalReference  string  `json:"external_reference"`
	PointOfInteraction struct {
		TransactionData struct {
			QRCode       string `json:"qr_code"`
			QRCodeBase64 string `json:"qr_code_base64"`
		} `json:"transaction_data"`
	} `json:"point_of_interaction"`
}

func (g *MercadoPagoGateway) CreateIntent(ctx context.Context, amountCents int64, description, externalRef string, payer adapter.PayerInfo) (string, string, error) {
	requestData := map[string]interface{}{
		"transaction_amount": float64(amountCents) / 100,
		"description":        description,
		"payment_method_id":  "pix",
		"external_reference": externalRef,
		"payer": map[string]string{
			"email":      payer.Email,
			"first_name": payer.FirstName,
			"last_name":  payer.LastName,
		},
	}
	if g.notificationURL != "" {
		requestData["notification_url"] = g.notificationURL
	}

	jsonData, err := json.Marshal(requestData)
	if err != nil {
		return "", "", fmt.Errorf("failed to marshal request data: %w", err)
	}

	url := g.baseURL + "/v1/payments"
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.accessToken)
	// Mercado Pago dedups retried creates on this key; the local intent id
	// is already unique per attempt.
	req.Header.Set("X-Idempotency-Key", externalRef)

	resp, err := g.client.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", domain.ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", "", fmt.Errorf("%w: read response: %v", domain.ErrGatewayUnavailable, err)
	}
	if resp.StatusCode >= 500 {
		return "", "", fmt.Errorf("%w: status %d", domain.ErrGatewayUnavailable, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("%w: status %d, body: %s", domain.ErrGatewayRejected, resp.StatusCode, string(body))
	}

	var response mpPaymentResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", "", fmt.Errorf("failed to unmarshal response: %w, body: %s", err, string(body))
	}

	pixCode := response.PointOfInteraction.TransactionData.QRCode
	if pixCode == "" {
		pixCode = response.PointOfInteraction.TransactionData.QRCodeBase64
	}
	return strconv.FormatInt(response.ID, 10), pixCode, nil
}

func (g *MercadoPagoGateway) GetStatus(ctx context.Context, gatewayRef string) (adapter.GatewayStatus, int64, error) {
	url := g.baseURL + "/v1/payments/" + gatewayRef
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return adapter.GatewayStatusPending, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.accessToken)

	resp, err := g.client.Do(req)
	if err != nil {
		return adapter.GatewayStatusPending, 0, fmt.Errorf("%w: %v", domain.ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return adapter.GatewayStatusPending, 0, fmt.Errorf("%w: read response: %v", domain.ErrGatewayUnavailable, err)
	}
	if resp.StatusCode >= 500 {
		return adapter.GatewayStatusPending, 0, fmt.Errorf("%w: status %d", domain.ErrGatewayUnavailable, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return adapter.GatewayStatusPending, 0, fmt.Errorf("%w: status %d, body: %s", domain.ErrGatewayRejected, resp.StatusCode, string(body))
	}

	var response mpPaymentResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return adapter.GatewayStatusPending, 0, fmt.Errorf("failed to unmarshal response: %w, body: %s", err, string(body))
	}

	amountCents := int64(response.TransactionAmount*100 + 0.5)
	return normalizeStatus(response.Status), amountCents, nil
}

// normalizeStatus maps provider statuses onto the three the engine knows.
// Anything unrecognized is treated as pending, never as a rejection.
func normalizeStatus(s string) adapter.GatewayStatus {
	switch s {
	case "approved":
		return adapter.GatewayStatusApproved
	case "rejected", "cancelled", "refunded", "charged_back":
		return adapter.GatewayStatusRejected
	default:
		return adapter.GatewayStatusPending
	}
}
