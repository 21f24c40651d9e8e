package gateway

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"slumpers-ticketing/config"
	"slumpers-ticketing/internal/cache"
	apperrors "slumpers-ticketing/pkg/app_errors"
	"slumpers-ticketing/pkg/logger"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	sandboxBaseURL    = "https://sandbox.safaricom.co.ke"
	productionBaseURL = "https://api.safaricom.co.ke"

	// Daraja tokens live ~3600s; cache slightly shorter.
	tokenCacheMargin = 60 * time.Second
)

type StkPushRequest struct {
	PhoneNumber      string
	Amount           decimal.Decimal
	AccountReference string
	TransactionDesc  string
}

type StkPushResponse struct {
	MerchantRequestID   string `json:"MerchantRequestID"`
	CheckoutRequestID   string `json:"CheckoutRequestID"`
	ResponseCode        string `json:"ResponseCode"`
	ResponseDescription string `json:"ResponseDescription"`
	CustomerMessage     string `json:"CustomerMessage"`
}

type StkQueryResponse struct {
	ResponseCode      string `json:"ResponseCode"`
	CheckoutRequestID string `json:"CheckoutRequestID"`
	ResultCode        string `json:"ResultCode"`
	ResultDesc        string `json:"ResultDesc"`
}

// StkGateway is the outbound half of the mobile-money flow; the inbound half
// is the asynchronous callback handled by the payment handler.
type StkGateway interface {
	InitiateSTKPush(ctx context.Context, req StkPushRequest) (*StkPushResponse, error)
	QuerySTKStatus(ctx context.Context, checkoutRequestID string) (*StkQueryResponse, error)
}

type MpesaClient struct {
	cfg         config.MpesaConfig
	httpClient  *http.Client
	tokens      cache.DarajaTokenCache
	callbackURL string
}

func NewMpesaClient(cfg config.MpesaConfig, tokens cache.DarajaTokenCache, callbackURL string) StkGateway {
	return &MpesaClient{
		cfg:         cfg,
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		tokens:      tokens,
		callbackURL: callbackURL,
	}
}

func (c *MpesaClient) baseURL() string {
	if c.cfg.Environment == "production" {
		return productionBaseURL
	}
	return sandboxBaseURL
}

func (c *MpesaClient) accessToken(ctx context.Context) (string, error) {
	token, err := c.tokens.Get(ctx)
	if err == nil {
		return token, nil
	}
	if err != cache.ErrTokenNotCached {
		logger.WithComponent("mpesa").Warn("token cache read failed, fetching fresh token", zap.Error(err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL()+"/oauth/v1/generate?grant_type=client_credentials", nil)
	if err != nil {
		return "", err
	}
	auth := base64.StdEncoding.EncodeToString([]byte(c.cfg.ConsumerKey + ":" + c.cfg.ConsumerSecret))
	req.Header.Set("Authorization", "Basic "+auth)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperrors.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: token endpoint returned %d", apperrors.ErrProviderUnavailable, resp.StatusCode)
	}

	var body struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   string `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}

	ttl := time.Hour - tokenCacheMargin
	if err := c.tokens.Set(ctx, body.AccessToken, ttl); err != nil {
		logger.WithComponent("mpesa").Warn("token cache write failed", zap.Error(err))
	}

	return body.AccessToken, nil
}

// timestamp and password follow the Daraja STK push spec: the password is
// base64(shortcode + passkey + timestamp).
func (c *MpesaClient) timestamp() string {
	return time.Now().Format("20060102150405")
}

func (c *MpesaClient) password(timestamp string) string {
	return base64.StdEncoding.EncodeToString([]byte(c.cfg.Shortcode + c.cfg.Passkey + timestamp))
}

// formatPhone normalizes Kenyan numbers to the 254XXXXXXXXX form Daraja wants.
func formatPhone(phone string) string {
	phone = strings.TrimPrefix(phone, "+")
	if strings.HasPrefix(phone, "0") {
		phone = "254" + phone[1:]
	}
	return phone
}

func (c *MpesaClient) InitiateSTKPush(ctx context.Context, req StkPushRequest) (*StkPushResponse, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	timestamp := c.timestamp()
	payload := map[string]any{
		"BusinessShortCode": c.cfg.Shortcode,
		"Password":          c.password(timestamp),
		"Timestamp":         timestamp,
		"TransactionType":   "CustomerPayBillOnline",
		"Amount":            req.Amount.IntPart(),
		"PartyA":            formatPhone(req.PhoneNumber),
		"PartyB":            c.cfg.Shortcode,
		"PhoneNumber":       formatPhone(req.PhoneNumber),
		"CallBackURL":       c.callbackURL,
		"AccountReference":  req.AccountReference,
		"TransactionDesc":   req.TransactionDesc,
	}

	var out StkPushResponse
	if err := c.post(ctx, "/mpesa/stkpush/v1/processrequest", token, payload, &out); err != nil {
		return nil, err
	}
	if out.ResponseCode != "0" {
		return nil, fmt.Errorf("%w: stk push rejected: %s", apperrors.ErrProviderUnavailable, out.ResponseDescription)
	}

	return &out, nil
}

func (c *MpesaClient) QuerySTKStatus(ctx context.Context, checkoutRequestID string) (*StkQueryResponse, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	timestamp := c.timestamp()
	payload := map[string]any{
		"BusinessShortCode": c.cfg.Shortcode,
		"Password":          c.password(timestamp),
		"Timestamp":         timestamp,
		"CheckoutRequestID": checkoutRequestID,
	}

	var out StkQueryResponse
	if err := c.post(ctx, "/mpesa/stkpushquery/v1/query", token, payload, &out); err != nil {
		return nil, err
	}

	return &out, nil
}

func (c *MpesaClient) post(ctx context.Context, path, token string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL()+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: daraja returned %d", apperrors.ErrProviderUnavailable, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode daraja response: %w", err)
	}

	return nil
}
