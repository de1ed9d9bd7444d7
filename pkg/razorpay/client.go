package razorpay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	sdk "github.com/razorpay/razorpay-go"
	"github.com/razorpay/razorpay-go/utils"

	"github.com/Ramchandran06/E-commerce-backend/pkg/config"
	pkgerrors "github.com/Ramchandran06/E-commerce-backend/pkg/errors"
)

const (
	defaultBaseURL  = "https://api.razorpay.com"
	defaultCurrency = "INR"
	defaultTimeout  = 10 * time.Second
	receiptPrefix   = "receipt_order_"
)

var (
	errKeyIDRequired     = errors.New("razorpay key id is required")
	errKeySecretRequired = errors.New("razorpay key secret is required")
)

// Client wraps the Razorpay SDK with the shop's error taxonomy.
type Client struct {
	api        *sdk.Client
	httpClient *http.Client
	baseURL    string
	keyID      string
	keySecret  string
	currency   string
	now        func() time.Time
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client the SDK sends through.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL points the SDK at another host. The SDK adds the /v1 prefix
// itself, so a trailing /v1 is dropped.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSuffix(strings.TrimRight(strings.TrimSpace(baseURL), "/"), "/v1")
		if trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// WithCurrency sets the default currency for new orders.
func WithCurrency(currency string) Option {
	return func(c *Client) {
		if trimmed := strings.TrimSpace(currency); trimmed != "" {
			c.currency = strings.ToUpper(trimmed)
		}
	}
}

// WithClock overrides the clock used for receipt ids.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// NewClient builds a Razorpay client from API credentials.
func NewClient(keyID, keySecret string, opts ...Option) (*Client, error) {
	keyID = strings.TrimSpace(keyID)
	keySecret = strings.TrimSpace(keySecret)
	if keyID == "" {
		return nil, errKeyIDRequired
	}
	if keySecret == "" {
		return nil, errKeySecretRequired
	}

	client := &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		baseURL:    defaultBaseURL,
		keyID:      keyID,
		keySecret:  keySecret,
		currency:   defaultCurrency,
		now:        time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	client.api = sdk.NewClient(keyID, keySecret)
	// Every SDK resource shares this request, so one override covers orders
	// and payments alike.
	client.api.Order.Request.BaseURL = client.baseURL
	client.api.Order.Request.HTTPClient = client.httpClient
	return client, nil
}

// NewFromConfig wires the client from RazorpayConfig.
func NewFromConfig(cfg config.RazorpayConfig) (*Client, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return NewClient(cfg.KeyID, cfg.KeySecret,
		WithBaseURL(cfg.BaseURL),
		WithCurrency(cfg.Currency),
		WithHTTPClient(&http.Client{Timeout: timeout}),
	)
}

// KeyID is the public key handed to the checkout widget.
func (c *Client) KeyID() string {
	return c.keyID
}

// Currency is the default order currency.
func (c *Client) Currency() string {
	return c.currency
}

// Order is a Razorpay order (the payment intent the storefront pays against).
type Order struct {
	ID       string `json:"id"`
	Entity   string `json:"entity"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

// Refund is the result of a refund call.
type Refund struct {
	ID        string `json:"id"`
	PaymentID string `json:"payment_id"`
	Amount    int64  `json:"amount"`
	Status    string `json:"status"`
}

// APIError is the error object Razorpay returns on 4xx/5xx.
type APIError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
	Reason      string `json:"reason"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("razorpay %s: %s", e.Code, e.Description)
}

// CreateOrder creates a gateway order for amountMinor (paise). The SDK has
// no context support; ctx is checked before the call and the HTTP client
// timeout bounds the call itself.
func (c *Client) CreateOrder(ctx context.Context, amountMinor int64, currency string) (*Order, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "razorpay client not configured")
	}
	if amountMinor <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}
	if strings.TrimSpace(currency) == "" {
		currency = c.currency
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	body, err := c.api.Order.Create(map[string]interface{}{
		"amount":   amountMinor,
		"currency": strings.ToUpper(currency),
		"receipt":  fmt.Sprintf("%s%d", receiptPrefix, c.now().UnixMilli()),
	}, nil)

	var order Order
	if err := decodeResult(body, err, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// Refund refunds amountMinor of a captured payment.
func (c *Client) Refund(ctx context.Context, paymentID string, amountMinor int64) (*Refund, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "razorpay client not configured")
	}
	paymentID = strings.TrimSpace(paymentID)
	if paymentID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment reference is required")
	}
	if amountMinor <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "refund amount must be positive")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	body, err := c.api.Payment.Refund(paymentID, int(amountMinor), nil, nil)

	var refund Refund
	if err := decodeResult(body, err, &refund); err != nil {
		return nil, err
	}
	return &refund, nil
}

// VerifySignature checks the checkout callback signature against the key
// secret.
func (c *Client) VerifySignature(orderID, paymentID, signature string) bool {
	if c == nil {
		return false
	}
	return VerifySignature(c.keySecret, orderID, paymentID, signature)
}

// VerifySignature is the credential-free form of Client.VerifySignature.
func VerifySignature(secret, orderID, paymentID, signature string) bool {
	if secret == "" || orderID == "" || paymentID == "" || signature == "" {
		return false
	}
	return utils.VerifyPaymentSignature(map[string]interface{}{
		"razorpay_order_id":   orderID,
		"razorpay_payment_id": paymentID,
	}, strings.ToLower(strings.TrimSpace(signature)), secret)
}

// decodeResult maps an SDK call onto out. Gateway failures come back as
// CodeGateway carrying Razorpay's description.
func decodeResult(body map[string]interface{}, callErr error, out any) error {
	if apiErr := apiErrorFrom(body); apiErr != nil {
		return pkgerrors.Gateway(apiErr, apiErr.Description).
			WithDetails(map[string]any{"gateway_code": apiErr.Code})
	}
	if callErr != nil {
		return pkgerrors.Gateway(callErr, callErr.Error())
	}
	if _, ok := body["id"]; !ok {
		return pkgerrors.Gateway(errors.New("response has no id"), "malformed response")
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return pkgerrors.Gateway(err, "malformed response")
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return pkgerrors.Gateway(err, "malformed response")
	}
	return nil
}

func apiErrorFrom(body map[string]interface{}) *APIError {
	nested, ok := body["error"].(map[string]interface{})
	if !ok {
		return nil
	}
	apiErr := &APIError{}
	apiErr.Code, _ = nested["code"].(string)
	apiErr.Description, _ = nested["description"].(string)
	apiErr.Reason, _ = nested["reason"].(string)
	if apiErr.Description == "" {
		apiErr.Description = "gateway rejected the request"
	}
	return apiErr
}
