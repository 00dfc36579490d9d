package crm

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"invoice-extraction-platform/internal/apperr"
	"invoice-extraction-platform/internal/config"
	"invoice-extraction-platform/models"
)

// Client fetches the authoritative client directory from the CRM.
// There is no fallback list: a failed fetch fails the whole request.
type Client struct {
	baseURL    string
	secretKey  string
	origin     string
	httpClient *http.Client
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		baseURL:   cfg.CRMBaseAPI,
		secretKey: cfg.CRMSecretKey,
		origin:    cfg.CRMAllowedOrigin,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.CRMTimeoutSecs) * time.Second,
		},
	}
}

type clientsEnvelope struct {
	Data []models.CRMClient `json:"data"`
}

// FetchClients retrieves the canonical client records.
func (c *Client) FetchClients(ctx context.Context) ([]models.CRMClient, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/clients", nil)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindProvider, err, "failed to create CRM request")
	}

	req.Header.Set("x-crm-secret-key", c.secretKey)
	req.Header.Set("origin", c.origin)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindProvider, err, "failed to fetch clients data from CRM")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperr.New(apperr.KindProvider, "failed to fetch clients data: CRM returned status %d", resp.StatusCode)
	}

	var envelope clientsEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, apperr.Wrap(apperr.KindProvider, err, "failed to decode CRM clients response")
	}

	if envelope.Data == nil {
		return nil, apperr.New(apperr.KindProvider, "CRM clients response missing data field")
	}

	return envelope.Data, nil
}
