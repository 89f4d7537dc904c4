package kommo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

var ErrNotConfigured = errors.New("kommo não configurado")

type Client struct {
	apiToken   string
	baseURL    string
	statusID   int
	httpClient *http.Client
	log        *slog.Logger
}

func NewClient(baseURL, apiToken string, statusID int, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}
	return &Client{
		apiToken:   apiToken,
		baseURL:    baseURL,
		statusID:   statusID,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		log:        log,
	}
}

// CreateLead cria (ou reaproveita) o contato e abre o lead no funil.
// Devolve o id do lead no Kommo.
func (c *Client) CreateLead(ctx context.Context, in HandOffInput) (int, error) {
	if c.apiToken == "" || c.baseURL == "" {
		return 0, ErrNotConfigured
	}

	contactID, err := c.findOrCreateContact(ctx, in)
	if err != nil {
		return 0, fmt.Errorf("criar/buscar contato: %w", err)
	}

	lead := map[string]any{
		"name": leadTitle(in),
		"_embedded": map[string]any{
			"tags":     tags(in),
			"contacts": []map[string]any{{"id": contactID}},
		},
	}
	if c.statusID > 0 {
		lead["status_id"] = c.statusID
	}

	var result leadsResponse
	if err := c.do(ctx, http.MethodPost, "/leads", []map[string]any{lead}, &result); err != nil {
		return 0, fmt.Errorf("criar lead: %w", err)
	}
	if len(result.Embedded.Leads) == 0 {
		return 0, fmt.Errorf("lead não criado")
	}

	kommoID := result.Embedded.Leads[0].ID
	c.log.Info("kommo: lead criado", "kommo_id", kommoID, "lead_id", in.LeadID, "broker", in.BrokerEmail)
	return kommoID, nil
}

func (c *Client) findOrCreateContact(ctx context.Context, in HandOffInput) (int, error) {
	if in.Phone != "" {
		id, err := c.findContactByPhone(ctx, in.Phone)
		if err == nil && id > 0 {
			c.log.Debug("kommo: contato existente", "contact_id", id)
			return id, nil
		}
	}
	return c.createContact(ctx, in)
}

func (c *Client) findContactByPhone(ctx context.Context, phone string) (int, error) {
	var result contactsResponse
	if err := c.do(ctx, http.MethodGet, "/contacts?query="+url.QueryEscape(phone), nil, &result); err != nil {
		return 0, err
	}
	if len(result.Embedded.Contacts) > 0 {
		return result.Embedded.Contacts[0].ID, nil
	}
	return 0, fmt.Errorf("contato não encontrado")
}

func (c *Client) createContact(ctx context.Context, in HandOffInput) (int, error) {
	var fields []map[string]any
	if in.Phone != "" {
		fields = append(fields, customField("PHONE", in.Phone))
	}
	if in.Email != "" {
		fields = append(fields, customField("EMAIL", in.Email))
	}
	name := in.ContactName
	if name == "" {
		name = "Lead " + in.LeadID
	}
	contact := map[string]any{"name": name}
	if len(fields) > 0 {
		contact["custom_fields_values"] = fields
	}

	var result contactsResponse
	if err := c.do(ctx, http.MethodPost, "/contacts", []map[string]any{contact}, &result); err != nil {
		return 0, err
	}
	if len(result.Embedded.Contacts) == 0 {
		return 0, fmt.Errorf("id do contato criado não veio na resposta")
	}
	id := result.Embedded.Contacts[0].ID
	c.log.Debug("kommo: contato criado", "contact_id", id)
	return id, nil
}

// do envia JSON e decodifica a resposta; qualquer status fora de 2xx é erro.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	c.addAuthHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("kommo %s %s: %d - %s", method, path, resp.StatusCode, string(raw))
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, out)
}

func (c *Client) addAuthHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.apiToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
}

func leadTitle(in HandOffInput) string {
	name := in.ContactName
	if name == "" {
		name = in.LeadID
	}
	if in.StoreName == "" {
		return fmt.Sprintf("%s - %s", name, in.Campaign)
	}
	return fmt.Sprintf("%s - %s (%s)", name, in.Campaign, in.StoreName)
}

func tags(in HandOffInput) []map[string]any {
	out := []map[string]any{{"name": "roleta"}}
	if in.Campaign != "" {
		out = append(out, map[string]any{"name": in.Campaign})
	}
	if in.IsHot {
		out = append(out, map[string]any{"name": "quente"})
	}
	if in.BrokerEmail != "" {
		out = append(out, map[string]any{"name": "corretor:" + in.BrokerEmail})
	}
	return out
}

func customField(code, value string) map[string]any {
	return map[string]any{
		"field_code": code,
		"values":     []map[string]any{{"value": value, "enum_code": "WORK"}},
	}
}
