package leadapi

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// Os helpers devolvem a Response crua e, quando success=true, o data já decodificado.

func (c *Client) CreateLead(ctx context.Context, in LeadInput) (*Response, *LeadResult, error) {
	var out LeadResult
	resp, err := c.call(ctx, http.MethodPost, "/leads", in, &out)
	if err != nil || !resp.Success {
		return resp, nil, err
	}
	return resp, &out, nil
}

func (c *Client) CheckEmail(ctx context.Context, email string) (*Response, *EmailCheck, error) {
	var out EmailCheck
	path := "/leads/check/email?" + url.Values{"email": {email}}.Encode()
	resp, err := c.call(ctx, http.MethodGet, path, nil, &out)
	if err != nil || !resp.Success {
		return resp, nil, err
	}
	return resp, &out, nil
}

func (c *Client) CheckWhatsApp(ctx context.Context, whatsapp string) (*Response, *WhatsAppCheck, error) {
	var out WhatsAppCheck
	path := "/leads/check/whatsapp?" + url.Values{"whatsapp": {whatsapp}}.Encode()
	resp, err := c.call(ctx, http.MethodGet, path, nil, &out)
	if err != nil || !resp.Success {
		return resp, nil, err
	}
	return resp, &out, nil
}

func (c *Client) GetLead(ctx context.Context, id string) (*Response, *Lead, error) {
	var out Lead
	resp, err := c.call(ctx, http.MethodGet, "/leads/"+url.PathEscape(id), nil, &out)
	if err != nil || !resp.Success {
		return resp, nil, err
	}
	return resp, &out, nil
}

func (c *Client) ListLeads(ctx context.Context, p ListParams) (*Response, *LeadPage, error) {
	q := url.Values{}
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.OrderBy != "" {
		q.Set("orderBy", p.OrderBy)
	}
	if p.Order != "" {
		q.Set("order", p.Order)
	}
	path := "/leads"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var out LeadPage
	resp, err := c.call(ctx, http.MethodGet, path, nil, &out)
	if err != nil || !resp.Success {
		return resp, nil, err
	}
	return resp, &out, nil
}

// UpdateLead envia só os campos do mapa; "" limpa um campo opcional.
func (c *Client) UpdateLead(ctx context.Context, id string, fields map[string]any) (*Response, *Lead, error) {
	var out Lead
	resp, err := c.call(ctx, http.MethodPut, "/leads/"+url.PathEscape(id), fields, &out)
	if err != nil || !resp.Success {
		return resp, nil, err
	}
	return resp, &out, nil
}

func (c *Client) DeleteLead(ctx context.Context, id string) (*Response, error) {
	return c.Do(ctx, http.MethodDelete, "/leads/"+url.PathEscape(id), nil)
}

func (c *Client) Stats(ctx context.Context) (*Response, *Stats, error) {
	var out Stats
	resp, err := c.call(ctx, http.MethodGet, "/leads/stats/dashboard", nil, &out)
	if err != nil || !resp.Success {
		return resp, nil, err
	}
	return resp, &out, nil
}

func (c *Client) Health(ctx context.Context) (*Response, *ServiceHealth, error) {
	var out ServiceHealth
	resp, err := c.call(ctx, http.MethodGet, "/leads/health/check", nil, &out)
	if err != nil || !resp.Success {
		return resp, nil, err
	}
	return resp, &out, nil
}

func (c *Client) call(ctx context.Context, method, path string, body, out any) (*Response, error) {
	resp, err := c.Do(ctx, method, path, body)
	if err != nil {
		return nil, err
	}
	if resp.Success {
		if derr := resp.DecodeData(out); derr != nil {
			return resp, derr
		}
	}
	return resp, nil
}
