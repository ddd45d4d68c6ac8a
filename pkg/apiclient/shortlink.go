package apiclient

import "time"

// ShortLink maps a short id to an absolute target URL.
type ShortLink struct {
	ID        string    `json:"id"`
	TargetURL string    `json:"targetUrl"`
	CreatedAt time.Time `json:"createdAt"`
}

// CreateShortLink registers a short link to an absolute http(s) URL.
// Admin only.
func (c *Client) CreateShortLink(targetURL string) (*ShortLink, error) {
	req := struct {
		TargetURL string `json:"targetUrl"`
	}{TargetURL: targetURL}

	var resp ShortLink
	if err := c.post("/short", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListShortLinks returns every short link. Admin only.
func (c *Client) ListShortLinks() ([]ShortLink, error) {
	var resp struct {
		Links []ShortLink `json:"links"`
	}
	if err := c.post("/short/list", struct{}{}, &resp); err != nil {
		return nil, err
	}
	return resp.Links, nil
}

// DeleteShortLink removes a short link. Admin only.
func (c *Client) DeleteShortLink(id string) error {
	return c.delete("/short/"+id, nil)
}
