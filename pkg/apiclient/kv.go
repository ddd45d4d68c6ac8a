package apiclient

// KVGet reads one key from a namespace.
func (c *Client) KVGet(namespace, key string) (string, error) {
	req := struct {
		Namespace string `json:"namespace"`
		Key       string `json:"key"`
	}{Namespace: namespace, Key: key}

	var resp struct {
		Key   string `json:"key"`
		Value string `json:"value"`
	}
	if err := c.post("/kv/get", req, &resp); err != nil {
		return "", err
	}
	return resp.Value, nil
}

// KVSet writes one key into a namespace.
func (c *Client) KVSet(namespace, key, value string) error {
	req := struct {
		Namespace string `json:"namespace"`
		Key       string `json:"key"`
		Value     string `json:"value"`
	}{Namespace: namespace, Key: key, Value: value}
	return c.post("/kv/set", req, nil)
}

// KVDelete removes one key from a namespace.
func (c *Client) KVDelete(namespace, key string) error {
	req := struct {
		Namespace string `json:"namespace"`
		Key       string `json:"key"`
	}{Namespace: namespace, Key: key}
	return c.post("/kv/delete", req, nil)
}

// KVKeysRequest is a paginated key scan over one namespace.
type KVKeysRequest struct {
	Namespace string `json:"namespace"`
	Prefix    string `json:"prefix,omitempty"`
	Limit     int    `json:"limit,omitempty"`
	Cursor    string `json:"cursor,omitempty"`
}

// KVKeysResponse is one page of key names. Cursor continues the scan
// while ListComplete is false.
type KVKeysResponse struct {
	Keys         []string `json:"keys"`
	Cursor       string   `json:"cursor"`
	ListComplete bool     `json:"listComplete"`
}

// KVKeys lists key names under a prefix.
func (c *Client) KVKeys(req KVKeysRequest) (*KVKeysResponse, error) {
	var resp KVKeysResponse
	if err := c.post("/kv/keys", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// KVBulkGet reads several keys at once. Missing keys map to nil.
func (c *Client) KVBulkGet(namespace string, keys []string) (map[string]*string, error) {
	req := struct {
		Namespace string   `json:"namespace"`
		Keys      []string `json:"keys"`
	}{Namespace: namespace, Keys: keys}

	var resp struct {
		Values map[string]*string `json:"values"`
	}
	if err := c.post("/kv/bulk/get", req, &resp); err != nil {
		return nil, err
	}
	return resp.Values, nil
}

// KVBulkSet writes several keys at once.
func (c *Client) KVBulkSet(namespace string, entries map[string]string) (int, error) {
	req := struct {
		Namespace string            `json:"namespace"`
		Entries   map[string]string `json:"entries"`
	}{Namespace: namespace, Entries: entries}

	var resp struct {
		OK    bool `json:"ok"`
		Count int  `json:"count"`
	}
	if err := c.post("/kv/bulk/set", req, &resp); err != nil {
		return 0, err
	}
	return resp.Count, nil
}

// KVNamespaces lists the namespaces visible to the caller.
func (c *Client) KVNamespaces() ([]string, error) {
	var resp struct {
		Namespaces []string `json:"namespaces"`
	}
	if err := c.post("/kv/namespaces", struct{}{}, &resp); err != nil {
		return nil, err
	}
	return resp.Namespaces, nil
}

// KVDump returns every accessible namespace with its full contents.
// Admin only.
func (c *Client) KVDump() (map[string]map[string]string, error) {
	var resp struct {
		Namespaces map[string]map[string]string `json:"namespaces"`
	}
	if err := c.post("/kv/dump", struct{}{}, &resp); err != nil {
		return nil, err
	}
	return resp.Namespaces, nil
}
