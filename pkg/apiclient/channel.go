package apiclient

import "time"

// Channel is the gateway's public view of an event channel.
type Channel struct {
	ChannelID      string    `json:"channelId"`
	Name           string    `json:"name"`
	OwnerNamespace string    `json:"ownerNamespace"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Event is one entry in a channel's ordered log.
type Event struct {
	ID        string    `json:"id"`
	Seq       uint64    `json:"seq"`
	AuthorID  string    `json:"authorId"`
	Type      string    `json:"type"`
	Content   string    `json:"content,omitempty"`
	TargetSeq uint64    `json:"targetSeq,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	Deleted   bool      `json:"deleted,omitempty"`
}

// CreateChannel creates a channel owned by the given namespace.
func (c *Client) CreateChannel(namespace, name string) (*Channel, error) {
	req := struct {
		Namespace string `json:"namespace"`
		Name      string `json:"name"`
	}{Namespace: namespace, Name: name}

	var resp Channel
	if err := c.post("/channel/create", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListChannels lists the channels owned by a namespace.
func (c *Client) ListChannels(namespace string) ([]Channel, error) {
	req := struct {
		Namespace string `json:"namespace"`
	}{Namespace: namespace}

	var resp struct {
		Channels []Channel `json:"channels"`
	}
	if err := c.post("/channel/list", req, &resp); err != nil {
		return nil, err
	}
	return resp.Channels, nil
}

// GetChannel returns one channel's metadata.
func (c *Client) GetChannel(channelID string) (*Channel, error) {
	req := struct {
		ChannelID string `json:"channelId"`
	}{ChannelID: channelID}

	var resp Channel
	if err := c.post("/channel/get", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeleteChannel removes a channel and its events.
func (c *Client) DeleteChannel(channelID string) error {
	req := struct {
		ChannelID string `json:"channelId"`
	}{ChannelID: channelID}
	return c.post("/channel/delete", req, nil)
}

// AppendEventRequest appends one event to a channel.
type AppendEventRequest struct {
	ChannelID string `json:"channelId"`
	Content   string `json:"content"`
	AuthorID  string `json:"authorId,omitempty"`
}

// AppendEvent appends an event and returns it with its assigned
// sequence number.
func (c *Client) AppendEvent(req AppendEventRequest) (*Event, error) {
	var resp Event
	if err := c.post("/channel/append", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ReadEventsRequest reads a channel's log after a sequence number.
type ReadEventsRequest struct {
	ChannelID      string `json:"channelId"`
	AfterSeq       uint64 `json:"afterSeq,omitempty"`
	Limit          int    `json:"limit,omitempty"`
	IncludeDeleted bool   `json:"includeDeleted,omitempty"`
}

// ReadEventsResponse is one page of events in sequence order.
type ReadEventsResponse struct {
	Events  []Event `json:"events"`
	HasMore bool    `json:"hasMore"`
}

// ReadEvents reads events in ascending sequence order.
func (c *Client) ReadEvents(req ReadEventsRequest) (*ReadEventsResponse, error) {
	var resp ReadEventsResponse
	if err := c.post("/channel/read", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeleteEvent appends a tombstone for the target sequence and returns
// the tombstone event.
func (c *Client) DeleteEvent(channelID string, targetSeq uint64) (*Event, error) {
	req := struct {
		ChannelID string `json:"channelId"`
		TargetSeq uint64 `json:"targetSeq"`
	}{ChannelID: channelID, TargetSeq: targetSeq}

	var resp Event
	if err := c.post("/channel/delete-event", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateChannelTokenRequest mints a capability token over one channel.
type CreateChannelTokenRequest struct {
	ChannelID        string   `json:"channelId"`
	Permissions      []string `json:"permissions"`
	AuthorID         string   `json:"authorId,omitempty"`
	ExpiresInSeconds int64    `json:"expiresInSeconds,omitempty"`
}

// CreateChannelTokenResponse carries the signed capability token.
type CreateChannelTokenResponse struct {
	Token     string    `json:"token"`
	ChannelID string    `json:"channelId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// CreateChannelToken mints a capability token scoped to one channel.
func (c *Client) CreateChannelToken(req CreateChannelTokenRequest) (*CreateChannelTokenResponse, error) {
	var resp CreateChannelTokenResponse
	if err := c.post("/channel/token/create", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
