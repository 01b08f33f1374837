package meshcheck

// ClientConfigView is a non-sensitive view of runtime client config.
// It is intended for diagnostics and banners.
type ClientConfigView struct {
	BaseURL      string
	MaskedAPIKey string
	MaxRetries   int
	Debug        bool
}

// GetConfig returns a configuration snapshot with the API key masked.
func (c *Client) GetConfig() ClientConfigView {
	return ClientConfigView{
		BaseURL:      c.cfg.BaseURL,
		MaskedAPIKey: c.cfg.MaskedAPIKey(),
		MaxRetries:   c.cfg.MaxRetries,
		Debug:        c.cfg.Debug,
	}
}
