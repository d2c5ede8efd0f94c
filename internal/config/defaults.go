package config

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = 5
	}
	if cfg.Retrieval.SnippetMaxChars == 0 {
		cfg.Retrieval.SnippetMaxChars = 600
	}
	if cfg.Retrieval.ContextMaxChars == 0 {
		cfg.Retrieval.ContextMaxChars = 4000
	}
	if cfg.Retrieval.MaxDocChars == 0 {
		cfg.Retrieval.MaxDocChars = 8000
	}
	if cfg.Retrieval.RefreshIntervalMin == 0 {
		cfg.Retrieval.RefreshIntervalMin = 60
	}
	if cfg.Retrieval.CatalogBoostFactor == 0 {
		cfg.Retrieval.CatalogBoostFactor = 1.5
	}
	if cfg.Retrieval.CuratedFAQBoostFactor == 0 {
		cfg.Retrieval.CuratedFAQBoostFactor = 1.3
	}
	if cfg.Crawl.MaxPages == 0 {
		cfg.Crawl.MaxPages = 30
	}
	if cfg.Crawl.MinContentChars == 0 {
		cfg.Crawl.MinContentChars = 200
	}
	if cfg.Crawl.RequestsPerSecond == 0 {
		cfg.Crawl.RequestsPerSecond = 2.0
	}
	if cfg.Crawl.TimeoutSeconds == 0 {
		cfg.Crawl.TimeoutSeconds = 10
	}
	if cfg.Catalog.TimeoutSeconds == 0 {
		cfg.Catalog.TimeoutSeconds = 15
	}
	if cfg.Orders.TimeoutSeconds == 0 {
		cfg.Orders.TimeoutSeconds = 10
	}
	if cfg.CRM.TimeoutSeconds == 0 {
		cfg.CRM.TimeoutSeconds = 10
	}
	if cfg.LLM.MaxTokens == 0 {
		cfg.LLM.MaxTokens = 500
	}
	if cfg.Session.WarnAfterMinutes == 0 {
		cfg.Session.WarnAfterMinutes = 5
	}
	if cfg.Session.CloseAfterMinutes == 0 {
		cfg.Session.CloseAfterMinutes = 10
	}
	if cfg.Session.MaxDurationMinutes == 0 {
		cfg.Session.MaxDurationMinutes = 15
	}
	if cfg.Session.MaxMessages == 0 {
		cfg.Session.MaxMessages = 20
	}
	if cfg.Session.ReapIntervalSeconds == 0 {
		cfg.Session.ReapIntervalSeconds = 30
	}
	if cfg.Session.ClosedRetentionMinutes == 0 {
		cfg.Session.ClosedRetentionMinutes = 30
	}
}
