package catalog

// DefaultProfiles returns the built-in model table in catalog order.
func DefaultProfiles() []Profile {
	return []Profile{
		// OpenAI
		{
			Name:                    "gpt-4-turbo",
			Provider:                ProviderOpenAI,
			Category:                CategoryChat,
			CostPer1KInput:          0.01,
			CostPer1KOutput:         0.03,
			AvgLatencyMs:            2000,
			AccuracyScore:           0.95,
			MaxOutputTokens:         4096,
			ContextWindow:           128000,
			SupportsStreaming:       true,
			SupportsFunctionCalling: true,
			Description:             "Most capable GPT-4 model, best for complex tasks",
		},
		{
			Name:                    "gpt-4",
			Provider:                ProviderOpenAI,
			Category:                CategoryChat,
			CostPer1KInput:          0.03,
			CostPer1KOutput:         0.06,
			AvgLatencyMs:            2500,
			AccuracyScore:           0.95,
			MaxOutputTokens:         8192,
			ContextWindow:           8192,
			SupportsStreaming:       true,
			SupportsFunctionCalling: true,
			Description:             "Original GPT-4, highest quality",
		},
		{
			Name:                    "gpt-3.5-turbo",
			Provider:                ProviderOpenAI,
			Category:                CategoryChat,
			CostPer1KInput:          0.0005,
			CostPer1KOutput:         0.0015,
			AvgLatencyMs:            800,
			AccuracyScore:           0.85,
			MaxOutputTokens:         4096,
			ContextWindow:           16385,
			SupportsStreaming:       true,
			SupportsFunctionCalling: true,
			Description:             "Fast and economical, good for most tasks",
		},
		{
			Name:              "gpt-3.5-turbo-16k",
			Provider:          ProviderOpenAI,
			Category:          CategoryChat,
			CostPer1KInput:    0.001,
			CostPer1KOutput:   0.002,
			AvgLatencyMs:      1000,
			AccuracyScore:     0.85,
			MaxOutputTokens:   16384,
			ContextWindow:     16385,
			SupportsStreaming: true,
			Description:       "Extended context window for longer documents",
		},
		{
			Name:              "gpt-4-vision-preview",
			Provider:          ProviderOpenAI,
			Category:          CategoryVision,
			CostPer1KInput:    0.01,
			CostPer1KOutput:   0.03,
			AvgLatencyMs:      3000,
			AccuracyScore:     0.92,
			MaxOutputTokens:   4096,
			ContextWindow:     128000,
			SupportsStreaming: true,
			Description:       "Vision model for image analysis",
		},
		{
			Name:              "text-embedding-ada-002",
			Provider:          ProviderOpenAI,
			Category:          CategoryEmbeddings,
			CostPer1KInput:    0.0001,
			CostPer1KOutput:   0,
			AvgLatencyMs:      200,
			AccuracyScore:     0.90,
			MaxOutputTokens:   8191,
			ContextWindow:     8191,
			SupportsStreaming: true,
			Description:       "Embeddings for semantic search",
		},

		// Anthropic
		{
			Name:              "claude-3-opus-20240229",
			Provider:          ProviderAnthropic,
			Category:          CategoryChat,
			CostPer1KInput:    0.015,
			CostPer1KOutput:   0.075,
			AvgLatencyMs:      1800,
			AccuracyScore:     0.93,
			MaxOutputTokens:   4096,
			ContextWindow:     200000,
			SupportsStreaming: true,
			Description:       "Most capable Claude model",
		},
		{
			Name:              "claude-3-sonnet-20240229",
			Provider:          ProviderAnthropic,
			Category:          CategoryChat,
			CostPer1KInput:    0.003,
			CostPer1KOutput:   0.015,
			AvgLatencyMs:      1200,
			AccuracyScore:     0.90,
			MaxOutputTokens:   4096,
			ContextWindow:     200000,
			SupportsStreaming: true,
			Description:       "Balanced performance and cost",
		},
		{
			Name:              "claude-3-haiku-20240307",
			Provider:          ProviderAnthropic,
			Category:          CategoryChat,
			CostPer1KInput:    0.00025,
			CostPer1KOutput:   0.00125,
			AvgLatencyMs:      600,
			AccuracyScore:     0.83,
			MaxOutputTokens:   4096,
			ContextWindow:     200000,
			SupportsStreaming: true,
			Description:       "Fastest and most economical Claude",
		},
		{
			Name:              "claude-instant-1.2",
			Provider:          ProviderAnthropic,
			Category:          CategoryChat,
			CostPer1KInput:    0.0008,
			CostPer1KOutput:   0.0024,
			AvgLatencyMs:      800,
			AccuracyScore:     0.83,
			MaxOutputTokens:   4096,
			ContextWindow:     100000,
			SupportsStreaming: true,
			Description:       "Fast responses at low cost",
		},
	}
}
