package schema

import "time"

type ClassificationCache struct {
	Intent   string                 `json:"intent"`
	Entities map[string]interface{} `json:"entities"`
	Raw      map[string]interface{} `json:"raw"`
	CachedAt time.Time              `json:"cachedAt"`
}
