package dto

type HealthResponse struct {
	Status            string `json:"status"`
	Version           string `json:"version"`
	EmbeddingModel    string `json:"embedding_model"`
	GptModel          string `json:"gpt_model"`
	VectorStoreLoaded bool   `json:"vector_store_loaded"`
	FallbackMode      bool   `json:"fallback_mode"`
	SearchMode        string `json:"search_mode"`
	TotalProducts     int    `json:"total_products"`
	ActiveSessions    int    `json:"active_sessions"`
	Environment       string `json:"environment"`
}

// DataFileReport describes one candidate data file checked at startup or via
// the debug endpoint.
type DataFileReport struct {
	Path     string   `json:"path"`
	Exists   bool     `json:"exists"`
	RowCount int      `json:"row_count,omitempty"`
	Columns  []string `json:"columns,omitempty"`
}

type DebugDataResponse struct {
	WorkingDir string           `json:"working_dir"`
	PathsTried []DataFileReport `json:"paths_tried"`
	SearchMode string           `json:"search_mode"`
	Loaded     bool             `json:"loaded"`
}
