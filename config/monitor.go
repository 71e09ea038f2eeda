package config

// Monitor 周期审计
type Monitor struct {
	Enabled  *bool   `json:"enabled"`
	Interval *string `json:"interval"`
}
