package config

// Difficulty 工作量证明难度策略
type Difficulty struct {
	Bits              *int     `json:"bits"`
	ReducedBits       *int     `json:"reducedBits"`
	LowStakesPrefixes []string `json:"lowStakesPrefixes"`
	SearchTimeout     *string  `json:"searchTimeout"`
}
