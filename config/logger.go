package config

type Logger struct {
	Level    *string `json:"level"`
	Mode     *string `json:"mode"`
	Filename *string `json:"filename"`
}
