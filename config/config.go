package config

type Config struct {
	Threads *int    `json:"threads"`
	Name    *string `json:"name"`

	Logger     *Logger     `json:"logger"`
	Postgres   *Postgres   `json:"postgres"`
	Redis      *Redis      `json:"redis"`
	Api        *Api        `json:"api"`
	Monitor    *Monitor    `json:"monitor"`
	Difficulty *Difficulty `json:"difficulty"`
}
