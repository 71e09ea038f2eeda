package core

import (
	"hashvote/config"
)

type Server struct {
	cfg *config.Config

	postgres *Postgres
	redis    *Redis

	admission *Admission
	auditor   *Auditor

	api     *Api
	monitor *Monitor
}

func NewServer(cfg *config.Config) *Server {
	s := &Server{
		cfg: cfg,

		postgres: NewPostgres(cfg.Postgres),
	}
	if cfg.Redis != nil && cfg.Redis.Enabled != nil && *cfg.Redis.Enabled {
		s.redis = NewRedis(cfg.Redis)
	}

	policy := NewDifficultyPolicy(cfg.Difficulty)
	s.admission = NewAdmission(s.postgres, policy, s.redis)
	s.auditor = NewAuditor(s.postgres, policy, s.redis)

	return s
}

func (s *Server) Start() {
	if *s.cfg.Api.Enabled {
		s.api = StartApi(s)
	}
	if s.cfg.Monitor != nil && s.cfg.Monitor.Enabled != nil && *s.cfg.Monitor.Enabled {
		s.monitor = NewMonitor(s)
	}
}

func (s *Server) Close() {
	if s.api != nil {
		s.api.Close()
	}
	if s.monitor != nil {
		s.monitor.Close()
	}
	s.redis.Close()
	s.postgres.Close()
}
