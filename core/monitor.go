package core

import (
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"hashvote/util"
)

const defaultMonitorInterval = 10 * time.Minute

// Monitor periodically audits the whole ledger in the background and logs
// any violations it finds.
type Monitor struct {
	svr *Server

	wg   sync.WaitGroup
	quit chan struct{}

	intervalTimer *time.Timer
}

func NewMonitor(svr *Server) *Monitor {
	m := &Monitor{
		svr:  svr,
		quit: make(chan struct{}),
	}

	m.wg.Add(1)
	go m.listen()
	return m
}

func (m *Monitor) listen() {
	defer m.wg.Done()

	log.Info("Starting integrity monitor")
	interval := defaultMonitorInterval
	if m.svr.cfg.Monitor.Interval != nil {
		interval = util.MustParseDuration(*m.svr.cfg.Monitor.Interval)
	}
	m.intervalTimer = time.NewTimer(interval)
	log.Infof("Set integrity monitor interval to %v", interval)

	for {
		select {
		case <-m.quit:
			return

		case <-m.intervalTimer.C:
			m.auditLedger()
			m.intervalTimer.Reset(interval)
		}
	}
}

// auditLedger
func (m *Monitor) auditLedger() {
	violations, err := m.svr.auditor.VerifyLedger()
	if err != nil {
		log.Errorf("Unable to audit ledger: %v", err)
		return
	}

	if len(violations) == 0 {
		log.Debug("Ledger audit passed")
		return
	}
	for _, v := range violations {
		log.Warnf("Ledger audit violation: %v", v)
	}
}

func (m *Monitor) Close() {
	close(m.quit)

	// 等待服务关闭
	m.wg.Wait()
}
