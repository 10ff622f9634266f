// Package launcher hands "launch this version" directives to polling launcher clients.
package launcher

import (
	"buildwatch/internal/models"
	"buildwatch/internal/providers"
	"buildwatch/internal/structures"
	"sync"
	"time"
)

const DefaultInstructionTTL = 30 * time.Second

type MailboxInterface interface {
	// Post replaces any pending instruction for titleID.
	Post(titleID, version string) models.LauncherInstruction
	// Poll takes the pending instruction for titleID, or returns idle when
	// there is none or it has expired. clientID is only logged.
	Poll(titleID, clientID string) models.LauncherInstruction
}

// Mailbox keeps one instruction slot per title. Expiry is checked on read;
// there is no background sweep.
type Mailbox struct {
	mu      sync.Mutex
	pending map[string]models.LauncherInstruction
	ttl     time.Duration
	logger  providers.Logger
	now     func() time.Time
}

func NewMailbox(conf *structures.Config, logger providers.Logger) *Mailbox {
	ttl := conf.Launcher.InstructionTTL
	if ttl <= 0 {
		ttl = DefaultInstructionTTL
	}
	return &Mailbox{
		pending: make(map[string]models.LauncherInstruction),
		ttl:     ttl,
		logger:  logger,
		now:     time.Now,
	}
}

func (m *Mailbox) Post(titleID, version string) models.LauncherInstruction {
	ts := m.now().UTC()
	in := models.LauncherInstruction{
		Action:    models.ActionLaunch,
		TitleID:   titleID,
		Version:   version,
		Timestamp: &ts,
	}

	m.mu.Lock()
	m.pending[titleID] = in
	m.mu.Unlock()

	m.logger.Infof(providers.TypePost, "Launch instruction posted for %s version %s", titleID, version)
	return in
}

func (m *Mailbox) Poll(titleID, clientID string) models.LauncherInstruction {
	m.mu.Lock()
	defer m.mu.Unlock()

	in, ok := m.pending[titleID]
	if !ok {
		return models.IdleInstruction()
	}
	delete(m.pending, titleID)

	if m.now().Sub(*in.Timestamp) >= m.ttl {
		m.logger.Debugf(providers.TypeGet, "Launch instruction for %s expired before %s polled", titleID, clientID)
		return models.IdleInstruction()
	}
	m.logger.Infof(providers.TypeGet, "Launch instruction for %s delivered to client %s", titleID, clientID)
	return in
}
