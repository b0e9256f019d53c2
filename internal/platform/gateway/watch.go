package gateway

import (
	"time"

	"github.com/sigh/sigh/internal/platform/session"
)

// StartExpiryWatch begins the background expiry check. Every checkInterval
// the stored token is inspected: if it is gone the watch cancels itself, and
// the first time it enters the renewal window the user is warned once and a
// delayed logout is armed. The delayed logout re-checks the token before
// firing, so a renewal that lands in the interim aborts it.
//
// At most one watch runs per client; starting a new one cancels the old.
func (c *Client) StartExpiryWatch() {
	c.watchMu.Lock()
	defer c.watchMu.Unlock()

	c.stopWatchLocked()

	stop := make(chan struct{})
	c.watchStop = stop
	go c.watchLoop(stop)
}

func (c *Client) watchLoop(stop chan struct{}) {
	ticker := time.NewTicker(c.checkInterval)
	defer ticker.Stop()

	warned := false
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			token := c.store.Get(session.KeyToken)
			if token == "" {
				return
			}
			if !warned && aboutToExpire(token, c.renewWindow, c.now()) {
				warned = true
				c.log.Warn().Msg("session expires soon")
				if c.warnHook != nil {
					c.warnHook()
				}
				c.armDelayedLogout()
			}
		}
	}
}

// armDelayedLogout schedules the forced logout that follows the expiry
// warning. Only the token state at firing time counts: a token that was
// renewed meanwhile is outside the window again and the logout is skipped.
func (c *Client) armDelayedLogout() {
	c.watchMu.Lock()
	defer c.watchMu.Unlock()

	if c.delayedLogout != nil {
		c.delayedLogout.Stop()
	}
	c.delayedLogout = time.AfterFunc(c.logoutDelay, func() {
		token := c.store.Get(session.KeyToken)
		if token == "" {
			return
		}
		if aboutToExpire(token, c.renewWindow, c.now()) {
			c.log.Warn().Msg("session expired without renewal, logging out")
			c.Logout()
		}
	})
}

// stopWatch cancels the running expiry watch and any armed delayed logout.
func (c *Client) stopWatch() {
	c.watchMu.Lock()
	defer c.watchMu.Unlock()
	c.stopWatchLocked()
}

func (c *Client) stopWatchLocked() {
	if c.watchStop != nil {
		close(c.watchStop)
		c.watchStop = nil
	}
	if c.delayedLogout != nil {
		c.delayedLogout.Stop()
		c.delayedLogout = nil
	}
}
