// SPDX-License-Identifier: AGPL-3.0-or-later
package core_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dvm-nxdn/nxdnhost/internal/core"
)

// runClockLoop drains c.Commands on a background goroutine, the way a
// real deployment's ticker-driven Clock loop would, so Call-wrapped
// admin queries posted from the test goroutine don't deadlock.
func runClockLoop(t *testing.T, c *core.Core) {
	t.Helper()
	done := make(chan struct{})
	t.Cleanup(func() { close(done) })
	go func() {
		ticker := time.NewTicker(time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				c.Clock(time.Millisecond)
			}
		}
	}()
}

func TestStatusReportsAuthoritative(t *testing.T) {
	t.Parallel()
	c, _ := newTestCore(t)
	runClockLoop(t, c)

	st := c.Status()
	require.True(t, st.Authoritative)
	require.Equal(t, "LISTENING", st.RF)
	require.Equal(t, "IDLE", st.NT)
}

func TestPermitTGSetsAndClearsPermittedTG(t *testing.T) {
	t.Parallel()
	c, _ := newTestCore(t)
	runClockLoop(t, c)

	c.PermitTG(100, true)
	require.Equal(t, uint32(100), c.Status().PermittedTG)

	c.PermitTG(100, false)
	require.Equal(t, uint32(0), c.Status().PermittedTG)
}

func TestReleaseAllGrantsEmptiesActiveGrants(t *testing.T) {
	t.Parallel()
	c, _ := newTestCore(t)
	runClockLoop(t, c)

	require.NoError(t, c.GrantTG(500, false, true))
	require.Len(t, c.ActiveGrants(), 1)

	c.ReleaseAllGrants()
	require.Empty(t, c.ActiveGrants())
}
