package dashboard

import (
	"context"
	"fmt"

	"orderwarden/internal/model"
)

func (d *Dashboard) Etsy() model.EtsyStatus {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.etsy
}

func (d *Dashboard) RefreshEtsy(ctx context.Context) (model.EtsyStatus, error) {
	ctx, cancel := d.withTimeout(ctx)
	defer cancel()

	st, err := d.api.EtsyStatus(ctx)
	if err != nil {
		return model.EtsyStatus{}, d.fail("Loading Etsy status", err)
	}

	d.mu.Lock()
	d.etsy = *st
	d.mu.Unlock()
	return *st, nil
}

// ConnectEtsy sends the user to the Etsy consent flow.
func (d *Dashboard) ConnectEtsy() error {
	target, err := d.api.EtsyAuthURL(d.cfg.ReturnURL)
	if err != nil {
		return d.fail("Connecting Etsy", err)
	}
	if d.nav == nil {
		return fmt.Errorf("connect etsy: no navigator")
	}
	if err := d.nav.Redirect(target); err != nil {
		return d.fail("Connecting Etsy", err)
	}
	return nil
}

// SyncEtsy imports new orders from the connected shop and then re-fetches
// the collection. A sync the server reports as unsuccessful is returned as
// ErrSyncFailed with the server's reason.
func (d *Dashboard) SyncEtsy(ctx context.Context) (*model.SyncResult, error) {
	done, err := d.begin("sync")
	if err != nil {
		return nil, err
	}
	defer done()

	res, err := d.syncOnce(ctx)
	if err != nil {
		return nil, d.fail("Etsy sync", err)
	}

	if !res.Success {
		reason := res.Error
		if reason == "" {
			reason = "unknown error"
		}
		d.notes.Error("Etsy sync failed: " + reason)
		d.log.Warn("etsy sync rejected", "reason", reason)
		return res, fmt.Errorf("%w: %s", ErrSyncFailed, reason)
	}

	d.notes.Success(fmt.Sprintf("Imported %d orders from Etsy", res.Imported))
	if err := d.Refresh(ctx); err != nil {
		return res, err
	}
	if _, err := d.RefreshEtsy(ctx); err != nil {
		return res, err
	}
	return res, nil
}

func (d *Dashboard) syncOnce(ctx context.Context) (*model.SyncResult, error) {
	ctx, cancel := d.withTimeout(ctx)
	defer cancel()
	return d.api.SyncEtsy(ctx)
}

func (d *Dashboard) DisconnectEtsy(ctx context.Context) error {
	done, err := d.begin("disconnect")
	if err != nil {
		return err
	}
	defer done()

	ctx, cancel := d.withTimeout(ctx)
	defer cancel()

	if err := d.api.DisconnectEtsy(ctx); err != nil {
		return d.fail("Disconnecting Etsy", err)
	}

	d.mu.Lock()
	d.etsy = model.EtsyStatus{}
	d.mu.Unlock()

	d.notes.Success("Etsy shop disconnected")
	return nil
}
