package model

import "time"

type EtsyStatus struct {
	Connected  bool       `json:"connected"`
	ShopName   string     `json:"shopName,omitempty"`
	LastSyncAt *time.Time `json:"lastSyncAt,omitempty"`
}

// SyncResult reports a marketplace import. A 2xx response can still carry
// Success=false with the reason in Error.
type SyncResult struct {
	Success  bool   `json:"success"`
	Imported int    `json:"imported"`
	Error    string `json:"error,omitempty"`
}
