package server

import _ "embed"

// fallbackDashboard is served at / when no dashboard.html is configured.
//
//go:embed dashboard.html
var fallbackDashboard []byte
