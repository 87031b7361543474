package migrations

import "embed"

// HistoryFS holds the history store schema under history/.
//
//go:embed history/*.sql
var HistoryFS embed.FS
