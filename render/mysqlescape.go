package render

import (
	"fmt"

	"github.com/go-sql-driver/mysql"
)

// vulnerableCollations lists client charsets where a trailing
// "\xbf\x27"-style multi-byte sequence can smuggle an unescaped quote
// past a naive byte-wise escaper (the historical GBK/Big5 MySQL
// injection class). Escape in this package only ever emits ASCII
// backslash-escapes, so it is unsafe to pair with a connection
// negotiating one of these charsets.
var vulnerableCollations = map[string]bool{
	"gbk_chinese_ci":   true,
	"big5_chinese_ci":  true,
	"sjis_japanese_ci": true,
}

// ValidateDSN parses dsn with the go-sql-driver/mysql DSN parser and
// rejects connection strings whose collation is one this package's
// Escape is not safe to pair with. Only the parsed collation is
// checked; a charset parameter is not inspected. It does not open a
// connection —
// it is a static check a caller can run once at startup alongside
// schema.NewRegistry, confirming the "escape routine" this spec
// delegates to the MySQL client library (§4.3) is paired with a
// charset where byte-wise escaping is actually injection-safe.
func ValidateDSN(dsn string) (*mysql.Config, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("render: parsing mysql dsn: %w", err)
	}
	if vulnerableCollations[cfg.Collation] {
		return nil, fmt.Errorf("render: charset/collation %q is unsafe for this package's ASCII escaping; use utf8mb4", cfg.Collation)
	}
	return cfg, nil
}
