package pricing

import "strings"

// engineNames maps free-form spreadsheet engine tokens to the names the RDS
// price list uses.
var engineNames = map[string]string{
	"mysql":      "MySQL",
	"mariadb":    "MariaDB",
	"postgres":   "PostgreSQL",
	"postgresql": "PostgreSQL",
	"oracle":     "Oracle",
	"sqlserver":  "SQL Server",
	"sql server": "SQL Server",
}

// NormalizeEngine canonicalizes a database engine token. Unknown names pass
// through unchanged so the lookup fails visibly instead of silently mapping
// to the wrong engine.
func NormalizeEngine(engine string) string {
	key := strings.ToLower(strings.TrimSpace(engine))
	if canon, ok := engineNames[key]; ok {
		return canon
	}
	return strings.TrimSpace(engine)
}

// noBYOLEngines are engines RDS only sells License-included.
var noBYOLEngines = map[string]struct{}{
	"MySQL": {}, "PostgreSQL": {}, "MariaDB": {}, "SQL Server": {},
}

// ResolveRDSLicense decides the effective license model for an RDS lookup.
// Engines without a BYOL offer are coerced to License-included; the returned
// note is non-empty when the caller asked for BYOL SQL Server and was
// overridden. Oracle keeps whatever the row requested.
func ResolveRDSLicense(engine, requested string) (license string, note string) {
	req := strings.ToLower(strings.TrimSpace(requested))
	if _, forced := noBYOLEngines[engine]; forced {
		if engine == "SQL Server" && req == "byol" {
			return "included", "RDS SQL Server forces License-included"
		}
		return "included", ""
	}
	if req == "byol" {
		return "byol", ""
	}
	return "included", ""
}
