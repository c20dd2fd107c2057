package mysql

import (
	"strings"
	"testing"
)

func TestDriverConfig(t *testing.T) {
	dc, err := Config{Host: "db", Port: 3306, User: "pos", Password: "secret", DBName: "posibel"}.DriverConfig()
	if err != nil {
		t.Fatalf("driver config: %v", err)
	}
	if dc.Addr != "db:3306" || !dc.ParseTime {
		t.Fatalf("unexpected driver config: %+v", dc)
	}

	dsn := dc.FormatDSN()
	if !strings.Contains(dsn, "charset=utf8mb4") || !strings.Contains(dsn, "parseTime=true") {
		t.Fatalf("unexpected dsn: %s", dsn)
	}

	if _, err := (Config{Loc: "Nowhere/Nope"}).DriverConfig(); err == nil {
		t.Fatalf("expected error for unknown location")
	}
}
