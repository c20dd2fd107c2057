package repository

import (
	"strings"
	"testing"

	"github.com/aisgo/posibel/errors"
	"github.com/aisgo/posibel/identity"

	"gorm.io/gorm"
)

func hasVar(vars []any, want int64) bool {
	for _, v := range vars {
		if n, ok := v.(int64); ok && n == want {
			return true
		}
	}
	return false
}

func TestApplyTenantFilterPerKind(t *testing.T) {
	db := openTestDB(t)
	dry := db.Session(&gorm.Session{DryRun: true})
	id := tenantIdentity(7)

	cases := []struct {
		kind   QueryKind
		prefix string
		run    func(tx *gorm.DB) *gorm.DB
	}{
		{QuerySelect, "SELECT", func(tx *gorm.DB) *gorm.DB {
			var list []testShop
			return tx.Find(&list)
		}},
		{QueryUpdate, "UPDATE", func(tx *gorm.DB) *gorm.DB {
			return tx.Where("id = ?", 1).Updates(map[string]any{"name": "x"})
		}},
		{QueryDelete, "DELETE", func(tx *gorm.DB) *gorm.DB {
			return tx.Unscoped().Where("id = ?", 1).Delete(&testShop{})
		}},
		{QuerySoftDelete, "UPDATE", func(tx *gorm.DB) *gorm.DB {
			return tx.Where("id = ?", 1).Delete(&testShop{})
		}},
	}

	for _, tc := range cases {
		t.Run(tc.kind.String(), func(t *testing.T) {
			stmt := tc.run(ApplyTenantFilter(dry.Model(&testShop{}), tc.kind, TenantColumn, id)).Statement
			sql := stmt.SQL.String()
			if !strings.HasPrefix(sql, tc.prefix) {
				t.Fatalf("expected %s statement, got %s", tc.prefix, sql)
			}
			if !strings.Contains(sql, "`organization_id` = ?") {
				t.Fatalf("expected tenant predicate, got %s", sql)
			}
			if !hasVar(stmt.Vars, 7) {
				t.Fatalf("expected organization 7 in vars, got %v", stmt.Vars)
			}
		})
	}
}

func TestApplyTenantFilterNilIdentity(t *testing.T) {
	db := openTestDB(t)
	dry := db.Session(&gorm.Session{DryRun: true})

	var list []testShop
	stmt := ApplyTenantFilter(dry.Model(&testShop{}), QuerySelect, TenantColumn, nil).Find(&list).Statement
	if strings.Contains(stmt.SQL.String(), "organization_id") {
		t.Fatalf("nil identity must not add a predicate: %s", stmt.SQL.String())
	}
}

func TestApplyTenantFilterRejectsBadInput(t *testing.T) {
	db := openTestDB(t)

	var list []testShop
	err := ApplyTenantFilter(db.Model(&testShop{}), QueryKind(99), TenantColumn, tenantIdentity(1)).Find(&list).Error
	if errors.Code(err) != errors.ErrCodeInternal {
		t.Fatalf("expected internal error for unknown kind, got %v", err)
	}

	err = ApplyTenantFilter(db.Model(&testShop{}), QuerySelect, TenantColumn, &identity.Identity{}).Find(&list).Error
	if !errors.Is(err, errors.ErrMalformedIdentity) {
		t.Fatalf("expected malformed identity, got %v", err)
	}
}

func TestQueryKindString(t *testing.T) {
	if QuerySoftDelete.String() != "soft_delete" {
		t.Fatalf("unexpected name %q", QuerySoftDelete.String())
	}
	if QueryKind(0).String() != "QueryKind(0)" {
		t.Fatalf("unexpected name %q", QueryKind(0).String())
	}
}
