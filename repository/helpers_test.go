package repository

import (
	"testing"

	"github.com/aisgo/posibel/identity"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type testOrganization struct {
	BaseModel
	Name  string     `gorm:"column:name;not null"`
	Shops []testShop `gorm:"foreignKey:OrganizationID"`
}

func (testOrganization) TableName() string { return "organization" }
func (testOrganization) TenantRoot()       {}

type testShop struct {
	BaseModel
	Name           string            `gorm:"column:name;not null"`
	OrganizationID int64             `gorm:"column:organization_id;not null;index"`
	Organization   *testOrganization `gorm:"foreignKey:OrganizationID"`
	Sales          []testSale        `gorm:"foreignKey:ShopID"`
}

func (testShop) TableName() string { return "shop" }

type testSale struct {
	BaseModel
	OrganizationID int64     `gorm:"column:organization_id;not null;index"`
	ShopID         *int64    `gorm:"column:shop_id"`
	Shop           *testShop `gorm:"foreignKey:ShopID"`
	Note           string    `gorm:"column:note"`
}

func (testSale) TableName() string { return "sale" }

type testOrganizationWhere struct {
	ID *int64
}

func (w testOrganizationWhere) Conditions() map[string]any {
	m := map[string]any{}
	Cond(m, "id", w.ID)
	return m
}

type testShopWhere struct {
	ID   *int64
	Name *string
}

func (w testShopWhere) Conditions() map[string]any {
	m := map[string]any{}
	Cond(m, "id", w.ID)
	Cond(m, "name", w.Name)
	return m
}

type testSaleWhere struct {
	ShopID *int64
}

func (w testSaleWhere) Conditions() map[string]any {
	m := map[string]any{}
	Cond(m, "shop_id", w.ShopID)
	return m
}

type testOrganizationRelation string

type testShopRelation string

const (
	shopOrganization testShopRelation = "organization"
	shopSales        testShopRelation = "sales"
)

type testSaleRelation string

const saleShop testSaleRelation = "shop"

type testRepos struct {
	db    *gorm.DB
	orgs  *RepositoryImpl[testOrganization, testOrganizationWhere, testOrganizationRelation]
	shops *RepositoryImpl[testShop, testShopWhere, testShopRelation]
	sales *RepositoryImpl[testSale, testSaleWhere, testSaleRelation]
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(&testOrganization{}, &testShop{}, &testSale{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newTestRepos(t *testing.T, opts ...Option) *testRepos {
	t.Helper()
	db := openTestDB(t)
	return &testRepos{
		db:   db,
		orgs: NewRepository[testOrganization, testOrganizationWhere, testOrganizationRelation](db, nil, opts...),
		shops: NewRepository[testShop, testShopWhere, testShopRelation](db, map[testShopRelation]RelationConfig{
			shopOrganization: {Path: "Organization", Alias: "shop_organization"},
			shopSales:        {Path: "Sales", Alias: "shop_sales"},
		}, opts...),
		sales: NewRepository[testSale, testSaleWhere, testSaleRelation](db, map[testSaleRelation]RelationConfig{
			saleShop: {Path: "Shop", Alias: "sale_shop"},
		}, opts...),
	}
}

func ptr[T any](v T) *T {
	return &v
}

func tenantIdentity(orgID int64) *identity.Identity {
	return &identity.Identity{UserID: 1, OrganizationID: orgID, RoleID: 1, Policies: []identity.Policy{identity.PolicyAll}}
}

// seedTenants 创建两个租户：A 有两家店，B 有一家店
func seedTenants(t *testing.T, r *testRepos) (a, b *identity.Identity, shops []*testShop) {
	t.Helper()
	ctx := t.Context()

	orgA, err := r.orgs.InsertOne(ctx, InsertQuery[testOrganization]{Entity: &testOrganization{Name: "A"}})
	if err != nil {
		t.Fatalf("insert org A: %v", err)
	}
	orgB, err := r.orgs.InsertOne(ctx, InsertQuery[testOrganization]{Entity: &testOrganization{Name: "B"}})
	if err != nil {
		t.Fatalf("insert org B: %v", err)
	}
	a, b = tenantIdentity(orgA.ID), tenantIdentity(orgB.ID)

	for _, seed := range []struct {
		name string
		id   *identity.Identity
	}{{"shop-1", a}, {"shop-2", a}, {"shop-3", b}} {
		shop, err := r.shops.InsertOne(ctx, InsertQuery[testShop]{Entity: &testShop{Name: seed.name}, Identity: seed.id})
		if err != nil {
			t.Fatalf("insert %s: %v", seed.name, err)
		}
		shops = append(shops, shop)
	}
	return a, b, shops
}
