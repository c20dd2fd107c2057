package model

import (
	"github.com/aisgo/posibel/repository"

	"github.com/shopspring/decimal"
)

// ProductGroup 商品分组
type ProductGroup struct {
	repository.BaseModel
	Name           string `json:"name" gorm:"column:name;type:varchar(255);not null"`
	OrganizationID int64  `json:"organizationId,string" gorm:"column:organization_id;not null;index"`

	Products []Product `json:"products,omitempty" gorm:"foreignKey:ProductGroupID;constraint:OnDelete:CASCADE"`
}

func (ProductGroup) TableName() string { return "product_group" }

type ProductGroupWhere struct {
	ID   *int64
	Name *string
}

func (w ProductGroupWhere) Conditions() map[string]any {
	m := map[string]any{}
	repository.Cond(m, "id", w.ID)
	repository.Cond(m, "name", w.Name)
	return m
}

type ProductGroupRelation string

const ProductGroupProducts ProductGroupRelation = "products"

// Product 商品
// (barcode, organization_id) 唯一；barcode 可为空
type Product struct {
	repository.BaseModel
	Name           string          `json:"name" gorm:"column:name;type:varchar(255);not null"`
	Barcode        *string         `json:"barcode,omitempty" gorm:"column:barcode;type:varchar(64);uniqueIndex:barcode_organization_id"`
	OrganizationID int64           `json:"organizationId,string" gorm:"column:organization_id;not null;uniqueIndex:barcode_organization_id;index"`
	Price          decimal.Decimal `json:"price" gorm:"column:price;type:decimal(14,3);not null"`
	ProductGroupID int64           `json:"productGroupId,string" gorm:"column:product_group_id;not null;index"`

	ProductGroup *ProductGroup `json:"productGroup,omitempty" gorm:"foreignKey:ProductGroupID"`
	Orderlines   []Orderline   `json:"orderlines,omitempty" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	StockLevels  []StockLevel  `json:"stockLevels,omitempty" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
}

func (Product) TableName() string { return "product" }

type ProductWhere struct {
	ID             *int64
	Barcode        *string
	ProductGroupID *int64
}

func (w ProductWhere) Conditions() map[string]any {
	m := map[string]any{}
	repository.Cond(m, "id", w.ID)
	repository.Cond(m, "barcode", w.Barcode)
	repository.Cond(m, "product_group_id", w.ProductGroupID)
	return m
}

type ProductRelation string

const (
	ProductProductGroup ProductRelation = "productGroup"
	ProductOrderlines   ProductRelation = "orderlines"
	ProductStockLevels  ProductRelation = "stockLevels"
)

// StockLevel 库存（商品与门店的关联）
type StockLevel struct {
	repository.BaseModel
	Amount         decimal.NullDecimal `json:"amount" gorm:"column:amount;type:decimal(10,3)"`
	OrganizationID int64               `json:"organizationId,string" gorm:"column:organization_id;not null;index"`
	ProductID      int64               `json:"productId,string" gorm:"column:product_id;not null;index"`
	ShopID         int64               `json:"shopId,string" gorm:"column:shop_id;not null;index"`

	Product *Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
	Shop    *Shop    `json:"shop,omitempty" gorm:"foreignKey:ShopID"`
}

func (StockLevel) TableName() string { return "stock_level" }

type StockLevelWhere struct {
	ID        *int64
	ProductID *int64
	ShopID    *int64
}

func (w StockLevelWhere) Conditions() map[string]any {
	m := map[string]any{}
	repository.Cond(m, "id", w.ID)
	repository.Cond(m, "product_id", w.ProductID)
	repository.Cond(m, "shop_id", w.ShopID)
	return m
}

type StockLevelRelation string

const (
	StockLevelProduct StockLevelRelation = "product"
	StockLevelShop    StockLevelRelation = "shop"
)
