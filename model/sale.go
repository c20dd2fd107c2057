package model

import (
	"database/sql/driver"
	"fmt"

	"github.com/aisgo/posibel/repository"

	"github.com/shopspring/decimal"
)

// Sale 销售单
type Sale struct {
	repository.BaseModel
	OrganizationID     int64               `json:"organizationId,string" gorm:"column:organization_id;not null;index"`
	ShopID             *int64              `json:"shopId,string,omitempty" gorm:"column:shop_id;index"`
	DiscountPercentage decimal.NullDecimal `json:"discountPercentage" gorm:"column:discount_percentage;type:decimal(10,3)"`
	DiscountAmount     decimal.NullDecimal `json:"discountAmount" gorm:"column:discount_amount;type:decimal(10,3)"`
	TotalAmount        decimal.Decimal     `json:"totalAmount" gorm:"column:total_amount;type:decimal(14,3);not null;default:0"`

	Shop       *Shop       `json:"shop,omitempty" gorm:"foreignKey:ShopID"`
	Orderlines []Orderline `json:"orderlines,omitempty" gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE"`
}

func (Sale) TableName() string { return "sale" }

type SaleWhere struct {
	ID     *int64
	ShopID *int64
}

func (w SaleWhere) Conditions() map[string]any {
	m := map[string]any{}
	repository.Cond(m, "id", w.ID)
	repository.Cond(m, "shop_id", w.ShopID)
	return m
}

type SaleRelation string

const (
	SaleShop       SaleRelation = "shop"
	SaleOrderlines SaleRelation = "orderlines"
)

// OrderlineType 订单行类型
type OrderlineType string

const (
	OrderlineSale   OrderlineType = "sale"
	OrderlineReturn OrderlineType = "return"
)

// Valid 是否为已知类型
func (t OrderlineType) Valid() bool {
	return t == OrderlineSale || t == OrderlineReturn
}

// Value 写入前校验枚举值
func (t OrderlineType) Value() (driver.Value, error) {
	if t == "" {
		return string(OrderlineSale), nil
	}
	if !t.Valid() {
		return nil, fmt.Errorf("invalid orderline type %q", string(t))
	}
	return string(t), nil
}

// Scan 实现 sql.Scanner
func (t *OrderlineType) Scan(value any) error {
	switch v := value.(type) {
	case string:
		*t = OrderlineType(v)
	case []byte:
		*t = OrderlineType(v)
	case nil:
		*t = OrderlineSale
	default:
		return fmt.Errorf("unsupported type %T for orderline type", value)
	}
	return nil
}

// Orderline 订单行
type Orderline struct {
	repository.BaseModel
	OrganizationID     int64               `json:"organizationId,string" gorm:"column:organization_id;not null;index"`
	OrderlineType      OrderlineType       `json:"orderlineType" gorm:"column:orderline_type;type:varchar(16);not null;default:sale"`
	Amount             decimal.Decimal     `json:"amount" gorm:"column:amount;type:decimal(10,3);not null"`
	DiscountPercentage decimal.NullDecimal `json:"discountPercentage" gorm:"column:discount_percentage;type:decimal(10,3)"`
	DiscountAmount     decimal.NullDecimal `json:"discountAmount" gorm:"column:discount_amount;type:decimal(10,3)"`
	ProductID          int64               `json:"productId,string" gorm:"column:product_id;not null;index"`
	SaleID             int64               `json:"saleId,string" gorm:"column:sale_id;not null;index"`

	Product *Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
	Sale    *Sale    `json:"sale,omitempty" gorm:"foreignKey:SaleID"`
}

func (Orderline) TableName() string { return "orderline" }

type OrderlineWhere struct {
	ID        *int64
	SaleID    *int64
	ProductID *int64
}

func (w OrderlineWhere) Conditions() map[string]any {
	m := map[string]any{}
	repository.Cond(m, "id", w.ID)
	repository.Cond(m, "sale_id", w.SaleID)
	repository.Cond(m, "product_id", w.ProductID)
	return m
}

type OrderlineRelation string

const (
	OrderlineProduct  OrderlineRelation = "product"
	OrderlineSaleLink OrderlineRelation = "sale"
)

// Transaction 账务锚点
type Transaction struct {
	repository.BaseModel
	OrganizationID int64 `json:"organizationId,string" gorm:"column:organization_id;not null;index"`

	Organization *Organization `json:"organization,omitempty" gorm:"foreignKey:OrganizationID"`
}

func (Transaction) TableName() string { return "transaction" }

type TransactionWhere struct {
	ID *int64
}

func (w TransactionWhere) Conditions() map[string]any {
	m := map[string]any{}
	repository.Cond(m, "id", w.ID)
	return m
}

type TransactionRelation string

const TransactionOrganization TransactionRelation = "organization"
