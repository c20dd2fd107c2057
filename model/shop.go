package model

import (
	"github.com/aisgo/posibel/database"
	"github.com/aisgo/posibel/repository"
)

// Shop 门店
type Shop struct {
	repository.BaseModel
	Name           string         `json:"name" gorm:"column:name;type:varchar(255);not null"`
	OrganizationID int64          `json:"organizationId,string" gorm:"column:organization_id;not null;index"`
	Meta           database.JSONB `json:"meta,omitempty" gorm:"column:meta"`

	Organization *Organization `json:"organization,omitempty" gorm:"foreignKey:OrganizationID"`
	Sales        []Sale        `json:"sales,omitempty" gorm:"foreignKey:ShopID;constraint:OnDelete:CASCADE"`
	StockLevels  []StockLevel  `json:"stockLevels,omitempty" gorm:"foreignKey:ShopID;constraint:OnDelete:CASCADE"`
}

func (Shop) TableName() string { return "shop" }

type ShopWhere struct {
	ID   *int64
	Name *string
}

func (w ShopWhere) Conditions() map[string]any {
	m := map[string]any{}
	repository.Cond(m, "id", w.ID)
	repository.Cond(m, "name", w.Name)
	return m
}

type ShopRelation string

const (
	ShopOrganization ShopRelation = "organization"
	ShopSales        ShopRelation = "sales"
	ShopStockLevels  ShopRelation = "stockLevels"
)
