package repository

import (
	"time"

	"github.com/aisgo/posibel/utils/id-generator/snowflake"

	"gorm.io/gorm"
	"gorm.io/plugin/soft_delete"
)

// BaseModel 嵌入到每个实体
// ID 为雪花 ID，JSON 中以字符串输出；时间戳由仓储写入，客户端传入的值被覆盖
// DeletedAt 为 unix 秒，0 表示未删除
type BaseModel struct {
	ID        int64                 `json:"id,string" gorm:"primaryKey;autoIncrement:false"`
	CreatedAt time.Time             `json:"createdAt" gorm:"not null"`
	UpdatedAt time.Time             `json:"updatedAt" gorm:"not null"`
	DeletedAt soft_delete.DeletedAt `json:"-" gorm:"not null;default:0;index"`
}

// BeforeCreate 未指定 ID 时分配雪花 ID
func (m *BaseModel) BeforeCreate(*gorm.DB) error {
	if m.ID == 0 {
		m.ID = snowflake.Generate()
	}
	return nil
}

type timestamped interface {
	stamp(now time.Time, created bool)
}

func (m *BaseModel) stamp(now time.Time, created bool) {
	m.UpdatedAt = now
	if created {
		m.CreatedAt = now
	}
}
