package database

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// JSONB 任意 JSON 对象列（如 shop.meta），内容对仓储层不透明
// Postgres 映射为 jsonb，其余方言为 json；nil 写入 "{}"
type JSONB map[string]any

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return "{}", nil
	}
	b, err := json.Marshal(map[string]any(j))
	return string(b), err
}

func (j *JSONB) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*j = JSONB{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("jsonb: cannot scan %T", src)
	}
	return json.Unmarshal(raw, j)
}

func (JSONB) GormDataType() string { return "json" }

func (JSONB) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "jsonb"
	}
	return "json"
}
