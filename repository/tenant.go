package repository

import (
	"reflect"

	"gorm.io/gorm/schema"
)

// TenantColumn 租户列
const TenantColumn = "organization_id"

// TenantRoot 标记租户根实体：其主键即租户 ID
type TenantRoot interface {
	TenantRoot()
}

// tenantColumnOf 返回模型用于租户过滤的列
func tenantColumnOf(s *schema.Schema) (string, bool) {
	if s == nil {
		return "", false
	}
	if _, ok := reflect.New(s.ModelType).Interface().(TenantRoot); ok {
		if s.PrioritizedPrimaryField != nil {
			return s.PrioritizedPrimaryField.DBName, true
		}
		return "", false
	}
	if _, ok := s.FieldsByDBName[TenantColumn]; ok {
		return TenantColumn, true
	}
	return "", false
}

func isTenantRoot(s *schema.Schema) bool {
	_, ok := reflect.New(s.ModelType).Interface().(TenantRoot)
	return ok
}
