package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/aisgo/posibel/identity"
)

// Policies 角色策略集合，以 JSON 数组文本存储
// 写入前校验每一项均为两段式策略
type Policies []identity.Policy

// Value 实现 driver.Valuer
func (p Policies) Value() (driver.Value, error) {
	for _, policy := range p {
		if !policy.Valid() {
			return nil, fmt.Errorf("invalid policy %q", string(policy))
		}
	}
	if p == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]identity.Policy(p))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan 实现 sql.Scanner
func (p *Policies) Scan(value any) error {
	var data []byte
	switch v := value.(type) {
	case nil:
		*p = Policies{}
		return nil
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		return fmt.Errorf("unsupported type %T for policies", value)
	}
	var list []identity.Policy
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	*p = list
	return nil
}
