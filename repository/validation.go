package repository

import (
	"fmt"
	"regexp"
	"strings"
)

/* ========================================================================
 * OrderBy 校验
 * ========================================================================
 * 职责: OrderBy 会原样拼进 SQL，只接受 "列 [ASC|DESC]" 的逗号列表
 * 列: column 或 table.column，仅字母 / 数字 / 下划线
 * ======================================================================== */

var orderColumn = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// OrderByError 排序表达式非法
type OrderByError struct {
	Term   string
	Reason string
}

func (e *OrderByError) Error() string {
	return fmt.Sprintf("invalid order term %q: %s", e.Term, e.Reason)
}

// ValidateOrderBy 校验排序表达式，空串合法
//
//	"id"
//	"created_at DESC"
//	"shop.name asc, id DESC"
func ValidateOrderBy(orderBy string) error {
	if strings.TrimSpace(orderBy) == "" {
		return nil
	}
	for _, term := range strings.Split(orderBy, ",") {
		if err := validateOrderTerm(strings.TrimSpace(term)); err != nil {
			return err
		}
	}
	return nil
}

func validateOrderTerm(term string) error {
	fields := strings.Fields(term)
	switch len(fields) {
	case 0:
		return &OrderByError{Term: term, Reason: "empty term"}
	case 1, 2:
	default:
		return &OrderByError{Term: term, Reason: "expected column and optional direction"}
	}

	if !orderColumn.MatchString(fields[0]) {
		return &OrderByError{Term: term, Reason: "column must be an identifier"}
	}
	if len(fields) == 2 {
		switch strings.ToUpper(fields[1]) {
		case "ASC", "DESC":
		default:
			return &OrderByError{Term: term, Reason: "direction must be ASC or DESC"}
		}
	}
	return nil
}
