package validator

import (
	stderrors "errors"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/aisgo/posibel/errors"

	"github.com/go-playground/validator/v10"
)

/* ========================================================================
 * Validator - 请求校验
 * ========================================================================
 * 职责: go-playground/validator 校验结构体，按字段路径汇总错误消息
 * 特性:
 *   - error_msg 标签按规则覆盖默认消息: "required:邮箱必填|email:邮箱格式错误"
 *   - 整体校验，支持 eqfield 等跨字段规则与嵌套结构体
 *   - 解析过的 error_msg 按 (类型, 字段路径) 缓存
 * 使用示例:
 *     type RegisterRequest struct {
 *         Password     string `validate:"required,min=9" error_msg:"min:密码至少9位"`
 *         Confirmation string `validate:"required,eqfield=Password" error_msg:"eqfield:两次密码不一致"`
 *     }
 *     if err := validator.New().Check(&req); err != nil {
 *         // err 为 InvalidArgument 业务错误
 *     }
 * ======================================================================== */

const messageTag = "error_msg"

// Validator 并发安全，进程内共享一个实例
type Validator struct {
	engine   *validator.Validate
	messages sync.Map // messageKey -> map[rule]message
}

type messageKey struct {
	root reflect.Type
	path string
}

func New() *Validator {
	return &Validator{engine: validator.New(validator.WithRequiredStructEnabled())}
}

// ValidationError 字段路径 -> 错误消息
type ValidationError struct {
	Fields map[string][]string
}

func (e *ValidationError) Error() string {
	paths := make([]string, 0, len(e.Fields))
	for path := range e.Fields {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	parts := make([]string, 0, len(paths))
	for _, path := range paths {
		parts = append(parts, path+": "+strings.Join(e.Fields[path], ", "))
	}
	return strings.Join(parts, "; ")
}

func (e *ValidationError) Add(path, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[path] = append(e.Fields[path], message)
}

func (e *ValidationError) Get(path string) []string {
	return e.Fields[path]
}

// Validate 非结构体与 nil 指针直接通过
// 校验失败返回 *ValidationError
func (v *Validator) Validate(s any) error {
	value := reflect.ValueOf(s)
	for value.Kind() == reflect.Ptr {
		if value.IsNil() {
			return nil
		}
		value = value.Elem()
	}
	if value.Kind() != reflect.Struct {
		return nil
	}

	err := v.engine.Struct(value.Interface())
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !stderrors.As(err, &fieldErrs) {
		return err
	}

	out := &ValidationError{}
	for _, fe := range fieldErrs {
		path := fieldPath(fe.StructNamespace())
		msg, ok := v.rules(value.Type(), path)[fe.Tag()]
		if !ok {
			msg = fe.Error()
		}
		out.Add(path, msg)
	}
	return out
}

// Check 同 Validate，失败时包装为 InvalidArgument
func (v *Validator) Check(s any) error {
	err := v.Validate(s)
	if err == nil {
		return nil
	}
	return errors.Wrap(errors.ErrCodeInvalidArgument, "validation failed: "+err.Error(), err)
}

func (v *Validator) rules(root reflect.Type, path string) map[string]string {
	key := messageKey{root: root, path: path}
	if cached, ok := v.messages.Load(key); ok {
		return cached.(map[string]string)
	}
	parsed := parseMessages(lookupTag(root, path))
	v.messages.Store(key, parsed)
	return parsed
}

// fieldPath 去掉根类型名: "Req.Inner.Email" -> "Inner.Email"
func fieldPath(namespace string) string {
	if _, rest, ok := strings.Cut(namespace, "."); ok {
		return rest
	}
	return namespace
}

// lookupTag 沿字段路径取 error_msg，路径段中的 [i] 下标忽略
func lookupTag(t reflect.Type, path string) string {
	var tag string
	for _, segment := range strings.Split(path, ".") {
		if i := strings.IndexByte(segment, '['); i >= 0 {
			segment = segment[:i]
		}
		t = indirect(t)
		if t.Kind() != reflect.Struct {
			return ""
		}
		f, ok := t.FieldByName(segment)
		if !ok {
			return ""
		}
		tag, t = f.Tag.Get(messageTag), f.Type
	}
	return tag
}

func indirect(t reflect.Type) reflect.Type {
	for {
		switch t.Kind() {
		case reflect.Ptr, reflect.Slice, reflect.Array, reflect.Map:
			t = t.Elem()
		default:
			return t
		}
	}
}

func parseMessages(tag string) map[string]string {
	rules := make(map[string]string)
	if tag == "" {
		return rules
	}
	for _, item := range strings.Split(tag, "|") {
		rule, msg, ok := strings.Cut(item, ":")
		if ok {
			rules[strings.TrimSpace(rule)] = strings.TrimSpace(msg)
		}
	}
	return rules
}
