package errors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v3"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

/* ========================================================================
 * Posibel Error Package - 统一错误处理
 * ========================================================================
 * 职责: 业务错误码，以及到 HTTP / gRPC 状态的映射
 * 约定: 租户隔离相关的失败（影响行数为零、跨租户写入）统一使用 Conflict，
 *       不区分「不存在」与「属于其他租户」
 * ======================================================================== */

// ErrorCode 业务错误码
type ErrorCode int

const (
	// 通用错误 (1xxx)
	ErrCodeUnknown          ErrorCode = 1000
	ErrCodeInvalidArgument  ErrorCode = 1001
	ErrCodeNotFound         ErrorCode = 1002
	ErrCodeAlreadyExists    ErrorCode = 1003
	ErrCodePermissionDenied ErrorCode = 1004
	ErrCodeUnauthenticated  ErrorCode = 1005
	ErrCodeInternal         ErrorCode = 1006
	ErrCodeUnavailable      ErrorCode = 1007
	ErrCodeTimeout          ErrorCode = 1008
	ErrCodeCanceled         ErrorCode = 1009

	// 租户与授权 (11xx)
	ErrCodeConflict          ErrorCode = 1100 // 影响行数为零 / 跨租户写入 / 邮箱重复
	ErrCodeMalformedIdentity ErrorCode = 1101 // 身份缺少用户、组织、角色或策略
)

// statusClientClosedRequest 非标准状态码，nginx 约定
const statusClientClosedRequest = 499

type mapping struct {
	http int
	grpc codes.Code
}

var mappings = map[ErrorCode]mapping{
	ErrCodeUnknown:           {http.StatusInternalServerError, codes.Unknown},
	ErrCodeInvalidArgument:   {http.StatusBadRequest, codes.InvalidArgument},
	ErrCodeNotFound:          {http.StatusNotFound, codes.NotFound},
	ErrCodeAlreadyExists:     {http.StatusConflict, codes.AlreadyExists},
	ErrCodePermissionDenied:  {http.StatusForbidden, codes.PermissionDenied},
	ErrCodeUnauthenticated:   {http.StatusUnauthorized, codes.Unauthenticated},
	ErrCodeInternal:          {http.StatusInternalServerError, codes.Internal},
	ErrCodeUnavailable:       {http.StatusServiceUnavailable, codes.Unavailable},
	ErrCodeTimeout:           {http.StatusGatewayTimeout, codes.DeadlineExceeded},
	ErrCodeCanceled:          {statusClientClosedRequest, codes.Canceled},
	ErrCodeConflict:          {http.StatusConflict, codes.Aborted},
	ErrCodeMalformedIdentity: {http.StatusConflict, codes.FailedPrecondition},
}

// grpcToCode 反向映射，每个 gRPC 码对应唯一业务码
var grpcToCode = func() map[codes.Code]ErrorCode {
	m := make(map[codes.Code]ErrorCode, len(mappings))
	for code, mp := range mappings {
		m[mp.grpc] = code
	}
	return m
}()

// BizError 业务错误
type BizError struct {
	Code    ErrorCode
	Message string
	Cause   error
}

func (e *BizError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Is 按业务错误码匹配，消息不参与比较
func (e *BizError) Is(target error) bool {
	t, ok := target.(*BizError)
	return ok && e.Code == t.Code
}

func (e *BizError) Unwrap() error {
	return e.Cause
}

// New 创建业务错误
func New(code ErrorCode, message string) *BizError {
	return &BizError{Code: code, Message: message}
}

// Wrap 包装底层错误
func Wrap(code ErrorCode, message string, cause error) *BizError {
	return &BizError{Code: code, Message: message, Cause: cause}
}

var (
	ErrInvalidArgument  = New(ErrCodeInvalidArgument, "invalid argument")
	ErrNotFound         = New(ErrCodeNotFound, "resource not found")
	ErrPermissionDenied = New(ErrCodePermissionDenied, "permission denied")
	ErrUnauthenticated  = New(ErrCodeUnauthenticated, "unauthenticated")
	ErrUnavailable      = New(ErrCodeUnavailable, "service unavailable")
	ErrCanceled         = New(ErrCodeCanceled, "canceled")

	ErrConflict          = New(ErrCodeConflict, "conflict")
	ErrMalformedIdentity = New(ErrCodeMalformedIdentity, "token not valid")
	ErrTenantMismatch    = New(ErrCodeConflict, "organization does not match identity")
)

// Is 同标准库 errors.Is
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As 同标准库 errors.As
func As(err error, target any) bool {
	return errors.As(err, target)
}

// AsBizError 取出错误链中的 BizError
func AsBizError(err error) (*BizError, bool) {
	var bizErr *BizError
	if err != nil && errors.As(err, &bizErr) {
		return bizErr, true
	}
	return nil, false
}

// Code 错误码，非业务错误返回 ErrCodeUnknown
func Code(err error) ErrorCode {
	if bizErr, ok := AsBizError(err); ok {
		return bizErr.Code
	}
	return ErrCodeUnknown
}

func IsConflict(err error) bool {
	return Code(err) == ErrCodeConflict
}

// IsRetryable 超时与服务不可用可重试；取消与其他错误视为致命
func IsRetryable(err error) bool {
	switch Code(err) {
	case ErrCodeTimeout, ErrCodeUnavailable:
		return true
	default:
		return false
	}
}

/* ========================================================================
 * 传输层映射
 * ======================================================================== */

// ToGRPCError 转换为 gRPC status 错误；非业务错误为 Internal
func ToGRPCError(err error) error {
	if err == nil {
		return nil
	}
	bizErr, ok := AsBizError(err)
	if !ok {
		return status.Error(codes.Internal, err.Error())
	}
	mp, ok := mappings[bizErr.Code]
	if !ok {
		return status.Error(codes.Unknown, bizErr.Message)
	}
	return status.Error(mp.grpc, bizErr.Message)
}

// FromGRPCError gRPC status 错误转换为业务错误
func FromGRPCError(err error) *BizError {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return Wrap(ErrCodeUnknown, "unknown error", err)
	}
	code, ok := grpcToCode[st.Code()]
	if !ok {
		code = ErrCodeInternal
	}
	return New(code, st.Message())
}

// ToHTTPResponse 返回 HTTP 状态码与 {"code", "msg"} 响应体
// 非业务错误不暴露细节
func ToHTTPResponse(err error) (int, fiber.Map) {
	if err == nil {
		return http.StatusOK, fiber.Map{"code": 0, "msg": "success"}
	}
	bizErr, ok := AsBizError(err)
	if !ok {
		return http.StatusInternalServerError, fiber.Map{
			"code": http.StatusInternalServerError,
			"msg":  "internal server error",
		}
	}

	statusCode := http.StatusInternalServerError
	if mp, ok := mappings[bizErr.Code]; ok {
		statusCode = mp.http
	}
	return statusCode, fiber.Map{"code": int(bizErr.Code), "msg": bizErr.Message}
}
