package response

import (
	"net/http"

	"github.com/aisgo/posibel/errors"

	"github.com/gofiber/fiber/v3"
)

/* ========================================================================
 * Response - 统一响应
 * ========================================================================
 * 格式: {"code": <业务码或 HTTP 码>, "msg": "...", "data": {...}}
 * 错误: BizError 使用其业务码与消息，其他错误只返回通用 500
 * ======================================================================== */

// Result 统一响应结构
type Result struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data any    `json:"data"`
}

// PageResult 分页数据
type PageResult struct {
	List     any   `json:"list"`
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
}

// empty data 序列化为 {} 而不是 null
var empty = &struct{}{}

func write(c fiber.Ctx, status, code int, msg string, data any) error {
	if status < http.StatusContinue || status > http.StatusNetworkAuthenticationRequired {
		status = http.StatusInternalServerError
	}
	if data == nil {
		data = empty
	}
	return c.Status(status).JSON(Result{Code: code, Msg: msg, Data: data})
}

// OkWithData 200
func OkWithData(c fiber.Ctx, data any) error {
	return write(c, http.StatusOK, http.StatusOK, "ok", data)
}

// Created 201
func Created(c fiber.Ctx, data any) error {
	return write(c, http.StatusCreated, http.StatusCreated, "ok", data)
}

// PageData 分页响应
func PageData(c fiber.Ctx, list any, total int64, page, pageSize int) error {
	return OkWithData(c, &PageResult{List: list, Total: total, Page: page, PageSize: pageSize})
}

// Error 错误响应，状态码由错误码决定
func Error(c fiber.Ctx, err error) error {
	if err == nil {
		return OkWithData(c, nil)
	}
	status, body := errors.ToHTTPResponse(err)
	return write(c, status, body["code"].(int), body["msg"].(string), nil)
}

// ErrorWithCode 以指定状态码返回错误；BizError 仍使用自身的业务码与消息
func ErrorWithCode(c fiber.Ctx, status int, err error) error {
	if err == nil {
		return write(c, status, status, "ok", nil)
	}
	if bizErr, ok := errors.AsBizError(err); ok {
		return write(c, status, int(bizErr.Code), bizErr.Message, nil)
	}
	return write(c, status, status, err.Error(), nil)
}

// StatusOf 错误对应的 HTTP 状态码
func StatusOf(err error) int {
	if err == nil {
		return http.StatusOK
	}
	status, _ := errors.ToHTTPResponse(err)
	return status
}
