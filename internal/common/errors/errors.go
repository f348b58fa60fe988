// Package errors 定义业务错误码和错误处理
package errors

import (
	"fmt"
)

// AppError 应用错误
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap 实现 errors.Unwrap
func (e *AppError) Unwrap() error {
	return e.Err
}

// New 创建新的应用错误
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap 包装错误
func Wrap(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// WithMessage 修改错误消息
func (e *AppError) WithMessage(message string) *AppError {
	return &AppError{
		Code:    e.Code,
		Message: message,
		Err:     e.Err,
	}
}

// WithError 添加原始错误
func (e *AppError) WithError(err error) *AppError {
	return &AppError{
		Code:    e.Code,
		Message: e.Message,
		Err:     err,
	}
}

// 通用错误码 (1000-1999)
var (
	ErrUnknown         = New(1000, "未知错误")
	ErrInvalidParams   = New(1001, "参数错误")
	ErrNotFound        = New(1002, "资源不存在")
	ErrAlreadyExists   = New(1003, "资源已存在")
	ErrDatabaseError   = New(1004, "数据库错误")
	ErrCacheError      = New(1005, "缓存错误")
	ErrInternalError   = New(1006, "内部错误")
	ErrExternalService = New(1007, "外部服务错误")
	ErrRateLimitExceed = New(1008, "请求过于频繁")
	ErrOperationFailed = New(1009, "操作失败")
)

// 认证错误码 (2000-2999)
var (
	ErrUnauthorized     = New(2000, "未登录")
	ErrTokenExpired     = New(2001, "登录已过期")
	ErrTokenInvalid     = New(2002, "无效的令牌")
	ErrTokenRefreshFail = New(2003, "刷新令牌失败")
	ErrPermissionDenied = New(2004, "权限不足")
	ErrAccountDisabled  = New(2005, "账号已禁用")
	ErrPasswordError    = New(2006, "密码错误")
	ErrAdminNotFound    = New(2007, "管理员不存在")
	ErrAdminExists      = New(2008, "管理员已存在")
)

// 房型错误码 (3000-3999)
var (
	ErrRoomNotFound        = New(3000, "房型不存在")
	ErrRoomDisabled        = New(3001, "房型已停用")
	ErrRoomNotAvailable    = New(3002, "该房型暂无可用房间")
	ErrRoomSlugExists      = New(3003, "房型标识已存在")
	ErrGuestsExceedLimit   = New(3004, "入住人数超出房型上限")
	ErrAvailabilityExceed  = New(3005, "可用房间数不能超过房间总数")
	ErrConferenceRoomNotFound = New(3006, "会议室不存在")
)

// 预订错误码 (4000-4999)
var (
	ErrBookingNotFound      = New(4000, "预订不存在")
	ErrBookingStatusError   = New(4001, "预订状态不允许该操作")
	ErrBookingDatesInvalid  = New(4002, "退房日期必须晚于入住日期")
	ErrBookingNotTentative  = New(4003, "仅临时预订可执行该操作")
	ErrBookingNotPaid       = New(4004, "预订未付清，无法办理入住")
	ErrBookingNotCheckedIn  = New(4005, "预订未处于入住状态")
	ErrBookingRefGenFail    = New(4006, "预订编号生成失败")
	ErrTentativeExpired     = New(4007, "临时预订已过期")
)

// 收款与发票错误码 (5000-5999)
var (
	ErrPaymentNotFound    = New(5000, "收款记录不存在")
	ErrPaymentAmountError = New(5001, "收款金额必须大于0")
	ErrPaymentRefGenFail  = New(5002, "收款编号生成失败")
	ErrPaymentDeleted     = New(5003, "收款记录已删除")
	ErrInvoiceNotFound    = New(5004, "发票不存在")
	ErrInvoiceGenFail     = New(5005, "发票生成失败")
	ErrInvoiceSendFail    = New(5006, "发票发送失败")
)

// 会议咨询错误码 (6000-6999)
var (
	ErrInquiryNotFound    = New(6000, "会议咨询不存在")
	ErrInquiryStatusError = New(6001, "咨询状态不允许该操作")
	ErrInquiryDatesInvalid = New(6002, "活动结束日期不能早于开始日期")
)

// 内容与设置错误码 (7000-7999)
var (
	ErrPageNotFound      = New(7000, "页面不存在")
	ErrPageSlugExists    = New(7001, "页面标识已存在")
	ErrImageNotFound     = New(7002, "图片不存在")
	ErrSettingNotFound   = New(7003, "设置项不存在")
	ErrSettingValueError = New(7004, "设置值格式错误")
)

// IsAppError 判断是否为应用错误
func IsAppError(err error) bool {
	_, ok := err.(*AppError)
	return ok
}

// GetAppError 获取应用错误
func GetAppError(err error) *AppError {
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}
	return ErrUnknown.WithError(err)
}
