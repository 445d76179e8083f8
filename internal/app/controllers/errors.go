package controllers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"visiting-service/internal/domain/services"
	"visiting-service/internal/error/code"
	"visiting-service/internal/error/response"
)

// domainErrorCodes 领域错误到错误码的映射
var domainErrorCodes = []struct {
	err  error
	code int
}{
	{services.ErrVisitingNotFound, code.ErrVisitingNotFound},
	{services.ErrVisitorNotFound, code.ErrVisitorNotFound},
	{services.ErrCategoryNotFound, code.ErrCategoryNotFound},
	{services.ErrGateKeeperNotFound, code.ErrGateKeeperNotFound},
	{services.ErrInvalidWindow, code.ErrInvalidWindow},
	{services.ErrInvalidStatus, code.ErrInvalidStatus},
	{services.ErrVisitorNameRequired, code.ErrVisitorNameRequired},
	{services.ErrCategoryClassChange, code.ErrCategoryClassChange},
	{services.ErrDuplicateTransition, code.ErrDuplicateTransition},
	{services.ErrIllegalTransition, code.ErrIllegalTransition},
	{services.ErrAlreadyDecided, code.ErrAlreadyDecided},
	{services.ErrGateUnauthorized, code.ErrGateUnauthorized},
	{services.ErrDecisionUnauthorized, code.ErrDecisionUnauthorized},
	{services.ErrCodeNotFound, code.ErrCodeNotFound},
	{services.ErrCodeUsed, code.ErrCodeUsed},
	{services.ErrTransientStore, code.ErrTransientStore},
}

// respondDomainError 把领域错误翻译成统一响应；未识别的错误按数据库错误处理
func respondDomainError(ctx *gin.Context, err error) {
	for _, entry := range domainErrorCodes {
		if errors.Is(err, entry.err) {
			response.FailWithMessage(ctx, entry.code, err.Error(), nil)
			return
		}
	}
	response.FailWithMessage(ctx, code.ErrDatabase, err.Error(), nil)
}
