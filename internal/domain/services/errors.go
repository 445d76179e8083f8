package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// 领域错误。控制器通过 errors.Is 将其翻译为错误码表中的条目，
// 存储层的原始错误不会越过服务层边界。
var (
	// 校验类错误：调用方可修正，不应重试
	ErrInvalidWindow       = errors.New("预约时间窗无效")
	ErrInvalidStatus       = errors.New("来访状态无效")
	ErrVisitorNameRequired = errors.New("访客姓名不能为空")
	ErrCategoryClassChange = errors.New("不允许跨类别类型修改来访类别")

	// 状态冲突类错误：重试不会改变结果
	ErrDuplicateTransition = errors.New("不能重复设置相同的状态")
	ErrIllegalTransition   = errors.New("当前状态不允许该变更")
	ErrAlreadyDecided      = errors.New("该来访审批已被处理")

	// 授权类错误
	ErrGateUnauthorized     = errors.New("门卫无权操作该目的地")
	ErrDecisionUnauthorized = errors.New("住户无权审批该来访")

	// 不存在类错误
	ErrVisitingNotFound   = errors.New("来访记录不存在")
	ErrVisitorNotFound    = errors.New("访客不存在")
	ErrCategoryNotFound   = errors.New("来访类别不存在")
	ErrGateKeeperNotFound = errors.New("门卫不存在")
	ErrCodeNotFound       = errors.New("通行码不存在或已过期")
	ErrCodeUsed           = errors.New("通行码已使用")

	// 存储暂时性错误：在事务边界重试是安全的
	ErrTransientStore = errors.New("存储暂时不可用")
)

// wrapStoreError 将存储层错误翻译为可重试的暂时性领域错误。
// gorm.ErrRecordNotFound 由各调用点按语境翻译，不在这里处理。
func wrapStoreError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrTransientStore, err)
}
