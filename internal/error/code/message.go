package code

// 错误码消息映射
var codeMessageMap = map[int]string{
	// 通用错误码
	ErrSuccess:         "成功",
	ErrUnknown:         "未知错误",
	ErrBind:            "请求参数绑定错误",
	ErrValidation:      "请求参数验证错误",
	ErrTokenInvalid:    "无效的认证令牌",
	ErrTooManyRequests: "请求频率过高，请稍后再试",

	// 用户相关错误码
	ErrUserNotFound:          "用户不存在",
	ErrUserAlreadyExist:      "用户已存在",
	ErrUserPasswordIncorrect: "用户密码错误",

	// 住址目录相关错误码
	ErrBuildingNotFound:      "楼号不存在",
	ErrBuildingAlreadyExist:  "楼号已存在",
	ErrHouseholdNotFound:     "户号不存在",
	ErrHouseholdAlreadyExist: "户号已存在",

	// 住户与门卫相关错误码
	ErrResidentNotFound:       "住户不存在",
	ErrResidentAlreadyExist:   "住户已存在",
	ErrGateKeeperNotFound:     "门卫不存在",
	ErrGateKeeperAlreadyExist: "门卫已存在",

	// 数据库相关错误码
	ErrDatabase:       "数据库错误",
	ErrRecordNotFound: "记录不存在",
	ErrTransientStore: "存储暂时不可用，请重试",

	// 来访相关错误码
	ErrVisitingNotFound:     "来访记录不存在",
	ErrVisitorNotFound:      "访客不存在",
	ErrInvalidWindow:        "预约时间窗无效",
	ErrInvalidStatus:        "来访状态无效",
	ErrDuplicateTransition:  "不能重复设置相同的状态",
	ErrIllegalTransition:    "当前状态不允许该变更",
	ErrAlreadyDecided:       "该来访审批已被处理",
	ErrVisitorNameRequired:  "访客姓名不能为空",
	ErrCategoryNotFound:     "来访类别不存在",
	ErrCategoryClassChange:  "不允许跨类别类型修改来访类别",
	ErrDecisionUnauthorized: "住户无权审批该来访",

	// 闸口相关错误码
	ErrGateUnauthorized: "门卫无权操作该目的地",
	ErrCodeNotFound:     "通行码不存在或已过期",
	ErrCodeUsed:         "通行码已使用",
}

// 错误码HTTP状态码映射
var codeStatusMap = map[int]int{
	// 通用错误码
	ErrSuccess:         StatusOK,
	ErrUnknown:         StatusInternalServerError,
	ErrBind:            StatusBadRequest,
	ErrValidation:      StatusBadRequest,
	ErrTokenInvalid:    StatusUnauthorized,
	ErrTooManyRequests: StatusTooManyRequests,

	// 用户相关错误码
	ErrUserNotFound:          StatusNotFound,
	ErrUserAlreadyExist:      StatusBadRequest,
	ErrUserPasswordIncorrect: StatusUnauthorized,

	// 住址目录相关错误码
	ErrBuildingNotFound:      StatusNotFound,
	ErrBuildingAlreadyExist:  StatusBadRequest,
	ErrHouseholdNotFound:     StatusNotFound,
	ErrHouseholdAlreadyExist: StatusBadRequest,

	// 住户与门卫相关错误码
	ErrResidentNotFound:       StatusNotFound,
	ErrResidentAlreadyExist:   StatusBadRequest,
	ErrGateKeeperNotFound:     StatusNotFound,
	ErrGateKeeperAlreadyExist: StatusBadRequest,

	// 数据库相关错误码
	ErrDatabase:       StatusInternalServerError,
	ErrRecordNotFound: StatusNotFound,
	ErrTransientStore: StatusInternalServerError,

	// 来访相关错误码
	ErrVisitingNotFound:     StatusNotFound,
	ErrVisitorNotFound:      StatusNotFound,
	ErrInvalidWindow:        StatusBadRequest,
	ErrInvalidStatus:        StatusBadRequest,
	ErrDuplicateTransition:  StatusConflict,
	ErrIllegalTransition:    StatusConflict,
	ErrAlreadyDecided:       StatusConflict,
	ErrVisitorNameRequired:  StatusBadRequest,
	ErrCategoryNotFound:     StatusNotFound,
	ErrCategoryClassChange:  StatusBadRequest,
	ErrDecisionUnauthorized: StatusForbidden,

	// 闸口相关错误码
	ErrGateUnauthorized: StatusForbidden,
	ErrCodeNotFound:     StatusNotFound,
	ErrCodeUsed:         StatusConflict,
}

// GetMessage 获取错误码对应的消息
func GetMessage(code int) string {
	if msg, ok := codeMessageMap[code]; ok {
		return msg
	}
	return "未知错误"
}

// GetStatus 获取错误码对应的HTTP状态码
func GetStatus(code int) int {
	if status, ok := codeStatusMap[code]; ok {
		return status
	}
	return StatusInternalServerError
}
