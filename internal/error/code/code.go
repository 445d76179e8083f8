package code

// HTTP状态码.
const (
	// StatusOK - 200: 成功.
	StatusOK = 200
	// StatusBadRequest - 400: 请求参数错误.
	StatusBadRequest = 400
	// StatusUnauthorized - 401: 未授权.
	StatusUnauthorized = 401
	// StatusForbidden - 403: 禁止访问.
	StatusForbidden = 403
	// StatusNotFound - 404: 资源不存在.
	StatusNotFound = 404
	// StatusConflict - 409: 状态冲突.
	StatusConflict = 409
	// StatusInternalServerError - 500: 服务器内部错误.
	StatusInternalServerError = 500
	// StatusTooManyRequests - 429: 请求过多.
	StatusTooManyRequests = 429
)

// 通用错误码 (100xxx).
const (
	// ErrSuccess - 200: 成功.
	ErrSuccess int = iota + 100000
	// ErrUnknown - 500: 未知错误.
	ErrUnknown
	// ErrBind - 400: 请求参数绑定错误.
	ErrBind
	// ErrValidation - 400: 请求参数验证错误.
	ErrValidation
	// ErrTokenInvalid - 401: 令牌无效.
	ErrTokenInvalid
	// ErrTooManyRequests - 429: 请求频率过高.
	ErrTooManyRequests
)

// 用户相关错误码 (101xxx).
const (
	// ErrUserNotFound - 404: 用户不存在.
	ErrUserNotFound int = iota + 101000
	// ErrUserAlreadyExist - 400: 用户已存在.
	ErrUserAlreadyExist
	// ErrUserPasswordIncorrect - 401: 用户密码错误.
	ErrUserPasswordIncorrect
)

// 住址目录相关错误码 (102xxx).
const (
	// ErrBuildingNotFound - 404: 楼号不存在.
	ErrBuildingNotFound int = iota + 102000
	// ErrBuildingAlreadyExist - 400: 楼号已存在.
	ErrBuildingAlreadyExist
	// ErrHouseholdNotFound - 404: 户号不存在.
	ErrHouseholdNotFound
	// ErrHouseholdAlreadyExist - 400: 户号已存在.
	ErrHouseholdAlreadyExist
)

// 住户与门卫相关错误码 (103xxx).
const (
	// ErrResidentNotFound - 404: 住户不存在.
	ErrResidentNotFound int = iota + 103000
	// ErrResidentAlreadyExist - 400: 住户已存在.
	ErrResidentAlreadyExist
	// ErrGateKeeperNotFound - 404: 门卫不存在.
	ErrGateKeeperNotFound
	// ErrGateKeeperAlreadyExist - 400: 门卫已存在.
	ErrGateKeeperAlreadyExist
)

// 数据库相关错误码 (105xxx).
const (
	// ErrDatabase - 500: 数据库错误.
	ErrDatabase int = iota + 105000
	// ErrRecordNotFound - 404: 记录不存在.
	ErrRecordNotFound
	// ErrTransientStore - 500: 存储暂时不可用，可在事务边界重试.
	ErrTransientStore
)

// 来访相关错误码 (106xxx).
const (
	// ErrVisitingNotFound - 404: 来访记录不存在.
	ErrVisitingNotFound int = iota + 106000
	// ErrVisitorNotFound - 404: 访客不存在.
	ErrVisitorNotFound
	// ErrInvalidWindow - 400: 预约时间窗无效.
	ErrInvalidWindow
	// ErrInvalidStatus - 400: 来访状态无效.
	ErrInvalidStatus
	// ErrDuplicateTransition - 409: 重复的状态变更.
	ErrDuplicateTransition
	// ErrIllegalTransition - 409: 不允许的状态变更.
	ErrIllegalTransition
	// ErrAlreadyDecided - 409: 审批已被其他人处理.
	ErrAlreadyDecided
	// ErrVisitorNameRequired - 400: 访客姓名不能为空.
	ErrVisitorNameRequired
	// ErrCategoryNotFound - 404: 来访类别不存在.
	ErrCategoryNotFound
	// ErrCategoryClassChange - 400: 不允许跨类别类型修改来访类别.
	ErrCategoryClassChange
	// ErrDecisionUnauthorized - 403: 住户无权审批该来访.
	ErrDecisionUnauthorized
)

// 闸口相关错误码 (107xxx).
const (
	// ErrGateUnauthorized - 403: 门卫无权操作该目的地.
	ErrGateUnauthorized int = iota + 107000
	// ErrCodeNotFound - 404: 通行码不存在或已过期.
	ErrCodeNotFound
	// ErrCodeUsed - 409: 通行码已使用.
	ErrCodeUsed
)
