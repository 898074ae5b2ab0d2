package core

// DomainError 是领域层的统一错误类型。
//
// 设计原则：
//   - 所有领域层错误都使用此类型
//   - 提供错误代码（Code）和消息（Message）
//   - 支持错误检查函数（IsXXX）
//
// 使用场景：
//   - 内容引擎错误：NOT_FOUND, AMBIGUOUS_MATCH, EMPTY_CATALOG
//   - 协同引擎错误：EMPTY_DATASET, UNKNOWN_ITEM
//   - 模型仓库错误：ARTIFACT_NOT_FOUND, SCHEMA_MISMATCH
//   - 存储错误：NOT_FOUND, NOT_SUPPORTED
type DomainError struct {
	Code    string // 错误代码（如 "NOT_FOUND", "EMPTY_DATASET"）
	Message string // 错误消息
	Module  string // 模块名称（如 "content", "svd", "artifact"）
}

func (e *DomainError) Error() string {
	return e.Message
}

// IsDomainError 检查错误是否为 DomainError 类型
func IsDomainError(err error) bool {
	if err == nil {
		return false
	}
	_, ok := err.(*DomainError)
	return ok
}

// GetDomainError 获取 DomainError，如果不是则返回 nil
func GetDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	if domainErr, ok := err.(*DomainError); ok {
		return domainErr
	}
	return nil
}

// NewDomainError 创建新的领域错误
func NewDomainError(module, code, message string) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
	}
}

// 错误代码常量
const (
	ErrorCodeNotFound         = "NOT_FOUND"          // 标题/物品不存在
	ErrorCodeAmbiguousMatch   = "AMBIGUOUS_MATCH"    // 标题匹配不唯一
	ErrorCodeEmptyCatalog     = "EMPTY_CATALOG"      // 目录无数据
	ErrorCodeEmptyDataset     = "EMPTY_DATASET"      // 评分数据为空
	ErrorCodeUnknownItem      = "UNKNOWN_ITEM"       // 训练词表外的物品
	ErrorCodeArtifactNotFound = "ARTIFACT_NOT_FOUND" // 模型产物不存在（区别于存储故障）
	ErrorCodeSchemaMismatch   = "SCHEMA_MISMATCH"    // 产物版本/类型不匹配
	ErrorCodeNotSupported     = "NOT_SUPPORTED"      // 操作不支持
	ErrorCodeInvalidInput     = "INVALID_INPUT"      // 输入无效
)

// 模块名称常量
const (
	ModuleContent  = "content"  // 内容相似引擎
	ModuleSVD      = "svd"      // 隐语义引擎
	ModuleArtifact = "artifact" // 模型仓库
	ModuleStore    = "store"    // 存储模块
	ModuleService  = "service"  // 推荐服务
	ModuleDataset  = "dataset"  // 数据源模块
)

// 通用错误检查函数

// IsNotFound 检查错误是否为 NOT_FOUND
func IsNotFound(err error) bool {
	return hasCode(err, ErrorCodeNotFound)
}

// IsAmbiguousMatch 检查错误是否为 AMBIGUOUS_MATCH
func IsAmbiguousMatch(err error) bool {
	return hasCode(err, ErrorCodeAmbiguousMatch)
}

// IsEmptyCatalog 检查错误是否为 EMPTY_CATALOG
func IsEmptyCatalog(err error) bool {
	return hasCode(err, ErrorCodeEmptyCatalog)
}

// IsEmptyDataset 检查错误是否为 EMPTY_DATASET
func IsEmptyDataset(err error) bool {
	return hasCode(err, ErrorCodeEmptyDataset)
}

// IsUnknownItem 检查错误是否为 UNKNOWN_ITEM
func IsUnknownItem(err error) bool {
	return hasCode(err, ErrorCodeUnknownItem)
}

// IsArtifactNotFound 检查错误是否为 ARTIFACT_NOT_FOUND
func IsArtifactNotFound(err error) bool {
	return hasCode(err, ErrorCodeArtifactNotFound)
}

// IsSchemaMismatch 检查错误是否为 SCHEMA_MISMATCH
func IsSchemaMismatch(err error) bool {
	return hasCode(err, ErrorCodeSchemaMismatch)
}

// IsNotSupported 检查错误是否为 NOT_SUPPORTED
func IsNotSupported(err error) bool {
	return hasCode(err, ErrorCodeNotSupported)
}

func hasCode(err error, code string) bool {
	if err == nil {
		return false
	}
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == code
	}
	return false
}
