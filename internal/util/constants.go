package util

const (
	DateFormat = "2006-01-02"
	TimeFormat = "2006-01-02 15:04:05"
)

// 分页缺省值
const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)
