package response

// Resp 统一响应信封：HTTP 状态恒为 200，业务结果看 code
type Resp struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data any    `json:"data"`
}

// New data 为 nil 时输出 {}，前端不用判 null
func New(code int, msg string, data any) Resp {
	if data == nil {
		data = struct{}{}
	}
	if msg == "" {
		msg = CodeMsgMap[code]
	}
	return Resp{Code: code, Msg: msg, Data: data}
}

func OK(data any) Resp { return New(CodeOK, "", data) }

// Error msg 为空时用 CodeMsgMap 里的默认文案
func Error(code int, msg string) Resp { return New(code, msg, nil) }

// ErrorWithData 附带详情（如字段校验错误）
func ErrorWithData(code int, msg string, data any) Resp { return New(code, msg, data) }
