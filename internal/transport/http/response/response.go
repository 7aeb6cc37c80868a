package response

// Resp 统一响应体：{message, data, meta}
type Resp struct {
	Message string `json:"message"`
	Data    any    `json:"data"`
	Meta    any    `json:"meta"`
}

func New(msg string, data, meta any) Resp {
	return Resp{Message: msg, Data: data, Meta: meta}
}

// OK 成功响应；msg 为空时用 "OK"
func OK(msg string, data any) Resp {
	if msg == "" {
		msg = MsgOf(200)
	}
	return New(msg, data, nil)
}

// Error 失败响应（可以传自定义 msg 覆盖默认）；data 只在带结构化标记时非空
func Error(code int, customMsg string, data ...any) Resp {
	msg := MsgOf(code)
	if customMsg != "" {
		msg = customMsg
	}
	var d any
	if len(data) > 0 {
		d = data[0]
	}
	return New(msg, d, nil)
}
