package logger

import (
	"regexp"

	"go.uber.org/zap/zapcore"
)

const redacted = "[REDACTED]"

// 邮件链接与请求转储里会出现一次性令牌和 Bearer 头
var secretPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)([?&](?:token|code)=)[^&#\s"'<>]+`),
	regexp.MustCompile(`(/(?:reset-password|verify-email)/)[^/?#\s"'<>]+`),
	regexp.MustCompile(`(?i)(bearer\s+)[A-Za-z0-9\-_.~+/=]+`),
}

// RedactSecrets 把令牌部分换成 [REDACTED]，前缀原样保留
func RedactSecrets(s string) string {
	for _, re := range secretPatterns {
		s = re.ReplaceAllString(s, "${1}"+redacted)
	}
	return s
}

// redactCore 处理消息和字符串字段，其它类型字段不动
type redactCore struct{ zapcore.Core }

func (c redactCore) With(fs []zapcore.Field) zapcore.Core {
	return redactCore{c.Core.With(redactFields(fs))}
}

func (c redactCore) Check(e zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(e.Level) {
		return ce.AddCore(e, c)
	}
	return ce
}

func (c redactCore) Write(e zapcore.Entry, fs []zapcore.Field) error {
	e.Message = RedactSecrets(e.Message)
	return c.Core.Write(e, redactFields(fs))
}

func redactFields(fs []zapcore.Field) []zapcore.Field {
	out := fs
	for i, f := range fs {
		if f.Type != zapcore.StringType {
			continue
		}
		s := RedactSecrets(f.String)
		if s == f.String {
			continue
		}
		// 调用方的切片不能改
		if &out[0] == &fs[0] {
			out = append([]zapcore.Field(nil), fs...)
		}
		out[i].String = s
	}
	return out
}
