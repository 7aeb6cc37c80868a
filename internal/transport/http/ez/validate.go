package ez

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

const msgBadBody = "Invalid request body"

// validationMessage 只取第一条校验错误，转成客户端可读的句子
func validationMessage(err error) string {
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) || len(ves) == 0 {
		var se *json.SyntaxError
		var te *json.UnmarshalTypeError
		var ne *strconv.NumError
		if errors.Is(err, io.EOF) || errors.As(err, &se) || errors.As(err, &te) {
			return msgBadBody
		}
		if errors.As(err, &ne) {
			return fmt.Sprintf("%q is not a valid number", ne.Num)
		}
		return err.Error()
	}
	fe := ves[0]
	field := lowerFirst(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return "Please provide a valid email"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	}
	return field + " is invalid"
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}
