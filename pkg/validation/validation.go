// Package validation 注册自定义校验规则并将绑定错误转换为字段级错误列表
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/rajib3777/academia-sub001/pkg/response"
)

// phonePattern 孟加拉国手机号：01 开头，第三位 3-9，共 11 位
var phonePattern = regexp.MustCompile(`^01[3-9]\d{8}$`)

// Rule 自定义校验规则
type Rule struct {
	Tag     string
	Fn      validator.Func
	Message string
}

// PhoneRule bdphone 手机号规则
var PhoneRule = Rule{
	Tag:     "bdphone",
	Fn:      func(fl validator.FieldLevel) bool { return IsValidPhone(fl.Field().String()) },
	Message: "手机号格式无效",
}

// OneOfRule 构造枚举取值规则（大小写敏感）
func OneOfRule(tag string, allowed ...string) Rule {
	set := make(map[string]struct{}, len(allowed))
	for _, a := range allowed {
		set[a] = struct{}{}
	}
	return Rule{
		Tag: tag,
		Fn: func(fl validator.FieldLevel) bool {
			_, ok := set[fl.Field().String()]
			return ok
		},
		Message: "取值必须为: " + strings.Join(allowed, ", "),
	}
}

// IsValidPhone 校验手机号
func IsValidPhone(s string) bool {
	return phonePattern.MatchString(s)
}

var messages = map[string]string{}

// Register 向 gin 默认校验引擎注册规则，并以 json 字段名报告错误
func Register(rules ...Rule) error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin 校验引擎不是 validator/v10")
	}

	v.RegisterTagNameFunc(jsonFieldName)

	for _, r := range rules {
		if err := v.RegisterValidation(r.Tag, r.Fn); err != nil {
			return fmt.Errorf("注册校验规则 %s 失败: %w", r.Tag, err)
		}
		messages[r.Tag] = r.Message
	}
	return nil
}

func jsonFieldName(fld reflect.StructField) string {
	for _, tag := range []string{"json", "form", "uri"} {
		name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return fld.Name
}

// Translate 将 ShouldBind* 返回的错误转换为字段级错误列表
func Translate(err error) []response.FieldError {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make([]response.FieldError, 0, len(verrs))
		for _, fe := range verrs {
			out = append(out, response.FieldError{Field: fieldPath(fe), Error: message(fe)})
		}
		return out
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return []response.FieldError{{Field: typeErr.Field, Error: "类型应为 " + typeErr.Type.String()}}
	}

	return []response.FieldError{{Field: "non_field_errors", Error: "请求格式无效"}}
}

// fieldPath 去掉顶层结构体名，保留嵌套路径，如 user.phone、batches[0].name
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	if m, ok := messages[fe.Tag()]; ok {
		return m
	}
	switch fe.Tag() {
	case "required":
		return "该字段为必填项"
	case "email":
		return "邮箱格式无效"
	case "min", "gte":
		return "不能小于 " + fe.Param()
	case "max", "lte":
		return "不能大于 " + fe.Param()
	case "oneof":
		return "取值必须为: " + fe.Param()
	case "url":
		return "URL 格式无效"
	case "len":
		return "长度必须为 " + fe.Param()
	case "numeric":
		return "必须为数字"
	case "nefield":
		return "不能与原值相同"
	default:
		return "校验未通过: " + fe.Tag()
	}
}
