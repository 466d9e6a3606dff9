package validator

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// notBlank 字符串去掉空白后不能为空
func notBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// Register 向gin的校验引擎注册自定义规则
func Register() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("不支持的校验引擎: %T", binding.Validator.Engine())
	}
	if err := v.RegisterValidation("notblank", notBlank); err != nil {
		return fmt.Errorf("注册notblank校验规则失败: %w", err)
	}
	return nil
}
