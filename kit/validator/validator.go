package validator

import (
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Verify 结构体级校验，返回第一条校验错误
func Verify(obj interface{}) error {
	return validate.Struct(obj)
}
