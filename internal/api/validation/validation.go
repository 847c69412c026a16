package validation

import (
	"fmt"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

var once sync.Once

// Register 向 Gin 的校验引擎注册自定义 tag
//   - notblank: 字符串去除空白后不能为空
func Register() error {
	var err error
	once.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			err = fmt.Errorf("binding 校验引擎不是 validator/v10")
			return
		}
		err = v.RegisterValidation("notblank", validators.NotBlank)
	})
	return err
}
