package http

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/layer-3/clockguard/core"
)

var (
	registerOnce sync.Once
	registerErr  error
)

// registerValidators adds the custom binding tags to gin's validator
func registerValidators() error {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			registerErr = errors.New("gin validator engine is not go-playground/validator")
			return
		}
		if err := v.RegisterValidation("difficulty", validDifficulty); err != nil {
			registerErr = fmt.Errorf("failed to register difficulty validator: %w", err)
		}
	})
	return registerErr
}

func validDifficulty(fl validator.FieldLevel) bool {
	_, err := core.ParseDifficulty(fl.Field().String())
	return err == nil
}
