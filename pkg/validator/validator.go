package validator

import (
	"sync"

	playground "github.com/go-playground/validator/v10"
)

var (
	once     sync.Once
	validate *playground.Validate
)

// Get returns the shared validator instance.
func Get() *playground.Validate {
	once.Do(func() {
		validate = playground.New()
	})

	return validate
}
