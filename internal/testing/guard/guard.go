package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("CATALOGDESK_TEST_MODE") == "" {
			_ = os.Setenv("CATALOGDESK_TEST_MODE", "1")
		}
	})
}
