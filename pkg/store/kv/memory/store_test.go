package memory

import (
	"testing"

	"github.com/latchhq/latch/pkg/store/kv"
	"github.com/latchhq/latch/pkg/store/kv/kvtest"
)

func TestMemoryConformance(t *testing.T) {
	kvtest.Run(t, func(t *testing.T) kv.Store {
		return New()
	})
}
