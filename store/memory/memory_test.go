package memory_test

import (
	"testing"

	"github.com/warp/leave-planner/generic"
	"github.com/warp/leave-planner/store/memory"
	"github.com/warp/leave-planner/store/storetest"
)

func TestMemoryStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) generic.Store {
		return memory.New()
	})
}
