package session

import (
	"context"
	"fmt"
	"testing"

	"github.com/ikenthis/bmsagent/pkg/adapters/memory"
	"github.com/ikenthis/bmsagent/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestManager_LockLifecycle(t *testing.T) {
	mgr := NewManager(memory.NewStore())
	ctx := context.Background()

	for i := 0; i < 1000; i++ {
		sid := fmt.Sprintf("session-%d", i)
		_ = mgr.Save(ctx, sid, domain.NewConversationContext(sid))
		_ = mgr.Delete(ctx, sid)
	}

	assert.Zero(t, mgr.activeLocks(), "locks must be released after use")
}
