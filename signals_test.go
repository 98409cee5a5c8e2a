package replica

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestEmitDescriptorBuilt(_ *testing.T) {
	// Should not panic
	emitDescriptorBuilt(context.Background(), "Account", 4)
}

func TestEmitPolicyConflict(_ *testing.T) {
	emitPolicyConflict(context.Background(), "Account", "Session", errors.New("test error"))
}

func TestEmitCloneStart(_ *testing.T) {
	emitCloneStart(context.Background(), pathPolicy, "Account")
	emitCloneStart(context.Background(), pathGraph, "*Node")
}

func TestEmitCloneComplete_Success(_ *testing.T) {
	emitCloneComplete(context.Background(), pathGraph, "*Node", 100*time.Millisecond, 7, nil)
}

func TestEmitCloneComplete_Error(_ *testing.T) {
	emitCloneComplete(context.Background(), pathPolicy, "Account", 100*time.Millisecond, 0, errors.New("test error"))
}

func TestSignalVariables(t *testing.T) {
	// Verify signals are properly initialized
	signals := []struct {
		name   string
		signal interface{}
	}{
		{"SignalDescriptorBuilt", SignalDescriptorBuilt},
		{"SignalPolicyConflict", SignalPolicyConflict},
		{"SignalCloneStart", SignalCloneStart},
		{"SignalCloneComplete", SignalCloneComplete},
	}

	for _, s := range signals {
		if s.signal == nil {
			t.Errorf("%s is nil", s.name)
		}
	}
}

func TestKeyVariables(t *testing.T) {
	keys := []struct {
		name string
		key  interface{}
	}{
		{"KeyTypeName", KeyTypeName},
		{"KeyPath", KeyPath},
		{"KeyField", KeyField},
		{"KeyMemberCount", KeyMemberCount},
		{"KeyVisited", KeyVisited},
		{"KeyDuration", KeyDuration},
		{"KeyError", KeyError},
	}

	for _, k := range keys {
		if k.key == nil {
			t.Errorf("%s is nil", k.name)
		}
	}
}
