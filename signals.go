package replica

import (
	"context"
	"time"

	"github.com/zoobzio/capitan"
)

// Clone paths reported in events.
const (
	pathPolicy = "policy"
	pathGraph  = "graph"
)

// Signals for replica events.
var (
	SignalDescriptorBuilt = capitan.NewSignal("replica.descriptor.built", "Type descriptor built and cached")
	SignalPolicyConflict  = capitan.NewSignal("replica.policy.conflict", "Member declares conflicting cloning policies")
	SignalCloneStart      = capitan.NewSignal("replica.clone.start", "Clone operation beginning")
	SignalCloneComplete   = capitan.NewSignal("replica.clone.complete", "Clone operation finished")
)

// Keys for typed event data.
var (
	KeyTypeName    = capitan.NewStringKey("type_name")
	KeyPath        = capitan.NewStringKey("path")
	KeyField       = capitan.NewStringKey("field")
	KeyMemberCount = capitan.NewIntKey("member_count")
	KeyVisited     = capitan.NewIntKey("visited")
	KeyDuration    = capitan.NewDurationKey("duration")
	KeyError       = capitan.NewErrorKey("error")
)

// emitDescriptorBuilt emits an event when a type descriptor is cached.
func emitDescriptorBuilt(ctx context.Context, typeName string, members int) {
	capitan.Emit(ctx, SignalDescriptorBuilt,
		KeyTypeName.Field(typeName),
		KeyMemberCount.Field(members),
	)
}

// emitPolicyConflict emits an event when a member's policy is ambiguous.
func emitPolicyConflict(ctx context.Context, typeName, field string, err error) {
	capitan.Error(ctx, SignalPolicyConflict,
		KeyTypeName.Field(typeName),
		KeyField.Field(field),
		KeyError.Field(err),
	)
}

// emitCloneStart emits an event when a clone begins.
func emitCloneStart(ctx context.Context, path, typeName string) {
	capitan.Emit(ctx, SignalCloneStart,
		KeyPath.Field(path),
		KeyTypeName.Field(typeName),
	)
}

// emitCloneComplete emits an event when a clone finishes.
func emitCloneComplete(ctx context.Context, path, typeName string, duration time.Duration, visited int, err error) {
	fields := []capitan.Field{
		KeyPath.Field(path),
		KeyTypeName.Field(typeName),
		KeyDuration.Field(duration),
		KeyVisited.Field(visited),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalCloneComplete, fields...)
	} else {
		capitan.Emit(ctx, SignalCloneComplete, fields...)
	}
}
