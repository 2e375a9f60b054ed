package branching

import (
	"context"
	"strings"
	"time"

	"ai-chat-be/internal/apperror"
	"ai-chat-be/internal/entity"

	"github.com/google/uuid"
)

// Engine maintains the single-active-path invariant over a conversation's
// message tree. Every operation mutates the store through the caller's
// transaction: either all flips and inserts commit together or none do.
type Engine struct {
	store Store
}

func NewEngine(store Store) *Engine {
	return &Engine{store: store}
}

// CreateVersionResult reports the new (or unchanged) message and the ids
// whose active flag was cleared, so callers can broadcast precise deltas.
type CreateVersionResult struct {
	Message     *entity.Message
	Deactivated []uuid.UUID
	NoOp        bool
}

// CreateVersion adds a new version to an existing slot. Edits pass
// isEdit=true with role user content; regenerations pass isEdit=false
// with freshly generated assistant content. The new version shares the
// original's parent and version group and becomes the single active
// member, while every prior member and its descendants are deactivated.
func (e *Engine) CreateVersion(ctx context.Context, originalId uuid.UUID, newContent string, isEdit bool) (*CreateVersionResult, error) {
	original, err := e.store.FindById(ctx, originalId)
	if err != nil {
		return nil, err
	}
	if original == nil {
		return nil, apperror.NewNotFound("message", originalId)
	}

	content := newContent
	if isEdit {
		content = strings.TrimSpace(newContent)
		if content == strings.TrimSpace(original.Content) {
			return &CreateVersionResult{Message: original, NoOp: true}, nil
		}
	}

	// Row lock on the group serializes concurrent version inserts, so the
	// next version number is computed against committed state.
	group, err := e.store.FindByVersionGroupLocked(ctx, original.VersionGroupId)
	if err != nil {
		return nil, err
	}
	next := 1
	groupIds := make([]uuid.UUID, 0, len(group))
	for _, m := range group {
		if m.VersionNumber >= next {
			next = m.VersionNumber + 1
		}
		groupIds = append(groupIds, m.Id)
	}

	t, err := loadTree(ctx, e.store, original.ConversationId)
	if err != nil {
		return nil, err
	}

	deactivated := make([]uuid.UUID, 0)
	for _, m := range t.subtree(groupIds...) {
		if m.IsActive {
			deactivated = append(deactivated, m.Id)
		}
	}
	if err := e.store.BulkSetActive(ctx, deactivated, false); err != nil {
		return nil, err
	}

	message := &entity.Message{
		Id:             uuid.New(),
		ConversationId: original.ConversationId,
		Role:           original.Role,
		Content:        content,
		ParentId:       original.ParentId,
		VersionGroupId: original.VersionGroupId,
		VersionNumber:  next,
		IsEdited:       isEdit,
		IsActive:       true,
		CreatedAt:      time.Now().UTC(),
	}
	if err := e.store.Create(ctx, message); err != nil {
		return nil, err
	}

	return &CreateVersionResult{Message: message, Deactivated: deactivated}, nil
}

// AppendMessage starts a brand-new slot: the message gets its own version
// group (keyed by its own id) and version number 1. Used for ordinary new
// turns and for the assistant reply that follows an edit.
func (e *Engine) AppendMessage(ctx context.Context, conversationId uuid.UUID, parentId *uuid.UUID, role, content string) (*entity.Message, error) {
	id := uuid.New()
	message := &entity.Message{
		Id:             id,
		ConversationId: conversationId,
		Role:           role,
		Content:        content,
		ParentId:       parentId,
		VersionGroupId: id,
		VersionNumber:  1,
		IsActive:       true,
		CreatedAt:      time.Now().UTC(),
	}
	if err := e.store.Create(ctx, message); err != nil {
		return nil, err
	}
	return message, nil
}

// SwitchTarget names the version to activate, either directly by id or
// relative to the current version.
type SwitchTarget struct {
	MessageId *uuid.UUID
	Direction string // "next" or "prev"
}

// SwitchResult reports the activated target and the exact ids whose
// active flag flipped in either direction.
type SwitchResult struct {
	Target      *entity.Message
	Activated   []uuid.UUID
	Deactivated []uuid.UUID
}

// SwitchVersion moves the active path to another version of the current
// message's slot, then walks forward reactivating the most recent child
// at each level so the branch below the switch point is restored.
func (e *Engine) SwitchVersion(ctx context.Context, currentId uuid.UUID, target SwitchTarget) (*SwitchResult, error) {
	current, err := e.store.FindById(ctx, currentId)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, apperror.NewNotFound("message", currentId)
	}

	group, err := e.store.FindByVersionGroupLocked(ctx, current.VersionGroupId)
	if err != nil {
		return nil, err
	}

	resolved, err := resolveTarget(current, group, target)
	if err != nil {
		return nil, err
	}

	// Switching to the already-active version is a no-op.
	if resolved.Id == current.Id && current.IsActive {
		return &SwitchResult{Target: current}, nil
	}

	t, err := loadTree(ctx, e.store, current.ConversationId)
	if err != nil {
		return nil, err
	}

	// Everything built on the version being navigated away from goes
	// inactive, along with every group sibling of the target.
	toDeactivate := make(map[uuid.UUID]bool)
	for _, m := range t.subtree(current.Id) {
		toDeactivate[m.Id] = true
	}
	for _, m := range group {
		if m.Id != resolved.Id {
			toDeactivate[m.Id] = true
		}
	}

	// Activate the target, then follow the newest-child chain down.
	toActivate := []uuid.UUID{resolved.Id}
	visited := map[uuid.UUID]bool{resolved.Id: true}
	for cursor := resolved; ; {
		child := t.newestChild(cursor.Id)
		if child == nil || visited[child.Id] {
			break
		}
		visited[child.Id] = true
		toActivate = append(toActivate, child.Id)
		cursor = child
	}

	delete(toDeactivate, resolved.Id)

	result := &SwitchResult{Target: resolved}
	for id := range toDeactivate {
		if m := t.byId[id]; m != nil && m.IsActive {
			result.Deactivated = append(result.Deactivated, id)
		}
	}
	for _, id := range toActivate {
		if m := t.byId[id]; m != nil && !m.IsActive {
			result.Activated = append(result.Activated, id)
		}
	}

	if err := e.store.BulkSetActive(ctx, result.Deactivated, false); err != nil {
		return nil, err
	}
	if err := e.store.BulkSetActive(ctx, result.Activated, true); err != nil {
		return nil, err
	}
	resolved.IsActive = true
	return result, nil
}

func resolveTarget(current *entity.Message, group []*entity.Message, target SwitchTarget) (*entity.Message, error) {
	if target.MessageId != nil {
		for _, m := range group {
			if m.Id == *target.MessageId {
				return m, nil
			}
		}
		return nil, apperror.NewNotFound("message version", *target.MessageId)
	}

	currentIdx := -1
	for i, m := range group {
		if m.Id == current.Id {
			currentIdx = i
			break
		}
	}
	if currentIdx < 0 {
		return nil, apperror.NewNotFound("message version", current.Id)
	}

	idx := currentIdx
	switch target.Direction {
	case "next":
		idx++
	case "prev":
		idx--
	default:
		return nil, apperror.NewInvalidOperation("unknown switch direction %q", target.Direction)
	}
	if idx < 0 || idx >= len(group) {
		return nil, &apperror.NoAdjacentVersionError{Direction: target.Direction}
	}
	return group[idx], nil
}
