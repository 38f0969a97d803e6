package reconcile

import (
	"encoding/json"
	"fmt"
	"strings"
)

// OperationType identifies the kind of mirror mutation.
type OperationType string

const (
	// OperationAdd creates a new mirror subscriber.
	OperationAdd OperationType = "add"
	// OperationEdit changes an existing mirror subscriber.
	OperationEdit OperationType = "edit"
	// OperationDelete removes a mirror subscriber.
	OperationDelete OperationType = "delete"
)

// Operation is a single mutation intent against the mirror.
// The set of implementations is closed: AddSubscriber, EditSubscriber and DeleteSubscriber.
type Operation interface {
	// Type returns the operation kind.
	Type() OperationType

	fmt.Stringer

	operation()
}

// AddSubscriber creates a new mirror record.
type AddSubscriber struct {
	Email    string   `json:"email"`
	Tags     Tags     `json:"tags"`
	Metadata Metadata `json:"metadata"`
}

// EditSubscriber changes the mirror record currently stored at OldEmail.
// Nil fields are left unchanged.
type EditSubscriber struct {
	OldEmail string    `json:"old_email"`
	NewEmail *string   `json:"new_email,omitempty"`
	Tags     *Tags     `json:"tags,omitempty"`
	Metadata *Metadata `json:"metadata,omitempty"`
}

// DeleteSubscriber removes the mirror record stored at Email.
type DeleteSubscriber struct {
	Email string `json:"email"`
}

func (AddSubscriber) operation()    {}
func (EditSubscriber) operation()   {}
func (DeleteSubscriber) operation() {}

// Type implements Operation.
func (AddSubscriber) Type() OperationType { return OperationAdd }

// Type implements Operation.
func (EditSubscriber) Type() OperationType { return OperationEdit }

// Type implements Operation.
func (DeleteSubscriber) Type() OperationType { return OperationDelete }

// IsNoop reports whether the edit changes nothing.
func (op EditSubscriber) IsNoop() bool {
	return op.NewEmail == nil && op.Tags == nil && op.Metadata == nil
}

func (op AddSubscriber) String() string {
	return fmt.Sprintf("add email=%q tags=[%s] metadata=%s", op.Email, strings.Join(op.Tags, ", "), formatMetadata(op.Metadata))
}

func (op EditSubscriber) String() string {
	parts := []string{fmt.Sprintf("edit old_email=%q", op.OldEmail)}
	if op.NewEmail != nil {
		parts = append(parts, fmt.Sprintf("new_email=%q", *op.NewEmail))
	}
	if op.Tags != nil {
		parts = append(parts, fmt.Sprintf("tags=[%s]", strings.Join(*op.Tags, ", ")))
	}
	if op.Metadata != nil {
		parts = append(parts, "metadata="+formatMetadata(*op.Metadata))
	}
	return strings.Join(parts, " ")
}

func (op DeleteSubscriber) String() string {
	return fmt.Sprintf("delete email=%q", op.Email)
}

// MarshalJSON encodes the operation with its type.
func (op AddSubscriber) MarshalJSON() ([]byte, error) {
	type plain AddSubscriber
	return json.Marshal(struct {
		Type OperationType `json:"type"`
		plain
	}{op.Type(), plain(op)})
}

// MarshalJSON encodes the operation with its type.
func (op EditSubscriber) MarshalJSON() ([]byte, error) {
	type plain EditSubscriber
	return json.Marshal(struct {
		Type OperationType `json:"type"`
		plain
	}{op.Type(), plain(op)})
}

// MarshalJSON encodes the operation with its type.
func (op DeleteSubscriber) MarshalJSON() ([]byte, error) {
	type plain DeleteSubscriber
	return json.Marshal(struct {
		Type OperationType `json:"type"`
		plain
	}{op.Type(), plain(op)})
}

func formatMetadata(md Metadata) string {
	pairs := make([]string, 0, len(md))
	for _, k := range md.SortedKeys() {
		pairs = append(pairs, fmt.Sprintf("%q: %q", k, md[k]))
	}
	return "{" + strings.Join(pairs, ", ") + "}"
}
