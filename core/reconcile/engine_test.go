package reconcile

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// mockMutator records forwarded operations.
type mockMutator struct {
	mock.Mock
}

func (m *mockMutator) CreateSubscriber(ctx context.Context, op AddSubscriber) error {
	args := m.Called(ctx, op)
	return args.Error(0)
}

func (m *mockMutator) UpdateSubscriber(ctx context.Context, op EditSubscriber) error {
	args := m.Called(ctx, op)
	return args.Error(0)
}

func (m *mockMutator) DeleteSubscriber(ctx context.Context, op DeleteSubscriber) error {
	args := m.Called(ctx, op)
	return args.Error(0)
}

func src(id, email string, tags ...string) SourceRecord {
	return NewSourceRecord(id, email, NewTags(tags...), nil)
}

func mir(id, email string, tags ...string) MirrorRecord {
	md := Metadata{}
	if id != "" {
		md[IDKey] = id
	}
	return NewMirrorRecord(email, NewTags(tags...), md)
}

func strPtr(s string) *string { return &s }

func dryRun(t *testing.T, source []SourceRecord, mirror []MirrorRecord) *Result {
	t.Helper()
	result, err := Reconcile(context.Background(), &Spec{DryRun: true}, source, mirror)
	require.NoError(t, err)
	return result
}

// replay applies ops to mirror one at a time and fails if any prefix breaks email uniqueness.
func replay(t *testing.T, mirror []MirrorRecord, ops []Operation) []MirrorRecord {
	t.Helper()
	idx, err := newMirrorIndex(mirror)
	require.NoError(t, err)
	for i, op := range ops {
		idx, err = idx.with(op)
		require.NoError(t, err, "operation %d (%s)", i, op)
	}
	return idx.Records()
}

func TestReconcile_Scenarios(t *testing.T) {
	tests := []struct {
		name     string
		source   []SourceRecord
		mirror   []MirrorRecord
		expected []Operation
	}{
		{
			name:   "pure create",
			source: []SourceRecord{src("1", "a@x.com")},
			expected: []Operation{
				AddSubscriber{Email: "a@x.com", Tags: Tags{}, Metadata: Metadata{"id": "1"}},
			},
		},
		{
			name:     "pure delete",
			mirror:   []MirrorRecord{mir("1", "a@x.com")},
			expected: []Operation{DeleteSubscriber{Email: "a@x.com"}},
		},
		{
			name:   "conflict pre-clearance",
			source: []SourceRecord{src("1", "j@x.com")},
			mirror: []MirrorRecord{mir("2", "j@x.com")},
			expected: []Operation{
				DeleteSubscriber{Email: "j@x.com"},
				AddSubscriber{Email: "j@x.com", Tags: Tags{}, Metadata: Metadata{"id": "1"}},
			},
		},
		{
			name:   "email swap",
			source: []SourceRecord{src("1", "j1@x.com"), src("2", "j2@x.com")},
			mirror: []MirrorRecord{mir("1", "j2@x.com"), mir("2", "j1@x.com")},
			expected: []Operation{
				DeleteSubscriber{Email: "j1@x.com"},
				EditSubscriber{OldEmail: "j2@x.com", NewEmail: strPtr("j1@x.com")},
				AddSubscriber{Email: "j2@x.com", Tags: Tags{}, Metadata: Metadata{"id": "2"}},
			},
		},
		{
			name:   "email taken by an identifier missing from source",
			source: []SourceRecord{src("1", "j1@x.com")},
			mirror: []MirrorRecord{mir("1", "j2@x.com"), mir("2", "j1@x.com")},
			expected: []Operation{
				DeleteSubscriber{Email: "j1@x.com"},
				EditSubscriber{OldEmail: "j2@x.com", NewEmail: strPtr("j1@x.com")},
			},
		},
		{
			name:   "duplicate identifiers are healed",
			source: []SourceRecord{src("1", "test1@x.com")},
			mirror: []MirrorRecord{mir("1", "dupe1@x.com"), mir("1", "dupe2@x.com")},
			expected: []Operation{
				DeleteSubscriber{Email: "dupe2@x.com"},
				EditSubscriber{OldEmail: "dupe1@x.com", NewEmail: strPtr("test1@x.com")},
			},
		},
		{
			name:     "identifier absent from source deletes every record",
			mirror:   []MirrorRecord{mir("7", "a@x.com"), mir("7", "b@x.com")},
			expected: []Operation{DeleteSubscriber{Email: "a@x.com"}, DeleteSubscriber{Email: "b@x.com"}},
		},
		{
			name:   "tags only",
			source: []SourceRecord{src("1", "a@x.com", "Team: A", "Role: Dev")},
			mirror: []MirrorRecord{mir("1", "a@x.com", "Team: A")},
			expected: []Operation{
				EditSubscriber{OldEmail: "a@x.com", Tags: &Tags{"Role: Dev", "Team: A"}},
			},
		},
		{
			name:   "metadata only",
			source: []SourceRecord{NewSourceRecord("1", "a@x.com", nil, Metadata{"name": "Ada"})},
			mirror: []MirrorRecord{mir("1", "a@x.com")},
			expected: []Operation{
				EditSubscriber{OldEmail: "a@x.com", Metadata: &Metadata{"id": "1", "name": "Ada"}},
			},
		},
		{
			name:   "records without email are ignored",
			source: []SourceRecord{src("1", "")},
		},
		{
			name:   "in sync",
			source: []SourceRecord{src("1", "a@x.com", "Team: A")},
			mirror: []MirrorRecord{mir("1", "a@x.com", "Team: A")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := dryRun(t, tt.source, tt.mirror)

			expected := tt.expected
			if expected == nil {
				expected = []Operation{}
			}
			assert.Equal(t, expected, result.Operations)
			assert.Empty(t, result.Warnings)
		})
	}
}

func TestReconcile_DuplicateSourceEmails(t *testing.T) {
	source := []SourceRecord{
		src("1", "dupe@example.com"),
		src("2", "dupe@example.com"),
		src("3", "dupe@example.com"),
	}
	mirror := []MirrorRecord{mir("2", "dupe@example.com")}

	result := dryRun(t, source, mirror)

	assert.Equal(t, []string{
		`Unexpectedly found multiple source rows with email="dupe@example.com". I picked the one with id="1"`,
	}, result.Warnings)
	assert.Equal(t, []Operation{
		DeleteSubscriber{Email: "dupe@example.com"},
		AddSubscriber{Email: "dupe@example.com", Tags: Tags{}, Metadata: Metadata{"id": "1"}},
	}, result.Operations)
}

func TestReconcile_UnlinkedMirrorRecords(t *testing.T) {
	t.Run("new signups are reported once", func(t *testing.T) {
		mirror := []MirrorRecord{mir("", "new1@x.com"), mir("1", "a@x.com"), mir("", "new2@x.com")}
		source := []SourceRecord{src("1", "a@x.com")}

		result := dryRun(t, source, mirror)

		assert.Equal(t, []string{
			"The following emails signed up for the mailing list directly and need to be added to the roster: new1@x.com, new2@x.com",
		}, result.Warnings)
		assert.Empty(t, result.Operations)
	})

	t.Run("corrupted records are relinked", func(t *testing.T) {
		mirror := []MirrorRecord{mir("", "a@x.com")}
		source := []SourceRecord{src("1", "a@x.com", "Team: A")}

		result := dryRun(t, source, mirror)

		assert.Equal(t, []string{`Subscriber with email="a@x.com" has no id, relinking it to id="1"`}, result.Warnings)
		assert.Equal(t, []Operation{
			EditSubscriber{
				OldEmail: "a@x.com",
				Tags:     &Tags{"Team: A"},
				Metadata: &Metadata{"id": "1"},
			},
		}, result.Operations)
	})

	t.Run("relinked record after a linked duplicate", func(t *testing.T) {
		mirror := []MirrorRecord{mir("1", "old@x.com"), mir("", "a@x.com")}
		source := []SourceRecord{src("1", "a@x.com")}

		result := dryRun(t, source, mirror)

		assert.Equal(t, []Operation{
			EditSubscriber{OldEmail: "a@x.com", Metadata: &Metadata{"id": "1"}},
			DeleteSubscriber{Email: "a@x.com"},
			EditSubscriber{OldEmail: "old@x.com", NewEmail: strPtr("a@x.com")},
		}, result.Operations)
		replayed := replay(t, mirror, result.Operations)
		assert.Equal(t, []MirrorRecord{mir("1", "a@x.com")}, replayed)
	})
}

func TestReconcile_Idempotent(t *testing.T) {
	source := []SourceRecord{
		src("1", "j1@x.com", "Team: A"),
		src("2", "j2@x.com"),
		src("3", "c@x.com", "Team: B"),
		NewSourceRecord("4", "d@x.com", nil, Metadata{"name": "Dee"}),
	}
	mirror := []MirrorRecord{
		mir("1", "j2@x.com"),
		mir("2", "j1@x.com", "Team: A"),
		mir("3", "c1@x.com"),
		mir("3", "c2@x.com"),
		mir("9", "gone@x.com"),
	}

	first := dryRun(t, source, mirror)
	require.True(t, first.HasChanges())

	converged := replay(t, mirror, first.Operations)

	second := dryRun(t, source, converged)
	assert.True(t, second.IsClean())
}

func TestReconcile_NoDoubleOccupancy(t *testing.T) {
	tests := []struct {
		name   string
		source []SourceRecord
		mirror []MirrorRecord
	}{
		{
			name:   "rotation",
			source: []SourceRecord{src("1", "a@x.com"), src("2", "b@x.com"), src("3", "c@x.com")},
			mirror: []MirrorRecord{mir("1", "b@x.com"), mir("2", "c@x.com"), mir("3", "a@x.com")},
		},
		{
			name:   "reverse rotation",
			source: []SourceRecord{src("1", "a@x.com"), src("2", "b@x.com"), src("3", "c@x.com")},
			mirror: []MirrorRecord{mir("1", "c@x.com"), mir("2", "a@x.com"), mir("3", "b@x.com")},
		},
		{
			name:   "email moves to a duplicate identifier",
			source: []SourceRecord{src("1", "b@x.com"), src("2", "a@x.com")},
			mirror: []MirrorRecord{mir("1", "a@x.com"), mir("1", "b@x.com"), mir("2", "c@x.com")},
		},
		{
			name:   "unlinked record squats",
			source: []SourceRecord{src("1", "a@x.com"), src("2", "b@x.com")},
			mirror: []MirrorRecord{mir("", "b@x.com"), mir("2", "a@x.com")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := dryRun(t, tt.source, tt.mirror)
			replayed := replay(t, tt.mirror, result.Operations)

			again := dryRun(t, tt.source, replayed)
			assert.Empty(t, again.Operations)
		})
	}
}

func TestReconcile_DeletionCompleteness(t *testing.T) {
	source := []SourceRecord{src("1", "a@x.com")}
	mirror := []MirrorRecord{
		mir("1", "a@x.com"),
		mir("2", "b1@x.com"),
		mir("3", "c@x.com"),
		mir("2", "b2@x.com"),
	}

	result := dryRun(t, source, mirror)
	replayed := replay(t, mirror, result.Operations)

	for _, rec := range replayed {
		assert.Equal(t, "1", rec.ID)
	}
	assert.Equal(t, 3, result.Summary.Deletes)
}

func TestReconcile_LiveRun(t *testing.T) {
	source := []SourceRecord{src("1", "j1@x.com"), src("2", "j2@x.com")}
	mirror := []MirrorRecord{mir("1", "j2@x.com"), mir("2", "j1@x.com")}

	mutator := new(mockMutator)
	mutator.On("DeleteSubscriber", mock.Anything, DeleteSubscriber{Email: "j1@x.com"}).Return(nil).Once()
	mutator.On("UpdateSubscriber", mock.Anything, EditSubscriber{OldEmail: "j2@x.com", NewEmail: strPtr("j1@x.com")}).Return(nil).Once()
	mutator.On("CreateSubscriber", mock.Anything, mock.MatchedBy(func(op AddSubscriber) bool {
		return op.Email == "j2@x.com"
	})).Return(nil).Once()

	live, err := Reconcile(context.Background(), &Spec{Mutator: mutator}, source, mirror)
	require.NoError(t, err)

	planned := dryRun(t, source, mirror)
	assert.Equal(t, planned.Operations, live.Operations)
	mutator.AssertExpectations(t)
}

func TestReconcile_DryRunNeverCallsMutator(t *testing.T) {
	mutator := new(mockMutator)

	result, err := Reconcile(context.Background(), &Spec{Mutator: mutator, DryRun: true},
		[]SourceRecord{src("1", "a@x.com")}, []MirrorRecord{mir("2", "b@x.com")})
	require.NoError(t, err)

	assert.Len(t, result.Operations, 2)
	mutator.AssertNotCalled(t, "CreateSubscriber", mock.Anything, mock.Anything)
	mutator.AssertNotCalled(t, "DeleteSubscriber", mock.Anything, mock.Anything)
}

func TestReconcile_MutatorRequired(t *testing.T) {
	result, err := Reconcile(context.Background(), &Spec{}, nil, nil)

	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrMutatorRequired)
}

func TestReconcile_SkippableFailure(t *testing.T) {
	errBlocked := errors.New("email blocked")

	mutator := new(mockMutator)
	mutator.On("CreateSubscriber", mock.Anything, mock.MatchedBy(func(op AddSubscriber) bool {
		return op.Email == "blocked@x.com"
	})).Return(errBlocked)
	mutator.On("CreateSubscriber", mock.Anything, mock.MatchedBy(func(op AddSubscriber) bool {
		return op.Email == "ok@x.com"
	})).Return(nil)

	spec := &Spec{
		Mutator:   mutator,
		Skippable: func(err error) bool { return errors.Is(err, errBlocked) },
	}
	source := []SourceRecord{src("1", "blocked@x.com"), src("2", "ok@x.com")}

	result, err := Reconcile(context.Background(), spec, source, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{
		`Skipped id="1": add email="blocked@x.com" tags=[] metadata={"id": "1"} failed: email blocked`,
	}, result.Warnings)
	assert.Equal(t, []Operation{
		AddSubscriber{Email: "ok@x.com", Tags: Tags{}, Metadata: Metadata{"id": "2"}},
	}, result.Operations)
	assert.Equal(t, 1, result.Summary.Skipped)
	assert.Equal(t, 1, result.Summary.Adds)
}

func TestReconcile_SkippedIdentifierIsAbandoned(t *testing.T) {
	errBlocked := errors.New("email blocked")

	mutator := new(mockMutator)
	mutator.On("DeleteSubscriber", mock.Anything, DeleteSubscriber{Email: "j@x.com"}).Return(errBlocked)

	spec := &Spec{
		Mutator:   mutator,
		Skippable: func(err error) bool { return errors.Is(err, errBlocked) },
	}
	source := []SourceRecord{src("1", "j@x.com")}
	mirror := []MirrorRecord{mir("2", "j@x.com")}

	result, err := Reconcile(context.Background(), spec, source, mirror)
	require.NoError(t, err)

	require.Len(t, result.Warnings, 2)
	assert.Equal(t, `Skipped id="1": delete email="j@x.com" failed: email blocked`, result.Warnings[0])
	assert.Equal(t, `Skipped id="2": delete email="j@x.com" failed: email blocked`, result.Warnings[1])
	assert.Equal(t, 2, result.Summary.Skipped)
	assert.Empty(t, result.Operations)
	mutator.AssertNotCalled(t, "CreateSubscriber", mock.Anything, mock.Anything)
}

func TestReconcile_SkippedRelinkIsAbandoned(t *testing.T) {
	errBlocked := errors.New("email blocked")

	mutator := new(mockMutator)
	mutator.On("UpdateSubscriber", mock.Anything, mock.Anything).Return(errBlocked)

	spec := &Spec{
		Mutator:   mutator,
		Skippable: func(err error) bool { return errors.Is(err, errBlocked) },
	}
	source := []SourceRecord{src("1", "a@x.com", "Team: A")}
	mirror := []MirrorRecord{mir("", "a@x.com")}

	result, err := Reconcile(context.Background(), spec, source, mirror)
	require.NoError(t, err)

	require.Len(t, result.Warnings, 2)
	assert.Equal(t, `Subscriber with email="a@x.com" has no id, relinking it to id="1"`, result.Warnings[0])
	assert.Contains(t, result.Warnings[1], `Skipped id="1": edit old_email="a@x.com"`)
	assert.Equal(t, 1, result.Summary.Skipped)
	assert.Empty(t, result.Operations)

	mutator.AssertNumberOfCalls(t, "UpdateSubscriber", 1)
	mutator.AssertNotCalled(t, "DeleteSubscriber", mock.Anything, mock.Anything)
	mutator.AssertNotCalled(t, "CreateSubscriber", mock.Anything, mock.Anything)
}

func TestReconcile_SourceRecordWithoutID(t *testing.T) {
	source := []SourceRecord{src("", "b@x.com")}
	mirror := []MirrorRecord{mir("", "new1@x.com"), mir("", "new2@x.com")}

	result, err := Reconcile(context.Background(), &Spec{DryRun: true}, source, mirror)

	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrMissingID)
}

func TestReconcile_FatalFailureKeepsAppliedPrefix(t *testing.T) {
	errDown := errors.New("connection refused")

	mutator := new(mockMutator)
	mutator.On("DeleteSubscriber", mock.Anything, DeleteSubscriber{Email: "a@x.com"}).Return(nil)
	mutator.On("DeleteSubscriber", mock.Anything, DeleteSubscriber{Email: "b@x.com"}).Return(errDown)

	spec := &Spec{Mutator: mutator}

	_, err := Reconcile(context.Background(), spec, nil, []MirrorRecord{mir("1", "a@x.com"), mir("2", "b@x.com")})

	var mutationErr *MutationError
	require.ErrorAs(t, err, &mutationErr)
	assert.Equal(t, DeleteSubscriber{Email: "b@x.com"}, mutationErr.Op)
	assert.Equal(t, []Operation{DeleteSubscriber{Email: "a@x.com"}}, mutationErr.Applied)
}

func TestReconcile_FatalFailure(t *testing.T) {
	errDown := errors.New("connection refused")

	mutator := new(mockMutator)
	mutator.On("DeleteSubscriber", mock.Anything, mock.Anything).Return(errDown)

	spec := &Spec{
		Mutator:   mutator,
		Skippable: func(err error) bool { return false },
	}

	result, err := Reconcile(context.Background(), spec, nil, []MirrorRecord{mir("1", "a@x.com"), mir("2", "b@x.com")})

	assert.Nil(t, result)
	var mutationErr *MutationError
	require.ErrorAs(t, err, &mutationErr)
	assert.Equal(t, DeleteSubscriber{Email: "a@x.com"}, mutationErr.Op)
	assert.ErrorIs(t, err, errDown)
	mutator.AssertNumberOfCalls(t, "DeleteSubscriber", 1)
}

func TestReconcile_DuplicateMirrorEmails(t *testing.T) {
	result, err := Reconcile(context.Background(), &Spec{DryRun: true}, nil,
		[]MirrorRecord{mir("1", "a@x.com"), mir("2", "a@x.com")})

	assert.Nil(t, result)
	assert.True(t, IsDuplicateKey(err))
}
