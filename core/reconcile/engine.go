package reconcile

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"roster-sync/core/utils"

	"go.uber.org/zap"
)

// Reconcile converges the mirror onto the source and returns the warnings and
// the ordered operation log. Every operation goes through the gateway, so a dry
// run and a live run over the same snapshots produce the same log unless the
// mutator rejects an operation.
//
// A fatal error aborts the run without a Result; operations already forwarded
// to the mutator stay applied.
func Reconcile(ctx context.Context, spec *Spec, source []SourceRecord, mirror []MirrorRecord) (*Result, error) {
	if spec == nil {
		spec = &Spec{DryRun: true}
	}
	if err := spec.validate(); err != nil {
		return nil, err
	}

	logger := spec.logger()
	result := newResult(logger)

	// Collapse duplicate source emails
	duplicateEmails, dir, err := Deduplicate(source)
	if err != nil {
		return nil, fmt.Errorf("failed to index source records: %w", err)
	}
	for _, email := range duplicateEmails {
		kept, _ := dir.GetByEmail(email)
		result.addWarning(fmt.Sprintf("Unexpectedly found multiple source rows with email=%q. I picked the one with id=%q", email, kept.ID))
	}

	idx, err := newMirrorIndex(mirror)
	if err != nil {
		return nil, fmt.Errorf("failed to index mirror records: %w", err)
	}

	gw := &gateway{spec: spec, mirror: idx, result: result}
	r := &reconciler{gw: gw, source: dir, abandoned: map[string]struct{}{}}

	if err := r.linkUnlinked(ctx); err != nil {
		return nil, err
	}

	ids := r.unionIDs()
	logger.Debug("Reconciling identifiers",
		zap.Int("source", dir.Len()),
		zap.Int("mirror", len(mirror)),
		zap.Int("ids", len(ids)))

	for _, id := range ids {
		if _, ok := r.abandoned[id]; ok {
			continue
		}
		if err := r.reconcileID(ctx, id); err != nil {
			return nil, err
		}
	}

	return result, nil
}

type reconciler struct {
	gw     *gateway
	source *SourceDirectory

	// abandoned holds identifiers whose relink was skipped
	abandoned map[string]struct{}
}

// linkUnlinked handles mirror records without an identifier. Records whose email
// is unknown to the source are reported together; the rest are relinked to the
// source record at their email. A skipped relink abandons the identifier.
func (r *reconciler) linkUnlinked(ctx context.Context) error {
	var signups []string
	var corrupted []MirrorRecord
	for _, rec := range r.gw.mirror.Unlinked() {
		if _, ok := r.source.GetByEmail(rec.Email); ok {
			corrupted = append(corrupted, rec)
		} else {
			signups = append(signups, rec.Email)
		}
	}

	if len(signups) > 0 {
		r.gw.result.addWarning("The following emails signed up for the mailing list directly and need to be added to the roster: " + strings.Join(signups, ", "))
	}

	for _, rec := range corrupted {
		src, _ := r.source.GetByEmail(rec.Email)
		r.gw.result.addWarning(fmt.Sprintf("Subscriber with email=%q has no id, relinking it to id=%q", rec.Email, src.ID))

		op := diff(src, rec)
		if op.IsNoop() {
			continue
		}
		applied, err := r.gw.apply(ctx, src.ID, op)
		if err != nil {
			return err
		}
		if !applied {
			r.abandoned[src.ID] = struct{}{}
		}
	}
	return nil
}

// unionIDs returns every identifier of the source and the mirror, ascending.
func (r *reconciler) unionIDs() []string {
	set := make(map[string]struct{}, r.source.Len())
	for _, rec := range r.source.Records() {
		set[rec.ID] = struct{}{}
	}
	for _, id := range r.gw.mirror.IDs() {
		set[id] = struct{}{}
	}

	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// reconcileID converges the mirror records of one identifier.
// A skipped operation abandons the identifier for this run.
func (r *reconciler) reconcileID(ctx context.Context, id string) error {
	src, ok := r.source.Get(id)

	// Not in source: remove every mirror record carrying the id
	if !ok {
		for _, rec := range r.gw.mirror.ByID(id) {
			applied, err := r.gw.apply(ctx, id, DeleteSubscriber{Email: rec.Email})
			if err != nil || !applied {
				return err
			}
		}
		return nil
	}

	// Free the desired email if another identifier holds it
	if occupant, ok := r.gw.mirror.ByEmail(src.Email); ok && occupant.ID != id {
		applied, err := r.gw.apply(ctx, id, DeleteSubscriber{Email: occupant.Email})
		if err != nil || !applied {
			return err
		}
	}

	targets := r.gw.mirror.ByID(id)
	if len(targets) == 0 {
		_, err := r.gw.apply(ctx, id, AddSubscriber{
			Email:    src.Email,
			Tags:     src.Tags,
			Metadata: src.Metadata,
		})
		return err
	}

	// Keep the first record in load order and heal the rest
	kept := targets[0]
	for _, rec := range targets[1:] {
		applied, err := r.gw.apply(ctx, id, DeleteSubscriber{Email: rec.Email})
		if err != nil || !applied {
			return err
		}
	}

	op := diff(src, kept)
	if op.IsNoop() {
		return nil
	}
	_, err := r.gw.apply(ctx, id, op)
	return err
}

// diff builds the edit turning rec into src. Unchanged fields stay unspecified.
func diff(src SourceRecord, rec MirrorRecord) EditSubscriber {
	op := EditSubscriber{OldEmail: rec.Email}
	if src.Email != rec.Email {
		op.NewEmail = utils.Ptr(src.Email)
	}
	if !src.Tags.Equal(rec.Tags) {
		op.Tags = utils.Ptr(src.Tags)
	}
	if !src.Metadata.Equal(rec.Metadata) {
		op.Metadata = utils.Ptr(src.Metadata)
	}
	return op
}
