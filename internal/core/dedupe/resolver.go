// Package dedupe collapses records sharing an external place identifier:
// one master survives, dependents are reparented, the rest are deleted.
package dedupe

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/agenthands/cobalt/internal/core/model"
	"github.com/agenthands/cobalt/internal/crm"
)

// PlaceIDField groups duplicates; only exact non-empty matches count.
const PlaceIDField = "Google_Place_ID__c"

// reparentBatchSize bounds one composite update call.
const reparentBatchSize = 200

// reparentJobs is the safe set of dependent objects rewritten to point at
// the elected master before duplicates are deleted.
var reparentJobs = []struct {
	Object      string
	ParentField string
}{
	{"Opportunity", "AccountId"},
	{"Case", "AccountId"},
	{"Task", "WhatId"},
	{"Note", "ParentId"},
	{"Attachment", "ParentId"},
}

// Group is a set of record identifiers sharing one place identifier.
type Group struct {
	PlaceID string
	IDs     []string
}

// ReparentResult summarizes rewriting one dependent object's parents.
type ReparentResult struct {
	Object  string   `json:"object"`
	Updated int      `json:"updated"`
	Errors  []string `json:"errors,omitempty"`
}

// DeletionResult is the per-duplicate delete outcome.
type DeletionResult struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// GroupSummary is the full record of one group's resolution.
type GroupSummary struct {
	PlaceID   string           `json:"place_id"`
	Master    string           `json:"master"`
	Merged    []string         `json:"merged"`
	Actions   []ReparentResult `json:"actions"`
	Deletions []DeletionResult `json:"deletions"`
}

type Resolver struct {
	store  crm.Store
	object string
	log    *zap.Logger
}

func NewResolver(store crm.Store, object string, log *zap.Logger) *Resolver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Resolver{store: store, object: object, log: log}
}

// FindGroups groups records by place identifier, keeping only groups with
// more than one member. Group order follows first appearance.
func FindGroups(records []model.Record) []Group {
	byPlace := make(map[string][]string)
	var order []string
	for _, rec := range records {
		pid := rec.GetString(PlaceIDField)
		if pid == "" || rec.ID() == "" {
			continue
		}
		if _, seen := byPlace[pid]; !seen {
			order = append(order, pid)
		}
		byPlace[pid] = append(byPlace[pid], rec.ID())
	}
	var groups []Group
	for _, pid := range order {
		if ids := byPlace[pid]; len(ids) > 1 {
			groups = append(groups, Group{PlaceID: pid, IDs: ids})
		}
	}
	return groups
}

// ChooseMaster elects the surviving record: active customers win, broken
// by most recent LastModifiedDate; without any customer the most recently
// modified record overall wins; a full tie keeps the first member.
func ChooseMaster(records []model.Record, ids []string) string {
	byID := make(map[string]model.Record, len(records))
	for _, rec := range records {
		byID[rec.ID()] = rec
	}
	members := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := byID[id]; ok {
			members = append(members, id)
		}
	}
	if len(members) == 0 {
		if len(ids) > 0 {
			return ids[0]
		}
		return ""
	}

	pick := func(candidates []string) string {
		best := candidates[0]
		for _, id := range candidates[1:] {
			if byID[id].GetString("LastModifiedDate") > byID[best].GetString("LastModifiedDate") {
				best = id
			}
		}
		return best
	}

	var customers []string
	for _, id := range members {
		if byID[id].Truthy("IsCustomer__c") {
			customers = append(customers, id)
		}
	}
	if len(customers) > 0 {
		return pick(customers)
	}
	return pick(members)
}

// Resolve processes every duplicate group: elect master, reparent
// dependents, delete the rest. Failures are captured per action and per
// record; one group's trouble never stops the next group.
func (r *Resolver) Resolve(ctx context.Context, records []model.Record, dryRun bool) []GroupSummary {
	groups := FindGroups(records)
	r.log.Info("resolving duplicate groups", zap.Int("groups", len(groups)), zap.Bool("dry_run", dryRun))

	summaries := make([]GroupSummary, 0, len(groups))
	for _, g := range groups {
		summaries = append(summaries, r.resolveGroup(ctx, records, g, dryRun))
	}
	return summaries
}

func (r *Resolver) resolveGroup(ctx context.Context, records []model.Record, g Group, dryRun bool) GroupSummary {
	master := ChooseMaster(records, g.IDs)
	var others []string
	for _, id := range g.IDs {
		if id != master {
			others = append(others, id)
		}
	}
	log := r.log.With(zap.String("place_id", g.PlaceID), zap.String("master", master))
	log.Info("processing duplicate group", zap.Strings("merged", others))

	summary := GroupSummary{PlaceID: g.PlaceID, Master: master, Merged: others}
	for _, job := range reparentJobs {
		summary.Actions = append(summary.Actions, r.reparent(ctx, job.Object, job.ParentField, others, master, dryRun))
	}
	for _, dup := range others {
		summary.Deletions = append(summary.Deletions, r.deleteOne(ctx, dup, dryRun))
	}
	return summary
}

// reparent finds dependents of object pointing at any duplicate and
// rewrites them to the master in bounded batches.
func (r *Resolver) reparent(ctx context.Context, object, parentField string, fromIDs []string, master string, dryRun bool) ReparentResult {
	out := ReparentResult{Object: object}
	if len(fromIDs) == 0 {
		return out
	}
	recs, err := r.store.Query(ctx, crm.BuildChildSelect(object, parentField, fromIDs))
	if err != nil {
		out.Errors = append(out.Errors, err.Error())
		return out
	}
	ids := make([]string, 0, len(recs))
	for _, rec := range recs {
		if id := rec.ID(); id != "" {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	for start := 0; start < len(ids); start += reparentBatchSize {
		end := start + reparentBatchSize
		if end > len(ids) {
			end = len(ids)
		}
		batch := make([]map[string]any, 0, end-start)
		for _, id := range ids[start:end] {
			batch = append(batch, map[string]any{model.IDField: id, parentField: master})
		}
		if !dryRun {
			if err := r.store.UpdateBatch(ctx, object, batch); err != nil {
				out.Errors = append(out.Errors, err.Error())
				continue
			}
		}
		out.Updated += len(batch)
	}
	return out
}

func (r *Resolver) deleteOne(ctx context.Context, id string, dryRun bool) DeletionResult {
	if dryRun {
		return DeletionResult{ID: id, Status: "dry-run"}
	}
	if err := r.store.Delete(ctx, r.object, id); err != nil {
		r.log.Warn("duplicate delete failed", zap.String("id", id), zap.Error(err))
		return DeletionResult{ID: id, Status: "error", Error: err.Error()}
	}
	return DeletionResult{ID: id, Status: "deleted"}
}
