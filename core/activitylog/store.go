// Package activitylog caches the audit trail served by the backend
// (paginated: the payload nests under data.data with a sibling pagination
// object).
package activitylog

import (
	"context"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/trezcool/darasa/core"
)

type Log struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Action    string    `json:"action"`
	Entity    string    `json:"entity"`
	TargetID  string    `json:"entity_id,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (l Log) EntityID() string { return l.ID }

type NewLog struct {
	Action   string `json:"action" validate:"notblank"`
	Entity   string `json:"entity" validate:"notblank"`
	TargetID string `json:"entity_id,omitempty"`
	Detail   string `json:"detail,omitempty"`
}

type Store struct {
	core.Store[Log]

	api core.API

	mu   sync.Mutex
	page core.Page
}

func NewStore(api core.API) *Store {
	return &Store{api: api}
}

func (s *Store) FetchPage(ctx context.Context, page, limit int) error {
	op := s.Begin()
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("limit", strconv.Itoa(limit))

	var logs []Log
	pg, err := s.api.GetPage(ctx, "/activity-logs", query, &logs)
	if err != nil {
		op.Reject(err)
		return err
	}
	if op.ResolveList(logs) {
		s.mu.Lock()
		s.page = pg
		s.mu.Unlock()
	}
	return nil
}

// Record appends an audit entry for a user-visible action.
func (s *Store) Record(ctx context.Context, nl NewLog) error {
	if err := core.CheckStruct(nl); err != nil {
		s.Begin().Reject(err)
		return err
	}
	op := s.Begin()
	var created Log
	if err := s.api.Post(ctx, "/activity-logs", nl, &created); err != nil {
		op.Reject(err)
		return err
	}
	op.ResolveOne(created)
	return nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	op := s.Begin()
	if err := s.api.Delete(ctx, "/activity-logs/"+id); err != nil {
		op.Reject(err)
		return err
	}
	op.ResolveDelete(id)
	return nil
}

func (s *Store) Pagination() core.Page {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.page
}
