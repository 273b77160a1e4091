package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	appErrors "github.com/noah-isme/college-enrolment-api/pkg/errors"
)

type stubCacheRepo struct {
	store       map[string][]byte
	deleted     []string
	// failDeletes makes the next n Delete calls fail.
	failDeletes int
}

func (s *stubCacheRepo) Get(_ context.Context, key string, dest interface{}) error {
	payload, ok := s.store[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(payload, dest)
}

func (s *stubCacheRepo) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	if s.store == nil {
		s.store = make(map[string][]byte)
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.store[key] = payload
	return nil
}

func (s *stubCacheRepo) Delete(_ context.Context, keys ...string) error {
	if s.failDeletes > 0 {
		s.failDeletes--
		return errors.New("redis: connection refused")
	}
	for _, key := range keys {
		delete(s.store, key)
		s.deleted = append(s.deleted, key)
	}
	return nil
}

func (s *stubCacheRepo) DeleteByPattern(_ context.Context, pattern string) error {
	for key := range s.store {
		if strings.HasPrefix(key, strings.TrimSuffix(pattern, "*")) {
			delete(s.store, key)
			s.deleted = append(s.deleted, key)
		}
	}
	return nil
}

type recordingInvalidator struct {
	years []string
}

func (r *recordingInvalidator) Schedule(_ context.Context, academicYear string) {
	r.years = append(r.years, academicYear)
}
