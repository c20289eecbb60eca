package jobs

import (
	"sync"

	"github.com/tubefetch/tubefetch/internal/domain"
)

// MemoryStore holds download jobs for the life of the process. Jobs are
// value-copied on read so pollers always see consistent snapshots.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]domain.DownloadJob
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]domain.DownloadJob, 32)}
}

func (s *MemoryStore) Create(job domain.DownloadJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[job.JobID] = job
	return nil
}

func (s *MemoryStore) Get(jobID string) (domain.DownloadJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.records[jobID]
	if !ok {
		return domain.DownloadJob{}, domain.ErrNotFound
	}
	return job, nil
}

func (s *MemoryStore) Update(job domain.DownloadJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[job.JobID]; !ok {
		return domain.ErrNotFound
	}
	s.records[job.JobID] = job
	return nil
}
